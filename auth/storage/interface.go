package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/goserg/todoserver/auth/users"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// UserStorage returns ErrNotFound for missing users and ErrConflict for duplicate emails or usernames.
type UserStorage interface {
	GetByEmail(ctx context.Context, email string) (users.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (users.User, error)
	Create(ctx context.Context, user users.User) error
	Update(ctx context.Context, user users.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]users.User, error)
}
