package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/goserg/todoserver/internal/domain"
)

var ErrNotFound = errors.New("todo not found")

// TodoFilter restricts List. A nil OwnerID lists every owner's todos.
type TodoFilter struct {
	OwnerID   *uuid.UUID
	Completed *bool
}

type TodoStorage interface {
	List(ctx context.Context, filter TodoFilter) ([]domain.Todo, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Todo, error)
	Create(ctx context.Context, todo domain.Todo) error
	Update(ctx context.Context, todo domain.Todo) error
	Delete(ctx context.Context, id uuid.UUID) error
}
