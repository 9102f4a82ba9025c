package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	authservice "github.com/goserg/todoserver/auth/service"
	authstorage "github.com/goserg/todoserver/auth/storage"
	"github.com/goserg/todoserver/auth/users"
	"github.com/goserg/todoserver/internal/normalize"
)

// UserPatch carries the fields of a user update. Nil fields are left unchanged.
type UserPatch struct {
	Username *string
	Email    *string
	Password *string
	Role     *users.Role
}

type UserService struct {
	auth    *authservice.Service
	storage authstorage.UserStorage
	log     *logrus.Entry
}

func NewUserService(l *logrus.Logger, auth *authservice.Service, userStorage authstorage.UserStorage) *UserService {
	return &UserService{
		auth:    auth,
		storage: userStorage,
		log:     l.WithField("from", "user-service"),
	}
}

func (s *UserService) List(ctx context.Context) ([]users.User, error) {
	return s.storage.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (users.User, error) {
	return s.storage.GetByID(ctx, id)
}

func (s *UserService) Create(ctx context.Context, nu authservice.NewUser) (users.User, error) {
	user, err := s.auth.CreateUser(ctx, nu)
	if err != nil {
		return users.User{}, err
	}
	s.log.WithField("id", user.ID).WithField("role", user.Role).Info("user created")
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id uuid.UUID, patch UserPatch) (users.User, error) {
	user, err := s.storage.GetByID(ctx, id)
	if err != nil {
		return users.User{}, err
	}
	if patch.Username != nil {
		user.Username = normalize.Name(*patch.Username)
	}
	if patch.Email != nil {
		user.Email = normalize.Email(*patch.Email)
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			return users.User{}, users.ErrMalformedIdentity
		}
		user.Role = *patch.Role
	}
	if patch.Password != nil {
		hash, err := s.auth.HashPassword(*patch.Password)
		if err != nil {
			return users.User{}, err
		}
		user.PasswordHash = hash
	}
	if err := s.storage.Update(ctx, user); err != nil {
		return users.User{}, err
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.storage.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithField("id", id).Info("user deleted")
	return nil
}
