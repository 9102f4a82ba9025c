package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/goserg/todoserver/auth/users"
	"github.com/goserg/todoserver/internal/clock"
	"github.com/goserg/todoserver/internal/domain"
	"github.com/goserg/todoserver/internal/storage"
)

type NewTodo struct {
	Title       string
	Description string
	Priority    int
}

// TodoService applies ownership rules: callers see their own todos, admins see all of them.
type TodoService struct {
	storage storage.TodoStorage
	clock   clock.Clock
	log     *logrus.Entry
}

func NewTodoService(l *logrus.Logger, todoStorage storage.TodoStorage, clk clock.Clock) *TodoService {
	return &TodoService{
		storage: todoStorage,
		clock:   clk,
		log:     l.WithField("from", "todo-service"),
	}
}

// List returns the caller's todos, or every todo for an admin. A non-nil completed narrows the result.
func (s *TodoService) List(ctx context.Context, caller users.Identity, completed *bool) ([]domain.Todo, error) {
	filter := storage.TodoFilter{Completed: completed}
	if !caller.IsAdmin() {
		owner := caller.UserID()
		filter.OwnerID = &owner
	}
	return s.storage.List(ctx, filter)
}

// Get reports a todo owned by someone else as storage.ErrNotFound.
func (s *TodoService) Get(ctx context.Context, caller users.Identity, id uuid.UUID) (domain.Todo, error) {
	todo, err := s.storage.Get(ctx, id)
	if err != nil {
		return domain.Todo{}, err
	}
	if !caller.IsAdmin() && todo.OwnerID != caller.UserID() {
		return domain.Todo{}, storage.ErrNotFound
	}
	return todo, nil
}

func (s *TodoService) Create(ctx context.Context, caller users.Identity, nt NewTodo) (domain.Todo, error) {
	todo := domain.Todo{
		ID:          uuid.New(),
		Title:       nt.Title,
		Description: nt.Description,
		Priority:    nt.Priority,
		OwnerID:     caller.UserID(),
		CreatedAt:   s.clock.Now(),
	}
	if err := s.storage.Create(ctx, todo); err != nil {
		return domain.Todo{}, err
	}
	return todo, nil
}

func (s *TodoService) Update(ctx context.Context, caller users.Identity, id uuid.UUID, patch domain.TodoPatch) (domain.Todo, error) {
	todo, err := s.Get(ctx, caller, id)
	if err != nil {
		return domain.Todo{}, err
	}
	todo = patch.Apply(todo)
	if err := s.storage.Update(ctx, todo); err != nil {
		return domain.Todo{}, err
	}
	return todo, nil
}

func (s *TodoService) Delete(ctx context.Context, caller users.Identity, id uuid.UUID) error {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithField("id", id).WithField("by", caller.UserID()).Debug("todo deleted")
	return nil
}
