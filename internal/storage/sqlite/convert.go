package sqlite

import (
	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/goserg/todoserver/gen/model"
	"github.com/goserg/todoserver/internal/domain"
)

func convertTodos(todos []model.Todos) ([]domain.Todo, error) {
	converted := make([]domain.Todo, 0, len(todos))
	for _, todo := range todos {
		t, err := convertTodo(todo)
		if err != nil {
			return nil, err
		}
		converted = append(converted, t)
	}
	return converted, nil
}

func convertTodo(todo model.Todos) (domain.Todo, error) {
	id, err := uuid.Parse(todo.ID)
	if err != nil {
		return domain.Todo{}, oops.In("todo-storage").Code("TODO_STORAGE_CORRUPT").With("id", todo.ID).Wrap(err)
	}
	ownerID, err := uuid.Parse(todo.OwnerID)
	if err != nil {
		return domain.Todo{}, oops.In("todo-storage").Code("TODO_STORAGE_CORRUPT").With("owner_id", todo.OwnerID).Wrap(err)
	}
	return domain.Todo{
		ID:          id,
		Title:       todo.Title,
		Description: todo.Description,
		Priority:    int(todo.Priority),
		Completed:   todo.Completed,
		OwnerID:     ownerID,
		CreatedAt:   todo.CreatedAt,
	}, nil
}

func convertTodoFromDomain(todo domain.Todo) model.Todos {
	return model.Todos{
		ID:          todo.ID.String(),
		Title:       todo.Title,
		Description: todo.Description,
		Priority:    int32(todo.Priority),
		Completed:   todo.Completed,
		OwnerID:     todo.OwnerID.String(),
		CreatedAt:   todo.CreatedAt,
	}
}
