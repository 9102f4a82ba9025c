package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-jet/jet/v2/qrm"
	"github.com/go-jet/jet/v2/sqlite"
	"github.com/google/uuid"
	"github.com/samber/oops"
	"github.com/sirupsen/logrus"

	"github.com/goserg/todoserver/gen/model"
	"github.com/goserg/todoserver/gen/table"
	"github.com/goserg/todoserver/internal/domain"
	"github.com/goserg/todoserver/internal/storage"
)

type Storage struct {
	db  *sql.DB
	log *logrus.Entry
}

var _ storage.TodoStorage = (*Storage)(nil)

func New(l *logrus.Logger, db *sql.DB) *Storage {
	return &Storage{
		db:  db,
		log: l.WithField("from", "todo-storage"),
	}
}

func (s *Storage) List(ctx context.Context, filter storage.TodoFilter) ([]domain.Todo, error) {
	condition := sqlite.Bool(true)
	if filter.OwnerID != nil {
		condition = condition.AND(table.Todos.OwnerID.EQ(sqlite.String(filter.OwnerID.String())))
	}
	if filter.Completed != nil {
		condition = condition.AND(table.Todos.Completed.EQ(sqlite.Bool(*filter.Completed)))
	}
	var todos []model.Todos
	err := table.Todos.
		SELECT(table.Todos.AllColumns).
		FROM(table.Todos).
		WHERE(condition).
		ORDER_BY(table.Todos.Priority.DESC(), table.Todos.CreatedAt.ASC()).
		QueryContext(ctx, s.db, &todos)
	if err != nil && !errors.Is(err, qrm.ErrNoRows) {
		return nil, oops.In("todo-storage").Code("TODO_STORAGE_QUERY").Wrap(err)
	}
	return convertTodos(todos)
}

func (s *Storage) Get(ctx context.Context, id uuid.UUID) (domain.Todo, error) {
	var todo model.Todos
	err := table.Todos.
		SELECT(table.Todos.AllColumns).
		FROM(table.Todos).
		WHERE(table.Todos.ID.EQ(sqlite.String(id.String()))).
		QueryContext(ctx, s.db, &todo)
	if err != nil {
		if errors.Is(err, qrm.ErrNoRows) {
			return domain.Todo{}, storage.ErrNotFound
		}
		return domain.Todo{}, oops.In("todo-storage").Code("TODO_STORAGE_QUERY").With("id", id).Wrap(err)
	}
	return convertTodo(todo)
}

func (s *Storage) Create(ctx context.Context, todo domain.Todo) error {
	_, err := table.Todos.
		INSERT(table.Todos.AllColumns).
		MODEL(convertTodoFromDomain(todo)).
		ExecContext(ctx, s.db)
	if err != nil {
		return oops.In("todo-storage").Code("TODO_STORAGE_INSERT").With("id", todo.ID).Wrap(err)
	}
	s.log.WithField("id", todo.ID).Debug("todo created")
	return nil
}

func (s *Storage) Update(ctx context.Context, todo domain.Todo) error {
	res, err := table.Todos.
		UPDATE(table.Todos.Title, table.Todos.Description, table.Todos.Priority, table.Todos.Completed).
		MODEL(convertTodoFromDomain(todo)).
		WHERE(table.Todos.ID.EQ(sqlite.String(todo.ID.String()))).
		ExecContext(ctx, s.db)
	if err != nil {
		return oops.In("todo-storage").Code("TODO_STORAGE_UPDATE").With("id", todo.ID).Wrap(err)
	}
	return expectAffected(res)
}

func (s *Storage) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := table.Todos.
		DELETE().
		WHERE(table.Todos.ID.EQ(sqlite.String(id.String()))).
		ExecContext(ctx, s.db)
	if err != nil {
		return oops.In("todo-storage").Code("TODO_STORAGE_DELETE").With("id", id).Wrap(err)
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
