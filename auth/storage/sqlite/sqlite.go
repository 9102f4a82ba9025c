package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-jet/jet/v2/qrm"
	"github.com/go-jet/jet/v2/sqlite"
	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/samber/oops"
	"github.com/sirupsen/logrus"

	"github.com/goserg/todoserver/auth/storage"
	"github.com/goserg/todoserver/auth/users"
	"github.com/goserg/todoserver/gen/model"
	"github.com/goserg/todoserver/gen/table"
)

type Storage struct {
	db  *sql.DB
	log *logrus.Entry
}

var _ storage.UserStorage = (*Storage)(nil)

func New(l *logrus.Logger, db *sql.DB) *Storage {
	return &Storage{
		db:  db,
		log: l.WithField("from", "user-storage"),
	}
}

func (s *Storage) GetByEmail(ctx context.Context, email string) (users.User, error) {
	return s.getOne(ctx, table.Users.Email.EQ(sqlite.String(email)), "email", email)
}

func (s *Storage) GetByID(ctx context.Context, id uuid.UUID) (users.User, error) {
	return s.getOne(ctx, table.Users.ID.EQ(sqlite.String(id.String())), "id", id)
}

func (s *Storage) getOne(ctx context.Context, where sqlite.BoolExpression, key string, value any) (users.User, error) {
	var dbUser model.Users
	err := table.Users.
		SELECT(table.Users.AllColumns).
		FROM(table.Users).
		WHERE(where).
		QueryContext(ctx, s.db, &dbUser)
	if err != nil {
		if errors.Is(err, qrm.ErrNoRows) {
			return users.User{}, storage.ErrNotFound
		}
		return users.User{}, oops.In("user-storage").Code("USER_STORAGE_QUERY").With(key, value).Wrap(err)
	}
	return convertUserToDomain(dbUser)
}

func (s *Storage) Create(ctx context.Context, user users.User) error {
	_, err := table.Users.
		INSERT(table.Users.AllColumns).
		MODEL(convertUserFromDomain(user)).
		ExecContext(ctx, s.db)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user with email %q", storage.ErrConflict, user.Email)
		}
		return oops.In("user-storage").Code("USER_STORAGE_INSERT").With("id", user.ID).Wrap(err)
	}
	s.log.WithField("id", user.ID).Debug("user created")
	return nil
}

func (s *Storage) Update(ctx context.Context, user users.User) error {
	res, err := table.Users.
		UPDATE(table.Users.Username, table.Users.Email, table.Users.PasswordHash, table.Users.Role).
		MODEL(convertUserFromDomain(user)).
		WHERE(table.Users.ID.EQ(sqlite.String(user.ID.String()))).
		ExecContext(ctx, s.db)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user with email %q", storage.ErrConflict, user.Email)
		}
		return oops.In("user-storage").Code("USER_STORAGE_UPDATE").With("id", user.ID).Wrap(err)
	}
	return expectAffected(res)
}

func (s *Storage) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := table.Users.
		DELETE().
		WHERE(table.Users.ID.EQ(sqlite.String(id.String()))).
		ExecContext(ctx, s.db)
	if err != nil {
		return oops.In("user-storage").Code("USER_STORAGE_DELETE").With("id", id).Wrap(err)
	}
	return expectAffected(res)
}

func (s *Storage) List(ctx context.Context) ([]users.User, error) {
	var dbUsers []model.Users
	err := table.Users.
		SELECT(table.Users.AllColumns).
		FROM(table.Users).
		ORDER_BY(table.Users.CreatedAt.ASC(), table.Users.Email.ASC()).
		QueryContext(ctx, s.db, &dbUsers)
	if err != nil && !errors.Is(err, qrm.ErrNoRows) {
		return nil, oops.In("user-storage").Code("USER_STORAGE_QUERY").Wrap(err)
	}
	result := make([]users.User, 0, len(dbUsers))
	for _, dbUser := range dbUsers {
		u, err := convertUserToDomain(dbUser)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, nil
}

func convertUserToDomain(user model.Users) (users.User, error) {
	id, err := uuid.Parse(user.ID)
	if err != nil {
		return users.User{}, oops.In("user-storage").Code("USER_STORAGE_CORRUPT").With("id", user.ID).Wrap(err)
	}
	role, err := users.ParseRole(int(user.Role))
	if err != nil {
		return users.User{}, oops.In("user-storage").Code("USER_STORAGE_CORRUPT").With("id", user.ID).Wrap(err)
	}
	return users.User{
		ID:           id,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         role,
		RegisteredAt: user.CreatedAt,
	}, nil
}

func convertUserFromDomain(user users.User) model.Users {
	return model.Users{
		ID:           user.ID.String(),
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         int32(user.Role),
		CreatedAt:    user.RegisteredAt,
	}
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
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
