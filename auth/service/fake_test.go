package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/goserg/todoserver/auth/storage"
	"github.com/goserg/todoserver/auth/users"
)

type memStorage struct {
	mu    sync.Mutex
	users map[uuid.UUID]users.User
}

var _ storage.UserStorage = (*memStorage)(nil)

func newMemStorage() *memStorage {
	return &memStorage{users: make(map[uuid.UUID]users.User)}
}

func (m *memStorage) GetByEmail(_ context.Context, email string) (users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return users.User{}, storage.ErrNotFound
}

func (m *memStorage) GetByID(_ context.Context, id uuid.UUID) (users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return users.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (m *memStorage) Create(_ context.Context, user users.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email || u.Username == user.Username {
			return storage.ErrConflict
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *memStorage) Update(_ context.Context, user users.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return storage.ErrNotFound
	}
	m.users[user.ID] = user
	return nil
}

func (m *memStorage) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memStorage) List(_ context.Context) ([]users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]users.User, 0, len(m.users))
	for _, u := range m.users {
		list = append(list, u)
	}
	return list, nil
}
