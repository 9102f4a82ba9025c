package mem

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/goserg/todoserver/auth/storage"
	"github.com/goserg/todoserver/auth/users"
)

// UserCache is a read-through cache in front of a UserStorage. Lookups by email and id are
// served from memory after the first hit; every write through the cache drops the affected user.
type UserCache struct {
	next storage.UserStorage

	mu      sync.RWMutex
	byID    map[uuid.UUID]users.User
	byEmail map[string]uuid.UUID
	// epoch advances on every drop. A fill loaded under an older epoch is discarded.
	epoch uint64
}

var _ storage.UserStorage = (*UserCache)(nil)

func New(next storage.UserStorage) *UserCache {
	return &UserCache{
		next:    next,
		byID:    make(map[uuid.UUID]users.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (c *UserCache) GetByEmail(ctx context.Context, email string) (users.User, error) {
	c.mu.RLock()
	id, ok := c.byEmail[email]
	user := c.byID[id]
	epoch := c.epoch
	c.mu.RUnlock()
	if ok {
		return user, nil
	}

	user, err := c.next.GetByEmail(ctx, email)
	if err != nil {
		return users.User{}, err
	}
	c.put(user, epoch)
	return user, nil
}

func (c *UserCache) GetByID(ctx context.Context, id uuid.UUID) (users.User, error) {
	c.mu.RLock()
	user, ok := c.byID[id]
	epoch := c.epoch
	c.mu.RUnlock()
	if ok {
		return user, nil
	}

	user, err := c.next.GetByID(ctx, id)
	if err != nil {
		return users.User{}, err
	}
	c.put(user, epoch)
	return user, nil
}

func (c *UserCache) Create(ctx context.Context, user users.User) error {
	return c.next.Create(ctx, user)
}

func (c *UserCache) Update(ctx context.Context, user users.User) error {
	err := c.next.Update(ctx, user)
	c.drop(user.ID)
	return err
}

func (c *UserCache) Delete(ctx context.Context, id uuid.UUID) error {
	err := c.next.Delete(ctx, id)
	c.drop(id)
	return err
}

func (c *UserCache) List(ctx context.Context) ([]users.User, error) {
	return c.next.List(ctx)
}

// Len returns the number of cached users.
func (c *UserCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}

func (c *UserCache) put(user users.User, epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != epoch {
		return
	}
	if old, ok := c.byID[user.ID]; ok {
		delete(c.byEmail, old.Email)
	}
	c.byID[user.ID] = user
	c.byEmail[user.Email] = user.ID
}

func (c *UserCache) drop(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	if old, ok := c.byID[id]; ok {
		delete(c.byEmail, old.Email)
		delete(c.byID, id)
	}
}
