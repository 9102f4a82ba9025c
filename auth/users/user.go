package users

import (
	"time"

	"github.com/google/uuid"
)

// User is the stored credential record. PasswordHash never leaves the auth subsystem.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	RegisteredAt time.Time
}

func (u User) Identity() (Identity, error) {
	return NewIdentity(u.ID, u.Email, u.Role)
}
