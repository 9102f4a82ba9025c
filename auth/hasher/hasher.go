// Package hasher hashes and verifies user passwords.
package hasher

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordLength is the bcrypt input limit in bytes.
const MaxPasswordLength = 72

var (
	ErrEmptyPassword   = errors.New("password cannot be empty")
	ErrPasswordTooLong = errors.New("password is longer than 72 bytes")
)

type PasswordHasher interface {
	// Hash returns a self-describing hash with an embedded random salt.
	Hash(password string) (string, error)
	// Verify reports whether password matches hash. Malformed hashes never match.
	Verify(password, hash string) bool
	// NeedsRehash reports whether hash was produced with different parameters than the hasher uses now.
	NeedsRehash(hash string) bool
}

type Bcrypt struct {
	cost int
}

var _ PasswordHasher = (*Bcrypt)(nil)

// NewBcrypt creates a hasher with the given cost. Out of range costs fall back to bcrypt.DefaultCost.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

func (b *Bcrypt) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", err
	}
	return string(hash), nil
}

func (b *Bcrypt) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (b *Bcrypt) NeedsRehash(hash string) bool {
	cost, err := Cost(hash)
	return err == nil && cost != b.cost
}

// Cost returns the cost encoded in hash.
func Cost(hash string) (int, error) {
	return bcrypt.Cost([]byte(hash))
}
