package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/goserg/todoserver/auth/hasher"
)

type Config struct {
	Secret          string `toml:"secret"`
	AccessTokenTTL  int    `toml:"access_token_ttl"`  // seconds
	RefreshTokenTTL int    `toml:"refresh_token_ttl"` // seconds
	AdminEmail      string `toml:"admin_email"`
	AdminPassword   string `toml:"admin_password"`
	BcryptCost      int    `toml:"bcrypt_cost"`
	// StrictRefresh makes Refresh reject tokens without the refresh marker.
	StrictRefresh bool `toml:"strict_refresh"`
}

func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTokenTTL) * time.Second
}

func (c Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTokenTTL) * time.Second
}

func (c Config) Validate() error {
	var err error
	if c.Secret == "" {
		err = errors.Join(err, errors.New("auth: secret must not be empty"))
	}
	if c.AccessTokenTTL <= 0 {
		err = errors.Join(err, errors.New("auth: access_token_ttl must be positive"))
	}
	if c.RefreshTokenTTL <= c.AccessTokenTTL {
		err = errors.Join(err, errors.New("auth: refresh_token_ttl must be greater than access_token_ttl"))
	}
	if c.AdminEmail != "" && c.AdminPassword == "" {
		err = errors.Join(err, errors.New("auth: admin_password is required when admin_email is set"))
	}
	if len(c.AdminPassword) > hasher.MaxPasswordLength {
		err = errors.Join(err, fmt.Errorf("auth: admin_password must be at most %d bytes", hasher.MaxPasswordLength))
	}
	return err
}
