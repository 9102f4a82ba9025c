package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	authservice "github.com/goserg/todoserver/auth/service"
)

const DefaultPath = "configs/server.toml"

type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
	Testing     Environment = "testing"
)

func (e Environment) Valid() bool {
	switch e {
	case Development, Production, Testing:
		return true
	}
	return false
}

type Server struct {
	Host        string      `toml:"host"`
	Port        int         `toml:"port"`
	Environment Environment `toml:"environment"`
}

type Database struct {
	File string `toml:"file"`
}

type Log struct {
	Level string `toml:"level"`
}

type Config struct {
	Server   Server             `toml:"server"`
	Database Database           `toml:"database"`
	Log      Log                `toml:"log"`
	Auth     authservice.Config `toml:"auth"`
}

func defaults() Config {
	return Config{
		Server: Server{
			Host:        "127.0.0.1",
			Port:        8000,
			Environment: Development,
		},
		Database: Database{File: "todo.sqlite"},
		Log:      Log{Level: "info"},
		Auth: authservice.Config{
			AccessTokenTTL:  3600,
			RefreshTokenTTL: 7200,
		},
	}
}

// Load reads an optional .env file, then the toml file at path, then environment overrides.
// A missing toml file is not an error.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaults()
	if path != "" {
		_, err := toml.DecodeFile(path, &cfg)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var err error
	setString(&c.Auth.Secret, "JWT_SECRET")
	setString(&c.Auth.AdminEmail, "ADMIN_USER_EMAIL")
	setString(&c.Auth.AdminPassword, "ADMIN_USER_PASSWORD")
	setString(&c.Database.File, "SQLITE_FILE")
	setString(&c.Server.Host, "HOST")
	setString(&c.Log.Level, "LOG_LEVEL")
	if env, ok := os.LookupEnv("ENVIRONMENT"); ok {
		c.Server.Environment = Environment(env)
	}
	err = errors.Join(err, setInt(&c.Auth.AccessTokenTTL, "JWT_TOKEN_EXPIRATION_SECONDS"))
	err = errors.Join(err, setInt(&c.Auth.RefreshTokenTTL, "JWT_REFRESH_TOKEN_EXPIRATION_SECONDS"))
	err = errors.Join(err, setInt(&c.Server.Port, "PORT"))
	return err
}

func (c Config) Validate() error {
	err := c.Auth.Validate()
	if !c.Server.Environment.Valid() {
		err = errors.Join(err, fmt.Errorf("server: unknown environment %q", c.Server.Environment))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		err = errors.Join(err, fmt.Errorf("server: port %d out of range", c.Server.Port))
	}
	if c.Database.File == "" {
		err = errors.Join(err, errors.New("database: file must not be empty"))
	}
	return err
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
