package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/goserg/todoserver/auth/hasher"
	"github.com/goserg/todoserver/auth/storage"
	"github.com/goserg/todoserver/auth/token"
	"github.com/goserg/todoserver/auth/users"
	"github.com/goserg/todoserver/internal/clock"
	"github.com/goserg/todoserver/internal/normalize"
)

// TokenPair is issued on every successful login or refresh and is never stored.
type TokenPair struct {
	AccessToken            string
	AccessTokenExpiration  time.Time
	RefreshToken           string
	RefreshTokenExpiration time.Time
}

type NewUser struct {
	Username string
	Email    string
	Password string
	Role     users.Role
}

type Service struct {
	storage storage.UserStorage
	hasher  hasher.PasswordHasher
	tokens  *token.Codec
	clock   clock.Clock
	cfg     Config
	log     *logrus.Entry

	// dummyHash is verified against when the email is unknown.
	dummyHash string
}

func New(
	ctx context.Context,
	l *logrus.Logger,
	cfg Config,
	userStorage storage.UserStorage,
	passwordHasher hasher.PasswordHasher,
	codec *token.Codec,
	clk clock.Clock,
) (*Service, error) {
	s := Service{
		storage: userStorage,
		hasher:  passwordHasher,
		tokens:  codec,
		clock:   clk,
		cfg:     cfg,
		log:     l.WithField("from", "auth-service"),
	}
	dummy, err := passwordHasher.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}
	s.dummyHash = dummy

	if err := s.seedAdmin(ctx); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Service) seedAdmin(ctx context.Context) error {
	if s.cfg.AdminEmail == "" {
		return nil
	}
	_, err := s.storage.GetByEmail(ctx, normalize.Email(s.cfg.AdminEmail))
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	user, err := s.CreateUser(ctx, NewUser{
		Username: s.cfg.AdminEmail,
		Email:    s.cfg.AdminEmail,
		Password: s.cfg.AdminPassword,
		Role:     users.RoleAdmin,
	})
	if errors.Is(err, storage.ErrConflict) {
		s.log.WithField("email", s.cfg.AdminEmail).Warn("admin user not created: username is taken")
		return nil
	}
	if err != nil {
		return err
	}
	s.log.WithField("id", user.ID).Info("admin user created")
	return nil
}

// Login returns ErrInvalidCredentials for an unknown email and for a wrong password alike.
func (s *Service) Login(ctx context.Context, email string, password string) (TokenPair, error) {
	user, err := s.storage.GetByEmail(ctx, normalize.Email(email))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			LoginsTotal.WithLabelValues(ResultError).Inc()
			return TokenPair{}, err
		}
		s.hasher.Verify(password, s.dummyHash)
		return TokenPair{}, s.loginFailed("unknown email")
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return TokenPair{}, s.loginFailed("wrong password")
	}

	identity, err := user.Identity()
	if err != nil {
		LoginsTotal.WithLabelValues(ResultError).Inc()
		return TokenPair{}, err
	}
	pair, err := s.issue(identity)
	if err != nil {
		LoginsTotal.WithLabelValues(ResultError).Inc()
		return TokenPair{}, err
	}
	LoginsTotal.WithLabelValues(ResultSuccess).Inc()
	s.log.WithField("id", user.ID).Info("user logged in")
	s.rehash(ctx, user, password)
	return pair, nil
}

// rehash upgrades a stored hash made with outdated parameters. Failures are logged, the login stands.
func (s *Service) rehash(ctx context.Context, user users.User, password string) {
	if !s.hasher.NeedsRehash(user.PasswordHash) {
		return
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.log.WithError(err).WithField("id", user.ID).Warn("rehash failed")
		return
	}
	user.PasswordHash = hash
	if err := s.storage.Update(ctx, user); err != nil {
		s.log.WithError(err).WithField("id", user.ID).Warn("rehash failed")
		return
	}
	s.log.WithField("id", user.ID).Debug("password rehashed")
}

func (s *Service) loginFailed(reason string) error {
	LoginsTotal.WithLabelValues(ResultInvalidCredentials).Inc()
	s.log.WithField("reason", reason).Debug("login rejected")
	return ErrInvalidCredentials
}

// Refresh exchanges a valid token for a new pair. Unless StrictRefresh is set the refresh
// marker is not required, so an unexpired access token refreshes as well.
func (s *Service) Refresh(refreshToken string) (TokenPair, error) {
	if !s.tokens.IsValid(refreshToken) {
		return TokenPair{}, s.refreshFailed("invalid or expired token")
	}
	claims, err := s.tokens.Data(refreshToken)
	if err != nil {
		return TokenPair{}, s.refreshFailed(err.Error())
	}
	if s.cfg.StrictRefresh && !users.IsRefreshClaims(claims) {
		return TokenPair{}, s.refreshFailed("refresh marker missing")
	}
	identity, err := users.FromClaims(claims)
	if err != nil {
		return TokenPair{}, s.refreshFailed(err.Error())
	}
	pair, err := s.issue(identity)
	if err != nil {
		RefreshesTotal.WithLabelValues(ResultError).Inc()
		return TokenPair{}, err
	}
	RefreshesTotal.WithLabelValues(ResultSuccess).Inc()
	return pair, nil
}

func (s *Service) refreshFailed(reason string) error {
	RefreshesTotal.WithLabelValues(ResultInvalidRefreshToken).Inc()
	s.log.WithField("reason", reason).Debug("refresh rejected")
	return ErrInvalidRefreshToken
}

// issue creates both tokens from one clock reading. Expirations are whole seconds,
// matching the exp claim inside the tokens.
func (s *Service) issue(identity users.Identity) (TokenPair, error) {
	now := s.clock.Now()
	accessExpiration := now.Add(s.cfg.AccessTTL()).Truncate(time.Second)
	refreshExpiration := now.Add(s.cfg.RefreshTTL()).Truncate(time.Second)

	accessToken, err := s.tokens.Create(accessExpiration, identity.ToClaims())
	if err != nil {
		return TokenPair{}, err
	}
	refreshClaims := identity.ToClaims()
	refreshClaims[users.ClaimIsRefreshToken] = true
	refreshToken, err := s.tokens.Create(refreshExpiration, refreshClaims)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:            accessToken,
		AccessTokenExpiration:  accessExpiration,
		RefreshToken:           refreshToken,
		RefreshTokenExpiration: refreshExpiration,
	}, nil
}

// CreateUser hashes the password and stores a new user. A duplicate email yields storage.ErrConflict.
func (s *Service) CreateUser(ctx context.Context, nu NewUser) (users.User, error) {
	if !nu.Role.Valid() {
		return users.User{}, users.ErrMalformedIdentity
	}
	hash, err := s.hasher.Hash(nu.Password)
	if err != nil {
		return users.User{}, err
	}
	user := users.User{
		ID:           uuid.New(),
		Username:     normalize.Name(nu.Username),
		Email:        normalize.Email(nu.Email),
		PasswordHash: hash,
		Role:         nu.Role,
		RegisteredAt: s.clock.Now(),
	}
	if err := s.storage.Create(ctx, user); err != nil {
		return users.User{}, err
	}
	return user, nil
}

// HashPassword exposes the configured hasher to user management.
func (s *Service) HashPassword(password string) (string, error) {
	return s.hasher.Hash(password)
}
