package web

import (
	"errors"
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/goserg/todoserver/auth/hasher"
	authservice "github.com/goserg/todoserver/auth/service"
	"github.com/goserg/todoserver/auth/users"
	"github.com/goserg/todoserver/internal/domain"
	"github.com/goserg/todoserver/internal/service"
)

const (
	minUsernameLength    = 3
	maxEmailLength       = 320
	minPasswordLength    = 6
	minTitleLength       = 3
	minDescriptionLength = 3
)

var emailRegexp = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// dateFormat is RFC 3339 in UTC with a literal Z suffix.
const dateFormat = "2006-01-02T15:04:05Z"

func formatDate(t time.Time) string {
	return t.UTC().Format(dateFormat)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	var err error
	err = errors.Join(err, validateEmail(r.Email))
	if r.Password == "" {
		err = errors.Join(err, errors.New("password must not be empty"))
	}
	return err
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPairResponse struct {
	Token                      string `json:"token"`
	TokenExpirationDate        string `json:"token_expiration_date"`
	RefreshToken               string `json:"refresh_token"`
	RefreshTokenExpirationDate string `json:"refresh_token_expiration_date"`
}

func newTokenPairResponse(pair authservice.TokenPair) tokenPairResponse {
	return tokenPairResponse{
		Token:                      pair.AccessToken,
		TokenExpirationDate:        formatDate(pair.AccessTokenExpiration),
		RefreshToken:               pair.RefreshToken,
		RefreshTokenExpirationDate: formatDate(pair.RefreshTokenExpiration),
	}
}

type identityResponse struct {
	UserID  uuid.UUID `json:"user_id"`
	Email   string    `json:"email"`
	Roles   []int     `json:"roles"`
	IsAdmin bool      `json:"is_admin"`
}

func newIdentityResponse(identity users.Identity) identityResponse {
	roles := make([]int, 0, len(identity.Roles()))
	for _, r := range identity.Roles() {
		roles = append(roles, int(r))
	}
	return identityResponse{
		UserID:  identity.UserID(),
		Email:   identity.Email(),
		Roles:   roles,
		IsAdmin: identity.IsAdmin(),
	}
}

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     *int   `json:"role"`
}

func (r createUserRequest) Validate() error {
	var err error
	err = errors.Join(err, validateUsername(r.Username))
	err = errors.Join(err, validateEmail(r.Email))
	err = errors.Join(err, validatePassword(r.Password))
	if r.Role != nil {
		err = errors.Join(err, validateRole(*r.Role))
	}
	return err
}

func (r createUserRequest) toNewUser() authservice.NewUser {
	role := users.RoleNormal
	if r.Role != nil {
		role = users.Role(*r.Role)
	}
	return authservice.NewUser{
		Username: r.Username,
		Email:    r.Email,
		Password: r.Password,
		Role:     role,
	}
}

type updateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *int    `json:"role"`
}

func (r updateUserRequest) Validate() error {
	var err error
	if r.Username != nil {
		err = errors.Join(err, validateUsername(*r.Username))
	}
	if r.Email != nil {
		err = errors.Join(err, validateEmail(*r.Email))
	}
	if r.Password != nil {
		err = errors.Join(err, validatePassword(*r.Password))
	}
	if r.Role != nil {
		err = errors.Join(err, validateRole(*r.Role))
	}
	return err
}

func (r updateUserRequest) toPatch() service.UserPatch {
	patch := service.UserPatch{
		Username: r.Username,
		Email:    r.Email,
		Password: r.Password,
	}
	if r.Role != nil {
		role := users.Role(*r.Role)
		patch.Role = &role
	}
	return patch
}

type userResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     int       `json:"role"`
}

func newUserResponse(u users.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     int(u.Role),
	}
}

func newUserResponses(list []users.User) []userResponse {
	result := make([]userResponse, 0, len(list))
	for _, u := range list {
		result = append(result, newUserResponse(u))
	}
	return result
}

type createTodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
}

func (r createTodoRequest) Validate() error {
	var err error
	err = errors.Join(err, validateTitle(r.Title))
	err = errors.Join(err, validateDescription(r.Description))
	err = errors.Join(err, validatePriority(r.Priority))
	return err
}

func (r createTodoRequest) toNewTodo() service.NewTodo {
	return service.NewTodo{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
	}
}

type updateTodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *int    `json:"priority"`
	Completed   *bool   `json:"completed"`
}

func (r updateTodoRequest) Validate() error {
	var err error
	if r.Title != nil {
		err = errors.Join(err, validateTitle(*r.Title))
	}
	if r.Description != nil {
		err = errors.Join(err, validateDescription(*r.Description))
	}
	if r.Priority != nil {
		err = errors.Join(err, validatePriority(*r.Priority))
	}
	return err
}

func (r updateTodoRequest) toPatch() domain.TodoPatch {
	return domain.TodoPatch{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		Completed:   r.Completed,
	}
}

type todoResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    int       `json:"priority"`
	Completed   bool      `json:"completed"`
	OwnerID     uuid.UUID `json:"owner_id"`
	CreatedAt   string    `json:"created_at"`
}

func newTodoResponse(t domain.Todo) todoResponse {
	return todoResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Completed:   t.Completed,
		OwnerID:     t.OwnerID,
		CreatedAt:   formatDate(t.CreatedAt),
	}
}

func newTodoResponses(list []domain.Todo) []todoResponse {
	result := make([]todoResponse, 0, len(list))
	for _, t := range list {
		result = append(result, newTodoResponse(t))
	}
	return result
}

func validateUsername(name string) error {
	if utf8.RuneCountInString(name) < minUsernameLength {
		return fmt.Errorf("username must be at least %d characters", minUsernameLength)
	}
	return nil
}

func validateEmail(email string) error {
	var err error
	if len(email) > maxEmailLength {
		err = errors.Join(err, fmt.Errorf("email must be at most %d characters", maxEmailLength))
	}
	if !emailRegexp.MatchString(email) {
		err = errors.Join(err, errors.New("email must be a valid address"))
	}
	return err
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	if len(password) > hasher.MaxPasswordLength {
		return fmt.Errorf("password must be at most %d bytes", hasher.MaxPasswordLength)
	}
	return nil
}

func validateRole(code int) error {
	if _, err := users.ParseRole(code); err != nil {
		return fmt.Errorf("unknown role %d", code)
	}
	return nil
}

func validateTitle(title string) error {
	if utf8.RuneCountInString(title) < minTitleLength {
		return fmt.Errorf("title must be at least %d characters", minTitleLength)
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) < minDescriptionLength {
		return fmt.Errorf("description must be at least %d characters", minDescriptionLength)
	}
	return nil
}

func validatePriority(priority int) error {
	if priority < domain.MinPriority || priority > domain.MaxPriority {
		return fmt.Errorf("priority must be between %d and %d", domain.MinPriority, domain.MaxPriority)
	}
	return nil
}
