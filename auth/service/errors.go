package service

import "errors"

// Messages are fixed and shown to clients as is.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials. Please check your username and password")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrUnauthenticated     = errors.New("invalid or expired token")
	ErrForbidden           = errors.New("insufficient permissions")
)
