package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/oops"

	"github.com/goserg/todoserver/auth/hasher"
	authservice "github.com/goserg/todoserver/auth/service"
	authstorage "github.com/goserg/todoserver/auth/storage"
	"github.com/goserg/todoserver/auth/users"
	"github.com/goserg/todoserver/internal/storage"
)

const (
	msgNotFound       = "not found"
	msgConflict       = "user already exists"
	msgInvalidRequest = "invalid request"
	msgInternal       = "internal server error"
)

type details struct {
	Msg    string   `json:"msg"`
	Errors []string `json:"errors,omitempty"`
}

type errorResponse struct {
	Details details `json:"details"`
}

// requestError marks client input that failed decoding or validation.
type requestError struct {
	err error
}

func (e requestError) Error() string { return e.err.Error() }

func (e requestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return requestError{err: err}
}

type multierr interface {
	Unwrap() []error
}

func unwrap(err error) []error {
	var merr multierr
	if errors.As(err, &merr) {
		var errs []error
		for _, err := range merr.Unwrap() {
			errs = append(errs, unwrap(err)...)
		}
		return errs
	}
	return []error{err}
}

func messages(err error) []string {
	var result []string
	for _, e := range unwrap(err) {
		result = append(result, e.Error())
	}
	return result
}

func (s *Server) handleError(ctx *fiber.Ctx, err error) error {
	status, body := s.classify(err)
	if status >= fiber.StatusInternalServerError {
		entry := s.log.WithError(err).WithField("path", ctx.Path()).WithField("method", ctx.Method())
		if oopsErr, ok := oops.AsOops(err); ok {
			entry = entry.WithField("code", oopsErr.Code()).WithFields(oopsErr.Context())
		}
		entry.Error("request failed")
	}
	return ctx.Status(status).JSON(body)
}

func (s *Server) classify(err error) (int, errorResponse) {
	var reqErr requestError
	var fiberErr *fiber.Error
	switch {
	case errors.Is(err, authservice.ErrInvalidCredentials),
		errors.Is(err, authservice.ErrInvalidRefreshToken),
		errors.Is(err, authservice.ErrUnauthenticated):
		return fiber.StatusUnauthorized, newErrorResponse(err.Error())
	case errors.Is(err, authservice.ErrForbidden):
		return fiber.StatusForbidden, newErrorResponse(err.Error())
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, authstorage.ErrNotFound):
		return fiber.StatusNotFound, newErrorResponse(msgNotFound)
	case errors.Is(err, authstorage.ErrConflict):
		return fiber.StatusConflict, newErrorResponse(msgConflict)
	case errors.As(err, &reqErr):
		resp := newErrorResponse(msgInvalidRequest)
		resp.Details.Errors = messages(reqErr.err)
		return fiber.StatusBadRequest, resp
	case errors.Is(err, users.ErrMalformedIdentity), errors.Is(err, hasher.ErrEmptyPassword),
		errors.Is(err, hasher.ErrPasswordTooLong):
		return fiber.StatusBadRequest, newErrorResponse(msgInvalidRequest)
	case errors.As(err, &fiberErr):
		return fiberErr.Code, newErrorResponse(fiberErr.Message)
	}
	return fiber.StatusInternalServerError, newErrorResponse(msgInternal)
}

func newErrorResponse(msg string) errorResponse {
	return errorResponse{Details: details{Msg: msg}}
}
