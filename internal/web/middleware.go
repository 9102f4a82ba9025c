package web

import (
	"github.com/gofiber/fiber/v2"

	"github.com/goserg/todoserver/auth/users"
)

const identityKey = "identity"

// authorize admits the request when the bearer token holds any of roles.
func (s *Server) authorize(roles ...users.Role) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		identity, err := s.guard.Authorize(ctx.Get(fiber.HeaderAuthorization), roles...)
		if err != nil {
			return err
		}
		ctx.Context().SetUserValue(identityKey, identity)
		return ctx.Next()
	}
}

func identityFrom(ctx *fiber.Ctx) users.Identity {
	identity, _ := ctx.Context().UserValue(identityKey).(users.Identity)
	return identity
}
