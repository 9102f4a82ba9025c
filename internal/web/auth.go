package web

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	authservice "github.com/goserg/todoserver/auth/service"
	"github.com/goserg/todoserver/internal/config"
)

const refreshTokenCookie = "refresh_token"

func (s *Server) handleLogin(ctx *fiber.Ctx) error {
	var req loginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return badRequest(err)
	}
	if err := req.Validate(); err != nil {
		return badRequest(err)
	}
	pair, err := s.auth.Login(ctx.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	ctx.Cookie(s.refreshCookie(pair))
	return ctx.JSON(newTokenPairResponse(pair))
}

// handleRefresh takes the refresh token from the JSON body, the query string or the cookie, in that order.
func (s *Server) handleRefresh(ctx *fiber.Ctx) error {
	var req refreshRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return badRequest(err)
		}
	}
	refreshToken := req.RefreshToken
	if refreshToken == "" {
		refreshToken = ctx.Query(refreshTokenCookie)
	}
	if refreshToken == "" {
		refreshToken = ctx.Cookies(refreshTokenCookie)
	}
	if refreshToken == "" {
		return authservice.ErrInvalidRefreshToken
	}

	pair, err := s.auth.Refresh(refreshToken)
	if err != nil {
		if errors.Is(err, authservice.ErrInvalidRefreshToken) {
			ctx.ClearCookie(refreshTokenCookie)
		}
		return err
	}
	ctx.Cookie(s.refreshCookie(pair))
	return ctx.JSON(newTokenPairResponse(pair))
}

// handleLogout only drops the cookie. Issued tokens stay valid until they expire.
func (s *Server) handleLogout(ctx *fiber.Ctx) error {
	ctx.ClearCookie(refreshTokenCookie)
	return ctx.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleMe(ctx *fiber.Ctx) error {
	return ctx.JSON(newIdentityResponse(identityFrom(ctx)))
}

func (s *Server) refreshCookie(pair authservice.TokenPair) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     refreshTokenCookie,
		Value:    pair.RefreshToken,
		HTTPOnly: true,
		Secure:   s.cfg.Environment != config.Testing,
		SameSite: fiber.CookieSameSiteStrictMode,
		MaxAge:   int(pair.RefreshTokenExpiration.Sub(s.clock.Now()) / time.Second),
	}
}
