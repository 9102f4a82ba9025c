package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var errInvalidID = errors.New("id must be a valid uuid")

func paramID(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, badRequest(errInvalidID)
	}
	return id, nil
}

func (s *Server) handleCreateUser(ctx *fiber.Ctx) error {
	var req createUserRequest
	if err := ctx.BodyParser(&req); err != nil {
		return badRequest(err)
	}
	if err := req.Validate(); err != nil {
		return badRequest(err)
	}
	user, err := s.users.Create(ctx.UserContext(), req.toNewUser())
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(newUserResponse(user))
}

func (s *Server) handleListUsers(ctx *fiber.Ctx) error {
	list, err := s.users.List(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(newUserResponses(list))
}

func (s *Server) handleGetUser(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	user, err := s.users.Get(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(newUserResponse(user))
}

func (s *Server) handleUpdateUser(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	var req updateUserRequest
	if err := ctx.BodyParser(&req); err != nil {
		return badRequest(err)
	}
	if err := req.Validate(); err != nil {
		return badRequest(err)
	}
	user, err := s.users.Update(ctx.UserContext(), id, req.toPatch())
	if err != nil {
		return err
	}
	return ctx.JSON(newUserResponse(user))
}

func (s *Server) handleDeleteUser(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx.UserContext(), id); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
