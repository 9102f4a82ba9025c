package web

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) handleCreateTodo(ctx *fiber.Ctx) error {
	var req createTodoRequest
	if err := ctx.BodyParser(&req); err != nil {
		return badRequest(err)
	}
	if err := req.Validate(); err != nil {
		return badRequest(err)
	}
	todo, err := s.todos.Create(ctx.UserContext(), identityFrom(ctx), req.toNewTodo())
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(newTodoResponse(todo))
}

func (s *Server) handleListTodos(ctx *fiber.Ctx) error {
	completed, err := completedQuery(ctx)
	if err != nil {
		return badRequest(err)
	}
	list, err := s.todos.List(ctx.UserContext(), identityFrom(ctx), completed)
	if err != nil {
		return err
	}
	return ctx.JSON(newTodoResponses(list))
}

func (s *Server) handleGetTodo(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	todo, err := s.todos.Get(ctx.UserContext(), identityFrom(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(newTodoResponse(todo))
}

func (s *Server) handleUpdateTodo(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	var req updateTodoRequest
	if err := ctx.BodyParser(&req); err != nil {
		return badRequest(err)
	}
	if err := req.Validate(); err != nil {
		return badRequest(err)
	}
	todo, err := s.todos.Update(ctx.UserContext(), identityFrom(ctx), id, req.toPatch())
	if err != nil {
		return err
	}
	return ctx.JSON(newTodoResponse(todo))
}

func (s *Server) handleDeleteTodo(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	if err := s.todos.Delete(ctx.UserContext(), identityFrom(ctx), id); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

// completedQuery reads the optional completed filter. An absent parameter means no filter.
func completedQuery(ctx *fiber.Ctx) (*bool, error) {
	raw := ctx.Query("completed")
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("completed must be true or false, got %q", raw)
	}
	return &v, nil
}
