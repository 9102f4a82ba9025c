package web

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	authservice "github.com/goserg/todoserver/auth/service"
	"github.com/goserg/todoserver/auth/users"
	"github.com/goserg/todoserver/internal/clock"
	"github.com/goserg/todoserver/internal/config"
	"github.com/goserg/todoserver/internal/service"
	"github.com/goserg/todoserver/internal/web/webpath"
)

type Server struct {
	auth  *authservice.Service
	guard *authservice.Guard
	users *service.UserService
	todos *service.TodoService
	clock clock.Clock
	cfg   config.Server
	log   *logrus.Entry
	app   *fiber.App
}

type Deps struct {
	Auth     *authservice.Service
	Guard    *authservice.Guard
	Users    *service.UserService
	Todos    *service.TodoService
	Clock    clock.Clock
	Gatherer prometheus.Gatherer
}

func New(l *logrus.Logger, cfg config.Server, deps Deps) *Server {
	server := Server{
		auth:  deps.Auth,
		guard: deps.Guard,
		users: deps.Users,
		todos: deps.Todos,
		clock: deps.Clock,
		cfg:   cfg,
		log:   l.WithField("from", "web"),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          server.handleError,
		DisableStartupMessage: true,
	})

	app.Get(webpath.Health, server.handleHealth)
	app.Get(webpath.Metrics, adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))

	app.Post(webpath.AuthLogin, server.handleLogin)
	app.Post(webpath.AuthRefresh, server.handleRefresh)
	app.Post(webpath.AuthLogout, server.handleLogout)
	app.Get(webpath.AuthMe, server.authorize(), server.handleMe)

	admin := server.authorize(users.RoleAdmin)
	app.Post(webpath.Users, admin, server.handleCreateUser)
	app.Get(webpath.Users, admin, server.handleListUsers)
	app.Get(webpath.UserByID, admin, server.handleGetUser)
	app.Put(webpath.UserByID, admin, server.handleUpdateUser)
	app.Delete(webpath.UserByID, admin, server.handleDeleteUser)

	member := server.authorize(users.RoleNormal, users.RoleAdmin)
	app.Post(webpath.Todos, member, server.handleCreateTodo)
	app.Get(webpath.Todos, member, server.handleListTodos)
	app.Get(webpath.TodoByID, member, server.handleGetTodo)
	app.Put(webpath.TodoByID, member, server.handleUpdateTodo)
	app.Delete(webpath.TodoByID, member, server.handleDeleteTodo)

	server.app = app
	return &server
}

func (s *Server) Serve() error {
	addr := s.cfg.Host + ":" + strconv.Itoa(s.cfg.Port)
	s.log.WithField("addr", addr).Info("listening")
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for in-process requests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) handleHealth(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"status": "ok"})
}
