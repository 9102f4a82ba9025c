package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/goserg/todoserver/auth/hasher"
	authservice "github.com/goserg/todoserver/auth/service"
	authsqlite "github.com/goserg/todoserver/auth/storage/sqlite"
	"github.com/goserg/todoserver/auth/token"
	"github.com/goserg/todoserver/internal/cache/mem"
	"github.com/goserg/todoserver/internal/clock"
	"github.com/goserg/todoserver/internal/config"
	"github.com/goserg/todoserver/internal/logger"
	"github.com/goserg/todoserver/internal/service"
	"github.com/goserg/todoserver/internal/storage"
	todosqlite "github.com/goserg/todoserver/internal/storage/sqlite"
	"github.com/goserg/todoserver/internal/web"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return oops.Code("CONFIG_INVALID").With("path", configFile).Wrap(err)
	}
	l := logger.New(cfg.Log.Level)

	db, err := storage.Open(cfg.Database.File)
	if err != nil {
		return oops.Code("DB_OPEN_FAILED").With("file", cfg.Database.File).Wrap(err)
	}
	defer db.Close()

	clk := clock.System{}
	codec := token.New(cfg.Auth.Secret, clk)
	userStorage := mem.New(authsqlite.New(l, db))
	auth, err := authservice.New(ctx, l, cfg.Auth, userStorage, hasher.NewBcrypt(cfg.Auth.BcryptCost), codec, clk)
	if err != nil {
		return oops.Code("AUTH_INIT_FAILED").Wrap(err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	authservice.RegisterMetrics(reg)

	server := web.New(l, cfg.Server, web.Deps{
		Auth:     auth,
		Guard:    authservice.NewGuard(l, codec),
		Users:    service.NewUserService(l, auth, userStorage),
		Todos:    service.NewTodoService(l, todosqlite.New(l, db), clk),
		Clock:    clk,
		Gatherer: reg,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		l.Info("shutting down")
		return server.Shutdown()
	}
}
