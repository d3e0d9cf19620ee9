package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/di"
	"github.com/polkiloo/storefront/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	var (
		log *slog.Logger
		cfg *config.Config
	)
	app := fx.New(
		fx.Provide(func() context.Context { return ctx }),
		fx.WithLogger(logger.NewFxLogger),
		di.Module(),
		fx.Populate(&log, &cfg),
	)
	if err := app.Err(); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "storefront: build application: %v\n", err)
		os.Exit(1)
	}

	code := run(ctx, app, log, cfg.ShutdownTimeout)
	stop()
	os.Exit(code)
}
