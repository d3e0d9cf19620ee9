package main

import (
	"context"
	"log/slog"
	"time"

	"go.uber.org/fx"
)

// run starts the storefront, blocks until a signal or an fx shutdown request, and
// stops it within shutdownTimeout. It returns the process exit code.
func run(ctx context.Context, app *fx.App, log *slog.Logger, shutdownTimeout time.Duration) int {
	log = log.With(slog.String("service", "storefront"))

	if err := app.Start(ctx); err != nil {
		log.Error("storefront failed to start", slog.Any("error", err))
		return 1
	}

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case sig := <-app.Done():
		log.Info("shutdown requested", slog.String("signal", sig.String()))
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Error("storefront failed to stop cleanly", slog.Any("error", err))
		return 1
	}
	return 0
}
