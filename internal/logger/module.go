package logger

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module wires zap and its slog facade for dependency injection.
var Module = fx.Options(
	fx.Provide(New, NewSlog),
	fx.Invoke(registerLifecycle),
)

func registerLifecycle(lc fx.Lifecycle, base *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			// stdout/stderr sinks return EINVAL on sync under some terminals
			_ = base.Sync()
			return nil
		},
	})
}
