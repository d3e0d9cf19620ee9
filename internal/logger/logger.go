package logger

import (
	"fmt"
	"log/slog"

	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"

	"github.com/polkiloo/storefront/internal/config"
)

// New builds the zap production logger at the configured level.
func New(cfg *config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = level
	return zapCfg.Build()
}

// NewSlog exposes the zap core through the slog API used across the application.
func NewSlog(base *zap.Logger) *slog.Logger {
	return slog.New(zapslog.NewHandler(base.Core()))
}

// NewFxLogger routes fx lifecycle events to zap.
func NewFxLogger(base *zap.Logger) fxevent.Logger {
	return &fxevent.ZapLogger{Logger: base.Named("fx")}
}
