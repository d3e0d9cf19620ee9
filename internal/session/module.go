package session

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// Module provides the session store.
var Module = fx.Provide(newStore)

type storeParams struct {
	fx.In

	Sessions repository.SessionRepository
	Views    repository.OrderViewRepository
	Config   *config.Config
	Logger   *slog.Logger
}

func newStore(p storeParams) *Store {
	return NewStore(p.Sessions, p.Views, p.Logger, WithLifetime(p.Config.SessionTTL, p.Config.SessionIdleTTL))
}
