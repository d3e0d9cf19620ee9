package gateway

import (
	"log/slog"
	"net/http"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/session"
)

// Module exposes the authenticated request gateway to the fx graph.
var Module = fx.Provide(newGateway)

type gatewayParams struct {
	fx.In

	Client    *http.Client
	Refresher Refresher
	Store     *session.Store
	Config    *config.Config
	Logger    *slog.Logger
	Notifier  ExpiredNotifier `optional:"true"`
}

func newGateway(p gatewayParams) *Gateway {
	opts := []Option{WithRefreshTimeout(p.Config.RequestTimeout)}
	if p.Notifier != nil {
		opts = append(opts, WithExpiredNotifier(p.Notifier))
	}
	return New(p.Client, p.Refresher, p.Store, p.Logger, opts...)
}
