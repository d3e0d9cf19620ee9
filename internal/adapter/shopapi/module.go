package shopapi

import (
	"log/slog"
	"net/http"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/gateway"
)

// Module exposes shop API clients to the fx graph.
var Module = fx.Options(
	fx.Provide(
		newHTTPClient,
		newAuthClient,
		newClient,
		newAddressClient,
		func(c *AuthClient) gateway.Refresher { return c },
	),
)

type clientParams struct {
	fx.In

	Config     *config.Config
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func newHTTPClient(cfg *config.Config) *http.Client {
	return NewHTTPClient(cfg.RequestTimeout)
}

func newAuthClient(p clientParams) (*AuthClient, error) {
	return NewAuthClient(p.Config.ShopAPIAddress, p.HTTPClient, p.Logger)
}

func newAddressClient(p clientParams) (*AddressClient, error) {
	return NewAddressClient(p.Config.ShopAPIAddress, p.HTTPClient, p.Logger)
}

func newClient(cfg *config.Config, gw *gateway.Gateway, logger *slog.Logger) (*Client, error) {
	return NewClient(cfg.ShopAPIAddress, gw, logger)
}
