package auth

import (
	"github.com/polkiloo/storefront/internal/config"
	"go.uber.org/fx"
)

// Module provides session cookie signing via fx.
var Module = fx.Options(
	fx.Provide(newTokenStrategy),
)

type strategyParams struct {
	fx.In

	Config *config.Config
}

func newTokenStrategy(p strategyParams) (Strategy, error) {
	key, err := DeriveKey(p.Config.SessionSecret, cookieKeyInfo)
	if err != nil {
		return nil, err
	}
	return NewHMACStrategy(key, Options{TTL: p.Config.SessionTTL}), nil
}
