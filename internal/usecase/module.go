package usecase

import (
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/adapter/shopapi"
)

// Module provides core business use cases to the fx container.
var Module = fx.Options(
	fx.Provide(
		NewAuthUseCase,
		NewOrderUseCase,
		NewAddressUseCase,
		func(c *shopapi.AuthClient) AuthAPI { return c },
		func(c *shopapi.Client) OrderAPI { return c },
		func(c *shopapi.AddressClient) AddressAPI { return c },
	),
)
