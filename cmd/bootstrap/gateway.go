package bootstrap

import (
	"rentpay/internal/infra/gateway"

	"go.uber.org/fx"
)

var GatewayModule = fx.Module("gateway",
	fx.Provide(
		gateway.NewClient,
	),
)
