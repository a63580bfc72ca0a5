package bootstrap

import (
	"rentpay/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		func(cfg config.Config) config.GatewayConfig { return cfg.Gateway },
		func(cfg config.Config) config.HoldConfig { return cfg.Hold },
		func(cfg config.Config) config.RateLimitConfig { return cfg.RateLimit },
	),
)
