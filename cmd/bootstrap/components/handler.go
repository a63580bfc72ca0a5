package components

import (
	"rentpay/internal/handler"
	"rentpay/internal/handler/api"
	"rentpay/internal/handler/middleware"
	"rentpay/internal/pkg/config"
	"rentpay/internal/pkg/jwt"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewPaymentHandler,
		api.NewManualPaymentHandler,
		api.NewBookingHandler,
		NewAuthMiddleware,
		middleware.NewRateLimiter,
	),
	fx.Invoke(handler.NewRouter),
)

func NewAuthMiddleware(jwtService *jwt.Service, cfg config.Config) *middleware.AuthMiddleware {
	return middleware.NewAuthMiddleware(jwtService, cfg.Worker.InternalServiceKey)
}
