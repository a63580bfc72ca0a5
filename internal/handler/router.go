package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"rentpay/internal/domain/actor"
	"rentpay/internal/handler/api"
	"rentpay/internal/handler/middleware"
	"rentpay/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	paymentHandler *api.PaymentHandler,
	manualPaymentHandler *api.ManualPaymentHandler,
	bookingHandler *api.BookingHandler,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, paymentHandler, manualPaymentHandler, bookingHandler, authMiddleware, rateLimiter)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	paymentHandler *api.PaymentHandler,
	manualPaymentHandler *api.ManualPaymentHandler,
	bookingHandler *api.BookingHandler,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		payments := apiGroup.Group("/payments")
		{
			customer := payments.Group("")
			customer.Use(authMiddleware.RequireAuth())
			addRoutes(customer, []route{
				{Method: http.MethodPost, Path: "/intent", Handler: paymentHandler.CreateIntent, Mw: []gin.HandlerFunc{rateLimiter.Strict()}},
				{Method: http.MethodPost, Path: "/checkout-session", Handler: paymentHandler.CreateCheckoutSession, Mw: []gin.HandlerFunc{rateLimiter.Strict()}},
				{Method: http.MethodPost, Path: "/verify-hold", Handler: paymentHandler.VerifyHold, Mw: []gin.HandlerFunc{rateLimiter.Strict()}},
			})

			admin := payments.Group("")
			admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRoleAtLeast(actor.RoleAdmin))
			addRoutes(admin, []route{
				{Method: http.MethodPost, Path: "/manual", Handler: manualPaymentHandler.RecordManualPayment, Mw: []gin.HandlerFunc{rateLimiter.Moderate()}},
				{Method: http.MethodGet, Path: "/manual", Handler: manualPaymentHandler.ListManualPayments},
			})

			internal := payments.Group("")
			internal.Use(authMiddleware.RequireInternalOrAdmin())
			addRoutes(internal, []route{
				{Method: http.MethodPost, Path: "/security-hold", Handler: paymentHandler.PlaceSecurityHold, Mw: []gin.HandlerFunc{rateLimiter.Strict()}},
				{Method: http.MethodPost, Path: "/confirm", Handler: paymentHandler.ConfirmPayment, Mw: []gin.HandlerFunc{rateLimiter.Moderate()}},
			})
		}

		bookings := apiGroup.Group("/bookings")
		{
			internal := bookings.Group("")
			internal.Use(authMiddleware.RequireInternalOrAdmin())
			addRoutes(internal, []route{
				{Method: http.MethodPost, Path: "", Handler: bookingHandler.RegisterBooking, Mw: []gin.HandlerFunc{rateLimiter.Moderate()}},
			})

			customer := bookings.Group("")
			customer.Use(authMiddleware.RequireAuth())
			addRoutes(customer, []route{
				{Method: http.MethodGet, Path: "/:id", Handler: bookingHandler.GetBooking},
				{Method: http.MethodGet, Path: "/:id/payments", Handler: bookingHandler.ListBookingPayments},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
