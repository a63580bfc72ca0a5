package api

import (
	"errors"
	"net/http"

	reqdto "rentpay/internal/handler/dto/request"
	resdto "rentpay/internal/handler/dto/response"
	"rentpay/internal/handler/middleware"
	"rentpay/internal/pkg/errs"
	"rentpay/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	payments commands.PaymentCommands
	holds    commands.HoldCommands
	checkout commands.CheckoutCommands
}

func NewPaymentHandler(
	payments commands.PaymentCommands,
	holds commands.HoldCommands,
	checkout commands.CheckoutCommands,
) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		holds:    holds,
		checkout: checkout,
	}
}

// @Summary Create payment intent
// @Description Authorize an on-demand charge, reusing an open authorization for the same booking, amount and purpose
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateIntentRequest true "Intent request"
// @Success 200 {object} resdto.IntentResponse
// @Failure 400 {object} map[string]string
// @Failure 402 {object} resdto.RequiresActionResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /payments/intent [post]
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	caller, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.CreateIntentRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	purpose, valid := req.DomainPurpose()
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unknown payment purpose",
		})
		return
	}

	result, err := h.payments.ReserveOrReuse(c.Request.Context(), caller, req.BookingID, req.AmountCents, purpose)
	if err != nil {
		h.respondPaymentError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromReserveOrReuse(result))
}

// @Summary Create checkout session
// @Description Open a hosted checkout session priced off the freshly reconciled balance
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateCheckoutSessionRequest true "Checkout request"
// @Success 201 {object} resdto.CheckoutSessionResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /payments/checkout-session [post]
func (h *PaymentHandler) CreateCheckoutSession(c *gin.Context) {
	caller, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.CreateCheckoutSessionRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	paymentType, valid := req.DomainPaymentType()
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unknown payment type",
		})
		return
	}

	result, err := h.checkout.CreateSession(c.Request.Context(), caller, req.BookingID, paymentType)
	if err != nil {
		switch {
		case errs.Is(err, commands.ErrBalanceAlreadyZero):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Booking balance is already zero",
			})
		default:
			h.respondPaymentError(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, &resdto.CheckoutSessionResponse{
		SessionURL:  result.SessionURL,
		SessionID:   result.SessionID,
		AmountCents: result.AmountCents,
	})
}

// @Summary Place security hold
// @Description Authorize the security hold for a booking; repeat calls short-circuit without a gateway round trip
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.SecurityHoldRequest true "Security hold request"
// @Success 200 {object} resdto.SecurityHoldResponse
// @Failure 400 {object} map[string]string
// @Failure 402 {object} resdto.RequiresActionResponse
// @Failure 404 {object} map[string]string
// @Router /payments/security-hold [post]
func (h *PaymentHandler) PlaceSecurityHold(c *gin.Context) {
	var req reqdto.SecurityHoldRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.holds.PlaceSecurityHold(c.Request.Context(), req.BookingID)
	if err != nil {
		switch {
		case errs.Is(err, commands.ErrNoPaymentMethod):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Booking has no payment method on file",
			})
		default:
			h.respondPaymentError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromHoldResult(result))
}

// @Summary Verify payment method
// @Description Authorize and immediately void a small hold to verify a new payment method, then attach it to the booking
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.VerifyHoldRequest true "Verify hold request"
// @Success 200 {object} resdto.VerifyHoldResponse
// @Failure 400 {object} map[string]string
// @Failure 402 {object} resdto.RequiresActionResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /payments/verify-hold [post]
func (h *PaymentHandler) VerifyHold(c *gin.Context) {
	caller, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.VerifyHoldRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.holds.VerifyCard(c.Request.Context(), caller, req.BookingID, req.PaymentMethodRef)
	if err != nil {
		h.respondPaymentError(c, err)
		return
	}

	c.JSON(http.StatusOK, &resdto.VerifyHoldResponse{
		AuthorizationRef: result.AuthorizationRef,
		AmountCents:      result.AmountCents,
		Verified:         true,
	})
}

// @Summary Confirm payment
// @Description Mark the payment behind a gateway authorization as completed and reconcile the booking balance
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.ConfirmPaymentRequest true "Confirm request"
// @Success 200 {object} resdto.ReconciliationResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /payments/confirm [post]
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	var req reqdto.ConfirmPaymentRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.payments.ConfirmAuthorization(c.Request.Context(), req.AuthorizationRef)
	if err != nil {
		switch {
		case errs.Is(err, commands.ErrPaymentNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Payment not found",
			})
		default:
			h.respondPaymentError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromReconcileResult(result))
}

func (h *PaymentHandler) respondPaymentError(c *gin.Context, err error) {
	var requiresAction *commands.AuthenticationRequiredError
	switch {
	case errors.As(err, &requiresAction):
		c.JSON(http.StatusPaymentRequired, &resdto.RequiresActionResponse{
			RequiresAction: true,
			ClientSecret:   requiresAction.ClientSecret,
		})
	case errs.Is(err, commands.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Booking not found",
		})
	case errs.Is(err, commands.ErrNotBookingOwner):
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Booking belongs to another customer",
		})
	case errs.Is(err, commands.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid payment parameters",
		})
	case errs.Is(err, commands.ErrGatewayFailure):
		// Opaque upstream failure; the detail stays in the logs.
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Payment gateway unavailable",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
