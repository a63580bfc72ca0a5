package api

import (
	"errors"
	"net/http"
	"strconv"

	reqdto "rentpay/internal/handler/dto/request"
	resdto "rentpay/internal/handler/dto/response"
	"rentpay/internal/handler/middleware"
	"rentpay/internal/pkg/errs"
	"rentpay/internal/usecase/commands"
	"rentpay/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ManualPaymentHandler struct {
	manual        commands.ManualPaymentCommands
	manualQueries queries.ManualPaymentQueries
}

func NewManualPaymentHandler(
	manual commands.ManualPaymentCommands,
	manualQueries queries.ManualPaymentQueries,
) *ManualPaymentHandler {
	return &ManualPaymentHandler{
		manual:        manual,
		manualQueries: manualQueries,
	}
}

// @Summary Record manual payment
// @Description Record an out-of-band payment (cash, cheque, e-transfer); completed payments reconcile the booking balance immediately
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.ManualPaymentRequest true "Manual payment"
// @Success 201 {object} resdto.ManualPaymentResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /payments/manual [post]
func (h *ManualPaymentHandler) RecordManualPayment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.ManualPaymentRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	input, valid := req.ToInput()
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unknown payment method or status",
		})
		return
	}

	result, err := h.manual.Record(c.Request.Context(), userID, input)
	if err != nil {
		switch {
		case errs.Is(err, commands.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Booking not found",
			})
		case errs.Is(err, commands.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid manual payment parameters",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromManualPaymentResult(result))
}

// @Summary List manual payments
// @Description List recorded manual payments, optionally filtered by booking and status
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param booking_id query string false "Filter by booking ID"
// @Param status query string false "Filter by payment status"
// @Param page query int false "Page number (1-based)"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} resdto.ManualPaymentListResponse
// @Failure 400 {object} map[string]string
// @Router /payments/manual [get]
func (h *ManualPaymentHandler) ListManualPayments(c *gin.Context) {
	filter, err := h.parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	page, err := h.manualQueries.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	response, err := resdto.FromManualPaymentPage(page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *ManualPaymentHandler) parseFilter(c *gin.Context) (queries.ManualPaymentFilter, error) {
	var filter queries.ManualPaymentFilter

	if raw := c.Query("booking_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, errors.New("invalid booking_id format")
		}
		filter.BookingID = &id
	}
	if raw := c.Query("status"); raw != "" {
		filter.Status = &raw
	}
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return filter, errors.New("invalid page")
		}
		filter.Page = page
	}
	if raw := c.Query("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return filter, errors.New("invalid page_size")
		}
		filter.PageSize = size
	}
	return filter, nil
}
