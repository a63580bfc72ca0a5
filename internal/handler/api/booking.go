package api

import (
	"net/http"

	reqdto "rentpay/internal/handler/dto/request"
	resdto "rentpay/internal/handler/dto/response"
	"rentpay/internal/handler/middleware"
	"rentpay/internal/pkg/errs"
	"rentpay/internal/usecase/commands"
	"rentpay/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	bookings       commands.BookingCommands
	bookingQueries queries.BookingQueries
}

func NewBookingHandler(
	bookings commands.BookingCommands,
	bookingQueries queries.BookingQueries,
) *BookingHandler {
	return &BookingHandler{
		bookings:       bookings,
		bookingQueries: bookingQueries,
	}
}

// @Summary Register booking
// @Description Register a confirmed booking and schedule its security-hold job
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.RegisterBookingRequest true "Booking"
// @Success 201 {object} resdto.RegisterBookingResponse
// @Failure 400 {object} map[string]string
// @Router /bookings [post]
func (h *BookingHandler) RegisterBooking(c *gin.Context) {
	var req reqdto.RegisterBookingRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.bookings.Register(c.Request.Context(), req.ToInput())
	if err != nil {
		switch {
		case errs.Is(err, commands.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid booking parameters",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromRegisterBookingResult(result))
}

// @Summary Get booking
// @Description Get a booking with its current balance and billing status
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	caller, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid booking ID format",
		})
		return
	}

	view, err := h.bookingQueries.GetByID(c.Request.Context(), caller, id)
	if err != nil {
		h.respondQueryError(c, err)
		return
	}

	response, err := resdto.FromBookingView(view)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary List booking payments
// @Description List the gateway payment records attached to a booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {array} queries.PaymentView
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /bookings/{id}/payments [get]
func (h *BookingHandler) ListBookingPayments(c *gin.Context) {
	caller, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid booking ID format",
		})
		return
	}

	payments, err := h.bookingQueries.ListPayments(c.Request.Context(), caller, id)
	if err != nil {
		h.respondQueryError(c, err)
		return
	}

	c.JSON(http.StatusOK, payments)
}

func (h *BookingHandler) respondQueryError(c *gin.Context, err error) {
	switch {
	case errs.Is(err, queries.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Booking not found",
		})
	case errs.Is(err, queries.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Booking belongs to another customer",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
