//go:build e2e

package payment

import (
	"net/http"
	"testing"
	"time"

	"rentpay/internal/domain/actor"
	"rentpay/internal/handler/dto/request"
	"rentpay/internal/handler/dto/response"
	"rentpay/internal/infra/gateway"
	"rentpay/tests/common/authtest"
	"rentpay/tests/common/dbtest"
	"rentpay/tests/common/httptest"
	"rentpay/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type PaymentSuite struct {
	e2e.SharedSuite
	jwtHelper *authtest.JWTHelper
}

func TestPaymentSuite(t *testing.T) {
	suite.Run(t, new(PaymentSuite))
}

func (s *PaymentSuite) SetupSuite() {
	s.SetupSharedSuite(s.T())
	s.jwtHelper = authtest.NewJWTHelper(s.Config.JWT)
}

func bookingStart() time.Time {
	return time.Now().UTC().Add(96 * time.Hour).Truncate(time.Second)
}

func (s *PaymentSuite) registerBooking(customerID uuid.UUID, totalCents, depositCents int64) response.RegisterBookingResponse {
	t := s.T()
	start := bookingStart()
	w := httptest.PerformInternalRequest(t, s.Router, http.MethodPost, "/api/bookings",
		request.RegisterBookingRequest{
			CustomerID:         customerID,
			StartAt:            start,
			EndAt:              start.Add(72 * time.Hour),
			TotalAmountCents:   totalCents,
			DepositAmountCents: depositCents,
		}, s.Config.Worker.InternalServiceKey)

	var created response.RegisterBookingResponse
	httptest.AssertSuccessResponse(t, w, http.StatusCreated, &created)
	return created
}

func (s *PaymentSuite) TestIntentLifecycle() {
	s.Run("authorize, reuse, confirm and settle", func() {
		t := s.T()
		customerID := uuid.New()
		token := s.jwtHelper.GenerateToken(t, customerID, actor.RoleCustomer)
		booking := s.registerBooking(customerID, 80000, 30000)

		intentReq := request.CreateIntentRequest{
			BookingID:   booking.BookingID,
			AmountCents: 30000,
			Currency:    "cad",
			Purpose:     "deposit",
		}

		var first response.IntentResponse
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/payments/intent", intentReq, token)
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &first)
		s.False(first.Reused)
		s.NotEmpty(first.AuthorizationRef)

		// A retry of the same charge comes back with the open authorization.
		var second response.IntentResponse
		w = httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/payments/intent", intentReq, token)
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &second)
		s.True(second.Reused)
		s.Equal(first.AuthorizationRef, second.AuthorizationRef)

		// The deposit is held next to the booking, not counted against the
		// rental amount owed.
		var afterDeposit response.ReconciliationResponse
		w = httptest.PerformInternalRequest(t, s.Router, http.MethodPost, "/api/payments/confirm",
			request.ConfirmPaymentRequest{AuthorizationRef: first.AuthorizationRef},
			s.Config.Worker.InternalServiceKey)
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &afterDeposit)
		s.EqualValues(80000, afterDeposit.BalanceCents)
		s.Equal("unbilled", afterDeposit.BillingStatus)

		var balanceIntent response.IntentResponse
		w = httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/payments/intent",
			request.CreateIntentRequest{
				BookingID:   booking.BookingID,
				AmountCents: 80000,
				Currency:    "cad",
				Purpose:     "payment",
			}, token)
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &balanceIntent)

		var settled response.ReconciliationResponse
		w = httptest.PerformInternalRequest(t, s.Router, http.MethodPost, "/api/payments/confirm",
			request.ConfirmPaymentRequest{AuthorizationRef: balanceIntent.AuthorizationRef},
			s.Config.Worker.InternalServiceKey)
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &settled)
		s.EqualValues(0, settled.BalanceCents)
		s.Equal("paid", settled.BillingStatus)
		s.Equal("paid", settled.Status)

		var view response.BookingResponse
		w = httptest.PerformRequest(t, s.Router, http.MethodGet, "/api/bookings/"+booking.BookingID.String(), nil, token)
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &view)
		s.EqualValues(0, view.BalanceAmountCents)
		s.Equal("paid", view.BillingStatus)
	})

	s.Run("stranger cannot open an intent on the booking", func() {
		t := s.T()
		booking := s.registerBooking(uuid.New(), 80000, 30000)
		strangerToken := s.jwtHelper.GenerateToken(t, uuid.New(), actor.RoleCustomer)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/payments/intent",
			request.CreateIntentRequest{
				BookingID:   booking.BookingID,
				AmountCents: 30000,
				Currency:    "cad",
				Purpose:     "deposit",
			}, strangerToken)
		httptest.AssertErrorResponse(t, w, http.StatusForbidden, "another customer")
	})

	s.Run("gateway outage surfaces as an internal error", func() {
		t := s.T()
		customerID := uuid.New()
		token := s.jwtHelper.GenerateToken(t, customerID, actor.RoleCustomer)
		booking := s.registerBooking(customerID, 80000, 30000)

		s.Gateway.NextCreateErr = &gateway.GatewayError{Code: "api_error", StatusCode: 503}

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/payments/intent",
			request.CreateIntentRequest{
				BookingID:   booking.BookingID,
				AmountCents: 30000,
				Currency:    "cad",
				Purpose:     "payment",
			}, token)
		httptest.AssertErrorResponse(t, w, http.StatusInternalServerError, "gateway")
	})
}

func (s *PaymentSuite) TestSecurityHold() {
	s.Run("places the hold once and settles repeats", func() {
		t := s.T()
		bookingID := dbtest.InsertBooking(t, s.DB, uuid.New(), 80000, 30000, 50000)
		dbtest.AttachPaymentMethod(t, s.DB, bookingID, "pm_e2e")

		holdReq := request.SecurityHoldRequest{BookingID: bookingID}

		var placed response.SecurityHoldResponse
		w := httptest.PerformInternalRequest(t, s.Router, http.MethodPost, "/api/payments/security-hold",
			holdReq, s.Config.Worker.InternalServiceKey)
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &placed)
		s.Equal("placed", placed.Status)
		s.EqualValues(50000, placed.AmountCents)

		var repeated response.SecurityHoldResponse
		w = httptest.PerformInternalRequest(t, s.Router, http.MethodPost, "/api/payments/security-hold",
			holdReq, s.Config.Worker.InternalServiceKey)
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &repeated)
		s.Equal("already_held", repeated.Status)
		s.Equal(placed.AuthorizationRef, repeated.AuthorizationRef)
	})

	s.Run("rejects bookings without a payment method", func() {
		t := s.T()
		bookingID := dbtest.InsertBooking(t, s.DB, uuid.New(), 80000, 30000, 50000)

		w := httptest.PerformInternalRequest(t, s.Router, http.MethodPost, "/api/payments/security-hold",
			request.SecurityHoldRequest{BookingID: bookingID}, s.Config.Worker.InternalServiceKey)
		httptest.AssertErrorResponse(t, w, http.StatusBadRequest, "payment method")
	})

	s.Run("rejects a bad internal service key", func() {
		t := s.T()
		bookingID := dbtest.InsertBooking(t, s.DB, uuid.New(), 80000, 30000, 50000)

		w := httptest.PerformInternalRequest(t, s.Router, http.MethodPost, "/api/payments/security-hold",
			request.SecurityHoldRequest{BookingID: bookingID}, "wrong-key")
		httptest.AssertErrorResponse(t, w, http.StatusUnauthorized, "")
	})
}

func (s *PaymentSuite) TestVerifyHold() {
	s.Run("verifies and attaches a payment method", func() {
		t := s.T()
		customerID := uuid.New()
		token := s.jwtHelper.GenerateToken(t, customerID, actor.RoleCustomer)
		bookingID := dbtest.InsertBooking(t, s.DB, customerID, 80000, 30000, 50000)

		var verified response.VerifyHoldResponse
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/payments/verify-hold",
			request.VerifyHoldRequest{BookingID: bookingID, PaymentMethodRef: "pm_fresh"}, token)
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &verified)
		s.True(verified.Verified)
		s.EqualValues(s.Config.Hold.VerifyAmountCents, verified.AmountCents)

		var view response.BookingResponse
		w = httptest.PerformRequest(t, s.Router, http.MethodGet, "/api/bookings/"+bookingID.String(), nil, token)
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &view)
		s.NotNil(view.PaymentMethodRef)
		s.Equal("pm_fresh", *view.PaymentMethodRef)
	})
}

func (s *PaymentSuite) TestManualPayments() {
	s.Run("records a completed manual payment and lists it", func() {
		t := s.T()
		adminToken := s.jwtHelper.GenerateToken(t, uuid.New(), actor.RoleAdmin)
		bookingID := dbtest.InsertBooking(t, s.DB, uuid.New(), 30000, 0, 50000)

		note := "paid cash at the counter"
		var recorded response.ManualPaymentResponse
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/payments/manual",
			request.ManualPaymentRequest{
				BookingID:   bookingID,
				AmountCents: 30000,
				Method:      "cash",
				Status:      "completed",
				Note:        &note,
			}, adminToken)
		httptest.AssertSuccessResponse(t, w, http.StatusCreated, &recorded)
		s.Require().NotNil(recorded.Reconciliation)
		s.EqualValues(0, recorded.Reconciliation.BalanceCents)
		s.Equal("paid", recorded.Reconciliation.BillingStatus)

		var list response.ManualPaymentListResponse
		w = httptest.PerformRequest(t, s.Router, http.MethodGet,
			"/api/payments/manual?booking_id="+bookingID.String(), nil, adminToken)
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &list)
		s.Require().Len(list.Items, 1)
		s.EqualValues(30000, list.Items[0].AmountCents)
		s.Equal("cash", list.Items[0].Method)
	})

	s.Run("customers may not record manual payments", func() {
		t := s.T()
		customerToken := s.jwtHelper.GenerateToken(t, uuid.New(), actor.RoleCustomer)
		bookingID := dbtest.InsertBooking(t, s.DB, uuid.New(), 30000, 0, 50000)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/payments/manual",
			request.ManualPaymentRequest{
				BookingID:   bookingID,
				AmountCents: 30000,
				Method:      "cash",
				Status:      "completed",
			}, customerToken)
		httptest.AssertErrorResponse(t, w, http.StatusForbidden, "")
	})
}

func (s *PaymentSuite) TestCheckoutSession() {
	s.Run("opens a session priced off the current balance", func() {
		t := s.T()
		customerID := uuid.New()
		token := s.jwtHelper.GenerateToken(t, customerID, actor.RoleCustomer)
		bookingID := dbtest.InsertBooking(t, s.DB, customerID, 80000, 30000, 50000)

		var session response.CheckoutSessionResponse
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/payments/checkout-session",
			request.CreateCheckoutSessionRequest{BookingID: bookingID, PaymentType: "balance"}, token)
		httptest.AssertSuccessResponse(t, w, http.StatusCreated, &session)
		s.EqualValues(80000, session.AmountCents)
		s.NotEmpty(session.SessionURL)
	})
}

func (s *PaymentSuite) TestAuthentication() {
	s.Run("rejects missing and expired tokens", func() {
		t := s.T()
		bookingID := dbtest.InsertBooking(t, s.DB, uuid.New(), 80000, 30000, 50000)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, "/api/bookings/"+bookingID.String(), nil, "")
		httptest.AssertErrorResponse(t, w, http.StatusUnauthorized, "")

		expired := s.jwtHelper.CreateExpiredToken(t, uuid.New(), actor.RoleCustomer)
		w = httptest.PerformRequest(t, s.Router, http.MethodGet, "/api/bookings/"+bookingID.String(), nil, expired)
		httptest.AssertErrorResponse(t, w, http.StatusUnauthorized, "")
	})
}
