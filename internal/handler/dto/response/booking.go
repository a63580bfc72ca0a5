package response

import (
	"time"

	"rentpay/internal/usecase/commands"
	"rentpay/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type RegisterBookingResponse struct {
	BookingID     uuid.UUID `json:"booking_id"`
	Status        string    `json:"status"`
	BillingStatus string    `json:"billing_status"`
	BalanceCents  int64     `json:"balance_cents"`
	HoldRunAtUTC  time.Time `json:"hold_run_at_utc"`
}

func FromRegisterBookingResult(result *commands.RegisterBookingResult) *RegisterBookingResponse {
	return &RegisterBookingResponse{
		BookingID:     result.BookingID,
		Status:        result.Status.String(),
		BillingStatus: result.BillingStatus.String(),
		BalanceCents:  result.BalanceCents,
		HoldRunAtUTC:  result.HoldRunAtUTC,
	}
}

type BookingResponse struct {
	ID                   uuid.UUID `json:"id"`
	CustomerID           uuid.UUID `json:"customer_id"`
	StartAt              time.Time `json:"start_at"`
	EndAt                time.Time `json:"end_at"`
	TotalAmountCents     int64     `json:"total_amount_cents"`
	DepositAmountCents   int64     `json:"deposit_amount_cents"`
	BalanceAmountCents   int64     `json:"balance_amount_cents"`
	HoldAmountCents      int64     `json:"hold_amount_cents"`
	PaymentMethodRef     *string   `json:"payment_method_ref,omitempty"`
	HoldAuthorizationRef *string   `json:"hold_authorization_ref,omitempty"`
	Status               string    `json:"status"`
	BillingStatus        string    `json:"billing_status"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func FromBookingView(view *queries.BookingView) (*BookingResponse, error) {
	var resp BookingResponse
	if err := copier.Copy(&resp, view); err != nil {
		return nil, err
	}
	return &resp, nil
}
