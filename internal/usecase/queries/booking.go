package queries

import (
	"context"
	"time"

	"rentpay/internal/domain/actor"
	"rentpay/internal/infra"
	"rentpay/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrBookingNotFound = errs.New("booking not found")
	ErrForbidden       = errs.New("caller may not view this booking")
)

// Read models (DTO for read side)
type BookingView struct {
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

type PaymentView struct {
	ID                      uuid.UUID `json:"id"`
	BookingID               uuid.UUID `json:"booking_id"`
	Purpose                 string    `json:"purpose"`
	AmountCents             int64     `json:"amount_cents"`
	Status                  string    `json:"status"`
	GatewayAuthorizationRef string    `json:"gateway_authorization_ref"`
	CreatedAt               time.Time `json:"created_at"`
}

type BookingViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	FindPaymentsByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*PaymentView, error)
}

type BookingQueries interface {
	GetByID(ctx context.Context, caller actor.Actor, id uuid.UUID) (*BookingView, error)
	ListPayments(ctx context.Context, caller actor.Actor, bookingID uuid.UUID) ([]*PaymentView, error)
}

type bookingQueriesImpl struct {
	repo BookingViewRepo
}

func NewBookingQueries(repo BookingViewRepo) BookingQueries {
	return &bookingQueriesImpl{repo: repo}
}

func (q *bookingQueriesImpl) GetByID(ctx context.Context, caller actor.Actor, id uuid.UUID) (*BookingView, error) {
	view, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if !caller.IsAdmin() && view.CustomerID != caller.ID {
		return nil, ErrForbidden
	}
	return view, nil
}

func (q *bookingQueriesImpl) ListPayments(ctx context.Context, caller actor.Actor, bookingID uuid.UUID) ([]*PaymentView, error) {
	if _, err := q.GetByID(ctx, caller, bookingID); err != nil {
		return nil, err
	}
	return q.repo.FindPaymentsByBookingID(ctx, bookingID)
}
