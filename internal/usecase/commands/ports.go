package commands

import (
	"context"
	"time"

	"rentpay/internal/domain/booking"
	"rentpay/internal/domain/payment"
	"rentpay/internal/domain/schedule"
	"rentpay/internal/pkg/errs"

	"github.com/google/uuid"
)

// Sentinels shared across command implementations. Handlers translate these
// into HTTP statuses with errs.Is, which also sees sentinels attached as
// marks.
var (
	ErrBookingNotFound         = errs.New("booking not found")
	ErrPaymentNotFound         = errs.New("payment record not found")
	ErrNotBookingOwner         = errs.New("caller does not own the booking")
	ErrValidation              = errs.New("validation failed")
	ErrNoPaymentMethod         = errs.New("no payment method on file")
	ErrBalanceAlreadyZero      = errs.New("booking balance is already zero")
	ErrGatewayFailure          = errs.New("payment gateway failure")
	ErrDatabaseOperationFailed = errs.New("database operation failed")
)

// AuthenticationRequiredError is not a failure: the gateway demands an
// additional customer verification step before the authorization can
// proceed. It carries the challenge token the customer-facing client needs.
type AuthenticationRequiredError struct {
	ClientSecret string
}

func (e *AuthenticationRequiredError) Error() string {
	return "gateway requires additional customer authentication"
}

type BookingRepository interface {
	Create(ctx context.Context, b *booking.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	Save(ctx context.Context, b *booking.Booking) error
}

type PaymentRepository interface {
	Create(ctx context.Context, rec *payment.Record) error
	Save(ctx context.Context, rec *payment.Record) error
	// FindNewestOpen returns the most recent record for the exact
	// (booking, amount, purpose) tuple whose status is pending or
	// processing. KindNotFound when no such record exists.
	FindNewestOpen(ctx context.Context, bookingID uuid.UUID, amountCents int64, purpose payment.Purpose) (*payment.Record, error)
	FindByGatewayRef(ctx context.Context, gatewayAuthorizationRef string) (*payment.Record, error)
	// SumCompletedCents totals completed records whose purpose counts
	// toward the balance (payment and deposit; holds reserve, not pay).
	SumCompletedCents(ctx context.Context, bookingID uuid.UUID) (int64, error)
}

type ManualPaymentRepository interface {
	Create(ctx context.Context, mp *payment.ManualPayment) error
	SumCompletedCents(ctx context.Context, bookingID uuid.UUID) (int64, error)
}

type LedgerRepository interface {
	Append(ctx context.Context, entry *payment.LedgerEntry) error
}

type ScheduledJobRepository interface {
	// Create inserts the job; an existing row with the same idempotency
	// key makes it a silent no-op.
	Create(ctx context.Context, job *schedule.Job) error
	// ClaimDue atomically flips up to limit due pending jobs to
	// processing and returns them.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*schedule.Job, error)
	MarkDone(ctx context.Context, id uuid.UUID) error
	// MarkFailed is terminal; the job will not be claimed again.
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error
	// Reschedule returns a transiently failed job to pending with a new
	// run time, bumping its attempt counter.
	Reschedule(ctx context.Context, id uuid.UUID, runAtUTC time.Time, lastError string) error
}

// Dispatcher publishes lifecycle events. Every call site treats failures as
// log-and-continue; an undelivered notification never rolls back money.
type Dispatcher interface {
	BookingConfirmed(ctx context.Context, bookingID uuid.UUID) error
	HoldPlaced(ctx context.Context, bookingID uuid.UUID, authorizationRef string, amountCents int64) error
	PaymentRecorded(ctx context.Context, bookingID uuid.UUID, amountCents int64, source string) error
}
