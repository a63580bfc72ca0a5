package booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidPeriod         = errors.New("rental period end must be after start")
	ErrInvalidStatus         = errors.New("invalid booking status")
	ErrBookingTerminal       = errors.New("booking is in a terminal state")
	ErrBackwardTransition    = errors.New("booking status cannot move backward")
	ErrEmptyPaymentMethodRef = errors.New("payment method reference is empty")
	ErrEmptyAuthorizationRef = errors.New("authorization reference is empty")
)

type Booking struct {
	id                   uuid.UUID
	customerID           uuid.UUID
	startAt              time.Time
	endAt                time.Time
	totalAmount          Money
	depositAmount        Money
	balanceAmount        Money
	holdAmount           Money
	paymentMethodRef     *string
	holdAuthorizationRef *string
	status               Status
	billingStatus        BillingStatus
	createdAt            time.Time
	updatedAt            time.Time
}

func NewBooking(
	customerID uuid.UUID,
	startAt, endAt time.Time,
	totalAmountCents, depositAmountCents, holdAmountCents int64,
) (*Booking, error) {
	if !endAt.After(startAt) {
		return nil, ErrInvalidPeriod
	}
	total, err := NewMoney(totalAmountCents)
	if err != nil {
		return nil, err
	}
	deposit, err := NewMoney(depositAmountCents)
	if err != nil {
		return nil, err
	}
	hold, err := NewMoney(holdAmountCents)
	if err != nil {
		return nil, err
	}

	return &Booking{
		id:            uuid.New(),
		customerID:    customerID,
		startAt:       startAt,
		endAt:         endAt,
		totalAmount:   total,
		depositAmount: deposit,
		balanceAmount: total,
		holdAmount:    hold,
		status:        StatusPendingVerification,
		billingStatus: BillingUnbilled,
	}, nil
}

func ReconstructBooking(
	id, customerID uuid.UUID,
	startAt, endAt time.Time,
	totalAmount, depositAmount, balanceAmount, holdAmount Money,
	paymentMethodRef, holdAuthorizationRef *string,
	status Status,
	billingStatus BillingStatus,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                   id,
		customerID:           customerID,
		startAt:              startAt,
		endAt:                endAt,
		totalAmount:          totalAmount,
		depositAmount:        depositAmount,
		balanceAmount:        balanceAmount,
		holdAmount:           holdAmount,
		paymentMethodRef:     paymentMethodRef,
		holdAuthorizationRef: holdAuthorizationRef,
		status:               status,
		billingStatus:        billingStatus,
		createdAt:            createdAt,
		updatedAt:            updatedAt,
	}
}

// AttachPaymentMethod stores the vaulted payment method reference. Re-attach
// overwrites: customers may swap cards before the hold is placed.
func (b *Booking) AttachPaymentMethod(ref string) error {
	if ref == "" {
		return ErrEmptyPaymentMethodRef
	}
	if b.status.IsTerminal() {
		return ErrBookingTerminal
	}
	b.paymentMethodRef = &ref
	return nil
}

// MarkCardVerified advances pending_verification to verify_hold_ok. Calling
// it on a booking that already progressed further is a no-op.
func (b *Booking) MarkCardVerified() error {
	if b.status.IsTerminal() {
		return ErrBookingTerminal
	}
	if statusOrder[b.status] >= statusOrder[StatusVerifyHoldOK] {
		return nil
	}
	b.status = StatusVerifyHoldOK
	return nil
}

// RecordHoldPlaced sets the security-hold authorization reference exactly
// once. A second call returns the existing reference without error so the
// at-least-once hold job stays idempotent.
func (b *Booking) RecordHoldPlaced(authorizationRef string) (string, error) {
	if b.holdAuthorizationRef != nil {
		return *b.holdAuthorizationRef, nil
	}
	if authorizationRef == "" {
		return "", ErrEmptyAuthorizationRef
	}
	if b.status.IsTerminal() {
		return "", ErrBookingTerminal
	}
	b.holdAuthorizationRef = &authorizationRef
	if statusOrder[b.status] < statusOrder[StatusHoldPlaced] {
		b.status = StatusHoldPlaced
	}
	return authorizationRef, nil
}

// ApplyBalance records a freshly recomputed balance and derives the billing
// status from it. A zero balance also settles the booking itself; that
// transition is one-way.
func (b *Booking) ApplyBalance(balance Money, hasCompletedPayments bool) {
	b.balanceAmount = balance

	switch {
	case balance.IsZero():
		b.billingStatus = BillingPaid
		if !b.status.IsTerminal() {
			b.status = StatusPaid
		}
	case hasCompletedPayments:
		b.billingStatus = BillingPartiallyPaid
	default:
		b.billingStatus = BillingUnbilled
	}
}

func (b *Booking) Cancel() error {
	if b.status.IsTerminal() {
		if b.status == StatusCancelled {
			return nil
		}
		return ErrBookingTerminal
	}
	b.status = StatusCancelled
	return nil
}

func (b *Booking) MarkFailed() error {
	if b.status.IsTerminal() {
		if b.status == StatusFailed {
			return nil
		}
		return ErrBookingTerminal
	}
	b.status = StatusFailed
	return nil
}

func (b *Booking) HasPaymentMethod() bool {
	return b.paymentMethodRef != nil && *b.paymentMethodRef != ""
}

func (b *Booking) SecurityHoldPlaced() bool {
	return b.holdAuthorizationRef != nil && *b.holdAuthorizationRef != ""
}

// SecurityHoldIdempotencyKey derives the stable key used both for the
// scheduled job row and the gateway Idempotency-Key header. The start time
// participates so a rescheduled booking produces a fresh authorization.
func (b *Booking) SecurityHoldIdempotencyKey() string {
	return fmt.Sprintf("%s:security_hold:%d", b.id, b.startAt.UnixMilli())
}

// HoldRunAt is when the scheduled hold job should fire.
func (b *Booking) HoldRunAt(leadTime time.Duration) time.Time {
	return b.startAt.Add(-leadTime).UTC()
}

func (b *Booking) ID() uuid.UUID                 { return b.id }
func (b *Booking) CustomerID() uuid.UUID         { return b.customerID }
func (b *Booking) StartAt() time.Time            { return b.startAt }
func (b *Booking) EndAt() time.Time              { return b.endAt }
func (b *Booking) TotalAmount() Money            { return b.totalAmount }
func (b *Booking) DepositAmount() Money          { return b.depositAmount }
func (b *Booking) BalanceAmount() Money          { return b.balanceAmount }
func (b *Booking) HoldAmount() Money             { return b.holdAmount }
func (b *Booking) PaymentMethodRef() *string     { return b.paymentMethodRef }
func (b *Booking) HoldAuthorizationRef() *string { return b.holdAuthorizationRef }
func (b *Booking) Status() Status                { return b.status }
func (b *Booking) BillingStatus() BillingStatus  { return b.billingStatus }
func (b *Booking) CreatedAt() time.Time          { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time          { return b.updatedAt }

func (b *Booking) IsOwnedBy(userID uuid.UUID) bool {
	return b.customerID == userID
}
