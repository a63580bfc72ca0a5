package commands

import (
	"context"

	"rentpay/internal/domain/booking"
	"rentpay/internal/infra"
	"rentpay/internal/pkg/errs"

	"github.com/google/uuid"
)

type ReconcileResult struct {
	BookingID     uuid.UUID
	BalanceCents  int64
	BillingStatus booking.BillingStatus
	Status        booking.Status
}

// LedgerCommands recomputes booking balances from persisted payment records.
// The balance is never incremented in place; every call derives it from
// scratch, which is what makes it safe to invoke arbitrarily often.
type LedgerCommands interface {
	RecalculateBalance(ctx context.Context, bookingID uuid.UUID) (int64, error)
	UpdateBillingStatus(ctx context.Context, bookingID uuid.UUID) (*ReconcileResult, error)
	// Reconcile runs both steps: recompute the balance, then derive the
	// billing status (and the paid transition) from it.
	Reconcile(ctx context.Context, bookingID uuid.UUID) (*ReconcileResult, error)
}

type ledgerUseCaseImpl struct {
	bookingRepo BookingRepository
	paymentRepo PaymentRepository
	manualRepo  ManualPaymentRepository
}

func NewLedgerUseCase(
	bookingRepo BookingRepository,
	paymentRepo PaymentRepository,
	manualRepo ManualPaymentRepository,
) LedgerCommands {
	return &ledgerUseCaseImpl{
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		manualRepo:  manualRepo,
	}
}

func (l *ledgerUseCaseImpl) RecalculateBalance(ctx context.Context, bookingID uuid.UUID) (int64, error) {
	result, err := l.Reconcile(ctx, bookingID)
	if err != nil {
		return 0, err
	}
	return result.BalanceCents, nil
}

func (l *ledgerUseCaseImpl) UpdateBillingStatus(ctx context.Context, bookingID uuid.UUID) (*ReconcileResult, error) {
	return l.Reconcile(ctx, bookingID)
}

func (l *ledgerUseCaseImpl) Reconcile(ctx context.Context, bookingID uuid.UUID) (*ReconcileResult, error) {
	b, err := l.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	gatewayCents, err := l.paymentRepo.SumCompletedCents(ctx, bookingID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	manualCents, err := l.manualRepo.SumCompletedCents(ctx, bookingID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	paidCents := gatewayCents + manualCents
	balance := b.TotalAmount().SubFloor(booking.ReconstructMoney(paidCents))
	b.ApplyBalance(balance, paidCents > 0)

	if err := l.bookingRepo.Save(ctx, b); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	return &ReconcileResult{
		BookingID:     b.ID(),
		BalanceCents:  balance.Cents(),
		BillingStatus: b.BillingStatus(),
		Status:        b.Status(),
	}, nil
}
