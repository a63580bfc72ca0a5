package commands

import (
	"context"
	"log/slog"

	"rentpay/internal/domain/payment"
	"rentpay/internal/infra"
	"rentpay/internal/pkg/errs"

	"github.com/google/uuid"
)

type RecordManualPaymentInput struct {
	BookingID   uuid.UUID
	AmountCents int64
	Method      payment.ManualMethod
	Status      payment.Status
	Note        string
}

type ManualPaymentResult struct {
	ID             uuid.UUID
	BookingID      uuid.UUID
	AmountCents    int64
	Method         payment.ManualMethod
	Status         payment.Status
	Reconciliation *ReconcileResult
}

type ManualPaymentCommands interface {
	// Record persists an out-of-band payment keyed in by staff. A
	// completed payment immediately reconciles the booking balance.
	Record(ctx context.Context, recordedBy uuid.UUID, input RecordManualPaymentInput) (*ManualPaymentResult, error)
}

type manualPaymentUseCaseImpl struct {
	bookingRepo BookingRepository
	manualRepo  ManualPaymentRepository
	ledgerRepo  LedgerRepository
	ledger      LedgerCommands
	dispatcher  Dispatcher
}

func NewManualPaymentUseCase(
	bookingRepo BookingRepository,
	manualRepo ManualPaymentRepository,
	ledgerRepo LedgerRepository,
	ledger LedgerCommands,
	dispatcher Dispatcher,
) ManualPaymentCommands {
	return &manualPaymentUseCaseImpl{
		bookingRepo: bookingRepo,
		manualRepo:  manualRepo,
		ledgerRepo:  ledgerRepo,
		ledger:      ledger,
		dispatcher:  dispatcher,
	}
}

func (m *manualPaymentUseCaseImpl) Record(
	ctx context.Context,
	recordedBy uuid.UUID,
	input RecordManualPaymentInput,
) (*ManualPaymentResult, error) {
	if _, err := m.bookingRepo.FindByID(ctx, input.BookingID); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	mp, err := payment.NewManualPayment(
		input.BookingID,
		input.AmountCents,
		input.Method,
		input.Status,
		recordedBy,
		input.Note,
	)
	if err != nil {
		return nil, errs.Mark(err, ErrValidation)
	}

	if err := m.manualRepo.Create(ctx, mp); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	result := &ManualPaymentResult{
		ID:          mp.ID(),
		BookingID:   mp.BookingID(),
		AmountCents: mp.AmountCents(),
		Method:      mp.Method(),
		Status:      mp.Status(),
	}

	if mp.Status() == payment.StatusCompleted {
		reconciliation, err := m.ledger.Reconcile(ctx, input.BookingID)
		if err != nil {
			return nil, err
		}
		result.Reconciliation = reconciliation

		m.appendLedgerEntry(ctx, mp, recordedBy)
		if err := m.dispatcher.PaymentRecorded(ctx, mp.BookingID(), mp.AmountCents(), "manual"); err != nil {
			slog.Warn("failed to publish payment recorded event", "booking_id", mp.BookingID(), "error", err)
		}
	}

	return result, nil
}

func (m *manualPaymentUseCaseImpl) appendLedgerEntry(ctx context.Context, mp *payment.ManualPayment, recordedBy uuid.UUID) {
	entry, err := payment.NewLedgerEntry(
		mp.BookingID(),
		payment.EntryManualPayment,
		mp.AmountCents(),
		mp.ID().String(),
		recordedBy,
	)
	if err == nil {
		err = m.ledgerRepo.Append(ctx, entry)
	}
	if err != nil {
		slog.Warn("failed to append ledger entry", "booking_id", mp.BookingID(), "error", err)
	}
}
