//go:build unit

package commands_test

import (
	"context"
	"testing"

	"rentpay/internal/domain/booking"
	"rentpay/internal/domain/payment"
	"rentpay/internal/pkg/errs"
	"rentpay/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualFixture struct {
	bookingRepo *fakeBookingRepo
	manualRepo  *fakeManualPaymentRepo
	ledgerRepo  *fakeLedgerRepo
	dispatcher  *fakeDispatcher
	manual      commands.ManualPaymentCommands
}

func newManualFixture(t *testing.T, b *booking.Booking) *manualFixture {
	t.Helper()
	f := &manualFixture{
		bookingRepo: newFakeBookingRepo(b),
		manualRepo:  &fakeManualPaymentRepo{},
		ledgerRepo:  &fakeLedgerRepo{},
		dispatcher:  &fakeDispatcher{},
	}
	ledger := commands.NewLedgerUseCase(f.bookingRepo, &fakePaymentRepo{}, f.manualRepo)
	f.manual = commands.NewManualPaymentUseCase(f.bookingRepo, f.manualRepo, f.ledgerRepo, ledger, f.dispatcher)
	return f
}

func TestRecordManualPayment(t *testing.T) {
	ctx := context.Background()
	recordedBy := uuid.New()

	t.Run("completed payment reconciles immediately", func(t *testing.T) {
		b := makeBooking(t, 30000)
		f := newManualFixture(t, b)

		result, err := f.manual.Record(ctx, recordedBy, commands.RecordManualPaymentInput{
			BookingID:   b.ID(),
			AmountCents: 30000,
			Method:      payment.MethodETransfer,
			Status:      payment.StatusCompleted,
			Note:        "paid in full at pickup",
		})
		require.NoError(t, err)

		require.NotNil(t, result.Reconciliation)
		assert.Equal(t, int64(0), result.Reconciliation.BalanceCents)
		assert.Equal(t, booking.BillingPaid, result.Reconciliation.BillingStatus)

		assert.Equal(t, 1, f.dispatcher.paymentRecorded)
		assert.Equal(t, "manual", f.dispatcher.lastSource)
		require.Len(t, f.ledgerRepo.entries, 1)
		assert.Equal(t, payment.EntryManualPayment, f.ledgerRepo.entries[0].EntryType())
		assert.Equal(t, recordedBy, f.ledgerRepo.entries[0].CreatedBy())
	})

	t.Run("pending payment skips reconciliation", func(t *testing.T) {
		b := makeBooking(t, 30000)
		f := newManualFixture(t, b)

		result, err := f.manual.Record(ctx, recordedBy, commands.RecordManualPaymentInput{
			BookingID:   b.ID(),
			AmountCents: 10000,
			Method:      payment.MethodCheque,
			Status:      payment.StatusPending,
		})
		require.NoError(t, err)

		assert.Nil(t, result.Reconciliation)
		assert.Equal(t, 0, f.dispatcher.paymentRecorded)
		assert.Empty(t, f.ledgerRepo.entries)

		saved, findErr := f.bookingRepo.FindByID(ctx, b.ID())
		require.NoError(t, findErr)
		assert.Equal(t, booking.BillingUnbilled, saved.BillingStatus(), "pending cheques do not pay anything down")
	})

	t.Run("unknown booking", func(t *testing.T) {
		f := newManualFixture(t, makeBooking(t, 100))

		_, err := f.manual.Record(ctx, recordedBy, commands.RecordManualPaymentInput{
			BookingID:   uuid.New(),
			AmountCents: 100,
			Method:      payment.MethodCash,
			Status:      payment.StatusCompleted,
		})
		require.ErrorIs(t, err, commands.ErrBookingNotFound)
	})

	t.Run("invalid input", func(t *testing.T) {
		b := makeBooking(t, 100)
		f := newManualFixture(t, b)

		_, err := f.manual.Record(ctx, recordedBy, commands.RecordManualPaymentInput{
			BookingID:   b.ID(),
			AmountCents: -5,
			Method:      payment.MethodCash,
			Status:      payment.StatusCompleted,
		})
		require.Error(t, err)
		assert.True(t, errs.Is(err, commands.ErrValidation))

		_, err = f.manual.Record(ctx, recordedBy, commands.RecordManualPaymentInput{
			BookingID:   b.ID(),
			AmountCents: 100,
			Method:      payment.ManualMethod("crypto"),
			Status:      payment.StatusCompleted,
		})
		require.Error(t, err)
		assert.True(t, errs.Is(err, commands.ErrValidation))
	})
}
