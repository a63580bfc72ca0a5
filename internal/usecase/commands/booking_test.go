//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"rentpay/internal/domain/booking"
	"rentpay/internal/pkg/config"
	"rentpay/internal/pkg/errs"
	"rentpay/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterBooking(t *testing.T) {
	ctx := context.Background()
	holdCfg := config.NewTestConfig().Hold
	start := time.Date(2026, 7, 10, 15, 0, 0, 0, time.UTC)

	input := commands.RegisterBookingInput{
		CustomerID:         uuid.New(),
		StartAt:            start,
		EndAt:              start.Add(72 * time.Hour),
		TotalAmountCents:   81750,
		DepositAmountCents: 30000,
	}

	t.Run("registers booking and enqueues hold job", func(t *testing.T) {
		bookingRepo := newFakeBookingRepo()
		jobRepo := newFakeJobRepo()
		dispatcher := &fakeDispatcher{}
		bookings := commands.NewBookingUseCase(bookingRepo, jobRepo, dispatcher, holdCfg)

		result, err := bookings.Register(ctx, input)
		require.NoError(t, err)

		assert.Equal(t, booking.StatusPendingVerification, result.Status)
		assert.Equal(t, booking.BillingUnbilled, result.BillingStatus)
		assert.Equal(t, int64(81750), result.BalanceCents)
		assert.Equal(t, start.Add(-holdCfg.LeadTime).UTC(), result.HoldRunAtUTC)

		b, err := bookingRepo.FindByID(ctx, result.BookingID)
		require.NoError(t, err)
		assert.Equal(t, holdCfg.SecurityAmountCents, b.HoldAmount().Cents(), "default hold amount applied")

		require.Len(t, jobRepo.jobs, 1)
		job := jobRepo.jobs[b.SecurityHoldIdempotencyKey()]
		require.NotNil(t, job)
		assert.Equal(t, result.BookingID, job.BookingID())

		assert.Equal(t, 1, dispatcher.confirmedCount)
	})

	t.Run("explicit hold amount wins over the default", func(t *testing.T) {
		bookingRepo := newFakeBookingRepo()
		bookings := commands.NewBookingUseCase(bookingRepo, newFakeJobRepo(), &fakeDispatcher{}, holdCfg)

		withHold := input
		withHold.HoldAmountCents = 75000

		result, err := bookings.Register(ctx, withHold)
		require.NoError(t, err)

		b, err := bookingRepo.FindByID(ctx, result.BookingID)
		require.NoError(t, err)
		assert.Equal(t, int64(75000), b.HoldAmount().Cents())
	})

	t.Run("duplicate job key is tolerated", func(t *testing.T) {
		jobRepo := newFakeJobRepo()
		jobRepo.createErr = duplicateKey()
		bookings := commands.NewBookingUseCase(newFakeBookingRepo(), jobRepo, &fakeDispatcher{}, holdCfg)

		_, err := bookings.Register(ctx, input)
		require.NoError(t, err, "an existing job for the same action is the desired state")
	})

	t.Run("invalid period", func(t *testing.T) {
		bookings := commands.NewBookingUseCase(newFakeBookingRepo(), newFakeJobRepo(), &fakeDispatcher{}, holdCfg)

		bad := input
		bad.EndAt = bad.StartAt.Add(-time.Hour)

		_, err := bookings.Register(ctx, bad)
		require.Error(t, err)
		assert.True(t, errs.Is(err, commands.ErrValidation))
	})
}
