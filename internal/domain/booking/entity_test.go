//go:build unit

package booking_test

import (
	"fmt"
	"testing"
	"time"

	"rentpay/internal/domain/booking"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBooking(t *testing.T) *booking.Booking {
	t.Helper()
	start := time.Date(2026, 7, 10, 15, 0, 0, 0, time.UTC)
	b, err := booking.NewBooking(uuid.New(), start, start.Add(72*time.Hour), 81750, 30000, 50000)
	require.NoError(t, err)
	return b
}

func TestNewBooking(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		b := newTestBooking(t)

		assert.NotEqual(t, uuid.Nil, b.ID())
		assert.Equal(t, booking.StatusPendingVerification, b.Status())
		assert.Equal(t, booking.BillingUnbilled, b.BillingStatus())
		assert.Equal(t, int64(81750), b.BalanceAmount().Cents(), "balance starts at the full total")
		assert.False(t, b.HasPaymentMethod())
		assert.False(t, b.SecurityHoldPlaced())
	})

	t.Run("end before start", func(t *testing.T) {
		start := time.Now()
		_, err := booking.NewBooking(uuid.New(), start, start.Add(-time.Hour), 1000, 0, 0)
		require.ErrorIs(t, err, booking.ErrInvalidPeriod)
	})

	t.Run("negative amount", func(t *testing.T) {
		start := time.Now()
		_, err := booking.NewBooking(uuid.New(), start, start.Add(time.Hour), -1, 0, 0)
		require.Error(t, err)
	})
}

func TestAttachPaymentMethod(t *testing.T) {
	t.Run("attach and overwrite", func(t *testing.T) {
		b := newTestBooking(t)

		require.NoError(t, b.AttachPaymentMethod("pm_first"))
		require.NoError(t, b.AttachPaymentMethod("pm_second"))
		require.NotNil(t, b.PaymentMethodRef())
		assert.Equal(t, "pm_second", *b.PaymentMethodRef())
	})

	t.Run("empty reference", func(t *testing.T) {
		b := newTestBooking(t)
		require.ErrorIs(t, b.AttachPaymentMethod(""), booking.ErrEmptyPaymentMethodRef)
	})

	t.Run("terminal booking", func(t *testing.T) {
		b := newTestBooking(t)
		require.NoError(t, b.Cancel())
		require.ErrorIs(t, b.AttachPaymentMethod("pm_x"), booking.ErrBookingTerminal)
	})
}

func TestMarkCardVerified(t *testing.T) {
	t.Run("advances to verify_hold_ok", func(t *testing.T) {
		b := newTestBooking(t)
		require.NoError(t, b.MarkCardVerified())
		assert.Equal(t, booking.StatusVerifyHoldOK, b.Status())
	})

	t.Run("no-op when already further along", func(t *testing.T) {
		b := newTestBooking(t)
		_, err := b.RecordHoldPlaced("auth_1")
		require.NoError(t, err)
		require.Equal(t, booking.StatusHoldPlaced, b.Status())

		require.NoError(t, b.MarkCardVerified())
		assert.Equal(t, booking.StatusHoldPlaced, b.Status(), "status never moves backward")
	})
}

func TestRecordHoldPlaced(t *testing.T) {
	t.Run("first call sets ref and status", func(t *testing.T) {
		b := newTestBooking(t)

		ref, err := b.RecordHoldPlaced("auth_123")
		require.NoError(t, err)
		assert.Equal(t, "auth_123", ref)
		assert.Equal(t, booking.StatusHoldPlaced, b.Status())
		assert.True(t, b.SecurityHoldPlaced())
	})

	t.Run("second call returns existing ref", func(t *testing.T) {
		b := newTestBooking(t)

		_, err := b.RecordHoldPlaced("auth_123")
		require.NoError(t, err)

		ref, err := b.RecordHoldPlaced("auth_456")
		require.NoError(t, err)
		assert.Equal(t, "auth_123", ref, "a placed hold is never replaced")
	})

	t.Run("empty reference", func(t *testing.T) {
		b := newTestBooking(t)
		_, err := b.RecordHoldPlaced("")
		require.ErrorIs(t, err, booking.ErrEmptyAuthorizationRef)
	})

	t.Run("terminal booking", func(t *testing.T) {
		b := newTestBooking(t)
		require.NoError(t, b.MarkFailed())
		_, err := b.RecordHoldPlaced("auth_123")
		require.ErrorIs(t, err, booking.ErrBookingTerminal)
	})
}

func TestApplyBalance(t *testing.T) {
	t.Run("zero balance settles booking", func(t *testing.T) {
		b := newTestBooking(t)

		b.ApplyBalance(booking.ReconstructMoney(0), true)

		assert.Equal(t, booking.BillingPaid, b.BillingStatus())
		assert.Equal(t, booking.StatusPaid, b.Status())
	})

	t.Run("partial payment", func(t *testing.T) {
		b := newTestBooking(t)

		b.ApplyBalance(booking.ReconstructMoney(51750), true)

		assert.Equal(t, booking.BillingPartiallyPaid, b.BillingStatus())
		assert.Equal(t, booking.StatusPendingVerification, b.Status())
	})

	t.Run("no completed payments", func(t *testing.T) {
		b := newTestBooking(t)

		b.ApplyBalance(booking.ReconstructMoney(81750), false)

		assert.Equal(t, booking.BillingUnbilled, b.BillingStatus())
	})

	t.Run("paid is one-way", func(t *testing.T) {
		b := newTestBooking(t)

		b.ApplyBalance(booking.ReconstructMoney(0), true)
		require.Equal(t, booking.StatusPaid, b.Status())

		// A later reconciliation with an outstanding balance adjusts the
		// billing status but the booking itself stays settled.
		b.ApplyBalance(booking.ReconstructMoney(1000), true)
		assert.Equal(t, booking.BillingPartiallyPaid, b.BillingStatus())
		assert.Equal(t, booking.StatusPaid, b.Status())
	})

	t.Run("cancelled booking is not resurrected", func(t *testing.T) {
		b := newTestBooking(t)
		require.NoError(t, b.Cancel())

		b.ApplyBalance(booking.ReconstructMoney(0), true)

		assert.Equal(t, booking.BillingPaid, b.BillingStatus())
		assert.Equal(t, booking.StatusCancelled, b.Status())
	})
}

func TestSecurityHoldIdempotencyKey(t *testing.T) {
	b := newTestBooking(t)

	expected := fmt.Sprintf("%s:security_hold:%d", b.ID(), b.StartAt().UnixMilli())
	assert.Equal(t, expected, b.SecurityHoldIdempotencyKey())
	assert.Equal(t, b.SecurityHoldIdempotencyKey(), b.SecurityHoldIdempotencyKey(), "key is stable")
}

func TestHoldRunAt(t *testing.T) {
	b := newTestBooking(t)

	runAt := b.HoldRunAt(48 * time.Hour)
	assert.Equal(t, b.StartAt().Add(-48*time.Hour).UTC(), runAt)
	assert.Equal(t, time.UTC, runAt.Location())
}

func TestMoney(t *testing.T) {
	t.Run("negative rejected", func(t *testing.T) {
		_, err := booking.NewMoney(-1)
		require.Error(t, err)
	})

	t.Run("sub floors at zero", func(t *testing.T) {
		total := booking.ReconstructMoney(1000)
		paid := booking.ReconstructMoney(1500)
		assert.Equal(t, int64(0), total.SubFloor(paid).Cents())
	})

	t.Run("add", func(t *testing.T) {
		a := booking.ReconstructMoney(300)
		b := booking.ReconstructMoney(200)
		assert.Equal(t, int64(500), a.Add(b).Cents())
	})
}
