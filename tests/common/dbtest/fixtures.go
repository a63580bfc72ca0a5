//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// InsertBooking seeds a booking row directly, bypassing the registration
// endpoint. Balance starts equal to the total, matching a fresh booking.
func InsertBooking(t *testing.T, db DBLike, customerID uuid.UUID, totalCents, depositCents, holdCents int64) uuid.UUID {
	t.Helper()

	bookingID := uuid.New()
	startAt := time.Now().UTC().Add(96 * time.Hour).Truncate(time.Second)
	endAt := startAt.Add(72 * time.Hour)

	ctx := context.Background()
	_, err := db.Exec(ctx, `
		INSERT INTO bookings (
			id, customer_id, start_at, end_at,
			total_amount_cents, deposit_amount_cents, balance_amount_cents, hold_amount_cents,
			status, billing_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $5, $7, 'pending_verification', 'unbilled', now(), now())`,
		bookingID, customerID, startAt, endAt, totalCents, depositCents, holdCents)
	require.NoError(t, err)

	return bookingID
}

// AttachPaymentMethod sets a verified payment method on a seeded booking so
// hold placement can run against it.
func AttachPaymentMethod(t *testing.T, db DBLike, bookingID uuid.UUID, paymentMethodRef string) {
	t.Helper()

	ctx := context.Background()
	tag, err := db.Exec(ctx, `
		UPDATE bookings SET payment_method_ref = $2, status = 'verify_hold_ok', updated_at = now()
		WHERE id = $1`,
		bookingID, paymentMethodRef)
	require.NoError(t, err)
	require.EqualValues(t, 1, tag.RowsAffected())
}

// ScheduledJobCount counts jobs enqueued for a booking.
func ScheduledJobCount(t *testing.T, db DBLike, bookingID uuid.UUID) int {
	t.Helper()

	var count int
	err := db.QueryRow(context.Background(),
		"SELECT count(*) FROM scheduled_jobs WHERE booking_id = $1", bookingID).Scan(&count)
	require.NoError(t, err)
	return count
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables between subtests
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return nil
}
