package readstore

import (
	"context"
	"log/slog"

	"rentpay/internal/infra"
	"rentpay/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingReadStore struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewBookingReadStore(db *pgxpool.Pool, logger *slog.Logger) queries.BookingViewRepo {
	return &BookingReadStore{db: db, logger: logger}
}

func (s *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	query := `
		SELECT id, customer_id, start_at, end_at,
		       total_amount_cents, deposit_amount_cents, balance_amount_cents, hold_amount_cents,
		       payment_method_ref, hold_authorization_ref, status, billing_status,
		       created_at, updated_at
		FROM bookings WHERE id = $1
	`

	var view queries.BookingView
	err := s.db.QueryRow(ctx, query, id).Scan(
		&view.ID, &view.CustomerID, &view.StartAt, &view.EndAt,
		&view.TotalAmountCents, &view.DepositAmountCents, &view.BalanceAmountCents, &view.HoldAmountCents,
		&view.PaymentMethodRef, &view.HoldAuthorizationRef, &view.Status, &view.BillingStatus,
		&view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		return nil, infra.ClassifyPgErr(s.logger, "failed to read booking view", err)
	}
	return &view, nil
}

func (s *BookingReadStore) FindPaymentsByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*queries.PaymentView, error) {
	query := `
		SELECT id, booking_id, purpose, amount_cents, status, COALESCE(gateway_authorization_ref, ''), created_at
		FROM payments
		WHERE booking_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.Query(ctx, query, bookingID)
	if err != nil {
		return nil, infra.ClassifyPgErr(s.logger, "failed to list payment views", err)
	}
	defer rows.Close()

	var views []*queries.PaymentView
	for rows.Next() {
		var v queries.PaymentView
		if err := rows.Scan(&v.ID, &v.BookingID, &v.Purpose, &v.AmountCents, &v.Status,
			&v.GatewayAuthorizationRef, &v.CreatedAt); err != nil {
			return nil, infra.ClassifyPgErr(s.logger, "failed to scan payment view", err)
		}
		views = append(views, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.ClassifyPgErr(s.logger, "failed to read payment views", err)
	}
	return views, nil
}
