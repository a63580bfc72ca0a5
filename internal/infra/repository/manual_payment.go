package repository

import (
	"context"
	"log/slog"

	"rentpay/internal/domain/payment"
	"rentpay/internal/infra"
	"rentpay/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ManualPaymentRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewManualPaymentRepository(db *pgxpool.Pool, logger *slog.Logger) commands.ManualPaymentRepository {
	return &ManualPaymentRepository{db: db, logger: logger}
}

func (r *ManualPaymentRepository) Create(ctx context.Context, mp *payment.ManualPayment) error {
	query := `
		INSERT INTO manual_payments (
			id, booking_id, amount_cents, method, status, recorded_by, note, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), now())
	`

	_, err := r.db.Exec(ctx, query,
		mp.ID(),
		mp.BookingID(),
		mp.AmountCents(),
		mp.Method().String(),
		mp.Status().String(),
		mp.RecordedBy(),
		mp.Note(),
	)
	if err != nil {
		return infra.ClassifyPgErr(r.logger, "failed to create manual payment", err)
	}
	return nil
}

func (r *ManualPaymentRepository) SumCompletedCents(ctx context.Context, bookingID uuid.UUID) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM manual_payments
		WHERE booking_id = $1 AND status = 'completed' AND deleted_at IS NULL
	`

	var total int64
	if err := r.db.QueryRow(ctx, query, bookingID).Scan(&total); err != nil {
		return 0, infra.ClassifyPgErr(r.logger, "failed to sum completed manual payments", err)
	}
	return total, nil
}
