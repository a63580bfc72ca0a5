package repository

import (
	"context"
	"log/slog"
	"time"

	"rentpay/internal/domain/payment"
	"rentpay/internal/infra"
	"rentpay/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewPaymentRepository(db *pgxpool.Pool, logger *slog.Logger) commands.PaymentRepository {
	return &PaymentRepository{db: db, logger: logger}
}

func (r *PaymentRepository) Create(ctx context.Context, rec *payment.Record) error {
	query := `
		INSERT INTO payments (
			id, booking_id, purpose, amount_cents, status, gateway_authorization_ref, created_at
		) VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), now())
	`

	_, err := r.db.Exec(ctx, query,
		rec.ID(),
		rec.BookingID(),
		rec.Purpose().String(),
		rec.AmountCents(),
		rec.Status().String(),
		rec.GatewayAuthorizationRef(),
	)
	if err != nil {
		return infra.ClassifyPgErr(r.logger, "failed to create payment record", err)
	}
	return nil
}

func (r *PaymentRepository) Save(ctx context.Context, rec *payment.Record) error {
	query := `
		UPDATE payments SET status = $2, gateway_authorization_ref = NULLIF($3, '')
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, rec.ID(), rec.Status().String(), rec.GatewayAuthorizationRef())
	if err != nil {
		return infra.ClassifyPgErr(r.logger, "failed to save payment record", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindNotFound, "payment record not found on save", nil)
	}
	return nil
}

func (r *PaymentRepository) FindNewestOpen(
	ctx context.Context,
	bookingID uuid.UUID,
	amountCents int64,
	purpose payment.Purpose,
) (*payment.Record, error) {
	query := `
		SELECT id, booking_id, purpose, amount_cents, status, COALESCE(gateway_authorization_ref, ''), created_at
		FROM payments
		WHERE booking_id = $1 AND amount_cents = $2 AND purpose = $3
		  AND status IN ('pending', 'processing')
		ORDER BY created_at DESC
		LIMIT 1
	`

	row := r.db.QueryRow(ctx, query, bookingID, amountCents, purpose.String())
	rec, err := scanPaymentRecord(row)
	if err != nil {
		return nil, infra.ClassifyPgErr(r.logger, "failed to find open payment record", err)
	}
	return rec, nil
}

func (r *PaymentRepository) FindByGatewayRef(ctx context.Context, gatewayAuthorizationRef string) (*payment.Record, error) {
	query := `
		SELECT id, booking_id, purpose, amount_cents, status, COALESCE(gateway_authorization_ref, ''), created_at
		FROM payments
		WHERE gateway_authorization_ref = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	row := r.db.QueryRow(ctx, query, gatewayAuthorizationRef)
	rec, err := scanPaymentRecord(row)
	if err != nil {
		return nil, infra.ClassifyPgErr(r.logger, "failed to find payment record by gateway ref", err)
	}
	return rec, nil
}

func (r *PaymentRepository) SumCompletedCents(ctx context.Context, bookingID uuid.UUID) (int64, error) {
	// Holds, card verifications and security deposits reserve funds
	// without paying the rental down, so only plain payments enter the
	// balance sum.
	query := `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM payments
		WHERE booking_id = $1 AND status = 'completed' AND purpose = 'payment'
	`

	var total int64
	if err := r.db.QueryRow(ctx, query, bookingID).Scan(&total); err != nil {
		return 0, infra.ClassifyPgErr(r.logger, "failed to sum completed payments", err)
	}
	return total, nil
}

func scanPaymentRecord(row pgx.Row) (*payment.Record, error) {
	var (
		id          uuid.UUID
		bookingID   uuid.UUID
		purpose     string
		amountCents int64
		status      string
		gatewayRef  string
		createdAt   time.Time
	)
	if err := row.Scan(&id, &bookingID, &purpose, &amountCents, &status, &gatewayRef, &createdAt); err != nil {
		return nil, err
	}
	return payment.ReconstructRecord(
		id, bookingID,
		payment.Purpose(purpose),
		amountCents,
		payment.Status(status),
		gatewayRef,
		createdAt,
	), nil
}
