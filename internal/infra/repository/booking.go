package repository

import (
	"context"
	"log/slog"
	"time"

	"rentpay/internal/domain/booking"
	"rentpay/internal/infra"
	"rentpay/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewBookingRepository(db *pgxpool.Pool, logger *slog.Logger) commands.BookingRepository {
	return &BookingRepository{db: db, logger: logger}
}

func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	query := `
		INSERT INTO bookings (
			id, customer_id, start_at, end_at,
			total_amount_cents, deposit_amount_cents, balance_amount_cents, hold_amount_cents,
			payment_method_ref, hold_authorization_ref, status, billing_status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
	`

	_, err := r.db.Exec(ctx, query,
		b.ID(),
		b.CustomerID(),
		b.StartAt(),
		b.EndAt(),
		b.TotalAmount().Cents(),
		b.DepositAmount().Cents(),
		b.BalanceAmount().Cents(),
		b.HoldAmount().Cents(),
		b.PaymentMethodRef(),
		b.HoldAuthorizationRef(),
		b.Status().String(),
		b.BillingStatus().String(),
	)
	if err != nil {
		return infra.ClassifyPgErr(r.logger, "failed to create booking", err)
	}
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	query := `
		SELECT id, customer_id, start_at, end_at,
		       total_amount_cents, deposit_amount_cents, balance_amount_cents, hold_amount_cents,
		       payment_method_ref, hold_authorization_ref, status, billing_status,
		       created_at, updated_at
		FROM bookings WHERE id = $1
	`

	var (
		bookingID            uuid.UUID
		customerID           uuid.UUID
		startAt, endAt       time.Time
		totalCents           int64
		depositCents         int64
		balanceCents         int64
		holdCents            int64
		paymentMethodRef     *string
		holdAuthorizationRef *string
		status               string
		billingStatus        string
		createdAt, updatedAt time.Time
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&bookingID, &customerID, &startAt, &endAt,
		&totalCents, &depositCents, &balanceCents, &holdCents,
		&paymentMethodRef, &holdAuthorizationRef, &status, &billingStatus,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, infra.ClassifyPgErr(r.logger, "failed to find booking", err)
	}

	return booking.ReconstructBooking(
		bookingID, customerID,
		startAt, endAt,
		booking.ReconstructMoney(totalCents),
		booking.ReconstructMoney(depositCents),
		booking.ReconstructMoney(balanceCents),
		booking.ReconstructMoney(holdCents),
		paymentMethodRef, holdAuthorizationRef,
		booking.Status(status),
		booking.BillingStatus(billingStatus),
		createdAt, updatedAt,
	), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *booking.Booking) error {
	query := `
		UPDATE bookings SET
			balance_amount_cents = $2,
			hold_amount_cents = $3,
			payment_method_ref = $4,
			hold_authorization_ref = $5,
			status = $6,
			billing_status = $7,
			updated_at = now()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		b.ID(),
		b.BalanceAmount().Cents(),
		b.HoldAmount().Cents(),
		b.PaymentMethodRef(),
		b.HoldAuthorizationRef(),
		b.Status().String(),
		b.BillingStatus().String(),
	)
	if err != nil {
		return infra.ClassifyPgErr(r.logger, "failed to save booking", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindNotFound, "booking not found on save", nil)
	}
	return nil
}
