package repository

import (
	"context"
	"log/slog"

	"rentpay/internal/domain/payment"
	"rentpay/internal/infra"
	"rentpay/internal/usecase/commands"

	"github.com/jackc/pgx/v5/pgxpool"
)

type LedgerRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewLedgerRepository(db *pgxpool.Pool, logger *slog.Logger) commands.LedgerRepository {
	return &LedgerRepository{db: db, logger: logger}
}

// Append only ever inserts. There is no update or delete path for ledger
// entries anywhere in the schema.
func (r *LedgerRepository) Append(ctx context.Context, entry *payment.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (
			id, booking_id, entry_type, amount_cents, source_reference, created_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, now())
	`

	_, err := r.db.Exec(ctx, query,
		entry.ID(),
		entry.BookingID(),
		entry.EntryType().String(),
		entry.AmountCents(),
		entry.SourceReference(),
		entry.CreatedBy(),
	)
	if err != nil {
		return infra.ClassifyPgErr(r.logger, "failed to append ledger entry", err)
	}
	return nil
}
