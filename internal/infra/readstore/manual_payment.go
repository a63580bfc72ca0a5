package readstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"rentpay/internal/infra"
	"rentpay/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ManualPaymentReadStore struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewManualPaymentReadStore(db *pgxpool.Pool, logger *slog.Logger) queries.ManualPaymentViewRepo {
	return &ManualPaymentReadStore{db: db, logger: logger}
}

func (s *ManualPaymentReadStore) List(ctx context.Context, filter queries.ManualPaymentFilter) ([]*queries.ManualPaymentView, int64, error) {
	conditions := []string{"deleted_at IS NULL"}
	args := []any{}

	if filter.BookingID != nil {
		args = append(args, *filter.BookingID)
		conditions = append(conditions, fmt.Sprintf("booking_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")

	countQuery := "SELECT COUNT(*) FROM manual_payments WHERE " + where
	var total int64
	if err := s.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, infra.ClassifyPgErr(s.logger, "failed to count manual payments", err)
	}

	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)
	listQuery := fmt.Sprintf(`
		SELECT id, booking_id, amount_cents, method, status, recorded_by, note, created_at
		FROM manual_payments
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := s.db.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, infra.ClassifyPgErr(s.logger, "failed to list manual payments", err)
	}
	defer rows.Close()

	var views []*queries.ManualPaymentView
	for rows.Next() {
		var v queries.ManualPaymentView
		if err := rows.Scan(&v.ID, &v.BookingID, &v.AmountCents, &v.Method, &v.Status,
			&v.RecordedBy, &v.Note, &v.CreatedAt); err != nil {
			return nil, 0, infra.ClassifyPgErr(s.logger, "failed to scan manual payment view", err)
		}
		views = append(views, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, infra.ClassifyPgErr(s.logger, "failed to read manual payment views", err)
	}
	return views, total, nil
}
