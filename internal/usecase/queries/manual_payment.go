package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type ManualPaymentView struct {
	ID          uuid.UUID `json:"id"`
	BookingID   uuid.UUID `json:"booking_id"`
	AmountCents int64     `json:"amount_cents"`
	Method      string    `json:"method"`
	Status      string    `json:"status"`
	RecordedBy  uuid.UUID `json:"recorded_by"`
	Note        *string   `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type ManualPaymentFilter struct {
	BookingID *uuid.UUID
	Status    *string
	Page      int
	PageSize  int
}

type ManualPaymentPage struct {
	Items      []*ManualPaymentView `json:"items"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
	TotalCount int64                `json:"total_count"`
}

type ManualPaymentViewRepo interface {
	List(ctx context.Context, filter ManualPaymentFilter) ([]*ManualPaymentView, int64, error)
}

type ManualPaymentQueries interface {
	List(ctx context.Context, filter ManualPaymentFilter) (*ManualPaymentPage, error)
}

type manualPaymentQueriesImpl struct {
	repo ManualPaymentViewRepo
}

func NewManualPaymentQueries(repo ManualPaymentViewRepo) ManualPaymentQueries {
	return &manualPaymentQueriesImpl{repo: repo}
}

func (q *manualPaymentQueriesImpl) List(ctx context.Context, filter ManualPaymentFilter) (*ManualPaymentPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultPageSize
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}

	items, total, err := q.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &ManualPaymentPage{
		Items:      items,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	}, nil
}
