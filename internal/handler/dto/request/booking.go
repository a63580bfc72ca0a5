package request

import (
	"time"

	"rentpay/internal/usecase/commands"

	"github.com/google/uuid"
)

type RegisterBookingRequest struct {
	CustomerID         uuid.UUID `json:"customer_id" binding:"required"`
	StartAt            time.Time `json:"start_at" binding:"required"`
	EndAt              time.Time `json:"end_at" binding:"required"`
	TotalAmountCents   int64     `json:"total_amount_cents" binding:"required,gt=0"`
	DepositAmountCents int64     `json:"deposit_amount_cents" binding:"gte=0"`
	HoldAmountCents    int64     `json:"hold_amount_cents" binding:"gte=0"`
}

func (r RegisterBookingRequest) ToInput() commands.RegisterBookingInput {
	return commands.RegisterBookingInput{
		CustomerID:         r.CustomerID,
		StartAt:            r.StartAt,
		EndAt:              r.EndAt,
		TotalAmountCents:   r.TotalAmountCents,
		DepositAmountCents: r.DepositAmountCents,
		HoldAmountCents:    r.HoldAmountCents,
	}
}
