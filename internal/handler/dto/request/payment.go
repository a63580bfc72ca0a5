package request

import (
	"rentpay/internal/domain/payment"
	"rentpay/internal/usecase/commands"

	"github.com/google/uuid"
)

type CreateIntentRequest struct {
	BookingID   uuid.UUID `json:"booking_id" binding:"required"`
	AmountCents int64     `json:"amount_cents" binding:"required,gt=0"`
	Currency    string    `json:"currency" binding:"required"`
	Purpose     string    `json:"purpose" binding:"required"`
}

func (r CreateIntentRequest) DomainPurpose() (payment.Purpose, bool) {
	p := payment.Purpose(r.Purpose)
	return p, p.IsValid()
}

type CreateCheckoutSessionRequest struct {
	BookingID   uuid.UUID `json:"booking_id" binding:"required"`
	PaymentType string    `json:"payment_type" binding:"required"`
}

func (r CreateCheckoutSessionRequest) DomainPaymentType() (commands.PaymentType, bool) {
	t := commands.PaymentType(r.PaymentType)
	return t, t.IsValid()
}

type SecurityHoldRequest struct {
	BookingID uuid.UUID `json:"booking_id" binding:"required"`
}

type VerifyHoldRequest struct {
	BookingID        uuid.UUID `json:"booking_id" binding:"required"`
	PaymentMethodRef string    `json:"payment_method_ref" binding:"required"`
}

type ConfirmPaymentRequest struct {
	AuthorizationRef string `json:"authorization_ref" binding:"required"`
}

type ManualPaymentRequest struct {
	BookingID   uuid.UUID `json:"booking_id" binding:"required"`
	AmountCents int64     `json:"amount_cents" binding:"required,gt=0"`
	Method      string    `json:"method" binding:"required"`
	Status      string    `json:"status" binding:"required"`
	Note        *string   `json:"note,omitempty"`
}

func (r ManualPaymentRequest) ToInput() (commands.RecordManualPaymentInput, bool) {
	method := payment.ManualMethod(r.Method)
	status := payment.Status(r.Status)
	if !method.IsValid() || !status.IsValid() {
		return commands.RecordManualPaymentInput{}, false
	}
	note := ""
	if r.Note != nil {
		note = *r.Note
	}
	return commands.RecordManualPaymentInput{
		BookingID:   r.BookingID,
		AmountCents: r.AmountCents,
		Method:      method,
		Status:      status,
		Note:        note,
	}, true
}
