package response

import (
	"time"

	"rentpay/internal/usecase/commands"
	"rentpay/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type IntentResponse struct {
	AuthorizationRef string `json:"authorization_ref"`
	ClientSecret     string `json:"client_secret,omitempty"`
	AmountCents      int64  `json:"amount_cents"`
	Currency         string `json:"currency"`
	Reused           bool   `json:"reused"`
}

func FromReserveOrReuse(result *commands.ReserveOrReuseResult) *IntentResponse {
	return &IntentResponse{
		AuthorizationRef: result.AuthorizationRef,
		ClientSecret:     result.ClientSecret,
		AmountCents:      result.AmountCents,
		Currency:         result.Currency,
		Reused:           result.Reused,
	}
}

type CheckoutSessionResponse struct {
	SessionURL  string `json:"session_url"`
	SessionID   string `json:"session_id"`
	AmountCents int64  `json:"amount_cents"`
}

type SecurityHoldResponse struct {
	AuthorizationRef string `json:"authorization_ref"`
	AmountCents      int64  `json:"amount_cents"`
	Status           string `json:"status"`
}

func FromHoldResult(result *commands.HoldResult) *SecurityHoldResponse {
	status := "placed"
	if result.AlreadyHeld {
		status = "already_held"
	}
	return &SecurityHoldResponse{
		AuthorizationRef: result.AuthorizationRef,
		AmountCents:      result.AmountCents,
		Status:           status,
	}
}

// RequiresActionResponse is the 402 payload for gateway-mandated customer
// verification.
type RequiresActionResponse struct {
	RequiresAction bool   `json:"requires_action"`
	ClientSecret   string `json:"client_secret"`
}

type VerifyHoldResponse struct {
	AuthorizationRef string `json:"authorization_ref"`
	AmountCents      int64  `json:"amount_cents"`
	Verified         bool   `json:"verified"`
}

type ReconciliationResponse struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BalanceCents  int64     `json:"balance_cents"`
	BillingStatus string    `json:"billing_status"`
	Status        string    `json:"status"`
}

func FromReconcileResult(result *commands.ReconcileResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		BookingID:     result.BookingID,
		BalanceCents:  result.BalanceCents,
		BillingStatus: result.BillingStatus.String(),
		Status:        result.Status.String(),
	}
}

type ManualPaymentResponse struct {
	ID             uuid.UUID               `json:"id"`
	BookingID      uuid.UUID               `json:"booking_id"`
	AmountCents    int64                   `json:"amount_cents"`
	Method         string                  `json:"method"`
	Status         string                  `json:"status"`
	Reconciliation *ReconciliationResponse `json:"reconciliation,omitempty"`
}

func FromManualPaymentResult(result *commands.ManualPaymentResult) *ManualPaymentResponse {
	resp := &ManualPaymentResponse{
		ID:          result.ID,
		BookingID:   result.BookingID,
		AmountCents: result.AmountCents,
		Method:      result.Method.String(),
		Status:      result.Status.String(),
	}
	if result.Reconciliation != nil {
		resp.Reconciliation = FromReconcileResult(result.Reconciliation)
	}
	return resp
}

type ManualPaymentListItem struct {
	ID          uuid.UUID `json:"id"`
	BookingID   uuid.UUID `json:"booking_id"`
	AmountCents int64     `json:"amount_cents"`
	Method      string    `json:"method"`
	Status      string    `json:"status"`
	RecordedBy  uuid.UUID `json:"recorded_by"`
	Note        *string   `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type ManualPaymentListResponse struct {
	Items      []*ManualPaymentListItem `json:"items"`
	Page       int                      `json:"page"`
	PageSize   int                      `json:"page_size"`
	TotalCount int64                    `json:"total_count"`
}

func FromManualPaymentPage(page *queries.ManualPaymentPage) (*ManualPaymentListResponse, error) {
	var resp ManualPaymentListResponse
	if err := copier.Copy(&resp, page); err != nil {
		return nil, err
	}
	return &resp, nil
}
