package gateway

// Wire shapes for the external payment processor API. Amounts are integer
// cents throughout; the processor does not deal in fractional units.

type CaptureMode string

const (
	CaptureModeManual    CaptureMode = "manual"
	CaptureModeAutomatic CaptureMode = "automatic"
)

type AuthorizationRequest struct {
	AmountCents      int64       `json:"amount_cents"`
	Currency         string      `json:"currency"`
	PaymentMethodRef string      `json:"payment_method_ref,omitempty"`
	CustomerRef      string      `json:"customer_ref,omitempty"`
	CaptureMode      CaptureMode `json:"capture_mode"`
	CustomerPresent  bool        `json:"customer_present"`
	Description      string      `json:"description,omitempty"`
}

type AuthorizationResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	ClientSecret string `json:"client_secret,omitempty"`
	AmountCents  int64  `json:"amount_cents"`
	Currency     string `json:"currency"`
}

type CheckoutSessionRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Reference   string `json:"reference"`
	Description string `json:"description,omitempty"`
	SuccessURL  string `json:"success_url"`
	CancelURL   string `json:"cancel_url"`
}

type CheckoutSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type CaptureOrVoidRequest struct {
	AmountCents int64 `json:"amount_cents,omitempty"`
}
