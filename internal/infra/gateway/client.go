package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"rentpay/internal/pkg/config"
)

// Client is the narrow surface the orchestration core needs from the payment
// processor. No retries live here; callers own idempotency keys and retry
// policy.
type Client interface {
	CreateAuthorization(ctx context.Context, req AuthorizationRequest, idempotencyKey string) (*AuthorizationResponse, error)
	RetrieveAuthorization(ctx context.Context, authorizationRef string) (*AuthorizationResponse, error)
	CreateHostedCheckout(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSessionResponse, error)
	CaptureOrVoid(ctx context.Context, authorizationRef string, capture bool, req CaptureOrVoidRequest) (*AuthorizationResponse, error)
}

type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg config.GatewayConfig) Client {
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.ConnTimeout,
		},
	}
}

func (c *HTTPClient) CreateAuthorization(ctx context.Context, req AuthorizationRequest, idempotencyKey string) (*AuthorizationResponse, error) {
	url := fmt.Sprintf("%s/v1/authorizations", c.baseURL)
	return sendRequest[AuthorizationRequest, AuthorizationResponse](c, ctx, http.MethodPost, url, &req, idempotencyKey)
}

func (c *HTTPClient) RetrieveAuthorization(ctx context.Context, authorizationRef string) (*AuthorizationResponse, error) {
	url := fmt.Sprintf("%s/v1/authorizations/%s", c.baseURL, authorizationRef)
	return sendRequest[any, AuthorizationResponse](c, ctx, http.MethodGet, url, nil, "")
}

func (c *HTTPClient) CreateHostedCheckout(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSessionResponse, error) {
	url := fmt.Sprintf("%s/v1/checkout/sessions", c.baseURL)
	return sendRequest[CheckoutSessionRequest, CheckoutSessionResponse](c, ctx, http.MethodPost, url, &req, "")
}

func (c *HTTPClient) CaptureOrVoid(ctx context.Context, authorizationRef string, capture bool, req CaptureOrVoidRequest) (*AuthorizationResponse, error) {
	action := "void"
	if capture {
		action = "capture"
	}
	url := fmt.Sprintf("%s/v1/authorizations/%s/%s", c.baseURL, authorizationRef, action)
	return sendRequest[CaptureOrVoidRequest, AuthorizationResponse](c, ctx, http.MethodPost, url, &req, "")
}

func sendRequest[Req any, Resp any](c *HTTPClient, ctx context.Context, method, url string, reqBody *Req, idempotencyKey string) (*Resp, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("error marshalling json: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	if reqBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	if idempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		var errResp gatewayErrorResponse
		if err := json.Unmarshal(body, &errResp); err != nil {
			return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, &GatewayError{
			Code:         errResp.Err,
			Message:      errResp.Message,
			StatusCode:   resp.StatusCode,
			ClientSecret: errResp.ClientSecret,
		}
	}

	var gwResp Resp
	if err := json.NewDecoder(resp.Body).Decode(&gwResp); err != nil {
		return nil, fmt.Errorf("error decoding json response: %w", err)
	}

	return &gwResp, nil
}
