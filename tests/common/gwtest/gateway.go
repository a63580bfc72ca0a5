//go:build unit || e2e

package gwtest

import (
	"context"
	"fmt"
	"sync"

	"rentpay/internal/infra/gateway"
)

// StubGateway is an in-process stand-in for the payment processor API. It
// honors idempotency keys the way the real gateway does: the same key always
// returns the first authorization it produced.
type StubGateway struct {
	mu      sync.Mutex
	authSeq int
	csSeq   int
	auths   map[string]*gateway.AuthorizationResponse
	byKey   map[string]string // idempotency key -> authorization id

	// NextCreateErr fails the next CreateAuthorization call, then clears.
	NextCreateErr error
}

func NewStubGateway() *StubGateway {
	return &StubGateway{
		auths: make(map[string]*gateway.AuthorizationResponse),
		byKey: make(map[string]string),
	}
}

func (g *StubGateway) CreateAuthorization(
	_ context.Context,
	req gateway.AuthorizationRequest,
	idempotencyKey string,
) (*gateway.AuthorizationResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.NextCreateErr != nil {
		err := g.NextCreateErr
		g.NextCreateErr = nil
		return nil, err
	}

	if idempotencyKey != "" {
		if id, ok := g.byKey[idempotencyKey]; ok {
			return g.auths[id], nil
		}
	}

	g.authSeq++
	resp := &gateway.AuthorizationResponse{
		ID:          fmt.Sprintf("auth_e2e_%d", g.authSeq),
		Status:      "requires_confirmation",
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
	}
	g.auths[resp.ID] = resp
	if idempotencyKey != "" {
		g.byKey[idempotencyKey] = resp.ID
	}
	return resp, nil
}

func (g *StubGateway) RetrieveAuthorization(_ context.Context, ref string) (*gateway.AuthorizationResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if resp, ok := g.auths[ref]; ok {
		return resp, nil
	}
	return nil, &gateway.GatewayError{Code: gateway.CodeNotFound, StatusCode: 404}
}

func (g *StubGateway) CreateHostedCheckout(
	_ context.Context,
	req gateway.CheckoutSessionRequest,
) (*gateway.CheckoutSessionResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.csSeq++
	id := fmt.Sprintf("cs_e2e_%d", g.csSeq)
	return &gateway.CheckoutSessionResponse{
		ID:  id,
		URL: "https://checkout.test/" + id,
	}, nil
}

func (g *StubGateway) CaptureOrVoid(
	_ context.Context,
	ref string,
	capture bool,
	_ gateway.CaptureOrVoidRequest,
) (*gateway.AuthorizationResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	resp, ok := g.auths[ref]
	if !ok {
		return nil, &gateway.GatewayError{Code: gateway.CodeNotFound, StatusCode: 404}
	}
	if capture {
		resp.Status = "succeeded"
	} else {
		resp.Status = "canceled"
	}
	return resp, nil
}
