package gateway

import (
	"errors"
	"fmt"
)

// Well-known processor error codes callers branch on.
const (
	CodeAuthenticationRequired = "authentication_required"
	CodeNotFound               = "resource_not_found"
)

type GatewayError struct {
	Code       string
	Message    string
	StatusCode int
	// ClientSecret carries the customer-verification challenge token when
	// Code is authentication_required.
	ClientSecret string
}

type gatewayErrorResponse struct {
	Err          string `json:"error"`
	Message      string `json:"message"`
	ClientSecret string `json:"client_secret,omitempty"`
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error [%s]: %s (status: %d)", e.Code, e.Message, e.StatusCode)
}

func (e *GatewayError) IsRetryable() bool {
	return e.StatusCode >= 500
}

func (e *GatewayError) IsAuthenticationRequired() bool {
	return e.Code == CodeAuthenticationRequired
}

func IsGatewayError(err error) (*GatewayError, bool) {
	var gwErr *GatewayError
	ok := errors.As(err, &gwErr)
	return gwErr, ok
}
