package payment

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the processor answers 404 for a payment.
	ErrNotFound = errors.New("payment not found")

	// ErrUnavailable covers transport failures, timeouts and 5xx answers.
	ErrUnavailable = errors.New("payment processor unavailable")

	ErrMissingCredentials = errors.New("processor access token is not configured")
)

// APIError carries a non-2xx processor answer for diagnosis.
type APIError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: processor returned %d: %s", e.Operation, e.StatusCode, e.Body)
}
