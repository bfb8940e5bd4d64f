package services

import (
	"errors"
	"fmt"

	"bazaar/internal/models"
)

// Sentinel errors shared across the order and payment workflows. Handlers
// map these to HTTP status codes with errors.Is / errors.As instead of
// matching on message text.
var (
	// ErrUnauthenticated means no authenticated principal was supplied.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrProductNotFound means a referenced product does not exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrOrderNotFound means the order does not exist or does not belong
	// to the caller.
	ErrOrderNotFound = errors.New("order not found")

	// ErrCartNotFound means the user has no cart or the item is absent.
	ErrCartNotFound = errors.New("cart not found")

	// ErrCartEmpty means a cart-sourced purchase found nothing to buy.
	ErrCartEmpty = errors.New("cart is empty")

	// ErrMissingAddress means payment cannot be finalized because the
	// buyer has no complete shipping address on file.
	ErrMissingAddress = errors.New("shipping address not found")

	// ErrPaymentVerificationFailed means the provider signature did not
	// match. No order is ever created past this error.
	ErrPaymentVerificationFailed = errors.New("payment verification failed: signature mismatch")
)

// ValidationError reports missing or malformed input detected before any
// mutation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InsufficientStockError reports that a requested quantity exceeds the
// available stock, carrying the available quantity so the caller can adjust.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (requested: %d, available: %d)",
		e.ProductName, e.Requested, e.Available)
}

// InvalidStateError reports an operation that is not legal for the order's
// current status. Attempted is empty for cancellations.
type InvalidStateError struct {
	Current   models.OrderStatus
	Attempted models.OrderStatus
}

func (e *InvalidStateError) Error() string {
	if e.Attempted == "" {
		return fmt.Sprintf("operation not allowed for order in status %q", e.Current)
	}
	return fmt.Sprintf("illegal status transition from %q to %q", e.Current, e.Attempted)
}

// ExternalServiceError wraps a failure from an outside collaborator (the
// payment provider, the broker). Callers may retry; no local mutation was
// committed.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}
