package repositories

import (
	"bazaar/internal/models"
)

// PaymentRepository defines the interface for payment ledger access.
// GetByProviderPaymentID returns (nil, nil) when no row exists; it is the
// idempotency lookup for payment verification retries.
type PaymentRepository interface {
	Create(payment *models.Payment) error
	GetByProviderPaymentID(providerPaymentID string) (*models.Payment, error)
	GetByOrderID(orderID string) (*models.Payment, error)
}
