package repositories

import (
	"fmt"
	"sync"

	"bazaar/internal/models"

	"github.com/google/uuid"
)

// MockPaymentRepository is an in-memory implementation of PaymentRepository.
type MockPaymentRepository struct {
	payments map[string]models.Payment
	mu       sync.RWMutex
}

// NewMockPaymentRepository creates a new instance of MockPaymentRepository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]models.Payment),
	}
}

// Create appends a new ledger entry, rejecting duplicate provider payment ids.
func (r *MockPaymentRepository) Create(payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	for _, p := range r.payments {
		if p.ProviderPaymentID != "" && p.ProviderPaymentID == payment.ProviderPaymentID {
			return fmt.Errorf("payment with provider payment ID %s already exists", payment.ProviderPaymentID)
		}
	}
	r.payments[payment.ID] = *payment
	return nil
}

// GetByProviderPaymentID returns the entry for a provider payment id, or
// (nil, nil) when none exists.
func (r *MockPaymentRepository) GetByProviderPaymentID(providerPaymentID string) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.payments {
		if p.ProviderPaymentID == providerPaymentID {
			payment := p
			return &payment, nil
		}
	}
	return nil, nil
}

// GetByOrderID returns the entry linked to an order.
func (r *MockPaymentRepository) GetByOrderID(orderID string) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.payments {
		if p.OrderID == orderID {
			payment := p
			return &payment, nil
		}
	}
	return nil, fmt.Errorf("payment for order %s not found", orderID)
}
