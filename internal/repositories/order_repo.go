package repositories

import (
	"bazaar/internal/models"
)

// OrderRepository defines the interface for order data access.
//
// GetByID accepts either the record id or the human-readable order code.
// Delete exists for compensating rollbacks only; completed orders are
// never removed through it.
type OrderRepository interface {
	GetAll(page, limit int) ([]models.Order, int64, error)
	GetByID(id string) (*models.Order, error)
	GetByUser(userID string) ([]models.Order, error)
	GetBySeller(sellerID string, status models.OrderStatus, page, limit int) ([]models.Order, int64, error)
	Create(order *models.Order) error
	Update(order *models.Order) error
	UpdateStatus(id string, status models.OrderStatus) error
	Delete(id string) error
}
