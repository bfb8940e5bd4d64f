package repositories

import (
	"bazaar/internal/models"
)

// ProductRepository defines the interface for product data access.
//
// DecrementStock is the race-safe building block of order creation: it must
// subtract quantity only when enough stock remains, as one atomic
// check-and-decrement, and report whether it applied.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
	DecrementStock(id string, quantity int) (bool, error)
	IncrementStock(id string, quantity int) error
}
