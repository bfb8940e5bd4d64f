package repositories

import (
	"bazaar/internal/models"
)

// CartRepository defines the interface for cart data access. Carts are
// created lazily, so GetByUser returns (nil, nil) when the user has none.
type CartRepository interface {
	GetByUser(userID string) (*models.Cart, error)
	Save(cart *models.Cart) error
	DeleteByUser(userID string) error
}
