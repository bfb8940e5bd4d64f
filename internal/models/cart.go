package models

import (
	"time"

	"gorm.io/gorm"
)

// CartItem is a single line in a cart. Price is the unit price captured
// when the line was added, kept so the cart total is stable until checkout
// re-reads the catalog.
type CartItem struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	CartID    string    `json:"-" gorm:"type:varchar(36);index"`
	ProductID string    `json:"product_id" gorm:"type:varchar(36)"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
	Price     float64   `json:"price"`
	AddedAt   time.Time `json:"added_at"`
}

// Cart is the per-user mutable collection of items awaiting checkout.
// TotalItems and TotalPrice are derived from the lines and must be
// recomputed on every mutation.
type Cart struct {
	ID         string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID     string     `json:"user_id" gorm:"uniqueIndex;type:varchar(36)"`
	Items      []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	TotalItems int        `json:"total_items"`
	TotalPrice float64    `json:"total_price"`
	gorm.Model            // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// RecomputeTotals folds the derived totals over the lines.
func (c *Cart) RecomputeTotals() {
	totalItems := 0
	totalPrice := 0.0
	for _, item := range c.Items {
		totalItems += item.Quantity
		totalPrice += item.Price * float64(item.Quantity)
	}
	c.TotalItems = totalItems
	c.TotalPrice = totalPrice
}

// IsEmpty reports whether the cart has no lines. An empty cart is
// equivalent to an absent one.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}
