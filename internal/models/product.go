package models

import "gorm.io/gorm"

// Product represents a catalog item listed by a vendor.
type Product struct {
	ID            string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name          string  `json:"name" validate:"required,min=3,max=100"`
	Description   string  `json:"description" validate:"omitempty,max=500"`
	Price         float64 `json:"price" validate:"required,gt=0"`
	OriginalPrice float64 `json:"original_price" validate:"omitempty,gte=0"`
	Discount      float64 `json:"discount" validate:"gte=0,lte=100"` // percent off the original price
	Stock         int     `json:"stock" validate:"gte=0"`
	VendorID      string  `json:"vendor_id" gorm:"type:varchar(36);index"`
	gorm.Model            // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
