package models

import "gorm.io/gorm"

// Roles a user account can hold.
const (
	RoleUser   = "user"
	RoleAdmin  = "admin"
	RoleVendor = "vendor"
)

// Address is a postal address. It is stored on the user profile and
// snapshotted onto orders at checkout time.
type Address struct {
	Street   string `json:"street"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
	Country  string `json:"country"`
	Landmark string `json:"landmark"`
}

// Complete reports whether the address has every field required for delivery.
// Country and landmark are optional; country defaults at checkout.
func (a Address) Complete() bool {
	return a.Street != "" && a.City != "" && a.State != "" && a.Pincode != ""
}

// User represents an account in the store: a buyer by default, or an
// admin/vendor on the seller side.
type User struct {
	ID         string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username   string  `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email      string  `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password   string  `gorm:"type:varchar(255)" validate:"required,min=6"` // No json tag for security
	FullName   string  `json:"full_name" validate:"omitempty,max=150"`
	Phone      string  `json:"phone" validate:"omitempty,max=20"`
	Role       string  `json:"role" gorm:"type:varchar(20);default:user" validate:"omitempty,oneof=user admin vendor"`
	Address    Address `json:"address" gorm:"embedded;embeddedPrefix:address_"`
	gorm.Model         // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
