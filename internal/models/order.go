package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusReturned   OrderStatus = "returned"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned:
		return true
	}
	return false
}

// PaymentStatus is the state of the payment attached to an order.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Payment methods accepted at checkout.
const (
	PaymentMethodCreditCard = "credit_card"
	PaymentMethodDebitCard  = "debit_card"
	PaymentMethodUPI        = "upi"
	PaymentMethodNetBanking = "net_banking"
	PaymentMethodCOD        = "cod"
	PaymentMethodWallet     = "wallet"
)

// OrderItem snapshots one purchased line. Price is the catalog price at the
// moment the order was created; it is never re-derived from the live product.
type OrderItem struct {
	ID        uint    `json:"-" gorm:"primaryKey"`
	OrderID   string  `json:"-" gorm:"type:varchar(36);index"`
	ProductID string  `json:"product_id" gorm:"type:varchar(36)"`
	Quantity  int     `json:"quantity" validate:"required,min=1"`
	Price     float64 `json:"price"`
	SellerID  string  `json:"seller_id" gorm:"type:varchar(36)"`
}

// PaymentInfo is the payment sub-record embedded in an order.
type PaymentInfo struct {
	Method        string        `json:"method"`
	Status        PaymentStatus `json:"status" gorm:"type:varchar(20);default:pending"`
	TransactionID string        `json:"transaction_id,omitempty"`
	PaymentDate   *time.Time    `json:"payment_date,omitempty"`
}

// Order represents a customer order. Monetary aggregates satisfy
// FinalAmount = TotalAmount - Discount + ShippingCharges + TaxAmount.
type Order struct {
	ID              string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderCode       string      `json:"order_code" gorm:"uniqueIndex;type:varchar(40)"`
	UserID          string      `json:"user_id" gorm:"type:varchar(36);index"`
	SellerID        string      `json:"seller_id" gorm:"type:varchar(36);index"`
	Items           []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TotalAmount     float64     `json:"total_amount"`
	Discount        float64     `json:"discount"`
	ShippingCharges float64     `json:"shipping_charges"`
	TaxAmount       float64     `json:"tax_amount"`
	FinalAmount     float64     `json:"final_amount"`
	ShippingAddress Address     `json:"shipping_address" gorm:"embedded;embeddedPrefix:ship_"`
	Payment         PaymentInfo `json:"payment" gorm:"embedded;embeddedPrefix:payment_"`
	Status          OrderStatus `json:"status" gorm:"type:varchar(20);index;default:pending"`
	Notes           string      `json:"notes,omitempty"`
	gorm.Model                  // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
