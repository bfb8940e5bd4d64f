package models

import (
	"time"

	"gorm.io/gorm"
)

// LedgerStatus is the outcome recorded for a payment attempt.
type LedgerStatus string

const (
	LedgerStatusPending  LedgerStatus = "pending"
	LedgerStatusSuccess  LedgerStatus = "success"
	LedgerStatusFailed   LedgerStatus = "failed"
	LedgerStatusRefunded LedgerStatus = "refunded"
)

// Payment is one row of the payment ledger: a reconciliation record linked
// 1:1 to an order. It is appended on the happy path and never drives order
// status on its own.
type Payment struct {
	ID                string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID           string       `json:"order_id" gorm:"uniqueIndex;type:varchar(36)"`
	UserID            string       `json:"user_id" gorm:"type:varchar(36);index"`
	Amount            float64      `json:"amount"`
	Currency          string       `json:"currency" gorm:"type:varchar(8);default:INR"`
	Provider          string       `json:"provider" gorm:"type:varchar(30)"`
	Status            LedgerStatus `json:"status" gorm:"type:varchar(20);default:pending"`
	Method            string       `json:"method" gorm:"type:varchar(30)"`
	ProviderPaymentID string       `json:"provider_payment_id" gorm:"uniqueIndex;type:varchar(64)"`
	ProviderOrderID   string       `json:"provider_order_id" gorm:"type:varchar(64)"`
	Receipt           string       `json:"receipt,omitempty"`
	PaidAt            *time.Time   `json:"paid_at,omitempty"`
	FailureReason     string       `json:"failure_reason,omitempty"`
	RefundAmount      float64      `json:"refund_amount,omitempty"`
	RefundedAt        *time.Time   `json:"refunded_at,omitempty"`
	gorm.Model                     // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
