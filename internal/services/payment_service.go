package services

import (
	"fmt"
	"log"
	"time"

	"bazaar/internal/models"
	"bazaar/internal/repositories"
	"bazaar/pkg/rabbitmq"

	"github.com/google/uuid"
)

// PaymentProvider is the external payment gateway the checkout flow talks
// to. CreateOrder registers a payment intent and returns the provider-side
// order id; VerifySignature checks the cryptographic proof of completion.
type PaymentProvider interface {
	CreateOrder(amount float64, currency, receipt string) (string, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// PaymentIntent is the provider order handle returned to the client so it
// can run the provider's checkout flow.
type PaymentIntent struct {
	ProviderOrderID string  `json:"provider_order_id"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	Receipt         string  `json:"receipt"`
}

// VerifyPaymentInput is the client-asserted payment completion to verify.
type VerifyPaymentInput struct {
	ProviderOrderID   string           `json:"razorpay_order_id" validate:"required"`
	ProviderPaymentID string           `json:"razorpay_payment_id" validate:"required"`
	Signature         string           `json:"razorpay_signature" validate:"required"`
	Source            PurchaseSource   `json:"source" validate:"required,oneof=cart direct"`
	Items             []OrderItemInput `json:"items" validate:"omitempty,dive"`
	PaymentMethod     string           `json:"payment_method" validate:"omitempty,oneof=credit_card debit_card upi net_banking wallet"`
	Discount          float64          `json:"discount" validate:"gte=0"`
	ShippingCharges   float64          `json:"shipping_charges" validate:"gte=0"`
	TaxAmount         float64          `json:"tax_amount" validate:"gte=0"`
}

// paymentEvent is the payload published when a payment is captured.
type paymentEvent struct {
	OrderID           string  `json:"order_id"`
	UserID            string  `json:"user_id"`
	ProviderPaymentID string  `json:"provider_payment_id"`
	Amount            float64 `json:"amount"`
	Provider          string  `json:"provider"`
}

const providerName = "razorpay"

// PaymentService authenticates payment completions against the provider's
// cryptographic proof, finalizes the paid order exactly once and keeps the
// payment ledger.
type PaymentService struct {
	provider    PaymentProvider
	paymentRepo repositories.PaymentRepository
	orderRepo   repositories.OrderRepository
	userRepo    repositories.UserRepository
	orderSvc    *OrderService
	mqClient    *rabbitmq.Client // nil disables event publishing
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(provider PaymentProvider, paymentRepo repositories.PaymentRepository, orderRepo repositories.OrderRepository, userRepo repositories.UserRepository, orderSvc *OrderService, mqClient *rabbitmq.Client) *PaymentService {
	return &PaymentService{
		provider:    provider,
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		orderSvc:    orderSvc,
		mqClient:    mqClient,
	}
}

// CreateIntent obtains a provider-side order handle for the given amount.
// Pure passthrough: no local state changes besides the external call.
func (s *PaymentService) CreateIntent(amount float64, currency, receipt string) (*PaymentIntent, error) {
	if amount <= 0 {
		return nil, newValidationError("amount must be greater than zero")
	}
	if currency == "" {
		currency = "INR"
	}
	if receipt == "" {
		receipt = fmt.Sprintf("receipt_%d", time.Now().UnixMilli())
	}

	providerOrderID, err := s.provider.CreateOrder(amount, currency, receipt)
	if err != nil {
		return nil, &ExternalServiceError{Service: providerName, Err: err}
	}

	return &PaymentIntent{
		ProviderOrderID: providerOrderID,
		Amount:          amount,
		Currency:        currency,
		Receipt:         receipt,
	}, nil
}

// VerifyPayment checks the provider signature and finalizes the paid order.
//
// The call is idempotent on ProviderPaymentID: a retry after a success
// returns the already-created order without touching stock, the cart or
// the ledger. A signature mismatch creates nothing; it is logged as a
// potential tamper attempt.
func (s *PaymentService) VerifyPayment(userID string, in VerifyPaymentInput) (*models.Order, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	// Idempotency gate: a ledger row for this provider payment id means a
	// previous call already completed the whole sequence.
	existing, err := s.paymentRepo.GetByProviderPaymentID(in.ProviderPaymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check payment ledger: %w", err)
	}
	if existing != nil {
		order, err := s.orderRepo.GetByID(existing.OrderID)
		if err != nil {
			return nil, fmt.Errorf("payment %s already processed but order lookup failed: %w",
				in.ProviderPaymentID, err)
		}
		log.Printf("Payment %s already processed, returning existing order %s",
			in.ProviderPaymentID, order.OrderCode)
		return order, nil
	}

	if !s.provider.VerifySignature(in.ProviderOrderID, in.ProviderPaymentID, in.Signature) {
		log.Printf("Payment verification failed for user %s, provider order %s: signature mismatch (possible tampering)",
			userID, in.ProviderOrderID)
		return nil, ErrPaymentVerificationFailed
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	if !user.Address.Complete() {
		return nil, ErrMissingAddress
	}

	method := in.PaymentMethod
	if method == "" {
		method = models.PaymentMethodUPI
	}
	now := time.Now()

	// The order workflow re-validates stock against the live catalog, so a
	// product depleted between intent creation and verification surfaces
	// here as InsufficientStock.
	order, err := s.orderSvc.CreateOrder(userID, CreateOrderInput{
		Source:          in.Source,
		Items:           in.Items,
		ShippingAddress: user.Address,
		PaymentMethod:   method,
		Discount:        in.Discount,
		ShippingCharges: in.ShippingCharges,
		TaxAmount:       in.TaxAmount,
		payment: &models.PaymentInfo{
			Method:        method,
			Status:        models.PaymentStatusCompleted,
			TransactionID: in.ProviderPaymentID,
			PaymentDate:   &now,
		},
	})
	if err != nil {
		return nil, err
	}

	ledgerEntry := &models.Payment{
		ID:                uuid.New().String(),
		OrderID:           order.ID,
		UserID:            userID,
		Amount:            order.FinalAmount,
		Currency:          "INR",
		Provider:          providerName,
		Status:            models.LedgerStatusSuccess,
		Method:            method,
		ProviderPaymentID: in.ProviderPaymentID,
		ProviderOrderID:   in.ProviderOrderID,
		PaidAt:            &now,
	}
	if err := s.paymentRepo.Create(ledgerEntry); err != nil {
		// Without the ledger row a retry would duplicate the order, so the
		// whole sequence is unwound and the caller may retry cleanly.
		s.orderSvc.compensateOrder(order)
		return nil, fmt.Errorf("failed to record payment for order %s: %w", order.ID, err)
	}

	s.publish(rabbitmq.EventPaymentCaptured, paymentEvent{
		OrderID:           order.ID,
		UserID:            userID,
		ProviderPaymentID: in.ProviderPaymentID,
		Amount:            order.FinalAmount,
		Provider:          providerName,
	})

	return order, nil
}

// GetPaymentByOrder retrieves the ledger entry for an order.
func (s *PaymentService) GetPaymentByOrder(orderID string) (*models.Payment, error) {
	return s.paymentRepo.GetByOrderID(orderID)
}

func (s *PaymentService) publish(event string, payload interface{}) {
	if s.mqClient == nil {
		return
	}
	if err := s.mqClient.Publish(event, payload); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", event, err)
	}
}
