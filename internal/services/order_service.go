package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"bazaar/internal/models"
	"bazaar/internal/repositories"
	"bazaar/pkg/rabbitmq"

	"github.com/google/uuid"
)

// PurchaseSource says where an order's lines come from: the buyer's cart
// or a direct "buy now" request.
type PurchaseSource string

const (
	SourceCart   PurchaseSource = "cart"
	SourceDirect PurchaseSource = "direct"
)

// Country applied when the shipping address omits one.
const defaultCountry = "India"

// OrderItemInput is one requested line of a direct purchase. It carries no
// price: prices are always read from the catalog.
type OrderItemInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// CreateOrderInput is the validated purchase intent handed to CreateOrder.
type CreateOrderInput struct {
	Source          PurchaseSource   `json:"source" validate:"required,oneof=cart direct"`
	Items           []OrderItemInput `json:"items" validate:"omitempty,dive"`
	ShippingAddress models.Address   `json:"shipping_address"`
	PaymentMethod   string           `json:"payment_method" validate:"required,oneof=credit_card debit_card upi net_banking cod wallet"`
	Discount        float64          `json:"discount" validate:"gte=0"`
	ShippingCharges float64          `json:"shipping_charges" validate:"gte=0"`
	TaxAmount       float64          `json:"tax_amount" validate:"gte=0"`
	Notes           string           `json:"notes" validate:"omitempty,max=500"`

	// payment, when set, overrides the derived payment sub-record. Only the
	// payment verification workflow sets it; it is not reachable from JSON.
	payment *models.PaymentInfo
}

// orderEvent is the payload published for order lifecycle events.
type orderEvent struct {
	OrderID     string  `json:"order_id"`
	OrderCode   string  `json:"order_code"`
	UserID      string  `json:"user_id"`
	Status      string  `json:"status"`
	FinalAmount float64 `json:"final_amount"`
	Source      string  `json:"source,omitempty"`
}

// OrderService handles business logic related to orders: validation, stock
// reservation, order persistence and cart reconciliation.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	cartRepo    repositories.CartRepository
	mqClient    *rabbitmq.Client // nil disables event publishing
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, cartRepo repositories.CartRepository, mqClient *rabbitmq.Client) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		mqClient:    mqClient,
	}
}

// newOrderCode generates a human-readable, globally unique order code:
// a time component plus a random UUID segment, uppercased.
func newOrderCode() string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:5]
	return strings.ToUpper(fmt.Sprintf("ORD%d-%s", time.Now().UnixMilli(), suffix))
}

// CreateOrder turns a purchase intent into a persisted order while keeping
// catalog stock and cart state consistent.
//
// The sequence is: validate every line against the live catalog, snapshot
// prices, compute totals, conditionally decrement stock per line, persist
// the order, then clear the cart for cart-sourced purchases. Any failure
// after the first decrement re-increments what was taken and removes any
// half-created order, so no partial state survives.
func (s *OrderService) CreateOrder(userID string, in CreateOrderInput) (*models.Order, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if !in.ShippingAddress.Complete() {
		return nil, newValidationError("shipping address requires street, city, state and pincode")
	}
	if in.ShippingAddress.Country == "" {
		in.ShippingAddress.Country = defaultCountry
	}

	lines, err := s.resolveSourceLines(userID, in)
	if err != nil {
		return nil, err
	}

	// Validate every line and snapshot catalog prices before touching stock.
	var (
		items      []models.OrderItem
		priceLines []PriceLine
		sellerID   string
	)
	for _, line := range lines {
		product, err := s.productRepo.GetByID(line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, line.ProductID)
		}
		if product.Stock < line.Quantity {
			return nil, &InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   line.Quantity,
				Available:   product.Stock,
			}
		}
		if sellerID == "" {
			// Single seller per order, taken from the first product's vendor.
			sellerID = product.VendorID
		}
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Quantity:  line.Quantity,
			Price:     product.Price,
			SellerID:  product.VendorID,
		})
		priceLines = append(priceLines, PriceLine{UnitPrice: product.Price, Quantity: line.Quantity})
	}

	totals, err := ComputeTotals(priceLines, Adjustments{
		Discount:        in.Discount,
		ShippingCharges: in.ShippingCharges,
		TaxAmount:       in.TaxAmount,
	})
	if err != nil {
		return nil, err
	}

	payment := models.PaymentInfo{
		Method: in.PaymentMethod,
		Status: models.PaymentStatusPending, // COD stays pending until delivery
	}
	if in.payment != nil {
		payment = *in.payment
	}

	status := models.OrderStatusPending
	if payment.Status == models.PaymentStatusCompleted {
		status = models.OrderStatusConfirmed
	}

	order := &models.Order{
		ID:              uuid.New().String(),
		OrderCode:       newOrderCode(),
		UserID:          userID,
		SellerID:        sellerID,
		Items:           items,
		TotalAmount:     totals.TotalAmount,
		Discount:        in.Discount,
		ShippingCharges: in.ShippingCharges,
		TaxAmount:       in.TaxAmount,
		FinalAmount:     totals.FinalAmount,
		ShippingAddress: in.ShippingAddress,
		Payment:         payment,
		Status:          status,
		Notes:           in.Notes,
	}

	// Reserve stock line by line. The conditional decrement is the race
	// guard: a concurrent buyer may have taken the stock since validation,
	// in which case everything already taken is handed back.
	var decremented []models.OrderItem
	for _, item := range order.Items {
		ok, err := s.productRepo.DecrementStock(item.ProductID, item.Quantity)
		if err != nil {
			s.restoreStock(decremented)
			return nil, fmt.Errorf("failed to reserve stock for product %s: %w", item.ProductID, err)
		}
		if !ok {
			s.restoreStock(decremented)
			available := 0
			name := item.ProductID
			if product, perr := s.productRepo.GetByID(item.ProductID); perr == nil {
				available = product.Stock
				name = product.Name
			}
			return nil, &InsufficientStockError{
				ProductID:   item.ProductID,
				ProductName: name,
				Requested:   item.Quantity,
				Available:   available,
			}
		}
		decremented = append(decremented, item)
	}

	if err := s.orderRepo.Create(order); err != nil {
		s.restoreStock(decremented)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if in.Source == SourceCart {
		if err := s.cartRepo.DeleteByUser(userID); err != nil {
			s.compensateOrder(order)
			return nil, fmt.Errorf("failed to clear cart after order creation: %w", err)
		}
	}

	s.publish(rabbitmq.EventOrderCreated, orderEvent{
		OrderID:     order.ID,
		OrderCode:   order.OrderCode,
		UserID:      order.UserID,
		Status:      string(order.Status),
		FinalAmount: order.FinalAmount,
		Source:      string(in.Source),
	})

	return order, nil
}

// resolveSourceLines produces the requested (product, quantity) pairs for
// the purchase, either from the request itself or from the buyer's cart.
func (s *OrderService) resolveSourceLines(userID string, in CreateOrderInput) ([]OrderItemInput, error) {
	switch in.Source {
	case SourceDirect:
		if len(in.Items) == 0 {
			return nil, newValidationError("order must contain at least one item")
		}
		return in.Items, nil
	case SourceCart:
		cart, err := s.cartRepo.GetByUser(userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load cart: %w", err)
		}
		if cart.IsEmpty() {
			return nil, ErrCartEmpty
		}
		lines := make([]OrderItemInput, 0, len(cart.Items))
		for _, item := range cart.Items {
			lines = append(lines, OrderItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
		}
		return lines, nil
	default:
		return nil, newValidationError("purchase source must be %q or %q", SourceCart, SourceDirect)
	}
}

// restoreStock hands back stock reserved for the given lines. Used by
// compensating rollbacks and by cancellation. Best-effort: a failed line
// is logged CRITICAL and the remaining lines are still restored.
func (s *OrderService) restoreStock(items []models.OrderItem) {
	for _, item := range items {
		if err := s.productRepo.IncrementStock(item.ProductID, item.Quantity); err != nil {
			log.Printf("CRITICAL: failed to restore %d units of product %s: %v",
				item.Quantity, item.ProductID, err)
		}
	}
}

// compensateOrder unwinds a persisted order: the record is deleted and
// every line's stock is handed back. Used when a step after persistence
// fails, and by the payment workflow when the ledger write fails.
func (s *OrderService) compensateOrder(order *models.Order) {
	if err := s.orderRepo.Delete(order.ID); err != nil {
		log.Printf("CRITICAL: failed to delete order %s during rollback: %v", order.ID, err)
	}
	s.restoreStock(order.Items)
}

// CancelOrder cancels a buyer's order and restores the stock decremented
// at creation. Orders that are shipped, delivered or already cancelled
// cannot be cancelled.
func (s *OrderService) CancelOrder(userID, orderID, reason string) (*models.Order, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if orderID == "" {
		return nil, newValidationError("order ID is required")
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	// Ownership is part of the lookup: another user's order is "not found".
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}

	switch order.Status {
	case models.OrderStatusShipped, models.OrderStatusDelivered, models.OrderStatusCancelled:
		return nil, &InvalidStateError{Current: order.Status}
	}

	notes := "Order cancelled by user"
	if reason != "" {
		notes = fmt.Sprintf("Cancelled: %s", reason)
	}
	return s.finalizeCancellation(order, notes)
}

// finalizeCancellation applies the effects every cancellation shares,
// whoever initiated it: the status flip, the refund flag for captured
// payments, the per-line stock restore and the lifecycle event. Callers
// check ownership and state before calling.
func (s *OrderService) finalizeCancellation(order *models.Order, notes string) (*models.Order, error) {
	order.Status = models.OrderStatusCancelled
	order.Notes = notes
	if order.Payment.Status == models.PaymentStatusCompleted {
		// Flags refund intent; the refund itself runs out of band.
		order.Payment.Status = models.PaymentStatusRefunded
	}

	if err := s.orderRepo.Update(order); err != nil {
		return nil, fmt.Errorf("failed to cancel order %s: %w", order.ID, err)
	}

	// Inverse of the creation-time decrement, line by line.
	s.restoreStock(order.Items)

	s.publish(rabbitmq.EventOrderCancelled, orderEvent{
		OrderID:     order.ID,
		OrderCode:   order.OrderCode,
		UserID:      order.UserID,
		Status:      string(order.Status),
		FinalAmount: order.FinalAmount,
	})

	return order, nil
}

// orderTransitions is the forward-moving order state machine. Cancellation
// branches off every state before shipping; returns branch off delivery.
var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:    {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed:  {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:    {models.OrderStatusDelivered},
	models.OrderStatusDelivered:  {models.OrderStatusReturned},
}

func transitionAllowed(from, to models.OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// UpdateOrderStatus moves an order along the fulfilment state machine.
// Illegal jumps (e.g. pending straight to delivered) are rejected.
// Authorization is the caller's responsibility.
func (s *OrderService) UpdateOrderStatus(orderID string, newStatus models.OrderStatus) (*models.Order, error) {
	if !models.ValidOrderStatus(newStatus) {
		return nil, newValidationError("invalid order status: %s", newStatus)
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}

	if !transitionAllowed(order.Status, newStatus) {
		return nil, &InvalidStateError{Current: order.Status, Attempted: newStatus}
	}

	// Cancelling is never a bare column write: the stock taken at creation
	// must come back and a captured payment must be flagged for refund.
	if newStatus == models.OrderStatusCancelled {
		return s.finalizeCancellation(order, "Order cancelled by admin")
	}

	if err := s.orderRepo.UpdateStatus(order.ID, newStatus); err != nil {
		return nil, fmt.Errorf("failed to update order status for order %s: %w", orderID, err)
	}
	order.Status = newStatus

	s.publish(rabbitmq.EventOrderStatusUpdated, orderEvent{
		OrderID:   order.ID,
		OrderCode: order.OrderCode,
		UserID:    order.UserID,
		Status:    string(newStatus),
	})

	return order, nil
}

// GetOrderByID retrieves a single order scoped to its owner. The id may be
// the record id or the order code.
func (s *OrderService) GetOrderByID(userID, orderID string) (*models.Order, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	return order, nil
}

// GetOrdersByUser retrieves a buyer's order history, newest first.
func (s *OrderService) GetOrdersByUser(userID string) ([]models.Order, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	return s.orderRepo.GetByUser(userID)
}

// GetOrdersBySeller retrieves a seller's orders with optional status
// filter and pagination.
func (s *OrderService) GetOrdersBySeller(sellerID string, status models.OrderStatus, page, limit int) ([]models.Order, int64, error) {
	if sellerID == "" {
		return nil, 0, ErrUnauthenticated
	}
	if status != "" && !models.ValidOrderStatus(status) {
		return nil, 0, newValidationError("invalid order status: %s", status)
	}
	return s.orderRepo.GetBySeller(sellerID, status, page, limit)
}

// GetAllOrders retrieves all orders with pagination. Admin only; the
// handler enforces the role.
func (s *OrderService) GetAllOrders(page, limit int) ([]models.Order, int64, error) {
	return s.orderRepo.GetAll(page, limit)
}

// publish sends a lifecycle event, best-effort. A broker failure is logged
// and never fails the workflow that triggered it.
func (s *OrderService) publish(event string, payload interface{}) {
	if s.mqClient == nil {
		return
	}
	if err := s.mqClient.Publish(event, payload); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", event, err)
	}
}
