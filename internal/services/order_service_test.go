package services_test

import (
	"fmt"
	"strings"
	"testing"

	"bazaar/internal/models"
	"bazaar/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of repositories.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) GetAll(page, limit int) ([]models.Order, int64, error) {
	args := m.Called(page, limit)
	return args.Get(0).([]models.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByUser(userID string) ([]models.Order, error) {
	args := m.Called(userID)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetBySeller(sellerID string, status models.OrderStatus, page, limit int) ([]models.Order, int64, error) {
	args := m.Called(sellerID, status, page, limit)
	return args.Get(0).([]models.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) Create(order *models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(order *models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStatus(id string, status models.OrderStatus) error {
	args := m.Called(id, status)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockCartRepository is a mock implementation of repositories.CartRepository
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) GetByUser(userID string) (*models.Cart, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockCartRepository) Save(cart *models.Cart) error {
	args := m.Called(cart)
	return args.Error(0)
}

func (m *MockCartRepository) DeleteByUser(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

var testShippingAddress = models.Address{
	Street:  "12 MG Road",
	City:    "Bengaluru",
	State:   "Karnataka",
	Pincode: "560001",
}

func newOrderServiceWithMocks() (*services.OrderService, *MockOrderRepository, *MockProductRepository, *MockCartRepository) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	cartRepo := new(MockCartRepository)
	svc := services.NewOrderService(orderRepo, productRepo, cartRepo, nil)
	return svc, orderRepo, productRepo, cartRepo
}

func TestOrderService_CreateOrder_Direct(t *testing.T) {
	svc, orderRepo, productRepo, cartRepo := newOrderServiceWithMocks()

	product := &models.Product{ID: "p1", Name: "Laptop", Price: 50.0, Stock: 10, VendorID: "vendor-1"}
	productRepo.On("GetByID", "p1").Return(product, nil).Once()
	productRepo.On("DecrementStock", "p1", 2).Return(true, nil).Once()
	orderRepo.On("Create", mock.AnythingOfType("*models.Order")).Return(nil).Once()

	order, err := svc.CreateOrder("user-1", services.CreateOrderInput{
		Source:          services.SourceDirect,
		Items:           []services.OrderItemInput{{ProductID: "p1", Quantity: 2}},
		ShippingAddress: testShippingAddress,
		PaymentMethod:   models.PaymentMethodCOD,
	})

	assert.NoError(t, err)
	assert.NotNil(t, order)
	assert.Equal(t, "user-1", order.UserID)
	assert.Equal(t, "vendor-1", order.SellerID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.Payment.Status)
	assert.Equal(t, models.PaymentMethodCOD, order.Payment.Method)
	assert.Equal(t, 100.0, order.TotalAmount)
	assert.Equal(t, 100.0, order.FinalAmount)
	assert.Len(t, order.Items, 1)
	assert.Equal(t, 50.0, order.Items[0].Price)
	assert.True(t, strings.HasPrefix(order.OrderCode, "ORD"))
	// Country defaults when the address omits it
	assert.Equal(t, "India", order.ShippingAddress.Country)

	// Direct purchases never touch the cart
	cartRepo.AssertNotCalled(t, "GetByUser", mock.Anything)
	cartRepo.AssertNotCalled(t, "DeleteByUser", mock.Anything)
	orderRepo.AssertExpectations(t)
	productRepo.AssertExpectations(t)
}

func TestOrderService_CreateOrder_FromCart(t *testing.T) {
	svc, orderRepo, productRepo, cartRepo := newOrderServiceWithMocks()

	// The cart line carries a stale price; the order must use the catalog price.
	cart := &models.Cart{
		ID:     "cart-1",
		UserID: "user-1",
		Items:  []models.CartItem{{ProductID: "p1", Quantity: 2, Price: 5.0}},
	}
	product := &models.Product{ID: "p1", Name: "Laptop", Price: 50.0, Stock: 10, VendorID: "vendor-1"}

	cartRepo.On("GetByUser", "user-1").Return(cart, nil).Once()
	productRepo.On("GetByID", "p1").Return(product, nil).Once()
	productRepo.On("DecrementStock", "p1", 2).Return(true, nil).Once()
	orderRepo.On("Create", mock.AnythingOfType("*models.Order")).Return(nil).Once()
	cartRepo.On("DeleteByUser", "user-1").Return(nil).Once()

	order, err := svc.CreateOrder("user-1", services.CreateOrderInput{
		Source:          services.SourceCart,
		ShippingAddress: testShippingAddress,
		PaymentMethod:   models.PaymentMethodUPI,
	})

	assert.NoError(t, err)
	assert.Equal(t, 50.0, order.Items[0].Price)
	assert.Equal(t, 100.0, order.TotalAmount)
	orderRepo.AssertExpectations(t)
	productRepo.AssertExpectations(t)
	cartRepo.AssertExpectations(t)
}

func TestOrderService_CreateOrder_EmptyCart(t *testing.T) {
	svc, _, _, cartRepo := newOrderServiceWithMocks()

	// No cart at all is equivalent to an empty one.
	cartRepo.On("GetByUser", "user-1").Return(nil, nil).Once()

	_, err := svc.CreateOrder("user-1", services.CreateOrderInput{
		Source:          services.SourceCart,
		ShippingAddress: testShippingAddress,
		PaymentMethod:   models.PaymentMethodCOD,
	})

	assert.ErrorIs(t, err, services.ErrCartEmpty)
	cartRepo.AssertExpectations(t)
}

func TestOrderService_CreateOrder_InsufficientStock(t *testing.T) {
	svc, _, productRepo, _ := newOrderServiceWithMocks()

	product := &models.Product{ID: "p1", Name: "Laptop", Price: 50.0, Stock: 1, VendorID: "vendor-1"}
	productRepo.On("GetByID", "p1").Return(product, nil).Once()

	_, err := svc.CreateOrder("user-1", services.CreateOrderInput{
		Source:          services.SourceDirect,
		Items:           []services.OrderItemInput{{ProductID: "p1", Quantity: 2}},
		ShippingAddress: testShippingAddress,
		PaymentMethod:   models.PaymentMethodCOD,
	})

	var stockErr *services.InsufficientStockError
	assert.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "p1", stockErr.ProductID)
	assert.Equal(t, 2, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Available)

	// Validation failed before any stock was taken
	productRepo.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything)
	productRepo.AssertExpectations(t)
}

func TestOrderService_CreateOrder_RollbackOnRaceLoss(t *testing.T) {
	svc, _, productRepo, _ := newOrderServiceWithMocks()

	// Both lines validate, but a concurrent buyer drains p2 before the
	// decrement. The stock taken for p1 must be handed back.
	p1 := &models.Product{ID: "p1", Name: "Laptop", Price: 50.0, Stock: 10, VendorID: "vendor-1"}
	p2 := &models.Product{ID: "p2", Name: "Mouse", Price: 10.0, Stock: 5, VendorID: "vendor-1"}
	productRepo.On("GetByID", "p1").Return(p1, nil)
	productRepo.On("GetByID", "p2").Return(p2, nil)
	productRepo.On("DecrementStock", "p1", 1).Return(true, nil).Once()
	productRepo.On("DecrementStock", "p2", 3).Return(false, nil).Once()
	productRepo.On("IncrementStock", "p1", 1).Return(nil).Once()

	_, err := svc.CreateOrder("user-1", services.CreateOrderInput{
		Source: services.SourceDirect,
		Items: []services.OrderItemInput{
			{ProductID: "p1", Quantity: 1},
			{ProductID: "p2", Quantity: 3},
		},
		ShippingAddress: testShippingAddress,
		PaymentMethod:   models.PaymentMethodCOD,
	})

	var stockErr *services.InsufficientStockError
	assert.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "p2", stockErr.ProductID)
	productRepo.AssertExpectations(t)
}

func TestOrderService_CreateOrder_RollbackOnPersistFailure(t *testing.T) {
	svc, orderRepo, productRepo, _ := newOrderServiceWithMocks()

	product := &models.Product{ID: "p1", Name: "Laptop", Price: 50.0, Stock: 10, VendorID: "vendor-1"}
	productRepo.On("GetByID", "p1").Return(product, nil).Once()
	productRepo.On("DecrementStock", "p1", 2).Return(true, nil).Once()
	orderRepo.On("Create", mock.AnythingOfType("*models.Order")).Return(fmt.Errorf("database error")).Once()
	productRepo.On("IncrementStock", "p1", 2).Return(nil).Once()

	_, err := svc.CreateOrder("user-1", services.CreateOrderInput{
		Source:          services.SourceDirect,
		Items:           []services.OrderItemInput{{ProductID: "p1", Quantity: 2}},
		ShippingAddress: testShippingAddress,
		PaymentMethod:   models.PaymentMethodCOD,
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create order")
	orderRepo.AssertExpectations(t)
	productRepo.AssertExpectations(t)
}

func TestOrderService_CreateOrder_RollbackOnCartClearFailure(t *testing.T) {
	svc, orderRepo, productRepo, cartRepo := newOrderServiceWithMocks()

	cart := &models.Cart{
		ID:     "cart-1",
		UserID: "user-1",
		Items:  []models.CartItem{{ProductID: "p1", Quantity: 2, Price: 50.0}},
	}
	product := &models.Product{ID: "p1", Name: "Laptop", Price: 50.0, Stock: 10, VendorID: "vendor-1"}

	cartRepo.On("GetByUser", "user-1").Return(cart, nil).Once()
	productRepo.On("GetByID", "p1").Return(product, nil).Once()
	productRepo.On("DecrementStock", "p1", 2).Return(true, nil).Once()
	orderRepo.On("Create", mock.AnythingOfType("*models.Order")).Return(nil).Once()
	cartRepo.On("DeleteByUser", "user-1").Return(fmt.Errorf("database error")).Once()
	// The half-created order is unwound: deleted, stock handed back.
	orderRepo.On("Delete", mock.AnythingOfType("string")).Return(nil).Once()
	productRepo.On("IncrementStock", "p1", 2).Return(nil).Once()

	_, err := svc.CreateOrder("user-1", services.CreateOrderInput{
		Source:          services.SourceCart,
		ShippingAddress: testShippingAddress,
		PaymentMethod:   models.PaymentMethodCOD,
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clear cart")
	orderRepo.AssertExpectations(t)
	productRepo.AssertExpectations(t)
	cartRepo.AssertExpectations(t)
}

func TestOrderService_CreateOrder_RequiresAddressAndPrincipal(t *testing.T) {
	svc, _, _, _ := newOrderServiceWithMocks()

	input := services.CreateOrderInput{
		Source:        services.SourceDirect,
		Items:         []services.OrderItemInput{{ProductID: "p1", Quantity: 1}},
		PaymentMethod: models.PaymentMethodCOD,
	}

	_, err := svc.CreateOrder("", input)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	var validationErr *services.ValidationError
	_, err = svc.CreateOrder("user-1", input) // no shipping address
	assert.ErrorAs(t, err, &validationErr)
}

func TestOrderService_CancelOrder(t *testing.T) {
	svc, orderRepo, productRepo, _ := newOrderServiceWithMocks()

	order := &models.Order{
		ID:     "o1",
		UserID: "user-1",
		Status: models.OrderStatusConfirmed,
		Items:  []models.OrderItem{{ProductID: "p1", Quantity: 2}},
		Payment: models.PaymentInfo{
			Method: models.PaymentMethodUPI,
			Status: models.PaymentStatusCompleted,
		},
	}
	orderRepo.On("GetByID", "o1").Return(order, nil).Once()
	orderRepo.On("Update", mock.AnythingOfType("*models.Order")).Return(nil).Once()
	productRepo.On("IncrementStock", "p1", 2).Return(nil).Once()

	cancelled, err := svc.CancelOrder("user-1", "o1", "changed my mind")

	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	// A captured payment is flagged for refund
	assert.Equal(t, models.PaymentStatusRefunded, cancelled.Payment.Status)
	assert.Contains(t, cancelled.Notes, "changed my mind")
	orderRepo.AssertExpectations(t)
	productRepo.AssertExpectations(t)
}

func TestOrderService_CancelOrder_NotCancellable(t *testing.T) {
	svc, orderRepo, productRepo, _ := newOrderServiceWithMocks()

	for _, status := range []models.OrderStatus{
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
		models.OrderStatusCancelled,
	} {
		order := &models.Order{
			ID:     "o1",
			UserID: "user-1",
			Status: status,
			Items:  []models.OrderItem{{ProductID: "p1", Quantity: 1}},
		}
		orderRepo.On("GetByID", "o1").Return(order, nil).Once()

		_, err := svc.CancelOrder("user-1", "o1", "")
		var stateErr *services.InvalidStateError
		assert.ErrorAs(t, err, &stateErr, "status %s should not be cancellable", status)
	}

	productRepo.AssertNotCalled(t, "IncrementStock", mock.Anything, mock.Anything)
	orderRepo.AssertExpectations(t)
}

func TestOrderService_CancelOrder_RestoreContinuesPastFailure(t *testing.T) {
	svc, orderRepo, productRepo, _ := newOrderServiceWithMocks()

	order := &models.Order{
		ID:     "o1",
		UserID: "user-1",
		Status: models.OrderStatusPending,
		Items: []models.OrderItem{
			{ProductID: "p1", Quantity: 1},
			{ProductID: "p2", Quantity: 3},
		},
	}
	orderRepo.On("GetByID", "o1").Return(order, nil).Once()
	orderRepo.On("Update", mock.AnythingOfType("*models.Order")).Return(nil).Once()
	productRepo.On("IncrementStock", "p1", 1).Return(fmt.Errorf("database error")).Once()
	productRepo.On("IncrementStock", "p2", 3).Return(nil).Once()

	// One line failing to restore must not skip the lines after it, and the
	// cancellation itself still stands.
	cancelled, err := svc.CancelOrder("user-1", "o1", "")
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	orderRepo.AssertExpectations(t)
	productRepo.AssertExpectations(t)
}

func TestOrderService_CancelOrder_OwnershipScoped(t *testing.T) {
	svc, orderRepo, _, _ := newOrderServiceWithMocks()

	order := &models.Order{ID: "o1", UserID: "user-2", Status: models.OrderStatusPending}
	orderRepo.On("GetByID", "o1").Return(order, nil).Once()

	// Another user's order looks like a missing order, not a forbidden one.
	_, err := svc.CancelOrder("user-1", "o1", "")
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
	orderRepo.AssertExpectations(t)
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	svc, orderRepo, _, _ := newOrderServiceWithMocks()

	order := &models.Order{ID: "o1", UserID: "user-1", Status: models.OrderStatusPending}
	orderRepo.On("GetByID", "o1").Return(order, nil).Once()
	orderRepo.On("UpdateStatus", "o1", models.OrderStatusConfirmed).Return(nil).Once()

	updated, err := svc.UpdateOrderStatus("o1", models.OrderStatusConfirmed)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, updated.Status)
	orderRepo.AssertExpectations(t)
}

func TestOrderService_UpdateOrderStatus_CancelRestoresStock(t *testing.T) {
	svc, orderRepo, productRepo, _ := newOrderServiceWithMocks()

	order := &models.Order{
		ID:     "o1",
		UserID: "user-1",
		Status: models.OrderStatusProcessing,
		Items:  []models.OrderItem{{ProductID: "p1", Quantity: 2}},
		Payment: models.PaymentInfo{
			Method: models.PaymentMethodUPI,
			Status: models.PaymentStatusCompleted,
		},
	}
	orderRepo.On("GetByID", "o1").Return(order, nil).Once()
	orderRepo.On("Update", mock.AnythingOfType("*models.Order")).Return(nil).Once()
	productRepo.On("IncrementStock", "p1", 2).Return(nil).Once()

	// An admin cancelling through the status endpoint gets the same effects
	// as a buyer cancellation: stock back, payment flagged for refund.
	updated, err := svc.UpdateOrderStatus("o1", models.OrderStatusCancelled)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, updated.Status)
	assert.Equal(t, models.PaymentStatusRefunded, updated.Payment.Status)
	orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
	orderRepo.AssertExpectations(t)
	productRepo.AssertExpectations(t)
}

func TestOrderService_UpdateOrderStatus_IllegalTransition(t *testing.T) {
	svc, orderRepo, _, _ := newOrderServiceWithMocks()

	order := &models.Order{ID: "o1", UserID: "user-1", Status: models.OrderStatusPending}
	orderRepo.On("GetByID", "o1").Return(order, nil).Once()

	// pending straight to delivered skips the whole fulfilment chain
	_, err := svc.UpdateOrderStatus("o1", models.OrderStatusDelivered)
	var stateErr *services.InvalidStateError
	assert.ErrorAs(t, err, &stateErr)
	assert.Equal(t, models.OrderStatusPending, stateErr.Current)
	assert.Equal(t, models.OrderStatusDelivered, stateErr.Attempted)

	orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
	orderRepo.AssertExpectations(t)
}

func TestOrderService_UpdateOrderStatus_UnknownStatus(t *testing.T) {
	svc, orderRepo, _, _ := newOrderServiceWithMocks()

	_, err := svc.UpdateOrderStatus("o1", models.OrderStatus("bogus"))
	var validationErr *services.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	orderRepo.AssertNotCalled(t, "GetByID", mock.Anything)
}

func TestOrderService_GetOrderByID_OwnershipScoped(t *testing.T) {
	svc, orderRepo, _, _ := newOrderServiceWithMocks()

	order := &models.Order{ID: "o1", UserID: "user-2", Status: models.OrderStatusPending}
	orderRepo.On("GetByID", "o1").Return(order, nil).Twice()

	got, err := svc.GetOrderByID("user-2", "o1")
	assert.NoError(t, err)
	assert.Equal(t, "o1", got.ID)

	_, err = svc.GetOrderByID("user-1", "o1")
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
	orderRepo.AssertExpectations(t)
}
