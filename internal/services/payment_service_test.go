package services_test

import (
	"fmt"
	"testing"

	"bazaar/internal/models"
	"bazaar/internal/repositories"
	"bazaar/internal/services"

	"github.com/stretchr/testify/assert"
)

// fakePaymentProvider stands in for the gateway: signatures matching
// validSignature verify, everything else is rejected.
type fakePaymentProvider struct {
	providerOrderID string
	createErr       error
	validSignature  string
	createCalls     int
}

func (f *fakePaymentProvider) CreateOrder(amount float64, currency, receipt string) (string, error) {
	f.createCalls++
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.providerOrderID, nil
}

func (f *fakePaymentProvider) VerifySignature(orderID, paymentID, signature string) bool {
	return signature == f.validSignature
}

// stubUserRepo serves a single fixed user.
type stubUserRepo struct {
	user *models.User
}

func (s *stubUserRepo) Create(user *models.User) error { return nil }
func (s *stubUserRepo) Update(user *models.User) error { return nil }
func (s *stubUserRepo) GetByUsername(username string) (*models.User, error) {
	return s.user, nil
}
func (s *stubUserRepo) GetByEmail(email string) (*models.User, error) {
	return s.user, nil
}
func (s *stubUserRepo) GetByID(id string) (*models.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, fmt.Errorf("user with ID %s not found", id)
}

// failingPaymentRepo rejects every write, to exercise the compensation path.
type failingPaymentRepo struct{}

func (f *failingPaymentRepo) Create(payment *models.Payment) error {
	return fmt.Errorf("database error")
}
func (f *failingPaymentRepo) GetByProviderPaymentID(providerPaymentID string) (*models.Payment, error) {
	return nil, nil
}
func (f *failingPaymentRepo) GetByOrderID(orderID string) (*models.Payment, error) {
	return nil, fmt.Errorf("payment for order %s not found", orderID)
}

type paymentFixture struct {
	provider    *fakePaymentProvider
	productRepo *repositories.MockProductRepository
	orderRepo   *repositories.MockOrderRepository
	cartRepo    *repositories.MockCartRepository
	paymentRepo repositories.PaymentRepository
	svc         *services.PaymentService
}

func newPaymentFixture(paymentRepo repositories.PaymentRepository) *paymentFixture {
	provider := &fakePaymentProvider{
		providerOrderID: "order_prov_1",
		validSignature:  "valid-signature",
	}
	productRepo := repositories.NewMockProductRepository()
	orderRepo := repositories.NewMockOrderRepository()
	cartRepo := repositories.NewMockCartRepository()
	if paymentRepo == nil {
		paymentRepo = repositories.NewMockPaymentRepository()
	}
	userRepo := &stubUserRepo{user: &models.User{
		ID:       "user-1",
		Username: "buyer",
		Address:  testShippingAddress,
	}}
	orderSvc := services.NewOrderService(orderRepo, productRepo, cartRepo, nil)
	svc := services.NewPaymentService(provider, paymentRepo, orderRepo, userRepo, orderSvc, nil)

	productRepo.Create(&models.Product{ID: "p1", Name: "Laptop", Price: 50.0, Stock: 10, VendorID: "vendor-1"})

	return &paymentFixture{
		provider:    provider,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		paymentRepo: paymentRepo,
		svc:         svc,
	}
}

func verifyInput() services.VerifyPaymentInput {
	return services.VerifyPaymentInput{
		ProviderOrderID:   "order_prov_1",
		ProviderPaymentID: "pay_123",
		Signature:         "valid-signature",
		Source:            services.SourceDirect,
		Items:             []services.OrderItemInput{{ProductID: "p1", Quantity: 2}},
		PaymentMethod:     models.PaymentMethodUPI,
	}
}

func TestPaymentService_CreateIntent(t *testing.T) {
	fx := newPaymentFixture(nil)

	intent, err := fx.svc.CreateIntent(580.0, "", "")
	assert.NoError(t, err)
	assert.Equal(t, "order_prov_1", intent.ProviderOrderID)
	assert.Equal(t, 580.0, intent.Amount)
	// Currency and receipt default when omitted
	assert.Equal(t, "INR", intent.Currency)
	assert.NotEmpty(t, intent.Receipt)
}

func TestPaymentService_CreateIntent_ProviderDown(t *testing.T) {
	fx := newPaymentFixture(nil)
	fx.provider.createErr = fmt.Errorf("connection refused")

	_, err := fx.svc.CreateIntent(100.0, "INR", "receipt_1")
	var extErr *services.ExternalServiceError
	assert.ErrorAs(t, err, &extErr)
	assert.Equal(t, "razorpay", extErr.Service)
}

func TestPaymentService_CreateIntent_RejectsNonPositiveAmount(t *testing.T) {
	fx := newPaymentFixture(nil)

	var validationErr *services.ValidationError
	_, err := fx.svc.CreateIntent(0, "INR", "")
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, 0, fx.provider.createCalls)
}

func TestPaymentService_VerifyPayment(t *testing.T) {
	fx := newPaymentFixture(nil)

	order, err := fx.svc.VerifyPayment("user-1", verifyInput())
	assert.NoError(t, err)
	assert.NotNil(t, order)

	// A verified payment confirms the order immediately
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
	assert.Equal(t, models.PaymentStatusCompleted, order.Payment.Status)
	assert.Equal(t, "pay_123", order.Payment.TransactionID)
	assert.NotNil(t, order.Payment.PaymentDate)
	assert.Equal(t, 100.0, order.FinalAmount)

	// Stock was reserved
	product, err := fx.productRepo.GetByID("p1")
	assert.NoError(t, err)
	assert.Equal(t, 8, product.Stock)

	// The ledger entry links the payment to the order
	entry, err := fx.paymentRepo.GetByProviderPaymentID("pay_123")
	assert.NoError(t, err)
	assert.NotNil(t, entry)
	assert.Equal(t, order.ID, entry.OrderID)
	assert.Equal(t, models.LedgerStatusSuccess, entry.Status)
	assert.Equal(t, order.FinalAmount, entry.Amount)
}

func TestPaymentService_VerifyPayment_Idempotent(t *testing.T) {
	fx := newPaymentFixture(nil)

	first, err := fx.svc.VerifyPayment("user-1", verifyInput())
	assert.NoError(t, err)

	// A retry with the same provider payment id returns the existing order
	// without taking stock or writing a second ledger row.
	second, err := fx.svc.VerifyPayment("user-1", verifyInput())
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.OrderCode, second.OrderCode)

	product, err := fx.productRepo.GetByID("p1")
	assert.NoError(t, err)
	assert.Equal(t, 8, product.Stock)

	orders, err := fx.orderRepo.GetByUser("user-1")
	assert.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestPaymentService_VerifyPayment_TamperedSignature(t *testing.T) {
	fx := newPaymentFixture(nil)

	input := verifyInput()
	input.Signature = "forged-signature"

	_, err := fx.svc.VerifyPayment("user-1", input)
	assert.ErrorIs(t, err, services.ErrPaymentVerificationFailed)

	// Nothing was created and no stock moved
	product, perr := fx.productRepo.GetByID("p1")
	assert.NoError(t, perr)
	assert.Equal(t, 10, product.Stock)

	orders, oerr := fx.orderRepo.GetByUser("user-1")
	assert.NoError(t, oerr)
	assert.Empty(t, orders)

	entry, lerr := fx.paymentRepo.GetByProviderPaymentID("pay_123")
	assert.NoError(t, lerr)
	assert.Nil(t, entry)
}

func TestPaymentService_VerifyPayment_MissingAddress(t *testing.T) {
	fx := newPaymentFixture(nil)

	provider := fx.provider
	userRepo := &stubUserRepo{user: &models.User{ID: "user-1", Username: "buyer"}} // no address
	orderSvc := services.NewOrderService(fx.orderRepo, fx.productRepo, fx.cartRepo, nil)
	svc := services.NewPaymentService(provider, fx.paymentRepo, fx.orderRepo, userRepo, orderSvc, nil)

	_, err := svc.VerifyPayment("user-1", verifyInput())
	assert.ErrorIs(t, err, services.ErrMissingAddress)
}

func TestPaymentService_VerifyPayment_LedgerFailureCompensates(t *testing.T) {
	fx := newPaymentFixture(&failingPaymentRepo{})

	_, err := fx.svc.VerifyPayment("user-1", verifyInput())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to record payment")

	// The order was unwound and the stock handed back, so a retry with the
	// same payment id starts from a clean slate.
	orders, oerr := fx.orderRepo.GetByUser("user-1")
	assert.NoError(t, oerr)
	assert.Empty(t, orders)

	product, perr := fx.productRepo.GetByID("p1")
	assert.NoError(t, perr)
	assert.Equal(t, 10, product.Stock)
}

func TestPaymentService_VerifyPayment_RequiresPrincipal(t *testing.T) {
	fx := newPaymentFixture(nil)

	_, err := fx.svc.VerifyPayment("", verifyInput())
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}
