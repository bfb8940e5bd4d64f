package services

import (
	"fmt"
	"time"

	"bazaar/internal/models"
	"bazaar/internal/repositories"

	"github.com/google/uuid"
)

// CartService handles business logic related to the per-user cart.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// AddToCart adds quantity of a product to the user's cart, creating the
// cart lazily on first use. The unit price is always taken from the
// catalog record, never from the request, and an existing line for the
// same product is merged by summing quantities.
func (s *CartService) AddToCart(userID, productID string, quantity int) (*models.Cart, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if productID == "" {
		return nil, newValidationError("product ID is required")
	}
	if quantity < 1 {
		return nil, newValidationError("quantity must be at least 1")
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}

	cart, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart == nil {
		cart = &models.Cart{
			ID:     uuid.New().String(),
			UserID: userID,
		}
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += quantity
			cart.Items[i].AddedAt = time.Now()
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: productID,
			Quantity:  quantity,
			Price:     product.Price,
			AddedAt:   time.Now(),
		})
	}

	cart.RecomputeTotals()
	if err := s.cartRepo.Save(cart); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return cart, nil
}

// RemoveFromCart removes the product's line from the user's cart and
// recomputes the totals.
func (s *CartService) RemoveFromCart(userID, productID string) (*models.Cart, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if productID == "" {
		return nil, newValidationError("product ID is required")
	}

	cart, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}

	index := -1
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			index = i
			break
		}
	}
	if index == -1 {
		return nil, fmt.Errorf("%w: item %s not in cart", ErrCartNotFound, productID)
	}

	cart.Items = append(cart.Items[:index], cart.Items[index+1:]...)
	cart.RecomputeTotals()
	if err := s.cartRepo.Save(cart); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return cart, nil
}

// GetCart retrieves the user's cart. An absent cart is returned as an
// empty one; the two are equivalent.
func (s *CartService) GetCart(userID string) (*models.Cart, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	cart, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart == nil {
		return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	return cart, nil
}
