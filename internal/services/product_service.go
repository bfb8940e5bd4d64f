package services

import (
	"fmt"

	"bazaar/internal/models"
	"bazaar/internal/repositories"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct creates a new product owned by the acting vendor.
func (s *ProductService) CreateProduct(vendorID string, product *models.Product) error {
	if vendorID == "" {
		return ErrUnauthenticated
	}
	product.VendorID = vendorID
	return s.repo.Create(product)
}

// UpdateProduct updates an existing product. Vendors may only touch their
// own listings; admins may touch any.
func (s *ProductService) UpdateProduct(actorID, actorRole string, product *models.Product) error {
	existing, err := s.repo.GetByID(product.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrProductNotFound, product.ID)
	}
	if actorRole != models.RoleAdmin && existing.VendorID != actorID {
		return newValidationError("product %s is not owned by the acting vendor", product.ID)
	}
	product.VendorID = existing.VendorID
	return s.repo.Update(product)
}

// DeleteProduct deletes a product by its ID, with the same ownership rule
// as UpdateProduct.
func (s *ProductService) DeleteProduct(actorID, actorRole, id string) error {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	if actorRole != models.RoleAdmin && existing.VendorID != actorID {
		return newValidationError("product %s is not owned by the acting vendor", id)
	}
	return s.repo.Delete(id)
}
