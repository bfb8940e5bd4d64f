package repositories

import (
	"context"
	"fmt"

	"bazaar/internal/models"
	"bazaar/pkg/cache"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository with
// an optional Redis read-through cache on single-product lookups.
type GORMProductRepository struct {
	db    *gorm.DB
	cache *cache.ProductCache // nil disables caching
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB, productCache *cache.ProductCache) *GORMProductRepository {
	return &GORMProductRepository{
		db:    db,
		cache: productCache,
	}
}

// GetAll retrieves all products from the database.
func (r *GORMProductRepository) GetAll() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID, consulting the cache first.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	ctx := context.Background()

	var cached models.Product
	if r.cache.Get(ctx, id, &cached) {
		return &cached, nil
	}

	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}

	r.cache.Set(ctx, id, &product)
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update updates an existing product in the database.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Save(product) // Save will update all fields, including zero values
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// GORM's Save doesn't return ErrRecordNotFound if no rows affected
		// for an update, so we check RowsAffected.
		return fmt.Errorf("product with ID %s not found for update", product.ID)
	}
	r.cache.Invalidate(context.Background(), product.ID)
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(id string) error {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s not found for deletion", id)
	}
	r.cache.Invalidate(context.Background(), id)
	return nil
}

// DecrementStock atomically subtracts quantity from the product's stock,
// guarded so stock can never go negative. The WHERE clause carries the
// stock check, making concurrent decrements of the last units safe: at most
// one of two racing callers can win the final unit.
func (r *GORMProductRepository) DecrementStock(id string, quantity int) (bool, error) {
	res := r.db.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return false, fmt.Errorf("failed to decrement stock for product %s: %w", id, res.Error)
	}
	if res.RowsAffected > 0 {
		r.cache.Invalidate(context.Background(), id)
		return true, nil
	}
	return false, nil
}

// IncrementStock adds quantity back to the product's stock. Inverse of
// DecrementStock, used by cancellation and compensating rollbacks.
func (r *GORMProductRepository) IncrementStock(id string, quantity int) error {
	res := r.db.Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity))
	if res.Error != nil {
		return fmt.Errorf("failed to increment stock for product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s not found for stock restore", id)
	}
	r.cache.Invalidate(context.Background(), id)
	return nil
}
