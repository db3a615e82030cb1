package repositories

import (
	"context"

	"dropzone/internal/models"
)

// ProductRepository defines the interface for catalog data access.
type ProductRepository interface {
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	// List returns at most limit products, filtered by category when it is non-empty.
	List(ctx context.Context, category string, limit int) ([]models.Product, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, product *models.Product) error
}
