package services

import (
	"context"
	"errors"
	"fmt"

	"dropzone/internal/models"
	"dropzone/internal/repositories"
)

// DefaultListLimit caps catalog listings.
const DefaultListLimit = 60

// ProductService handles read access to the catalog and its seeding.
type ProductService struct {
	repo      repositories.ProductRepository
	listLimit int
}

// NewProductService creates a new ProductService. A non-positive listLimit
// falls back to DefaultListLimit.
func NewProductService(repo repositories.ProductRepository, listLimit int) *ProductService {
	if listLimit <= 0 {
		listLimit = DefaultListLimit
	}
	return &ProductService{
		repo:      repo,
		listLimit: listLimit,
	}
}

// GetProductBySlug retrieves a single product by its slug.
func (s *ProductService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	product, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("product %q: %w", slug, ErrNotFound)
		}
		return nil, err
	}
	return product, nil
}

// ListProducts returns products, filtered by category when it is non-empty.
// limit is clamped to the configured maximum.
func (s *ProductService) ListProducts(ctx context.Context, category string, limit int) ([]models.Product, error) {
	if limit <= 0 || limit > s.listLimit {
		limit = s.listLimit
	}
	return s.repo.List(ctx, category, limit)
}

// SeedResult reports what Seed did.
type SeedResult struct {
	Seeded bool
	Count  int64
}

// Seed inserts the demo catalog when the catalog is empty. It is a no-op
// otherwise.
func (s *ProductService) Seed(ctx context.Context) (*SeedResult, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return &SeedResult{Seeded: false, Count: count}, nil
	}

	for _, p := range DemoCatalog() {
		p := p
		if err := s.repo.Create(ctx, &p); err != nil {
			return nil, fmt.Errorf("failed to seed product %s: %w", p.Slug, err)
		}
	}

	count, err = s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &SeedResult{Seeded: true, Count: count}, nil
}
