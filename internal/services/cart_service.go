package services

import (
	"context"
	"errors"
	"fmt"

	"dropzone/internal/models"
	"dropzone/internal/repositories"
	"dropzone/pkg/metrics"
)

// DefaultCartMaxAttempts bounds the read-modify-write retries of one mutation.
const DefaultCartMaxAttempts = 5

// CartService owns cart line-item quantities and the enriched cart view.
type CartService struct {
	carts       repositories.CartRepository
	products    repositories.ProductRepository
	events      EventPublisher
	maxAttempts int
}

// NewCartService creates a new CartService. events may be nil.
func NewCartService(carts repositories.CartRepository, products repositories.ProductRepository, events EventPublisher, maxAttempts int) *CartService {
	if maxAttempts <= 0 {
		maxAttempts = DefaultCartMaxAttempts
	}
	return &CartService{
		carts:       carts,
		products:    products,
		events:      events,
		maxAttempts: maxAttempts,
	}
}

// GetOrCreate returns the cart, creating an empty one for a new identity.
func (s *CartService) GetOrCreate(ctx context.Context, cartID string) (*models.Cart, error) {
	if cartID == "" {
		return nil, fmt.Errorf("cart id required: %w", ErrInvalidInput)
	}
	return s.carts.GetOrCreate(ctx, cartID)
}

// AddItemInput is a request to add units of a product to a cart.
type AddItemInput struct {
	Slug string
	// Size may be empty, in which case the first size in stock is used.
	Size string
	// Qty below 1 is treated as 1.
	Qty int
}

// AddItem adds units of a product to the cart, merging into the existing
// line for the same (slug, size).
func (s *CartService) AddItem(ctx context.Context, cartID string, in AddItemInput) error {
	if cartID == "" {
		return fmt.Errorf("cart id required: %w", ErrInvalidInput)
	}
	product, err := s.products.GetBySlug(ctx, in.Slug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("product %q: %w", in.Slug, ErrNotFound)
		}
		return err
	}

	size := in.Size
	if size == "" {
		var ok bool
		if size, ok = product.FirstAvailableSize(); !ok {
			return fmt.Errorf("no available size for %q: %w", in.Slug, ErrInvalidState)
		}
	}
	qty := max(1, in.Qty)

	err = s.mutate(ctx, cartID, s.carts.GetOrCreate, func(items models.LineItems) models.LineItems {
		return items.Merge(in.Slug, size, qty)
	})
	if err != nil {
		return err
	}

	publish(s.events, EventCartItemAdded, CartItemEvent{CartID: cartID, Slug: in.Slug, Size: size, Qty: &qty})
	return nil
}

// UpdateItemInput is a request to change or drop one cart line.
type UpdateItemInput struct {
	Slug string
	Size string
	// Qty replaces the line quantity when set; a value <= 0 drops the line.
	Qty    *int
	Remove bool
}

// UpdateItem replaces the quantity of, or removes, the line for (slug, size).
// The cart must exist.
func (s *CartService) UpdateItem(ctx context.Context, cartID string, in UpdateItemInput) error {
	err := s.mutate(ctx, cartID, s.carts.GetByID, func(items models.LineItems) models.LineItems {
		return items.Apply(in.Slug, in.Size, in.Qty, in.Remove)
	})
	if err != nil {
		return err
	}

	removed := in.Remove || (in.Qty != nil && *in.Qty <= 0)
	publish(s.events, EventCartItemUpdated, CartItemEvent{CartID: cartID, Slug: in.Slug, Size: in.Size, Qty: in.Qty, Removed: removed})
	return nil
}

// mutate loads the cart, applies fn to its items and writes them back. The
// write is conditional on the version loaded; on a conflict the whole
// transform is re-applied to a fresh read.
func (s *CartService) mutate(
	ctx context.Context,
	cartID string,
	load func(context.Context, string) (*models.Cart, error),
	fn func(models.LineItems) models.LineItems,
) error {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		cart, err := load(ctx, cartID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("cart %q: %w", cartID, ErrNotFound)
			}
			return err
		}

		cart.Items = fn(cart.Items)

		err = s.carts.SaveItems(ctx, cart)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repositories.ErrVersionConflict) {
			if errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("cart %q: %w", cartID, ErrNotFound)
			}
			return err
		}
		metrics.CartVersionConflicts.Inc()
	}
	return fmt.Errorf("cart %q modified concurrently, gave up after %d attempts: %w", cartID, s.maxAttempts, ErrConflict)
}
