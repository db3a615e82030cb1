package services

import (
	"context"
	"errors"
	"math"

	"dropzone/internal/models"
	"dropzone/internal/repositories"
)

// Present returns the cart joined against the current catalog. Prices are
// looked up on every call and nothing computed here is stored. Lines whose
// product no longer exists are returned with Available=false and add nothing
// to the subtotal.
func (s *CartService) Present(ctx context.Context, cartID string) (*models.EnrichedCart, error) {
	cart, err := s.GetOrCreate(ctx, cartID)
	if err != nil {
		return nil, err
	}

	view := &models.EnrichedCart{
		ID:    cart.ID,
		Items: make([]models.EnrichedLineItem, 0, len(cart.Items)),
	}
	lookup := make(map[string]*models.Product)

	var subtotal float64
	for _, item := range cart.Items {
		product, seen := lookup[item.Slug]
		if !seen {
			product, err = s.products.GetBySlug(ctx, item.Slug)
			if err != nil && !errors.Is(err, repositories.ErrNotFound) {
				return nil, err
			}
			lookup[item.Slug] = product
		}

		line := models.EnrichedLineItem{LineItem: item}
		if product != nil {
			price := product.Price
			line.Name = product.Name
			line.Price = &price
			line.Accent = product.Accent
			line.Image = product.FirstImage()
			line.Available = true
			subtotal += float64(item.Qty) * price
		}
		view.Items = append(view.Items, line)
	}
	view.Subtotal = roundCents(subtotal)
	return view, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
