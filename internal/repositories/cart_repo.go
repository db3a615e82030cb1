package repositories

import (
	"context"

	"dropzone/internal/models"
)

// CartRepository defines the interface for cart aggregate persistence.
type CartRepository interface {
	// GetOrCreate returns the cart, atomically inserting an empty one when absent.
	GetOrCreate(ctx context.Context, id string) (*models.Cart, error)
	GetByID(ctx context.Context, id string) (*models.Cart, error)
	// SaveItems replaces the item sequence if the stored version still equals
	// cart.Version, then bumps cart.Version. It returns ErrVersionConflict when
	// another writer got there first.
	SaveItems(ctx context.Context, cart *models.Cart) error
}
