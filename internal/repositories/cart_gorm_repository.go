package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dropzone/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// GetOrCreate inserts an empty cart unless one exists, then reads it back.
// ON CONFLICT DO NOTHING makes the insert safe when two requests race on a
// new identity.
func (r *GORMCartRepository) GetOrCreate(ctx context.Context, id string) (*models.Cart, error) {
	cart := models.Cart{ID: id, Items: models.LineItems{}}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&cart).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create cart %s: %w", id, err)
	}
	return r.GetByID(ctx, id)
}

// GetByID retrieves a cart by its identity.
func (r *GORMCartRepository) GetByID(ctx context.Context, id string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).First(&cart, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart %s: %w", id, err)
	}
	if cart.Items == nil {
		cart.Items = models.LineItems{}
	}
	return &cart, nil
}

// SaveItems writes the whole item sequence back, guarded by the version read.
func (r *GORMCartRepository) SaveItems(ctx context.Context, cart *models.Cart) error {
	items := cart.Items
	if items == nil {
		items = models.LineItems{}
	}
	res := r.db.WithContext(ctx).Model(&models.Cart{}).
		Where("id = ? AND version = ?", cart.ID, cart.Version).
		Updates(map[string]interface{}{
			"items":      items,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to save cart %s: %w", cart.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, cart.ID); err != nil {
			return err
		}
		return fmt.Errorf("cart %s at version %d: %w", cart.ID, cart.Version, ErrVersionConflict)
	}
	cart.Version++
	return nil
}
