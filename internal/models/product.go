package models

import "time"

// SizeStock is the stock count for one size label of a product.
type SizeStock struct {
	Size  string `json:"size" bson:"size" validate:"required"`
	Stock int    `json:"stock" bson:"stock" validate:"gte=0"`
}

// Product represents a product in the store catalog.
type Product struct {
	ID          string     `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Slug        string     `json:"slug" gorm:"uniqueIndex;type:varchar(100)" bson:"slug" validate:"required,max=100"`
	Name        string     `json:"name" bson:"name" validate:"required,max=100"`
	Description string     `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=500"`
	Price       float64    `json:"price" bson:"price" validate:"gte=0"`
	Category    string     `json:"category" gorm:"index;type:varchar(50)" bson:"category" validate:"required"`
	Accent      string     `json:"accent" bson:"accent"`
	Images      StringList `json:"images" bson:"images"`
	Sizes       SizeStocks `json:"sizes" bson:"sizes" validate:"dive"`
	IsLimited   bool       `json:"is_limited" bson:"is_limited"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
}

// DefaultAccent is the neon accent used when a product does not declare one.
const DefaultAccent = "#7CFF2E"

// FirstAvailableSize returns the first size, in declared order, with stock left.
// It returns false when every size is sold out or none is declared.
func (p *Product) FirstAvailableSize() (string, bool) {
	for _, s := range p.Sizes {
		if s.Stock > 0 {
			return s.Size, true
		}
	}
	return "", false
}

// FirstImage returns the lead image URL, or nil for products without images.
func (p *Product) FirstImage() *string {
	if len(p.Images) == 0 {
		return nil
	}
	img := p.Images[0]
	return &img
}
