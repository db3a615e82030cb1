package models

import "time"

// LineItem is one (product slug, size) entry of a cart.
type LineItem struct {
	Slug string `json:"slug" bson:"slug"`
	Size string `json:"size" bson:"size"`
	Qty  int    `json:"qty" bson:"qty"`
}

// Matches reports whether the item is the line for slug and size.
func (i LineItem) Matches(slug, size string) bool {
	return i.Slug == slug && i.Size == size
}

// Cart is the persisted line-item aggregate of one shopping session.
// Version is bumped on every write and guards concurrent read-modify-write.
type Cart struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(100)" bson:"_id"`
	Items     LineItems `json:"items" bson:"items"`
	Version   int64     `json:"version" gorm:"not null;default:0" bson:"version"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Merge adds qty units of (slug, size), folding into an existing line when
// one matches. qty must already be positive.
func (l LineItems) Merge(slug, size string, qty int) LineItems {
	out := make(LineItems, len(l), len(l)+1)
	copy(out, l)
	for i := range out {
		if out[i].Matches(slug, size) {
			out[i].Qty += qty
			return out
		}
	}
	return append(out, LineItem{Slug: slug, Size: size, Qty: qty})
}

// Apply replaces or drops the line for (slug, size). A nil qty with remove
// unset leaves the line as is; qty <= 0 drops it.
func (l LineItems) Apply(slug, size string, qty *int, remove bool) LineItems {
	out := make(LineItems, 0, len(l))
	for _, it := range l {
		if it.Matches(slug, size) {
			if remove || (qty != nil && *qty <= 0) {
				continue
			}
			if qty != nil {
				it.Qty = *qty
			}
		}
		out = append(out, it)
	}
	return out
}

// EnrichedLineItem is a line item joined with its catalog entry.
// Catalog fields are empty and Available is false when the product no
// longer resolves.
type EnrichedLineItem struct {
	LineItem
	Name      string   `json:"name,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	Accent    string   `json:"accent,omitempty"`
	Image     *string  `json:"image"`
	Available bool     `json:"available"`
}

// EnrichedCart is the read-time view of a cart. It is never persisted.
type EnrichedCart struct {
	ID       string             `json:"id"`
	Items    []EnrichedLineItem `json:"items"`
	Subtotal float64            `json:"subtotal"`
}
