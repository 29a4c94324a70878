package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProductUnit is a named pricing variant of a product (e.g. "kg", "box of 24").
// Labels are unique per product and matched case-insensitively.
type ProductUnit struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ProductID    uuid.UUID `json:"product_id" db:"product_id"`
	Label        string    `json:"label" db:"label"`
	SellingPrice float64   `json:"selling_price" db:"selling_price"`
	Position     int       `json:"-" db:"position"`
}

// Product represents a product in the catalog
type Product struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	Name        string        `json:"name" db:"name"`
	Description string        `json:"description" db:"description"`
	Category    string        `json:"category" db:"category"`
	Units       []ProductUnit `json:"units"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// FindUnit returns the unit variant whose label matches case-insensitively.
func (p *Product) FindUnit(label string) (*ProductUnit, bool) {
	for i := range p.Units {
		if strings.EqualFold(p.Units[i].Label, label) {
			return &p.Units[i], true
		}
	}
	return nil, false
}
