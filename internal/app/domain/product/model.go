package product

import "time"

// Metal identifies the primary metal of a catalog item.
type Metal string

const (
	MetalGold     Metal = "GOLD"
	MetalSilver   Metal = "SILVER"
	MetalPlatinum Metal = "PLATINUM"
	MetalOther    Metal = "OTHER"
)

// Valid reports whether the metal is one of the supported values.
func (m Metal) Valid() bool {
	switch m {
	case MetalGold, MetalSilver, MetalPlatinum, MetalOther:
		return true
	}
	return false
}

// Product is a catalog item identified by its SKU.
type Product struct {
	ID          string
	SKU         string
	Name        string
	Description string
	Category    string
	Metal       Metal
	PurityKarat int
	WeightGrams float64
	UnitPrice   float64
	Currency    string
	Barcode     string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
