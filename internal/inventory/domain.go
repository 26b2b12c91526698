// Package inventory manages the rental item catalog: bilingual names,
// default rates, stock counters, drag-to-reorder display order, and the
// derived availability used by booking checks.
package inventory

import "time"

// Category buckets items on the catalog screen.
type Category string

const (
	CategoryMandap        Category = "MANDAP"
	CategoryFurniture     Category = "FURNITURE"
	CategoryBedding       Category = "BEDDING"
	CategoryKitchen       Category = "KITCHEN"
	CategoryUtensils      Category = "UTENSILS"
	CategoryDecoration    Category = "DECORATION"
	CategoryMiscellaneous Category = "MISCELLANEOUS"
)

// ParseCategory maps free input to a known category, defaulting to MANDAP.
func ParseCategory(raw string) Category {
	switch Category(raw) {
	case CategoryMandap, CategoryFurniture, CategoryBedding, CategoryKitchen,
		CategoryUtensils, CategoryDecoration, CategoryMiscellaneous:
		return Category(raw)
	default:
		return CategoryMandap
	}
}

// Item is one catalog entry. AvailableStock and PendingDispatchQty are
// derived from the rental order aggregates on read, never stored.
type Item struct {
	ID                 int64     `json:"id"`
	NameGujarati       string    `json:"name_gujarati"`
	NameEnglish        string    `json:"name_english"`
	DefaultRate        float64   `json:"default_rate"`
	Category           Category  `json:"category"`
	DisplayOrder       int       `json:"display_order"`
	Active             bool      `json:"active"`
	TotalStock         int       `json:"total_stock"`
	AvailableStock     int       `json:"available_stock"`
	PendingDispatchQty int       `json:"pending_dispatch_qty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Usage describes one active rental order holding an item.
type Usage struct {
	CustomerID         int64  `json:"customer_id"`
	CustomerName       string `json:"customer_name"`
	OrderNumber        string `json:"order_number"`
	BookedQty          int    `json:"booked_qty"`
	DispatchedQty      int    `json:"dispatched_qty"`
	ReturnedQty        int    `json:"returned_qty"`
	PendingDispatchQty int    `json:"pending_dispatch_qty"`
	PendingReturnQty   int    `json:"pending_return_qty"`
}
