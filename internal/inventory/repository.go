package inventory

import "context"

// Repository abstracts catalog persistence plus the rental aggregates the
// derived availability figures come from.
type Repository interface {
	ListOrdered(ctx context.Context) ([]Item, error)
	Get(ctx context.Context, id int64) (Item, error)
	Create(ctx context.Context, in CreateItemInput, category Category, displayOrder int) (Item, error)
	Save(ctx context.Context, item Item) (Item, error)
	MaxDisplayOrder(ctx context.Context) (int, error)
	SetDisplayOrder(ctx context.Context, id int64, order int) error
	// ReservedQuantities returns itemID -> Σ(booked−returned) over active orders.
	ReservedQuantities(ctx context.Context) (map[int64]int, error)
	// PendingDispatchQuantities returns itemID -> Σ max(0, booked−dispatched)
	// over active orders.
	PendingDispatchQuantities(ctx context.Context) (map[int64]int, error)
	ActiveUsage(ctx context.Context, itemID int64) ([]Usage, error)
}
