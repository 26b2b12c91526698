package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mandap-rentals/mandap-server/internal/listview"
	"github.com/mandap-rentals/mandap-server/internal/platform/httpx"
)

// Service implements catalog rules. Availability is always
// totalStock − Σ(booked−returned) over active orders, never a stored counter.
type Service struct {
	logger *slog.Logger
	repo   Repository
	view   *listview.View[Item]
}

// NewService constructs a Service.
func NewService(logger *slog.Logger, repo Repository) *Service {
	return &Service{
		logger: logger,
		repo:   repo,
		view: listview.New(map[string]listview.Column[Item]{
			"name": {Text: func(it Item) string {
				return it.NameEnglish + " " + it.NameGujarati
			}},
			"category": {Enum: func(it Item) string { return string(it.Category) }},
			"rate":     {Less: func(a, b Item) bool { return a.DefaultRate < b.DefaultRate }},
			"available": {Less: func(a, b Item) bool {
				return a.AvailableStock < b.AvailableStock
			}},
		}),
	}
}

// List returns the catalog in display order with derived availability and
// pending dispatch figures attached, optionally filtered and sorted.
func (s *Service) List(ctx context.Context, q listview.Query) ([]Item, error) {
	items, err := s.repo.ListOrdered(ctx)
	if err != nil {
		return nil, err
	}
	reserved, err := s.repo.ReservedQuantities(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.repo.PendingDispatchQuantities(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].AvailableStock = items[i].TotalStock - reserved[items[i].ID]
		items[i].PendingDispatchQty = pending[items[i].ID]
	}
	return s.view.Apply(items, q), nil
}

// Get returns one item with derived availability.
func (s *Service) Get(ctx context.Context, id int64) (Item, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return Item{}, err
	}
	reserved, err := s.repo.ReservedQuantities(ctx)
	if err != nil {
		return Item{}, err
	}
	pending, err := s.repo.PendingDispatchQuantities(ctx)
	if err != nil {
		return Item{}, err
	}
	item.AvailableStock = item.TotalStock - reserved[id]
	item.PendingDispatchQty = pending[id]
	return item, nil
}

// Create adds an item at the end of the display order.
func (s *Service) Create(ctx context.Context, in CreateItemInput) (Item, error) {
	in.NameGujarati = strings.TrimSpace(in.NameGujarati)
	in.NameEnglish = strings.TrimSpace(in.NameEnglish)
	if in.NameGujarati == "" || in.NameEnglish == "" {
		return Item{}, fmt.Errorf("%w: both names are required", httpx.ErrValidation)
	}
	maxOrder, err := s.repo.MaxDisplayOrder(ctx)
	if err != nil {
		return Item{}, err
	}
	item, err := s.repo.Create(ctx, in, ParseCategory(in.Category), maxOrder+1)
	if err != nil {
		return Item{}, err
	}
	item.AvailableStock = item.TotalStock
	return item, nil
}

// Update applies partial changes. Reducing total stock below the quantity
// currently reserved by active orders is rejected.
func (s *Service) Update(ctx context.Context, id int64, in UpdateItemInput) (Item, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return Item{}, err
	}
	if in.NameGujarati != nil {
		item.NameGujarati = strings.TrimSpace(*in.NameGujarati)
	}
	if in.NameEnglish != nil {
		item.NameEnglish = strings.TrimSpace(*in.NameEnglish)
	}
	if in.DefaultRate != nil {
		item.DefaultRate = *in.DefaultRate
	}
	if in.Category != nil {
		item.Category = ParseCategory(*in.Category)
	}
	if in.Active != nil {
		item.Active = *in.Active
	}
	if in.TotalStock != nil {
		reserved, err := s.repo.ReservedQuantities(ctx)
		if err != nil {
			return Item{}, err
		}
		if *in.TotalStock < reserved[id] {
			return Item{}, fmt.Errorf("%w: total stock %d below %d reserved by active orders",
				httpx.ErrConflict, *in.TotalStock, reserved[id])
		}
		item.TotalStock = *in.TotalStock
	}
	saved, err := s.repo.Save(ctx, item)
	if err != nil {
		return Item{}, err
	}
	return s.Get(ctx, saved.ID)
}

// Reorder persists a new display order: position in the list becomes the
// display order.
func (s *Service) Reorder(ctx context.Context, itemIDs []int64) error {
	for pos, id := range itemIDs {
		if err := s.repo.SetDisplayOrder(ctx, id, pos); err != nil {
			return err
		}
	}
	return nil
}

// Usage reports the active orders holding an item.
func (s *Service) Usage(ctx context.Context, itemID int64) ([]Usage, error) {
	if _, err := s.repo.Get(ctx, itemID); err != nil {
		return nil, err
	}
	return s.repo.ActiveUsage(ctx, itemID)
}
