package events

import "context"

// Repository is the persistence boundary for the event calendar.
type Repository interface {
	ListActive(ctx context.Context) ([]Event, error)
	ListByYear(ctx context.Context, year int) ([]Event, error)
	ListByType(ctx context.Context, t Type) ([]Event, error)
	DistinctYears(ctx context.Context) ([]int, error)
	Get(ctx context.Context, id int64) (Event, error)
	Create(ctx context.Context, e Event) (Event, error)
	Update(ctx context.Context, e Event) (Event, error)
	Deactivate(ctx context.Context, id int64) error
}
