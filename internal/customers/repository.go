package customers

import "context"

// FlagSets holds the customer ID sets behind the derived list indicators.
type FlagSets struct {
	AnyOrders      map[int64]struct{}
	ActiveOrders   map[int64]struct{}
	UnbilledOrders map[int64]struct{}
	BilledOrders   map[int64]struct{}
	PendingBills   map[int64]struct{}
}

// Repository abstracts customer persistence.
type Repository interface {
	ListActive(ctx context.Context) ([]Customer, error)
	Get(ctx context.Context, id int64) (Customer, error)
	Create(ctx context.Context, in CustomerInput) (Customer, error)
	Update(ctx context.Context, id int64, in CustomerInput, active bool) (Customer, error)
	Deactivate(ctx context.Context, id int64) error
	FindByMobile(ctx context.Context, mobile string) (Customer, error)
	LoadFlagSets(ctx context.Context) (FlagSets, error)
	HasActiveOrders(ctx context.Context, customerID int64) (bool, error)
	HasPendingBills(ctx context.Context, customerID int64) (bool, error)
}
