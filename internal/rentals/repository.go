package rentals

import (
	"context"
	"time"
)

// ItemRef resolves inventory metadata needed by booking checks.
type ItemRef struct {
	ID          int64
	NameEnglish string
	TotalStock  int
	Active      bool
}

// ActiveLine is one order line on a non-terminal order, used for
// available-to-promise sums.
type ActiveLine struct {
	OrderID     int64
	BookedQty   int
	ReturnedQty int
}

// Repository abstracts rental order persistence.
type Repository interface {
	List(ctx context.Context) ([]Order, error)
	ListActive(ctx context.Context) ([]Order, error)
	Get(ctx context.Context, id int64) (Order, error)
	LastOrderNumber(ctx context.Context, prefix string) (string, error)
	CreateOrder(ctx context.Context, o Order) (Order, error)
	SaveOrderHeader(ctx context.Context, o Order) error
	// SaveOrder persists the header and the full item list, appending t to the
	// transaction log when non-nil. All writes commit or roll back together so
	// the counters never diverge from the log.
	SaveOrder(ctx context.Context, o Order, t *Transaction) error
	DeleteOrder(ctx context.Context, id int64) error
	CustomerActiveOrders(ctx context.Context, customerID int64) ([]Order, error)
	UnreturnedOrdersByCustomer(ctx context.Context, customerID int64) ([]Order, error)
	InventoryItem(ctx context.Context, id int64) (ItemRef, error)
	// ActiveLinesForItem returns every line of this inventory item on
	// non-terminal orders.
	ActiveLinesForItem(ctx context.Context, inventoryItemID int64) ([]ActiveLine, error)
	SetBillLink(ctx context.Context, orderID int64, billID *int64, outOfSync bool) error
}

// Clock abstracts time for tests.
type Clock func() time.Time
