package billing

import (
	"context"
	"time"
)

// CustomerRef is the slice of a customer the billing flow needs.
type CustomerRef struct {
	ID         int64
	Name       string
	PalNumbers []string
	Active     bool
}

// ItemRef is the slice of an inventory item the billing flow needs.
type ItemRef struct {
	ID          int64
	NameEnglish string
	DefaultRate float64
	Active      bool
}

// Repository is the persistence boundary for bills and payments. The order
// link methods touch rental_orders directly so create/update/delete can keep
// the bill and its order consistent in one place.
type Repository interface {
	List(ctx context.Context) ([]Bill, error)
	Get(ctx context.Context, id int64) (Bill, error)
	GetByNumber(ctx context.Context, billNumber string) (Bill, error)
	FindByCustomer(ctx context.Context, customerID int64) ([]Bill, error)
	LastBillNumber(ctx context.Context, prefix string) (string, error)
	// CreateBill writes the bill, its items, and any payments carried on
	// b.Payments (the initial deposit) in one transaction.
	CreateBill(ctx context.Context, b Bill) (Bill, error)
	// UpdateBill writes the header and items and upserts deposit rows from
	// b.Payments (ID zero inserts, otherwise updates) in one transaction.
	UpdateBill(ctx context.Context, b Bill) (Bill, error)
	DeleteBill(ctx context.Context, id int64) error

	PaymentsForBill(ctx context.Context, billID int64) ([]Payment, error)
	GetPayment(ctx context.Context, id int64) (Payment, error)
	InsertPayment(ctx context.Context, p Payment) (Payment, error)
	UpdatePayment(ctx context.Context, p Payment) (Payment, error)
	DeletePayment(ctx context.Context, id int64) error
	SaveDerived(ctx context.Context, billID int64, t Totals) error

	LinkOrder(ctx context.Context, orderID, billID int64) error
	ClearOrderOutOfSync(ctx context.Context, billID int64) error
	UnlinkOrders(ctx context.Context, billID int64) error

	CustomerRef(ctx context.Context, id int64) (CustomerRef, error)
	ItemRef(ctx context.Context, id int64) (ItemRef, error)
}

// Clock abstracts time.Now for deterministic tests.
type Clock func() time.Time
