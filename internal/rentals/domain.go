// Package rentals implements the rental order lifecycle: booking with
// available-to-promise checks, append-only dispatch/return transactions, and
// the derived order status.
package rentals

import "time"

// Status is the rental order lifecycle state.
type Status string

const (
	StatusBooked            Status = "BOOKED"
	StatusDispatched        Status = "DISPATCHED"
	StatusPartiallyReturned Status = "PARTIALLY_RETURNED"
	StatusReturned          Status = "RETURNED"
	StatusCompleted         Status = "COMPLETED"
	StatusCancelled         Status = "CANCELLED"
)

// Terminal reports whether the status blocks further mutation.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// TransactionType discriminates dispatch from return transactions.
type TransactionType string

const (
	TransactionDispatch TransactionType = "DISPATCH"
	TransactionReturn   TransactionType = "RETURN"
)

// OrderItem is one line of a rental order. The quantities are running
// aggregates of the order's transactions.
type OrderItem struct {
	ID              int64      `json:"id"`
	InventoryItemID int64      `json:"inventory_item_id"`
	ItemNameEnglish string     `json:"item_name_english"`
	BookedQty       int        `json:"booked_qty"`
	DispatchedQty   int        `json:"dispatched_qty"`
	ReturnedQty     int        `json:"returned_qty"`
	DispatchDate    *time.Time `json:"dispatch_date,omitempty"`
	ReturnDate      *time.Time `json:"return_date,omitempty"`

	// Derived, see reconcile.go.
	PendingDispatchQty int `json:"pending_dispatch_qty"`
	PendingReturnQty   int `json:"pending_return_qty"`
}

// TransactionItem is one per-item delta inside a transaction.
type TransactionItem struct {
	InventoryItemID int64  `json:"inventory_item_id"`
	ItemNameEnglish string `json:"item_name_english"`
	Quantity        int    `json:"quantity"`
}

// Transaction is one immutable dispatch or return event.
type Transaction struct {
	ID            int64             `json:"id"`
	Type          TransactionType   `json:"type"`
	VoucherNumber string            `json:"voucher_number"`
	VehicleNumber string            `json:"vehicle_number"`
	Date          time.Time         `json:"date"`
	Items         []TransactionItem `json:"items"`
}

// Order is a rental order aggregate.
type Order struct {
	ID                 int64         `json:"id"`
	OrderNumber        string        `json:"order_number"`
	CustomerID         int64         `json:"customer_id"`
	CustomerName       string        `json:"customer_name"`
	Status             Status        `json:"status"`
	OrderDate          time.Time     `json:"order_date"`
	ExpectedReturnDate *time.Time    `json:"expected_return_date,omitempty"`
	DispatchDate       *time.Time    `json:"dispatch_date,omitempty"`
	ActualReturnDate   *time.Time    `json:"actual_return_date,omitempty"`
	BillID             *int64        `json:"bill_id,omitempty"`
	BillOutOfSync      bool          `json:"bill_out_of_sync"`
	Remarks            string        `json:"remarks"`
	Items              []OrderItem   `json:"items"`
	Transactions       []Transaction `json:"transactions,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}
