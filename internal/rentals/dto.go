package rentals

import "time"

// BookingItemInput is one requested line of a booking.
type BookingItemInput struct {
	InventoryItemID int64 `json:"inventory_item_id" validate:"required,gt=0"`
	BookedQty       int   `json:"booked_qty" validate:"required,gt=0"`
}

// BookingInput carries a booking create or update. On update the item list
// is merged: quantities change, new lines are added, missing lines are
// removed when nothing was dispatched.
type BookingInput struct {
	CustomerID         int64              `json:"customer_id" validate:"required,gt=0"`
	OrderDate          *time.Time         `json:"order_date"`
	ExpectedReturnDate *time.Time         `json:"expected_return_date"`
	Remarks            string             `json:"remarks" validate:"max=1024"`
	Items              []BookingItemInput `json:"items" validate:"required,min=1,dive"`
}

// TransactionItemInput is one per-item quantity in a dispatch or return.
// Lines with non-positive quantity are skipped.
type TransactionItemInput struct {
	InventoryItemID int64 `json:"inventory_item_id" validate:"required,gt=0"`
	Quantity        int   `json:"quantity"`
}

// TransactionInput carries a dispatch or return request.
type TransactionInput struct {
	VoucherNumber string                 `json:"voucher_number" validate:"required,max=32"`
	VehicleNumber string                 `json:"vehicle_number" validate:"max=32"`
	Items         []TransactionItemInput `json:"items" validate:"required,min=1,dive"`
}
