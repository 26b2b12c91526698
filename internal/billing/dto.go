package billing

import "time"

// BillItemInput is one requested bill line. Rate is optional for inventory
// lines and falls back to the item's default rate. Custom lines carry their
// own name and never reference inventory.
type BillItemInput struct {
	InventoryItemID *int64   `json:"inventory_item_id"`
	CustomItemName  string   `json:"custom_item_name"`
	IsCustomItem    bool     `json:"is_custom_item"`
	IsLostItem      bool     `json:"is_lost_item"`
	Quantity        int      `json:"quantity"`
	Rate            *float64 `json:"rate" validate:"omitempty,gte=0"`
}

// BillInput creates or replaces a bill. On update the customer may not
// change. Deposit fields manage the IsDeposit payment in one shot.
type BillInput struct {
	CustomerID          int64           `json:"customer_id" validate:"required"`
	RentalOrderID       *int64          `json:"rental_order_id"`
	PalNumbers          string          `json:"pal_numbers"`
	BillType            string          `json:"bill_type"`
	BillDate            *time.Time      `json:"bill_date"`
	SettlementDiscount  float64         `json:"settlement_discount" validate:"gte=0"`
	Remarks             string          `json:"remarks"`
	Items               []BillItemInput `json:"items" validate:"min=1,dive"`
	Deposit             float64         `json:"deposit" validate:"gte=0"`
	DepositMethod       string          `json:"deposit_method"`
	DepositChequeNumber string          `json:"deposit_cheque_number"`
}

// PaymentInput records or edits money received against a bill.
type PaymentInput struct {
	BillID       int64      `json:"bill_id" validate:"required"`
	Amount       float64    `json:"amount" validate:"required,gt=0"`
	Date         *time.Time `json:"date"`
	Method       string     `json:"method"`
	ChequeNumber string     `json:"cheque_number"`
	Remarks      string     `json:"remarks"`
}
