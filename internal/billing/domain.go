// Package billing implements bills, line items, payments, and the derived
// settlement figures. Totals are always recomputed from parts, never edited.
package billing

import "time"

// BillType distinguishes estimates from invoices.
type BillType string

const (
	BillTypeEstimate BillType = "ESTIMATE"
	BillTypeInvoice  BillType = "INVOICE"
)

// ParseBillType defaults to INVOICE for unknown input.
func ParseBillType(raw string) BillType {
	if BillType(raw) == BillTypeEstimate {
		return BillTypeEstimate
	}
	return BillTypeInvoice
}

// PaymentMethod enumerates how money came in.
type PaymentMethod string

const (
	MethodCash   PaymentMethod = "CASH"
	MethodCheque PaymentMethod = "CHEQUE"
	MethodOnline PaymentMethod = "ONLINE"
)

// ParsePaymentMethod defaults to CASH for unknown input.
func ParsePaymentMethod(raw string) PaymentMethod {
	switch PaymentMethod(raw) {
	case MethodCheque:
		return MethodCheque
	case MethodOnline:
		return MethodOnline
	default:
		return MethodCash
	}
}

// PaymentStatus is derived from paid vs payable, never stored by hand.
type PaymentStatus string

const (
	StatusDue     PaymentStatus = "DUE"
	StatusPartial PaymentStatus = "PARTIAL"
	StatusPaid    PaymentStatus = "PAID"
)

// BillItem is one line of a bill. Custom items carry their own name and no
// inventory reference; lost items mark charges for unreturned stock.
type BillItem struct {
	ID              int64   `json:"id"`
	InventoryItemID *int64  `json:"inventory_item_id,omitempty"`
	Name            string  `json:"name"`
	Quantity        int     `json:"quantity"`
	Rate            float64 `json:"rate"`
	Total           float64 `json:"total"`
	IsLostItem      bool    `json:"is_lost_item"`
	IsCustomItem    bool    `json:"is_custom_item"`
}

// Payment is money received against a bill. The initial deposit is a
// payment with IsDeposit set.
type Payment struct {
	ID           int64         `json:"id"`
	BillID       int64         `json:"bill_id"`
	Amount       float64       `json:"amount"`
	Date         time.Time     `json:"date"`
	Method       PaymentMethod `json:"method"`
	ChequeNumber string        `json:"cheque_number,omitempty"`
	Remarks      string        `json:"remarks,omitempty"`
	IsDeposit    bool          `json:"is_deposit"`
	CreatedBy    int64         `json:"created_by"`
}

// Bill is the billing aggregate. The money fields are derived, see totals.go.
type Bill struct {
	ID                 int64      `json:"id"`
	BillNumber         string     `json:"bill_number"`
	CustomerID         int64      `json:"customer_id"`
	CustomerName       string     `json:"customer_name"`
	PalNumbers         string     `json:"pal_numbers"`
	Type               BillType   `json:"type"`
	BillDate           time.Time  `json:"bill_date"`
	SettlementDiscount float64    `json:"settlement_discount"`
	Remarks            string     `json:"remarks"`
	RentalOrderID      *int64     `json:"rental_order_id,omitempty"`
	Items              []BillItem `json:"items"`
	Payments           []Payment  `json:"payments,omitempty"`
	CreatedBy          int64      `json:"created_by"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	// Derived.
	TotalAmount   float64       `json:"total_amount"`
	PaidAmount    float64       `json:"paid_amount"`
	NetPayable    float64       `json:"net_payable"`
	ToBeReturned  float64       `json:"to_be_returned"`
	PaymentStatus PaymentStatus `json:"payment_status"`
}
