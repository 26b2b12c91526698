// Package customers manages the customer register: contact details, pal
// number tags, and soft deletion guarded by open rentals and unpaid bills.
package customers

import "time"

// Customer is one entry in the register. PalNumbers are free-text site tags
// used to group bills and orders by physical location.
type Customer struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Mobile           string    `json:"mobile"`
	PalNumbers       []string  `json:"pal_numbers"`
	AlternateContact string    `json:"alternate_contact"`
	Address          string    `json:"address"`
	Notes            string    `json:"notes"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Flags carries the derived list-screen indicators for one customer.
type Flags struct {
	HasRentalOrders   bool `json:"has_rental_orders"`
	HasActiveOrders   bool `json:"has_active_orders"`
	HasUnbilledOrders bool `json:"has_unbilled_orders"`
	HasBilledOrders   bool `json:"has_billed_orders"`
	HasPendingBills   bool `json:"has_pending_bills"`
}

// CustomerWithFlags is the list representation.
type CustomerWithFlags struct {
	Customer
	Flags
}
