package shared

// Permission names used by the rbac middleware. The seed data keeps these in
// sync with the permissions table.
const (
	PermCustomersView = "customers.view"
	PermCustomersEdit = "customers.edit"

	PermInventoryView   = "inventory.view"
	PermInventoryManage = "inventory.manage"

	PermRentalsView     = "rentals.view"
	PermRentalsEdit     = "rentals.edit"
	PermRentalsDispatch = "rentals.dispatch"

	PermBillingView = "billing.view"
	PermBillingEdit = "billing.edit"

	PermEventsView = "events.view"
	PermEventsEdit = "events.edit"

	PermAdminUsers = "admin.users"
	PermAdminRoles = "admin.roles"
)
