package rentals

// Pure quantity reconciliation over order items. Aggregates are the running
// sums of the transaction log; everything here derives from them.

// PendingDispatch is the quantity still to hand over for one line.
func PendingDispatch(it OrderItem) int {
	return clampNonNegative(it.BookedQty - it.DispatchedQty)
}

// PendingReturn is the quantity still out with the customer for one line.
func PendingReturn(it OrderItem) int {
	return clampNonNegative(it.DispatchedQty - it.ReturnedQty)
}

// Reconcile fills the derived quantity fields of every line.
func Reconcile(items []OrderItem) []OrderItem {
	for i := range items {
		items[i].PendingDispatchQty = PendingDispatch(items[i])
		items[i].PendingReturnQty = PendingReturn(items[i])
	}
	return items
}

// DeriveStatus computes the lifecycle state from the item aggregates.
// Terminal states are sticky and never recomputed.
func DeriveStatus(current Status, items []OrderItem) Status {
	if current.Terminal() {
		return current
	}
	totalDispatched, totalReturned, outstanding := 0, 0, 0
	for _, it := range items {
		totalDispatched += it.DispatchedQty
		totalReturned += it.ReturnedQty
		outstanding += PendingReturn(it)
	}
	switch {
	case totalDispatched == 0:
		return StatusBooked
	case totalReturned == 0:
		return StatusDispatched
	case outstanding > 0:
		return StatusPartiallyReturned
	default:
		return StatusReturned
	}
}

// ValidQuantities reports whether every line satisfies
// 0 ≤ returned ≤ dispatched ≤ booked.
func ValidQuantities(items []OrderItem) bool {
	for _, it := range items {
		if it.ReturnedQty < 0 || it.ReturnedQty > it.DispatchedQty || it.DispatchedQty > it.BookedQty {
			return false
		}
	}
	return true
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
