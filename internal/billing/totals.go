package billing

// Totals holds the derived money figures of a bill.
type Totals struct {
	TotalAmount  float64
	PaidAmount   float64
	NetPayable   float64
	ToBeReturned float64
	Status       PaymentStatus
}

// CalculateTotals recomputes every derived figure from the bill's parts.
// Lines with non-positive quantity contribute nothing. NetPayable floors at
// zero; when payments exceed the discounted total the overshoot is
// ToBeReturned.
func CalculateTotals(items []BillItem, settlementDiscount float64, payments []Payment) Totals {
	var t Totals
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		t.TotalAmount += float64(it.Quantity) * it.Rate
	}
	for _, p := range payments {
		t.PaidAmount += p.Amount
	}
	remainder := t.TotalAmount - settlementDiscount - t.PaidAmount
	if remainder >= 0 {
		t.NetPayable = remainder
	} else {
		t.ToBeReturned = -remainder
	}

	payable := t.TotalAmount - settlementDiscount
	switch {
	case t.PaidAmount >= payable:
		t.Status = StatusPaid
	case t.PaidAmount > 0:
		t.Status = StatusPartial
	default:
		t.Status = StatusDue
	}
	return t
}

// applyTotals writes the derived figures onto the bill and prices each line.
func applyTotals(b *Bill) {
	for i := range b.Items {
		if b.Items[i].Quantity > 0 {
			b.Items[i].Total = float64(b.Items[i].Quantity) * b.Items[i].Rate
		} else {
			b.Items[i].Total = 0
		}
	}
	t := CalculateTotals(b.Items, b.SettlementDiscount, b.Payments)
	b.TotalAmount = t.TotalAmount
	b.PaidAmount = t.PaidAmount
	b.NetPayable = t.NetPayable
	b.ToBeReturned = t.ToBeReturned
	b.PaymentStatus = t.Status
}
