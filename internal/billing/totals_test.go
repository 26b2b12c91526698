package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateTotalsWithDeposit(t *testing.T) {
	items := []BillItem{
		{Name: "Mandap Pole", Quantity: 2, Rate: 500},
		{Name: "Stage Carpet", Quantity: 1, Rate: 1000},
	}
	payments := []Payment{{Amount: 300, IsDeposit: true}}

	got := CalculateTotals(items, 0, payments)

	assert.Equal(t, 2000.0, got.TotalAmount)
	assert.Equal(t, 300.0, got.PaidAmount)
	assert.Equal(t, 1700.0, got.NetPayable)
	assert.Equal(t, 0.0, got.ToBeReturned)
	assert.Equal(t, StatusPartial, got.Status)
}

func TestCalculateTotalsOverpaidFloorsAtZero(t *testing.T) {
	items := []BillItem{{Name: "Gas Stove", Quantity: 4, Rate: 100}}
	payments := []Payment{{Amount: 500, IsDeposit: true}}

	got := CalculateTotals(items, 0, payments)

	assert.Equal(t, 400.0, got.TotalAmount)
	assert.Equal(t, 0.0, got.NetPayable)
	assert.Equal(t, 100.0, got.ToBeReturned)
	assert.Equal(t, StatusPaid, got.Status)
}

func TestCalculateTotalsIgnoresNonPositiveQuantities(t *testing.T) {
	items := []BillItem{
		{Name: "Plates", Quantity: 10, Rate: 5},
		{Name: "Removed Line", Quantity: 0, Rate: 999},
		{Name: "Bad Line", Quantity: -3, Rate: 999},
	}

	got := CalculateTotals(items, 0, nil)

	assert.Equal(t, 50.0, got.TotalAmount)
	assert.Equal(t, StatusDue, got.Status)
}

func TestCalculateTotalsSettlementDiscount(t *testing.T) {
	items := []BillItem{{Name: "Lighting Set", Quantity: 1, Rate: 1500}}
	payments := []Payment{{Amount: 1300}}

	got := CalculateTotals(items, 200, payments)

	assert.Equal(t, 1500.0, got.TotalAmount)
	assert.Equal(t, 0.0, got.NetPayable)
	assert.Equal(t, StatusPaid, got.Status)
}

func TestCalculateTotalsNoPaymentsIsDue(t *testing.T) {
	items := []BillItem{{Name: "Tables", Quantity: 3, Rate: 50}}

	got := CalculateTotals(items, 0, nil)

	assert.Equal(t, 150.0, got.TotalAmount)
	assert.Equal(t, 150.0, got.NetPayable)
	assert.Equal(t, StatusDue, got.Status)
}

func TestApplyTotalsPricesLines(t *testing.T) {
	bill := Bill{
		Items: []BillItem{
			{Name: "Chairs", Quantity: 20, Rate: 10},
			{Name: "Empty", Quantity: 0, Rate: 10},
		},
		SettlementDiscount: 50,
	}

	applyTotals(&bill)

	assert.Equal(t, 200.0, bill.Items[0].Total)
	assert.Equal(t, 0.0, bill.Items[1].Total)
	assert.Equal(t, 200.0, bill.TotalAmount)
	assert.Equal(t, 150.0, bill.NetPayable)
	assert.Equal(t, StatusDue, bill.PaymentStatus)
}
