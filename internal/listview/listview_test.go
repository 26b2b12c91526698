package listview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderRow struct {
	Number   string
	Customer string
	Status   string
	Seq      int
}

func orderView() *View[orderRow] {
	return New(map[string]Column[orderRow]{
		"number":   {Text: func(r orderRow) string { return r.Number }},
		"customer": {Text: func(r orderRow) string { return r.Customer }},
		"status":   {Enum: func(r orderRow) string { return r.Status }},
		"seq":      {Less: func(a, b orderRow) bool { return a.Seq < b.Seq }},
	})
}

func sampleOrders() []orderRow {
	return []orderRow{
		{Number: "RO-2026-0005", Customer: "Ramesh Patel", Status: "BOOKED", Seq: 5},
		{Number: "RO-2026-0002", Customer: "Suresh Shah", Status: "DISPATCHED", Seq: 2},
		{Number: "RO-2026-0004", Customer: "Mahesh Patel", Status: "RETURNED", Seq: 4},
		{Number: "RO-2026-0001", Customer: "Dinesh Mehta", Status: "DISPATCHED", Seq: 1},
		{Number: "RO-2026-0003", Customer: "ramesh trivedi", Status: "BOOKED", Seq: 3},
	}
}

func TestTextFilterCaseInsensitiveSubstring(t *testing.T) {
	v := orderView()

	got := v.Apply(sampleOrders(), Query{Filters: map[string]string{"customer": "RAMESH"}})

	require.Len(t, got, 2)
	assert.Equal(t, "Ramesh Patel", got[0].Customer)
	assert.Equal(t, "ramesh trivedi", got[1].Customer)
}

func TestEnumFilterExactMatchWithDescendingSort(t *testing.T) {
	v := orderView()

	// Two of five orders are DISPATCHED; sorted by number descending.
	got := v.Apply(sampleOrders(), Query{
		Filters: map[string]string{"status": "DISPATCHED"},
		SortBy:  "number",
		Dir:     Descending,
	})

	require.Len(t, got, 2)
	assert.Equal(t, "RO-2026-0002", got[0].Number)
	assert.Equal(t, "RO-2026-0001", got[1].Number)
}

func TestFiltersAreConjunctive(t *testing.T) {
	v := orderView()

	got := v.Apply(sampleOrders(), Query{Filters: map[string]string{
		"customer": "patel",
		"status":   "BOOKED",
	}})

	require.Len(t, got, 1)
	assert.Equal(t, "RO-2026-0005", got[0].Number)
}

func TestEmptyFilterValuesIgnored(t *testing.T) {
	v := orderView()

	got := v.Apply(sampleOrders(), Query{Filters: map[string]string{"customer": "", "status": ""}})

	assert.Len(t, got, 5)
}

func TestStableSortKeepsFilteredOrderOnTies(t *testing.T) {
	v := orderView()
	base := []orderRow{
		{Number: "A", Customer: "x", Status: "BOOKED", Seq: 1},
		{Number: "B", Customer: "x", Status: "BOOKED", Seq: 2},
		{Number: "C", Customer: "x", Status: "BOOKED", Seq: 3},
	}

	got := v.Apply(base, Query{SortBy: "customer"})

	require.Len(t, got, 3)
	assert.Equal(t, "A", got[0].Number)
	assert.Equal(t, "B", got[1].Number)
	assert.Equal(t, "C", got[2].Number)
}

func TestApplyIsDeterministic(t *testing.T) {
	v := orderView()
	q := Query{
		Filters: map[string]string{"customer": "h"},
		SortBy:  "seq",
		Dir:     Descending,
	}

	first := v.Apply(sampleOrders(), q)
	second := v.Apply(sampleOrders(), q)

	assert.Equal(t, first, second)
}

func TestApplyDoesNotMutateBase(t *testing.T) {
	v := orderView()
	base := sampleOrders()

	_ = v.Apply(base, Query{SortBy: "number", Dir: Descending})

	assert.Equal(t, sampleOrders(), base)
}

func TestCustomLessSortsNumerically(t *testing.T) {
	v := orderView()

	got := v.Apply(sampleOrders(), Query{SortBy: "seq"})

	require.Len(t, got, 5)
	for i, rec := range got {
		assert.Equal(t, i+1, rec.Seq)
	}
}

func TestUnknownSortColumnKeepsFilteredOrder(t *testing.T) {
	v := orderView()
	base := sampleOrders()

	got := v.Apply(base, Query{SortBy: "nope"})

	assert.Equal(t, base, got)
}
