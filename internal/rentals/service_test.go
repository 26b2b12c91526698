package rentals

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mandap-rentals/mandap-server/internal/platform/httpx"
)

type mockRepository struct {
	orders map[int64]Order
	items  map[int64]ItemRef
	nextID int64

	failSaveOrder error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		orders: make(map[int64]Order),
		items:  make(map[int64]ItemRef),
		nextID: 1,
	}
}

func (m *mockRepository) addItem(id int64, name string, totalStock int) {
	m.items[id] = ItemRef{ID: id, NameEnglish: name, TotalStock: totalStock, Active: true}
}

// cloneOrder returns a deep copy so callers cannot mutate the stored state,
// mirroring a real repository that materializes fresh rows on every read.
func cloneOrder(o Order) Order {
	o.Items = append([]OrderItem(nil), o.Items...)
	o.Transactions = append([]Transaction(nil), o.Transactions...)
	return o
}

func (m *mockRepository) List(context.Context) ([]Order, error) {
	var out []Order
	for _, o := range m.orders {
		out = append(out, cloneOrder(o))
	}
	return out, nil
}

func (m *mockRepository) ListActive(context.Context) ([]Order, error) {
	var out []Order
	for _, o := range m.orders {
		if !o.Status.Terminal() {
			out = append(out, cloneOrder(o))
		}
	}
	return out, nil
}

func (m *mockRepository) Get(_ context.Context, id int64) (Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return Order{}, httpx.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (m *mockRepository) LastOrderNumber(_ context.Context, prefix string) (string, error) {
	last := ""
	var lastID int64 = -1
	for _, o := range m.orders {
		if len(o.OrderNumber) >= len(prefix) && o.OrderNumber[:len(prefix)] == prefix && o.ID > lastID {
			last, lastID = o.OrderNumber, o.ID
		}
	}
	if last == "" {
		return "", httpx.ErrNotFound
	}
	return last, nil
}

func (m *mockRepository) CreateOrder(_ context.Context, o Order) (Order, error) {
	o.ID = m.nextID
	m.nextID++
	m.orders[o.ID] = o
	return o, nil
}

func (m *mockRepository) SaveOrderHeader(_ context.Context, o Order) error {
	stored, ok := m.orders[o.ID]
	if !ok {
		return httpx.ErrNotFound
	}
	o.Items = stored.Items
	o.Transactions = stored.Transactions
	m.orders[o.ID] = o
	return nil
}

func (m *mockRepository) SaveOrder(_ context.Context, o Order, t *Transaction) error {
	stored, ok := m.orders[o.ID]
	if !ok {
		return httpx.ErrNotFound
	}
	if m.failSaveOrder != nil {
		return m.failSaveOrder
	}
	o.Items = append([]OrderItem(nil), o.Items...)
	o.Transactions = stored.Transactions
	if t != nil {
		o.Transactions = append(o.Transactions, *t)
	}
	m.orders[o.ID] = o
	return nil
}

func (m *mockRepository) DeleteOrder(_ context.Context, id int64) error {
	if _, ok := m.orders[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

func (m *mockRepository) CustomerActiveOrders(_ context.Context, customerID int64) ([]Order, error) {
	var out []Order
	for _, o := range m.orders {
		if o.CustomerID == customerID && !o.Status.Terminal() {
			out = append(out, cloneOrder(o))
		}
	}
	return out, nil
}

func (m *mockRepository) UnreturnedOrdersByCustomer(_ context.Context, customerID int64) ([]Order, error) {
	var out []Order
	for _, o := range m.orders {
		if o.CustomerID != customerID {
			continue
		}
		for _, it := range o.Items {
			if it.DispatchedQty > it.ReturnedQty {
				out = append(out, cloneOrder(o))
				break
			}
		}
	}
	return out, nil
}

func (m *mockRepository) InventoryItem(_ context.Context, id int64) (ItemRef, error) {
	ref, ok := m.items[id]
	if !ok {
		return ItemRef{}, httpx.ErrNotFound
	}
	return ref, nil
}

func (m *mockRepository) ActiveLinesForItem(_ context.Context, inventoryItemID int64) ([]ActiveLine, error) {
	var lines []ActiveLine
	for _, o := range m.orders {
		if o.Status.Terminal() {
			continue
		}
		for _, it := range o.Items {
			if it.InventoryItemID == inventoryItemID {
				lines = append(lines, ActiveLine{OrderID: o.ID, BookedQty: it.BookedQty, ReturnedQty: it.ReturnedQty})
			}
		}
	}
	return lines, nil
}

func (m *mockRepository) SetBillLink(_ context.Context, orderID int64, billID *int64, outOfSync bool) error {
	o, ok := m.orders[orderID]
	if !ok {
		return httpx.ErrNotFound
	}
	o.BillID = billID
	o.BillOutOfSync = outOfSync
	m.orders[orderID] = o
	return nil
}

func newTestService(repo Repository) *Service {
	return NewService(nil, repo, nil)
}

func booking(customerID int64, items ...BookingItemInput) BookingInput {
	return BookingInput{CustomerID: customerID, Items: items}
}

func TestCreateBooking(t *testing.T) {
	repo := newMockRepository()
	repo.addItem(1, "Chair", 100)
	svc := newTestService(repo)

	order, err := svc.CreateBooking(context.Background(), 1, booking(10,
		BookingItemInput{InventoryItemID: 1, BookedQty: 40}))
	require.NoError(t, err)
	assert.Equal(t, StatusBooked, order.Status)
	assert.Regexp(t, `^RO-\d{4}-0001$`, order.OrderNumber)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 40, order.Items[0].PendingDispatchQty)
}

func TestCreateBookingSequentialNumbers(t *testing.T) {
	repo := newMockRepository()
	repo.addItem(1, "Chair", 100)
	svc := newTestService(repo)

	first, err := svc.CreateBooking(context.Background(), 1, booking(10,
		BookingItemInput{InventoryItemID: 1, BookedQty: 5}))
	require.NoError(t, err)
	second, err := svc.CreateBooking(context.Background(), 1, booking(11,
		BookingItemInput{InventoryItemID: 1, BookedQty: 5}))
	require.NoError(t, err)

	assert.NotEqual(t, first.OrderNumber, second.OrderNumber)
	assert.Regexp(t, `0002$`, second.OrderNumber)
}

func TestCreateBookingInsufficientStock(t *testing.T) {
	repo := newMockRepository()
	repo.addItem(1, "Chair", 100)
	svc := newTestService(repo)

	_, err := svc.CreateBooking(context.Background(), 1, booking(10,
		BookingItemInput{InventoryItemID: 1, BookedQty: 60}))
	require.NoError(t, err)

	// 60 of 100 committed; 50 more will not fit.
	_, err = svc.CreateBooking(context.Background(), 1, booking(11,
		BookingItemInput{InventoryItemID: 1, BookedQty: 50}))
	assert.ErrorIs(t, err, httpx.ErrConflict)
}

func TestCreateBookingReturnedStockFreesAvailability(t *testing.T) {
	repo := newMockRepository()
	repo.addItem(1, "Chair", 100)
	svc := newTestService(repo)

	first, err := svc.CreateBooking(context.Background(), 1, booking(10,
		BookingItemInput{InventoryItemID: 1, BookedQty: 60}))
	require.NoError(t, err)
	_, err = svc.Dispatch(context.Background(), 1, first.ID, TransactionInput{
		VoucherNumber: "V-1",
		Items:         []TransactionItemInput{{InventoryItemID: 1, Quantity: 60}},
	})
	require.NoError(t, err)
	_, err = svc.Receive(context.Background(), 1, first.ID, TransactionInput{
		VoucherNumber: "V-2",
		Items:         []TransactionItemInput{{InventoryItemID: 1, Quantity: 30}},
	})
	require.NoError(t, err)

	// Committed is now 60−30 = 30, so 70 fit.
	_, err = svc.CreateBooking(context.Background(), 1, booking(11,
		BookingItemInput{InventoryItemID: 1, BookedQty: 70}))
	assert.NoError(t, err)
}

func TestCreateBookingCustomerAlreadyActive(t *testing.T) {
	repo := newMockRepository()
	repo.addItem(1, "Chair", 100)
	svc := newTestService(repo)

	_, err := svc.CreateBooking(context.Background(), 1, booking(10,
		BookingItemInput{InventoryItemID: 1, BookedQty: 5}))
	require.NoError(t, err)

	_, err = svc.CreateBooking(context.Background(), 1, booking(10,
		BookingItemInput{InventoryItemID: 1, BookedQty: 5}))
	assert.ErrorIs(t, err, httpx.ErrConflict)
}

func TestDispatchAdvancesAggregatesAndStatus(t *testing.T) {
	repo := newMockRepository()
	repo.addItem(1, "Chair", 100)
	svc := newTestService(repo)
	order, err := svc.CreateBooking(context.Background(), 1, booking(10,
		BookingItemInput{InventoryItemID: 1, BookedQty: 10}))
	require.NoError(t, err)

	got, err := svc.Dispatch(context.Background(), 1, order.ID, TransactionInput{
		VoucherNumber: "V-1", VehicleNumber: "GJ-01-AB-1234",
		Items: []TransactionItemInput{{InventoryItemID: 1, Quantity: 6}},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusDispatched, got.Status)
	assert.Equal(t, 6, got.Items[0].DispatchedQty)
	assert.Equal(t, 4, got.Items[0].PendingDispatchQty)
	require.Len(t, got.Transactions, 1)
	assert.Equal(t, TransactionDispatch, got.Transactions[0].Type)
	assert.Equal(t, "V-1", got.Transactions[0].VoucherNumber)
}

func TestDispatchBeyondBookedRejected(t *testing.T) {
	repo := newMockRepository()
	repo.addItem(1, "Chair", 100)
	svc := newTestService(repo)
	order, err := svc.CreateBooking(context.Background(), 1, booking(10,
		BookingItemInput{InventoryItemID: 1, BookedQty: 10}))
	require.NoError(t, err)

	_, err = svc.Dispatch(context.Background(), 1, order.ID, TransactionInput{
		VoucherNumber: "V-1",
		Items:         []TransactionItemInput{{InventoryItemID: 1, Quantity: 11}},
	})
	assert.ErrorIs(t, err, httpx.ErrConflict)
}

func TestReceiveFlow(t *testing.T) {
	repo := newMockRepository()
	repo.addItem(1, "Chair", 100)
	svc := newTestService(repo)
	order, err := svc.CreateBooking(context.Background(), 1, booking(10,
		BookingItemInput{InventoryItemID: 1, BookedQty: 10}))
	require.NoError(t, err)
	_, err = svc.Dispatch(context.Background(), 1, order.ID, TransactionInput{
		VoucherNumber: "V-1",
		Items:         []TransactionItemInput{{InventoryItemID: 1, Quantity: 6}},
	})
	require.NoError(t, err)

	partial, err := svc.Receive(context.Background(), 1, order.ID, TransactionInput{
		VoucherNumber: "V-2",
		Items:         []TransactionItemInput{{InventoryItemID: 1, Quantity: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPartiallyReturned, partial.Status)
	assert.Equal(t, 2, partial.Items[0].PendingReturnQty)

	full, err := svc.Receive(context.Background(), 1, order.ID, TransactionInput{
		VoucherNumber: "V-3",
		Items:         []TransactionItemInput{{InventoryItemID: 1, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusReturned, full.Status)
}

func TestDispatchFailureLeavesLogAndCountersUntouched(t *testing.T) {
	repo := newMockRepository()
	repo.addItem(1, "Chair", 100)
	svc := newTestService(repo)
	order, err := svc.CreateBooking(context.Background(), 1, booking(10,
		BookingItemInput{InventoryItemID: 1, BookedQty: 10}))
	require.NoError(t, err)

	repo.failSaveOrder = errors.New("connection reset")
	_, err = svc.Dispatch(context.Background(), 1, order.ID, TransactionInput{
		VoucherNumber: "V-1",
		Items:         []TransactionItemInput{{InventoryItemID: 1, Quantity: 6}},
	})
	require.Error(t, err)

	repo.failSaveOrder = nil
	stored, err := svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Transactions)
	assert.Equal(t, 0, stored.Items[0].DispatchedQty)
	assert.Equal(t, StatusBooked, stored.Status)

	// The retry starts from a clean slate and goes through.
	retried, err := svc.Dispatch(context.Background(), 1, order.ID, TransactionInput{
		VoucherNumber: "V-1",
		Items:         []TransactionItemInput{{InventoryItemID: 1, Quantity: 6}},
	})
	require.NoError(t, err)
	require.Len(t, retried.Transactions, 1)
	assert.Equal(t, 6, retried.Items[0].DispatchedQty)
}

func TestReceiveBeforeDispatchRejected(t *testing.T) {
	repo := newMockRepository()
	repo.addItem(1, "Chair", 100)
	svc := newTestService(repo)
	order, err := svc.CreateBooking(context.Background(), 1, booking(10,
		BookingItemInput{InventoryItemID: 1, BookedQty: 10}))
	require.NoError(t, err)

	_, err = svc.Receive(context.Background(), 1, order.ID, TransactionInput{
		VoucherNumber: "V-1",
		Items:         []TransactionItemInput{{InventoryItemID: 1, Quantity: 1}},
	})
	assert.ErrorIs(t, err, httpx.ErrConflict)
}

func TestReceiveBeyondOutstandingRejected(t *testing.T) {
	repo := newMockRepository()
	repo.addItem(1, "Chair", 100)
	svc := newTestService(repo)
	order, err := svc.CreateBooking(context.Background(), 1, booking(10,
		BookingItemInput{InventoryItemID: 1, BookedQty: 10}))
	require.NoError(t, err)
	_, err = svc.Dispatch(context.Background(), 1, order.ID, TransactionInput{
		VoucherNumber: "V-1",
		Items:         []TransactionItemInput{{InventoryItemID: 1, Quantity: 3}},
	})
	require.NoError(t, err)

	_, err = svc.Receive(context.Background(), 1, order.ID, TransactionInput{
		VoucherNumber: "V-2",
		Items:         []TransactionItemInput{{InventoryItemID: 1, Quantity: 4}},
	})
	assert.ErrorIs(t, err, httpx.ErrConflict)
}

func TestUpdateMergesItems(t *testing.T) {
	repo := newMockRepository()
	repo.addItem(1, "Chair", 100)
	repo.addItem(2, "Table", 50)
	svc := newTestService(repo)
	order, err := svc.CreateBooking(context.Background(), 1, booking(10,
		BookingItemInput{InventoryItemID: 1, BookedQty: 10}))
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), 1, order.ID, booking(10,
		BookingItemInput{InventoryItemID: 1, BookedQty: 15},
		BookingItemInput{InventoryItemID: 2, BookedQty: 5}))
	require.NoError(t, err)
	require.Len(t, updated.Items, 2)
	assert.Equal(t, 15, updated.Items[0].BookedQty)
	assert.Equal(t, "Table", updated.Items[1].ItemNameEnglish)
}

func TestUpdateRemovesUndispatchedLine(t *testing.T) {
	repo := newMockRepository()
	repo.addItem(1, "Chair", 100)
	repo.addItem(2, "Table", 50)
	svc := newTestService(repo)
	order, err := svc.CreateBooking(context.Background(), 1, booking(10,
		BookingItemInput{InventoryItemID: 1, BookedQty: 10},
		BookingItemInput{InventoryItemID: 2, BookedQty: 5}))
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), 1, order.ID, booking(10,
		BookingItemInput{InventoryItemID: 1, BookedQty: 10}))
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, int64(1), updated.Items[0].InventoryItemID)
}

func TestUpdateCannotRemoveDispatchedLine(t *testing.T) {
	repo := newMockRepository()
	repo.addItem(1, "Chair", 100)
	repo.addItem(2, "Table", 50)
	svc := newTestService(repo)
	order, err := svc.CreateBooking(context.Background(), 1, booking(10,
		BookingItemInput{InventoryItemID: 1, BookedQty: 10},
		BookingItemInput{InventoryItemID: 2, BookedQty: 5}))
	require.NoError(t, err)
	_, err = svc.Dispatch(context.Background(), 1, order.ID, TransactionInput{
		VoucherNumber: "V-1",
		Items:         []TransactionItemInput{{InventoryItemID: 2, Quantity: 2}},
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), 1, order.ID, booking(10,
		BookingItemInput{InventoryItemID: 1, BookedQty: 10}))
	assert.ErrorIs(t, err, httpx.ErrConflict)
}

func TestUpdateCannotReduceBelowDispatched(t *testing.T) {
	repo := newMockRepository()
	repo.addItem(1, "Chair", 100)
	svc := newTestService(repo)
	order, err := svc.CreateBooking(context.Background(), 1, booking(10,
		BookingItemInput{InventoryItemID: 1, BookedQty: 10}))
	require.NoError(t, err)
	_, err = svc.Dispatch(context.Background(), 1, order.ID, TransactionInput{
		VoucherNumber: "V-1",
		Items:         []TransactionItemInput{{InventoryItemID: 1, Quantity: 6}},
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), 1, order.ID, booking(10,
		BookingItemInput{InventoryItemID: 1, BookedQty: 5}))
	assert.ErrorIs(t, err, httpx.ErrConflict)
}

func TestUpdateFlagsLinkedBillOutOfSync(t *testing.T) {
	repo := newMockRepository()
	repo.addItem(1, "Chair", 100)
	svc := newTestService(repo)
	order, err := svc.CreateBooking(context.Background(), 1, booking(10,
		BookingItemInput{InventoryItemID: 1, BookedQty: 10}))
	require.NoError(t, err)
	billID := int64(7)
	require.NoError(t, svc.MarkBillLinked(context.Background(), order.ID, &billID, false))

	updated, err := svc.Update(context.Background(), 1, order.ID, booking(10,
		BookingItemInput{InventoryItemID: 1, BookedQty: 12}))
	require.NoError(t, err)
	assert.True(t, updated.BillOutOfSync)
}

func TestCancelOnlyBookedUnbilled(t *testing.T) {
	repo := newMockRepository()
	repo.addItem(1, "Chair", 100)
	svc := newTestService(repo)
	order, err := svc.CreateBooking(context.Background(), 1, booking(10,
		BookingItemInput{InventoryItemID: 1, BookedQty: 10}))
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), 1, order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	// Terminal now: dispatch must fail.
	_, err = svc.Dispatch(context.Background(), 1, order.ID, TransactionInput{
		VoucherNumber: "V-1",
		Items:         []TransactionItemInput{{InventoryItemID: 1, Quantity: 1}},
	})
	assert.ErrorIs(t, err, httpx.ErrConflict)
}

func TestCancelAfterDispatchRejected(t *testing.T) {
	repo := newMockRepository()
	repo.addItem(1, "Chair", 100)
	svc := newTestService(repo)
	order, err := svc.CreateBooking(context.Background(), 1, booking(10,
		BookingItemInput{InventoryItemID: 1, BookedQty: 10}))
	require.NoError(t, err)
	_, err = svc.Dispatch(context.Background(), 1, order.ID, TransactionInput{
		VoucherNumber: "V-1",
		Items:         []TransactionItemInput{{InventoryItemID: 1, Quantity: 2}},
	})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), 1, order.ID)
	assert.ErrorIs(t, err, httpx.ErrConflict)
}

func TestDeleteGuards(t *testing.T) {
	repo := newMockRepository()
	repo.addItem(1, "Chair", 100)
	svc := newTestService(repo)
	order, err := svc.CreateBooking(context.Background(), 1, booking(10,
		BookingItemInput{InventoryItemID: 1, BookedQty: 10}))
	require.NoError(t, err)

	billID := int64(3)
	require.NoError(t, svc.MarkBillLinked(context.Background(), order.ID, &billID, false))
	err = svc.Delete(context.Background(), 1, order.ID)
	assert.ErrorIs(t, err, httpx.ErrConflict)

	require.NoError(t, svc.MarkBillLinked(context.Background(), order.ID, nil, false))
	require.NoError(t, svc.Delete(context.Background(), 1, order.ID))

	_, err = svc.Get(context.Background(), order.ID)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDeleteAfterDispatchRejected(t *testing.T) {
	repo := newMockRepository()
	repo.addItem(1, "Chair", 100)
	svc := newTestService(repo)
	order, err := svc.CreateBooking(context.Background(), 1, booking(10,
		BookingItemInput{InventoryItemID: 1, BookedQty: 10}))
	require.NoError(t, err)
	_, err = svc.Dispatch(context.Background(), 1, order.ID, TransactionInput{
		VoucherNumber: "V-1",
		Items:         []TransactionItemInput{{InventoryItemID: 1, Quantity: 2}},
	})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), 1, order.ID)
	assert.ErrorIs(t, err, httpx.ErrConflict)

	_, err = svc.Get(context.Background(), order.ID)
	assert.NoError(t, err)
}

func TestUnreturnedByCustomer(t *testing.T) {
	repo := newMockRepository()
	repo.addItem(1, "Chair", 100)
	svc := newTestService(repo)
	order, err := svc.CreateBooking(context.Background(), 1, booking(10,
		BookingItemInput{InventoryItemID: 1, BookedQty: 10}))
	require.NoError(t, err)
	_, err = svc.Dispatch(context.Background(), 1, order.ID, TransactionInput{
		VoucherNumber: "V-1",
		Items:         []TransactionItemInput{{InventoryItemID: 1, Quantity: 4}},
	})
	require.NoError(t, err)

	unreturned, err := svc.UnreturnedByCustomer(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, unreturned, 1)
	assert.Equal(t, 4, unreturned[0].Items[0].PendingReturnQty)

	none, err := svc.UnreturnedByCustomer(context.Background(), 99)
	require.NoError(t, err)
	assert.Empty(t, none)
}
