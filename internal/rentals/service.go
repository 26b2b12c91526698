package rentals

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/mandap-rentals/mandap-server/internal/listview"
	"github.com/mandap-rentals/mandap-server/internal/platform/httpx"
	"github.com/mandap-rentals/mandap-server/internal/shared"
)

// Service implements the rental order lifecycle.
type Service struct {
	logger *slog.Logger
	repo   Repository
	audit  *shared.AuditLogger
	now    Clock
	view   *listview.View[Order]
}

// NewService constructs a Service. audit may be nil in tests.
func NewService(logger *slog.Logger, repo Repository, audit *shared.AuditLogger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logger: logger,
		repo:   repo,
		audit:  audit,
		now:    time.Now,
		view: listview.New(map[string]listview.Column[Order]{
			"number":   {Text: func(o Order) string { return o.OrderNumber }},
			"customer": {Text: func(o Order) string { return o.CustomerName }},
			"status":   {Enum: func(o Order) string { return string(o.Status) }},
			"date":     {Less: func(a, b Order) bool { return a.OrderDate.Before(b.OrderDate) }},
		}),
	}
}

// List returns all orders, filtered and sorted.
func (s *Service) List(ctx context.Context, q listview.Query) ([]Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = Reconcile(orders[i].Items)
	}
	return s.view.Apply(orders, q), nil
}

// ListActive returns non-terminal orders.
func (s *Service) ListActive(ctx context.Context) ([]Order, error) {
	orders, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = Reconcile(orders[i].Items)
	}
	return orders, nil
}

// Get returns one order with derived quantities.
func (s *Service) Get(ctx context.Context, id int64) (Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	order.Items = Reconcile(order.Items)
	return order, nil
}

// CreateBooking creates a BOOKED order after available-to-promise checks.
// A customer can hold at most one active order at a time.
func (s *Service) CreateBooking(ctx context.Context, actorID int64, in BookingInput) (Order, error) {
	active, err := s.repo.CustomerActiveOrders(ctx, in.CustomerID)
	if err != nil {
		return Order{}, err
	}
	if len(active) > 0 {
		return Order{}, fmt.Errorf("%w: customer already has an active rental order %s",
			httpx.ErrConflict, active[0].OrderNumber)
	}

	items := make([]OrderItem, 0, len(in.Items))
	for _, line := range in.Items {
		ref, err := s.repo.InventoryItem(ctx, line.InventoryItemID)
		if err != nil {
			return Order{}, err
		}
		available, err := s.availableFor(ctx, ref, 0)
		if err != nil {
			return Order{}, err
		}
		if line.BookedQty > available {
			return Order{}, fmt.Errorf("%w: insufficient stock for %s, available %d, requested %d",
				httpx.ErrConflict, ref.NameEnglish, available, line.BookedQty)
		}
		items = append(items, OrderItem{
			InventoryItemID: ref.ID,
			ItemNameEnglish: ref.NameEnglish,
			BookedQty:       line.BookedQty,
		})
	}

	orderDate := s.now().Truncate(24 * time.Hour)
	if in.OrderDate != nil {
		orderDate = *in.OrderDate
	}
	number, err := s.nextOrderNumber(ctx)
	if err != nil {
		return Order{}, err
	}
	order := Order{
		OrderNumber:        number,
		CustomerID:         in.CustomerID,
		Status:             StatusBooked,
		OrderDate:          orderDate,
		ExpectedReturnDate: in.ExpectedReturnDate,
		Remarks:            strings.TrimSpace(in.Remarks),
		Items:              items,
	}
	created, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		return Order{}, err
	}
	created.Items = Reconcile(created.Items)
	s.recordAudit(ctx, actorID, "create", created)
	s.logger.Info("booking created",
		slog.String("order_number", created.OrderNumber),
		slog.Int64("customer_id", created.CustomerID),
		slog.Int("items", len(created.Items)))
	return created, nil
}

// Update merges the submitted item list into an open order: existing lines
// change quantity, new lines are added, missing lines are removed when
// nothing was dispatched. A linked bill is flagged out of sync.
func (s *Service) Update(ctx context.Context, actorID, id int64, in BookingInput) (Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if order.Status.Terminal() {
		return Order{}, fmt.Errorf("%w: cannot update %s order", httpx.ErrConflict, order.Status)
	}

	if in.OrderDate != nil {
		order.OrderDate = *in.OrderDate
	}
	order.ExpectedReturnDate = in.ExpectedReturnDate
	order.Remarks = strings.TrimSpace(in.Remarks)

	byItemID := make(map[int64]*OrderItem, len(order.Items))
	for i := range order.Items {
		byItemID[order.Items[i].InventoryItemID] = &order.Items[i]
	}
	submitted := make(map[int64]struct{}, len(in.Items))
	for _, line := range in.Items {
		submitted[line.InventoryItemID] = struct{}{}
		ref, err := s.repo.InventoryItem(ctx, line.InventoryItemID)
		if err != nil {
			return Order{}, err
		}
		existing := byItemID[line.InventoryItemID]
		myReturned := 0
		if existing != nil {
			if line.BookedQty < existing.DispatchedQty {
				return Order{}, fmt.Errorf("%w: cannot reduce %s below %d already dispatched",
					httpx.ErrConflict, ref.NameEnglish, existing.DispatchedQty)
			}
			myReturned = existing.ReturnedQty
		}
		committedByOthers, err := s.committedByOthers(ctx, ref.ID, order.ID)
		if err != nil {
			return Order{}, err
		}
		if committedByOthers+line.BookedQty-myReturned > ref.TotalStock {
			return Order{}, fmt.Errorf("%w: insufficient stock for %s, max allocatable %d",
				httpx.ErrConflict, ref.NameEnglish, ref.TotalStock-committedByOthers+myReturned)
		}
		if existing != nil {
			existing.BookedQty = line.BookedQty
		} else {
			order.Items = append(order.Items, OrderItem{
				InventoryItemID: ref.ID,
				ItemNameEnglish: ref.NameEnglish,
				BookedQty:       line.BookedQty,
			})
		}
	}

	kept := order.Items[:0]
	for _, it := range order.Items {
		if _, ok := submitted[it.InventoryItemID]; ok {
			kept = append(kept, it)
			continue
		}
		if it.DispatchedQty > 0 {
			return Order{}, fmt.Errorf("%w: cannot remove dispatched item %s",
				httpx.ErrConflict, it.ItemNameEnglish)
		}
	}
	order.Items = kept

	if order.BillID != nil {
		order.BillOutOfSync = true
	}
	order.Status = DeriveStatus(order.Status, order.Items)

	if err := s.repo.SaveOrder(ctx, order, nil); err != nil {
		return Order{}, err
	}
	order.Items = Reconcile(order.Items)
	s.recordAudit(ctx, actorID, "update", order)
	return order, nil
}

// Dispatch appends a DISPATCH transaction and advances the aggregates.
func (s *Service) Dispatch(ctx context.Context, actorID, id int64, in TransactionInput) (Order, error) {
	return s.applyTransaction(ctx, actorID, id, in, TransactionDispatch)
}

// Receive appends a RETURN transaction and advances the aggregates.
func (s *Service) Receive(ctx context.Context, actorID, id int64, in TransactionInput) (Order, error) {
	return s.applyTransaction(ctx, actorID, id, in, TransactionReturn)
}

func (s *Service) applyTransaction(ctx context.Context, actorID, id int64, in TransactionInput, kind TransactionType) (Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if order.Status.Terminal() {
		return Order{}, fmt.Errorf("%w: cannot modify %s order", httpx.ErrConflict, order.Status)
	}
	if kind == TransactionReturn && order.Status == StatusBooked {
		return Order{}, fmt.Errorf("%w: nothing dispatched yet", httpx.ErrConflict)
	}

	when := s.now()
	day := when.Truncate(24 * time.Hour)
	tx := Transaction{
		Type:          kind,
		VoucherNumber: strings.TrimSpace(in.VoucherNumber),
		VehicleNumber: strings.TrimSpace(in.VehicleNumber),
		Date:          day,
	}

	byItemID := make(map[int64]*OrderItem, len(order.Items))
	for i := range order.Items {
		byItemID[order.Items[i].InventoryItemID] = &order.Items[i]
	}
	for _, line := range in.Items {
		if line.Quantity <= 0 {
			continue
		}
		item := byItemID[line.InventoryItemID]
		if item == nil {
			return Order{}, fmt.Errorf("%w: item %d is not on this order", httpx.ErrValidation, line.InventoryItemID)
		}
		switch kind {
		case TransactionDispatch:
			if line.Quantity > PendingDispatch(*item) {
				return Order{}, fmt.Errorf("%w: cannot dispatch more than booked for %s",
					httpx.ErrConflict, item.ItemNameEnglish)
			}
			item.DispatchedQty += line.Quantity
			item.DispatchDate = &day
		case TransactionReturn:
			if line.Quantity > PendingReturn(*item) {
				return Order{}, fmt.Errorf("%w: cannot return more than outstanding for %s",
					httpx.ErrConflict, item.ItemNameEnglish)
			}
			item.ReturnedQty += line.Quantity
			item.ReturnDate = &day
		}
		tx.Items = append(tx.Items, TransactionItem{
			InventoryItemID: item.InventoryItemID,
			ItemNameEnglish: item.ItemNameEnglish,
			Quantity:        line.Quantity,
		})
	}
	if len(tx.Items) == 0 {
		return Order{}, fmt.Errorf("%w: transaction has no positive quantities", httpx.ErrValidation)
	}

	switch kind {
	case TransactionDispatch:
		order.DispatchDate = &day
	case TransactionReturn:
		order.ActualReturnDate = &day
	}
	order.Status = DeriveStatus(order.Status, order.Items)

	if err := s.repo.SaveOrder(ctx, order, &tx); err != nil {
		return Order{}, err
	}
	order.Transactions = append(order.Transactions, tx)
	order.Items = Reconcile(order.Items)
	s.recordAudit(ctx, actorID, strings.ToLower(string(kind)), order)
	s.logger.Info("transaction applied",
		slog.String("order_number", order.OrderNumber),
		slog.String("type", string(kind)),
		slog.String("voucher", tx.VoucherNumber))
	return order, nil
}

// Cancel marks a BOOKED, unbilled, undispatched order CANCELLED.
func (s *Service) Cancel(ctx context.Context, actorID, id int64) (Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if err := s.guardUnbilledUndispatched(order, "cancel"); err != nil {
		return Order{}, err
	}
	if order.Status != StatusBooked {
		return Order{}, fmt.Errorf("%w: only BOOKED orders can be cancelled", httpx.ErrConflict)
	}
	order.Status = StatusCancelled
	if err := s.repo.SaveOrderHeader(ctx, order); err != nil {
		return Order{}, err
	}
	s.recordAudit(ctx, actorID, "cancel", order)
	return order, nil
}

// Delete removes an order that never left the shelf: no bill, nothing
// dispatched.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.guardUnbilledUndispatched(order, "delete"); err != nil {
		return err
	}
	if err := s.repo.DeleteOrder(ctx, id); err != nil {
		return err
	}
	s.logger.Warn("rental order deleted", slog.String("order_number", order.OrderNumber))
	s.recordAudit(ctx, actorID, "delete", order)
	return nil
}

// UnreturnedByCustomer lists orders still holding items for a customer.
func (s *Service) UnreturnedByCustomer(ctx context.Context, customerID int64) ([]Order, error) {
	orders, err := s.repo.UnreturnedOrdersByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = Reconcile(orders[i].Items)
	}
	return orders, nil
}

// MarkBillLinked links a bill to an order, clearing the out-of-sync flag.
func (s *Service) MarkBillLinked(ctx context.Context, orderID int64, billID *int64, outOfSync bool) error {
	return s.repo.SetBillLink(ctx, orderID, billID, outOfSync)
}

func (s *Service) guardUnbilledUndispatched(order Order, verb string) error {
	if order.BillID != nil {
		return fmt.Errorf("%w: cannot %s order with a generated bill, delete the bill first",
			httpx.ErrConflict, verb)
	}
	for _, it := range order.Items {
		if it.DispatchedQty > 0 {
			return fmt.Errorf("%w: cannot %s order with dispatched items", httpx.ErrConflict, verb)
		}
	}
	return nil
}

// availableFor computes totalStock − Σ(booked−returned) over active orders,
// excluding excludeOrderID's own lines.
func (s *Service) availableFor(ctx context.Context, ref ItemRef, excludeOrderID int64) (int, error) {
	committed, err := s.committedByOthers(ctx, ref.ID, excludeOrderID)
	if err != nil {
		return 0, err
	}
	return ref.TotalStock - committed, nil
}

func (s *Service) committedByOthers(ctx context.Context, inventoryItemID, excludeOrderID int64) (int, error) {
	lines, err := s.repo.ActiveLinesForItem(ctx, inventoryItemID)
	if err != nil {
		return 0, err
	}
	committed := 0
	for _, l := range lines {
		if l.OrderID == excludeOrderID {
			continue
		}
		committed += l.BookedQty - l.ReturnedQty
	}
	return committed, nil
}

func (s *Service) nextOrderNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("RO-%d-", s.now().Year())
	last, err := s.repo.LastOrderNumber(ctx, prefix)
	if err != nil && !errors.Is(err, httpx.ErrNotFound) {
		return "", err
	}
	next := 1
	if last != "" {
		if n, perr := strconv.Atoi(strings.TrimPrefix(last, prefix)); perr == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s%04d", prefix, next), nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, o Order) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "rental_order",
		EntityID: strconv.FormatInt(o.ID, 10),
		Snapshot: o,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("audit rental order", slog.String("action", action), slog.Any("error", err))
	}
}
