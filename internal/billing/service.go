package billing

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

// billNumberPrefix anchors bill numbers to the FS13 book series.
const billNumberPrefix = "FS13"

const depositRemarks = "Initial Deposit"

// Service implements billing and payment flows.
type Service struct {
	logger *slog.Logger
	repo   Repository
	audit  *shared.AuditLogger
	now    Clock
	view   *listview.View[Bill]
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
		view: listview.New(map[string]listview.Column[Bill]{
			"query":    {Text: func(b Bill) string { return b.CustomerName + " " + b.BillNumber }},
			"year":     {Enum: func(b Bill) string { return strconv.Itoa(b.BillDate.Year()) }},
			"number":   {Text: func(b Bill) string { return b.BillNumber }},
			"customer": {Text: func(b Bill) string { return b.CustomerName }},
			"status":   {Enum: func(b Bill) string { return string(b.PaymentStatus) }},
			"date":     {Less: func(a, b Bill) bool { return a.BillDate.Before(b.BillDate) }},
			"total":    {Less: func(a, b Bill) bool { return a.TotalAmount < b.TotalAmount }},
		}),
	}
}

// List returns all bills, filtered and sorted.
func (s *Service) List(ctx context.Context, q listview.Query) ([]Bill, error) {
	bills, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.view.Apply(bills, q), nil
}

// Get returns one bill with items and payments.
func (s *Service) Get(ctx context.Context, id int64) (Bill, error) {
	return s.repo.Get(ctx, id)
}

// GetByNumber looks a bill up by its printed number.
func (s *Service) GetByNumber(ctx context.Context, billNumber string) (Bill, error) {
	return s.repo.GetByNumber(ctx, billNumber)
}

// ListByCustomer returns the customer's bills.
func (s *Service) ListByCustomer(ctx context.Context, customerID int64) ([]Bill, error) {
	return s.repo.FindByCustomer(ctx, customerID)
}

// Create generates a numbered bill for the customer. A customer holds at
// most one bill; further charges go onto the existing one. A positive
// deposit becomes the bill's IsDeposit payment.
func (s *Service) Create(ctx context.Context, actorID int64, in BillInput) (Bill, error) {
	customer, err := s.repo.CustomerRef(ctx, in.CustomerID)
	if err != nil {
		return Bill{}, err
	}
	existing, err := s.repo.FindByCustomer(ctx, in.CustomerID)
	if err != nil {
		return Bill{}, err
	}
	if len(existing) > 0 {
		return Bill{}, fmt.Errorf("%w: customer already has bill %s, edit the existing bill",
			httpx.ErrConflict, existing[0].BillNumber)
	}

	number, err := s.nextBillNumber(ctx)
	if err != nil {
		return Bill{}, err
	}
	billDate := s.now().Truncate(24 * time.Hour)
	if in.BillDate != nil {
		billDate = *in.BillDate
	}
	items, err := s.buildItems(ctx, in.Items)
	if err != nil {
		return Bill{}, err
	}

	bill := Bill{
		BillNumber:         number,
		CustomerID:         customer.ID,
		CustomerName:       customer.Name,
		PalNumbers:         defaultPalNumbers(in.PalNumbers, customer),
		Type:               ParseBillType(in.BillType),
		BillDate:           billDate,
		SettlementDiscount: in.SettlementDiscount,
		Remarks:            in.Remarks,
		Items:              items,
		CreatedBy:          actorID,
	}
	if in.Deposit > 0 {
		bill.Payments = append(bill.Payments, Payment{
			Amount:       in.Deposit,
			Date:         billDate,
			Method:       ParsePaymentMethod(in.DepositMethod),
			ChequeNumber: in.DepositChequeNumber,
			Remarks:      depositRemarks,
			IsDeposit:    true,
			CreatedBy:    actorID,
		})
	}
	applyTotals(&bill)

	bill, err = s.repo.CreateBill(ctx, bill)
	if err != nil {
		return Bill{}, err
	}

	if in.RentalOrderID != nil {
		err := s.repo.LinkOrder(ctx, *in.RentalOrderID, bill.ID)
		switch {
		case errors.Is(err, httpx.ErrNotFound):
			s.logger.Warn("bill created without order link, order missing",
				slog.Int64("rental_order_id", *in.RentalOrderID))
		case err != nil:
			return Bill{}, err
		default:
			bill.RentalOrderID = in.RentalOrderID
		}
	}

	s.logger.Info("bill created",
		slog.String("number", bill.BillNumber),
		slog.Int64("customer_id", bill.CustomerID),
		slog.Float64("total", bill.TotalAmount))
	s.recordAudit(ctx, actorID, "bill.create", bill)
	return bill, nil
}

// Update replaces the bill's lines, settlement fields, and deposit, then
// recomputes totals. The customer on a bill never changes. A linked rental
// order's out-of-sync flag is cleared because the bill now reflects it.
func (s *Service) Update(ctx context.Context, actorID int64, id int64, in BillInput) (Bill, error) {
	bill, err := s.repo.Get(ctx, id)
	if err != nil {
		return Bill{}, err
	}
	if in.CustomerID != bill.CustomerID {
		return Bill{}, fmt.Errorf("%w: cannot change customer on an existing bill", httpx.ErrValidation)
	}

	items, err := s.buildItems(ctx, in.Items)
	if err != nil {
		return Bill{}, err
	}
	bill.PalNumbers = in.PalNumbers
	if in.BillType != "" {
		bill.Type = ParseBillType(in.BillType)
	}
	if in.BillDate != nil {
		bill.BillDate = *in.BillDate
	}
	bill.SettlementDiscount = in.SettlementDiscount
	bill.Remarks = in.Remarks
	bill.Items = items

	upsertDeposit(actorID, &bill, in)

	applyTotals(&bill)
	bill, err = s.repo.UpdateBill(ctx, bill)
	if err != nil {
		return Bill{}, err
	}
	if err := s.repo.ClearOrderOutOfSync(ctx, bill.ID); err != nil {
		return Bill{}, err
	}

	s.recordAudit(ctx, actorID, "bill.update", bill)
	return bill, nil
}

// Delete removes a bill that has no recorded money. Zero-amount payments
// (an emptied deposit) do not block deletion. The linked rental order is
// unlinked and, when the bill had closed it, reopened as RETURNED.
func (s *Service) Delete(ctx context.Context, actorID int64, id int64) error {
	bill, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	for _, p := range bill.Payments {
		if p.Amount > 0 {
			return fmt.Errorf("%w: bill has recorded payments, delete the payments first",
				httpx.ErrConflict)
		}
	}
	if err := s.repo.UnlinkOrders(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteBill(ctx, id); err != nil {
		return err
	}
	s.logger.Info("bill deleted", slog.String("number", bill.BillNumber))
	s.recordAudit(ctx, actorID, "bill.delete", bill)
	return nil
}

// PaymentsForBill lists payments against a bill, deposit included.
func (s *Service) PaymentsForBill(ctx context.Context, billID int64) ([]Payment, error) {
	if _, err := s.repo.Get(ctx, billID); err != nil {
		return nil, err
	}
	return s.repo.PaymentsForBill(ctx, billID)
}

// AddPayment records money against a bill and refreshes its derived totals.
func (s *Service) AddPayment(ctx context.Context, actorID int64, in PaymentInput) (Payment, error) {
	bill, err := s.repo.Get(ctx, in.BillID)
	if err != nil {
		return Payment{}, err
	}
	date := s.now().Truncate(24 * time.Hour)
	if in.Date != nil {
		date = *in.Date
	}
	payment, err := s.repo.InsertPayment(ctx, Payment{
		BillID:       bill.ID,
		Amount:       in.Amount,
		Date:         date,
		Method:       ParsePaymentMethod(in.Method),
		ChequeNumber: in.ChequeNumber,
		Remarks:      in.Remarks,
		CreatedBy:    actorID,
	})
	if err != nil {
		return Payment{}, err
	}
	if err := s.refreshTotals(ctx, bill.ID); err != nil {
		return Payment{}, err
	}
	s.recordAudit(ctx, actorID, "bill.payment.add", bill)
	return payment, nil
}

// UpdatePayment edits a recorded payment and refreshes the bill's totals.
func (s *Service) UpdatePayment(ctx context.Context, actorID int64, id int64, in PaymentInput) (Payment, error) {
	payment, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return Payment{}, err
	}
	if in.BillID != 0 && in.BillID != payment.BillID {
		return Payment{}, fmt.Errorf("%w: payment belongs to another bill", httpx.ErrValidation)
	}
	payment.Amount = in.Amount
	if in.Date != nil {
		payment.Date = *in.Date
	}
	if in.Method != "" {
		payment.Method = ParsePaymentMethod(in.Method)
	}
	payment.ChequeNumber = in.ChequeNumber
	if in.Remarks != "" {
		payment.Remarks = in.Remarks
	}
	payment, err = s.repo.UpdatePayment(ctx, payment)
	if err != nil {
		return Payment{}, err
	}
	if err := s.refreshTotals(ctx, payment.BillID); err != nil {
		return Payment{}, err
	}
	bill, err := s.repo.Get(ctx, payment.BillID)
	if err == nil {
		s.recordAudit(ctx, actorID, "bill.payment.update", bill)
	}
	return payment, nil
}

// DeletePayment removes a payment and refreshes the bill's totals.
func (s *Service) DeletePayment(ctx context.Context, actorID int64, id int64) error {
	payment, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeletePayment(ctx, id); err != nil {
		return err
	}
	if err := s.refreshTotals(ctx, payment.BillID); err != nil {
		return err
	}
	bill, err := s.repo.Get(ctx, payment.BillID)
	if err == nil {
		s.recordAudit(ctx, actorID, "bill.payment.delete", bill)
	}
	return nil
}

// buildItems resolves input lines into priced bill items. Lines with
// non-positive quantity are dropped. Inventory lines default their rate from
// the item; custom and lost-item flags pass through.
func (s *Service) buildItems(ctx context.Context, in []BillItemInput) ([]BillItem, error) {
	items := make([]BillItem, 0, len(in))
	for _, line := range in {
		if line.Quantity <= 0 {
			continue
		}
		if line.IsCustomItem {
			if strings.TrimSpace(line.CustomItemName) == "" {
				return nil, fmt.Errorf("%w: custom items require a name", httpx.ErrValidation)
			}
			rate := 0.0
			if line.Rate != nil {
				rate = *line.Rate
			}
			items = append(items, BillItem{
				Name:         strings.TrimSpace(line.CustomItemName),
				Quantity:     line.Quantity,
				Rate:         rate,
				IsCustomItem: true,
			})
			continue
		}
		if line.InventoryItemID == nil {
			return nil, fmt.Errorf("%w: bill items require an inventory item or a custom name",
				httpx.ErrValidation)
		}
		ref, err := s.repo.ItemRef(ctx, *line.InventoryItemID)
		if err != nil {
			return nil, err
		}
		rate := ref.DefaultRate
		if line.Rate != nil {
			rate = *line.Rate
		}
		items = append(items, BillItem{
			InventoryItemID: &ref.ID,
			Name:            ref.NameEnglish,
			Quantity:        line.Quantity,
			Rate:            rate,
			IsLostItem:      line.IsLostItem,
		})
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: bill needs at least one item with positive quantity",
			httpx.ErrValidation)
	}
	return items, nil
}

// upsertDeposit reconciles the bill's IsDeposit payment with the requested
// deposit amount, in memory: create when missing, update when present, zero
// out when removed. The payment row is kept so its history survives.
// UpdateBill persists the result alongside the header and items.
func upsertDeposit(actorID int64, bill *Bill, in BillInput) {
	var deposit *Payment
	for i := range bill.Payments {
		if bill.Payments[i].IsDeposit {
			deposit = &bill.Payments[i]
			break
		}
	}
	switch {
	case in.Deposit > 0 && deposit != nil:
		deposit.Amount = in.Deposit
		if in.DepositMethod != "" {
			deposit.Method = ParsePaymentMethod(in.DepositMethod)
		}
		deposit.ChequeNumber = in.DepositChequeNumber
	case in.Deposit > 0:
		bill.Payments = append(bill.Payments, Payment{
			BillID:       bill.ID,
			Amount:       in.Deposit,
			Date:         bill.BillDate,
			Method:       ParsePaymentMethod(in.DepositMethod),
			ChequeNumber: in.DepositChequeNumber,
			Remarks:      depositRemarks,
			IsDeposit:    true,
			CreatedBy:    actorID,
		})
	case deposit != nil:
		deposit.Amount = 0
	}
}

// refreshTotals reloads the bill and persists its recomputed figures.
func (s *Service) refreshTotals(ctx context.Context, billID int64) error {
	bill, err := s.repo.Get(ctx, billID)
	if err != nil {
		return err
	}
	applyTotals(&bill)
	return s.repo.SaveDerived(ctx, billID, derived(bill))
}

func (s *Service) nextBillNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("%s-%d-", billNumberPrefix, s.now().Year())
	last, err := s.repo.LastBillNumber(ctx, prefix)
	if err != nil && !errors.Is(err, httpx.ErrNotFound) {
		return "", err
	}
	next := 1
	if last != "" {
		if n, perr := strconv.Atoi(strings.TrimPrefix(last, prefix)); perr == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s%03d", prefix, next), nil
}

func defaultPalNumbers(requested string, customer CustomerRef) string {
	if requested != "" {
		return requested
	}
	if len(customer.PalNumbers) > 0 {
		return strings.Join(customer.PalNumbers, ",")
	}
	return "1"
}

func derived(b Bill) Totals {
	return Totals{
		TotalAmount:  b.TotalAmount,
		PaidAmount:   b.PaidAmount,
		NetPayable:   b.NetPayable,
		ToBeReturned: b.ToBeReturned,
		Status:       b.PaymentStatus,
	}
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, b Bill) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "bill",
		EntityID: strconv.FormatInt(b.ID, 10),
		Snapshot: b,
		At:       s.now(),
	})
	if err != nil {
		s.logger.Error("record bill audit", slog.Any("error", err))
	}
}
