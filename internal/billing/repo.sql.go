package billing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mandap-rentals/mandap-server/internal/platform/db"
	"github.com/mandap-rentals/mandap-server/internal/platform/httpx"
)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the postgres-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const billSelect = `
	SELECT b.id, b.bill_number, b.customer_id, c.name, b.pal_numbers, b.bill_type,
	       b.bill_date, b.settlement_discount, b.remarks, ro.id,
	       b.total_amount, b.paid_amount, b.net_payable, b.to_be_returned, b.payment_status,
	       b.created_by, b.created_at, b.updated_at
	FROM bills b
	JOIN customers c ON c.id = b.customer_id
	LEFT JOIN rental_orders ro ON ro.bill_id = b.id`

func scanBill(row pgx.Row) (Bill, error) {
	var b Bill
	err := row.Scan(&b.ID, &b.BillNumber, &b.CustomerID, &b.CustomerName, &b.PalNumbers, &b.Type,
		&b.BillDate, &b.SettlementDiscount, &b.Remarks, &b.RentalOrderID,
		&b.TotalAmount, &b.PaidAmount, &b.NetPayable, &b.ToBeReturned, &b.PaymentStatus,
		&b.CreatedBy, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Bill{}, httpx.ErrNotFound
	}
	return b, err
}

func (r *pgRepository) List(ctx context.Context) ([]Bill, error) {
	rows, err := r.pool.Query(ctx, billSelect+` ORDER BY b.bill_date DESC, b.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.loadParts(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *pgRepository) Get(ctx context.Context, id int64) (Bill, error) {
	b, err := scanBill(r.pool.QueryRow(ctx, billSelect+` WHERE b.id = $1`, id))
	if err != nil {
		return Bill{}, err
	}
	if err := r.loadParts(ctx, &b); err != nil {
		return Bill{}, err
	}
	return b, nil
}

func (r *pgRepository) GetByNumber(ctx context.Context, billNumber string) (Bill, error) {
	b, err := scanBill(r.pool.QueryRow(ctx, billSelect+` WHERE b.bill_number = $1`, billNumber))
	if err != nil {
		return Bill{}, err
	}
	if err := r.loadParts(ctx, &b); err != nil {
		return Bill{}, err
	}
	return b, nil
}

func (r *pgRepository) FindByCustomer(ctx context.Context, customerID int64) ([]Bill, error) {
	rows, err := r.pool.Query(ctx, billSelect+` WHERE b.customer_id = $1 ORDER BY b.id`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.loadParts(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *pgRepository) LastBillNumber(ctx context.Context, prefix string) (string, error) {
	var number string
	err := r.pool.QueryRow(ctx,
		`SELECT bill_number FROM bills WHERE bill_number LIKE $1 || '%' ORDER BY id DESC LIMIT 1`,
		prefix).Scan(&number)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", httpx.ErrNotFound
	}
	return number, err
}

func (r *pgRepository) CreateBill(ctx context.Context, b Bill) (Bill, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO bills (bill_number, customer_id, pal_numbers, bill_type, bill_date,
			                    settlement_discount, remarks, total_amount, paid_amount,
			                    net_payable, to_be_returned, payment_status, created_by)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			 RETURNING id, created_at, updated_at`,
			b.BillNumber, b.CustomerID, b.PalNumbers, b.Type, b.BillDate,
			b.SettlementDiscount, b.Remarks, b.TotalAmount, b.PaidAmount,
			b.NetPayable, b.ToBeReturned, b.PaymentStatus, b.CreatedBy).
			Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return err
		}
		if err := insertItems(ctx, tx, b.ID, b.Items); err != nil {
			return err
		}
		for i := range b.Payments {
			b.Payments[i].BillID = b.ID
			if err := insertPayment(ctx, tx, &b.Payments[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Bill{}, httpx.ErrDuplicate
		}
		return Bill{}, err
	}
	return r.Get(ctx, b.ID)
}

func (r *pgRepository) UpdateBill(ctx context.Context, b Bill) (Bill, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE bills
			 SET pal_numbers = $2, bill_type = $3, bill_date = $4, settlement_discount = $5,
			     remarks = $6, total_amount = $7, paid_amount = $8, net_payable = $9,
			     to_be_returned = $10, payment_status = $11, updated_at = NOW()
			 WHERE id = $1`,
			b.ID, b.PalNumbers, b.Type, b.BillDate, b.SettlementDiscount,
			b.Remarks, b.TotalAmount, b.PaidAmount, b.NetPayable,
			b.ToBeReturned, b.PaymentStatus)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return httpx.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM bill_items WHERE bill_id = $1`, b.ID); err != nil {
			return err
		}
		if err := insertItems(ctx, tx, b.ID, b.Items); err != nil {
			return err
		}
		for i := range b.Payments {
			if !b.Payments[i].IsDeposit {
				continue
			}
			b.Payments[i].BillID = b.ID
			if b.Payments[i].ID == 0 {
				if err := insertPayment(ctx, tx, &b.Payments[i]); err != nil {
					return err
				}
				continue
			}
			if err := updatePayment(ctx, tx, b.Payments[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Bill{}, err
	}
	return r.Get(ctx, b.ID)
}

func (r *pgRepository) DeleteBill(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM payments WHERE bill_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM bill_items WHERE bill_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM bills WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return httpx.ErrNotFound
		}
		return nil
	})
}

func insertItems(ctx context.Context, tx pgx.Tx, billID int64, items []BillItem) error {
	for _, it := range items {
		_, err := tx.Exec(ctx,
			`INSERT INTO bill_items (bill_id, inventory_item_id, name, quantity, rate, total,
			                         is_lost_item, is_custom_item)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			billID, it.InventoryItemID, it.Name, it.Quantity, it.Rate, it.Total,
			it.IsLostItem, it.IsCustomItem)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *pgRepository) loadParts(ctx context.Context, b *Bill) error {
	rows, err := r.pool.Query(ctx,
		`SELECT id, inventory_item_id, name, quantity, rate, total, is_lost_item, is_custom_item
		 FROM bill_items WHERE bill_id = $1 ORDER BY id`, b.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var it BillItem
		if err := rows.Scan(&it.ID, &it.InventoryItemID, &it.Name, &it.Quantity, &it.Rate,
			&it.Total, &it.IsLostItem, &it.IsCustomItem); err != nil {
			return err
		}
		b.Items = append(b.Items, it)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	b.Payments, err = r.PaymentsForBill(ctx, b.ID)
	return err
}

const paymentColumns = `id, bill_id, amount, payment_date, payment_method, cheque_number, remarks, is_deposit, created_by`

func scanPayment(row pgx.Row) (Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.BillID, &p.Amount, &p.Date, &p.Method, &p.ChequeNumber,
		&p.Remarks, &p.IsDeposit, &p.CreatedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return Payment{}, httpx.ErrNotFound
	}
	return p, err
}

func (r *pgRepository) PaymentsForBill(ctx context.Context, billID int64) ([]Payment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE bill_id = $1 ORDER BY payment_date, id`, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *pgRepository) GetPayment(ctx context.Context, id int64) (Payment, error) {
	return scanPayment(r.pool.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
}

func (r *pgRepository) InsertPayment(ctx context.Context, p Payment) (Payment, error) {
	if err := insertPayment(ctx, r.pool, &p); err != nil {
		return Payment{}, err
	}
	return p, nil
}

func (r *pgRepository) UpdatePayment(ctx context.Context, p Payment) (Payment, error) {
	if err := updatePayment(ctx, r.pool, p); err != nil {
		return Payment{}, err
	}
	return p, nil
}

// querier is satisfied by both pgx.Tx and *pgxpool.Pool so the payment
// helpers can run standalone or inside a bill transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertPayment(ctx context.Context, q querier, p *Payment) error {
	return q.QueryRow(ctx,
		`INSERT INTO payments (bill_id, amount, payment_date, payment_method, cheque_number,
		                       remarks, is_deposit, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		p.BillID, p.Amount, p.Date, p.Method, p.ChequeNumber,
		p.Remarks, p.IsDeposit, p.CreatedBy).Scan(&p.ID)
}

func updatePayment(ctx context.Context, q querier, p Payment) error {
	tag, err := q.Exec(ctx,
		`UPDATE payments
		 SET amount = $2, payment_date = $3, payment_method = $4, cheque_number = $5, remarks = $6
		 WHERE id = $1`,
		p.ID, p.Amount, p.Date, p.Method, p.ChequeNumber, p.Remarks)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *pgRepository) DeletePayment(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *pgRepository) SaveDerived(ctx context.Context, billID int64, t Totals) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE bills
		 SET total_amount = $2, paid_amount = $3, net_payable = $4, to_be_returned = $5,
		     payment_status = $6, updated_at = NOW()
		 WHERE id = $1`,
		billID, t.TotalAmount, t.PaidAmount, t.NetPayable, t.ToBeReturned, t.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *pgRepository) LinkOrder(ctx context.Context, orderID, billID int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE rental_orders SET bill_id = $2, bill_out_of_sync = FALSE, updated_at = NOW()
		 WHERE id = $1`, orderID, billID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *pgRepository) ClearOrderOutOfSync(ctx context.Context, billID int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE rental_orders SET bill_out_of_sync = FALSE, updated_at = NOW()
		 WHERE bill_id = $1`, billID)
	return err
}

func (r *pgRepository) UnlinkOrders(ctx context.Context, billID int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE rental_orders
		 SET bill_id = NULL, bill_out_of_sync = FALSE,
		     status = CASE WHEN status = 'COMPLETED' THEN 'RETURNED' ELSE status END,
		     updated_at = NOW()
		 WHERE bill_id = $1`, billID)
	return err
}

func (r *pgRepository) CustomerRef(ctx context.Context, id int64) (CustomerRef, error) {
	var ref CustomerRef
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, pal_numbers, active FROM customers WHERE id = $1`, id).
		Scan(&ref.ID, &ref.Name, &ref.PalNumbers, &ref.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return CustomerRef{}, httpx.ErrNotFound
	}
	return ref, err
}

func (r *pgRepository) ItemRef(ctx context.Context, id int64) (ItemRef, error) {
	var ref ItemRef
	err := r.pool.QueryRow(ctx,
		`SELECT id, name_english, default_rate, active FROM inventory_items WHERE id = $1`, id).
		Scan(&ref.ID, &ref.NameEnglish, &ref.DefaultRate, &ref.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return ItemRef{}, httpx.ErrNotFound
	}
	return ref, err
}
