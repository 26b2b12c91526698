package rentals

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mandap-rentals/mandap-server/internal/platform/db"
	"github.com/mandap-rentals/mandap-server/internal/platform/httpx"
)

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the postgres-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const orderColumns = `ro.id, ro.order_number, ro.customer_id, c.name, ro.status, ro.order_date,
	ro.expected_return_date, ro.dispatch_date, ro.actual_return_date, ro.bill_id,
	ro.bill_out_of_sync, ro.remarks, ro.created_at, ro.updated_at`

const orderSelect = `SELECT ` + orderColumns + `
	FROM rental_orders ro JOIN customers c ON c.id = ro.customer_id`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &o.CustomerName, &o.Status,
		&o.OrderDate, &o.ExpectedReturnDate, &o.DispatchDate, &o.ActualReturnDate,
		&o.BillID, &o.BillOutOfSync, &o.Remarks, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, httpx.ErrNotFound
	}
	return o, err
}

func (r *pgRepository) queryOrders(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		items, err := r.orderItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (r *pgRepository) List(ctx context.Context) ([]Order, error) {
	return r.queryOrders(ctx, orderSelect+` ORDER BY ro.order_number DESC`)
}

func (r *pgRepository) ListActive(ctx context.Context) ([]Order, error) {
	return r.queryOrders(ctx,
		orderSelect+` WHERE ro.status NOT IN ('COMPLETED','CANCELLED') ORDER BY ro.order_number DESC`)
}

func (r *pgRepository) Get(ctx context.Context, id int64) (Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, orderSelect+` WHERE ro.id = $1`, id))
	if err != nil {
		return Order{}, err
	}
	if o.Items, err = r.orderItems(ctx, id); err != nil {
		return Order{}, err
	}
	if o.Transactions, err = r.orderTransactions(ctx, id); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (r *pgRepository) orderItems(ctx context.Context, orderID int64) ([]OrderItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT roi.id, roi.inventory_item_id, ii.name_english, roi.booked_qty,
		        roi.dispatched_qty, roi.returned_qty, roi.dispatch_date, roi.return_date
		 FROM rental_order_items roi
		 JOIN inventory_items ii ON ii.id = roi.inventory_item_id
		 WHERE roi.rental_order_id = $1
		 ORDER BY roi.id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.InventoryItemID, &it.ItemNameEnglish, &it.BookedQty,
			&it.DispatchedQty, &it.ReturnedQty, &it.DispatchDate, &it.ReturnDate); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *pgRepository) orderTransactions(ctx context.Context, orderID int64) ([]Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, type, voucher_number, vehicle_number, transaction_date
		 FROM rental_order_transactions
		 WHERE rental_order_id = $1
		 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var txs []Transaction
	for rows.Next() {
		var tx Transaction
		if err := rows.Scan(&tx.ID, &tx.Type, &tx.VoucherNumber, &tx.VehicleNumber, &tx.Date); err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range txs {
		itemRows, err := r.pool.Query(ctx,
			`SELECT ti.inventory_item_id, ii.name_english, ti.quantity
			 FROM rental_order_transaction_items ti
			 JOIN inventory_items ii ON ii.id = ti.inventory_item_id
			 WHERE ti.transaction_id = $1
			 ORDER BY ti.id`, txs[i].ID)
		if err != nil {
			return nil, err
		}
		for itemRows.Next() {
			var ti TransactionItem
			if err := itemRows.Scan(&ti.InventoryItemID, &ti.ItemNameEnglish, &ti.Quantity); err != nil {
				itemRows.Close()
				return nil, err
			}
			txs[i].Items = append(txs[i].Items, ti)
		}
		itemRows.Close()
		if err := itemRows.Err(); err != nil {
			return nil, err
		}
	}
	return txs, nil
}

func (r *pgRepository) LastOrderNumber(ctx context.Context, prefix string) (string, error) {
	var number string
	err := r.pool.QueryRow(ctx,
		`SELECT order_number FROM rental_orders
		 WHERE order_number LIKE $1 || '%'
		 ORDER BY id DESC LIMIT 1`, prefix).Scan(&number)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", httpx.ErrNotFound
	}
	return number, err
}

func (r *pgRepository) CreateOrder(ctx context.Context, o Order) (Order, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO rental_orders
			   (order_number, customer_id, status, order_date, expected_return_date, remarks)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id, created_at, updated_at`,
			o.OrderNumber, o.CustomerID, o.Status, o.OrderDate, o.ExpectedReturnDate, o.Remarks).
			Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return err
		}
		for i := range o.Items {
			err := tx.QueryRow(ctx,
				`INSERT INTO rental_order_items
				   (rental_order_id, inventory_item_id, booked_qty, dispatched_qty, returned_qty)
				 VALUES ($1, $2, $3, 0, 0)
				 RETURNING id`,
				o.ID, o.Items[i].InventoryItemID, o.Items[i].BookedQty).Scan(&o.Items[i].ID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

func (r *pgRepository) SaveOrderHeader(ctx context.Context, o Order) error {
	return saveHeader(ctx, r.pool, o)
}

func (r *pgRepository) SaveOrder(ctx context.Context, o Order, t *Transaction) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if t != nil {
			if err := appendTransaction(ctx, tx, o.ID, *t); err != nil {
				return err
			}
		}
		if err := replaceItems(ctx, tx, o.ID, o.Items); err != nil {
			return err
		}
		return saveHeader(ctx, tx, o)
	})
}

func saveHeader(ctx context.Context, e execer, o Order) error {
	tag, err := e.Exec(ctx,
		`UPDATE rental_orders
		 SET status = $2, order_date = $3, expected_return_date = $4, dispatch_date = $5,
		     actual_return_date = $6, bill_out_of_sync = $7, remarks = $8, updated_at = NOW()
		 WHERE id = $1`,
		o.ID, o.Status, o.OrderDate, o.ExpectedReturnDate, o.DispatchDate,
		o.ActualReturnDate, o.BillOutOfSync, o.Remarks)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func replaceItems(ctx context.Context, e execer, orderID int64, items []OrderItem) error {
	if _, err := e.Exec(ctx,
		`DELETE FROM rental_order_items WHERE rental_order_id = $1`, orderID); err != nil {
		return err
	}
	for _, it := range items {
		if _, err := e.Exec(ctx,
			`INSERT INTO rental_order_items
			   (rental_order_id, inventory_item_id, booked_qty, dispatched_qty, returned_qty,
			    dispatch_date, return_date)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			orderID, it.InventoryItemID, it.BookedQty, it.DispatchedQty, it.ReturnedQty,
			it.DispatchDate, it.ReturnDate); err != nil {
			return err
		}
	}
	return nil
}

func appendTransaction(ctx context.Context, tx pgx.Tx, orderID int64, t Transaction) error {
	var txID int64
	err := tx.QueryRow(ctx,
		`INSERT INTO rental_order_transactions
		   (rental_order_id, type, voucher_number, vehicle_number, transaction_date)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		orderID, t.Type, t.VoucherNumber, t.VehicleNumber, t.Date).Scan(&txID)
	if err != nil {
		return err
	}
	for _, it := range t.Items {
		if _, err := tx.Exec(ctx,
			`INSERT INTO rental_order_transaction_items (transaction_id, inventory_item_id, quantity)
			 VALUES ($1, $2, $3)`, txID, it.InventoryItemID, it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (r *pgRepository) DeleteOrder(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM rental_order_transaction_items
			 WHERE transaction_id IN
			   (SELECT id FROM rental_order_transactions WHERE rental_order_id = $1)`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM rental_order_transactions WHERE rental_order_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM rental_order_items WHERE rental_order_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM rental_orders WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return httpx.ErrNotFound
		}
		return nil
	})
}

func (r *pgRepository) CustomerActiveOrders(ctx context.Context, customerID int64) ([]Order, error) {
	return r.queryOrders(ctx,
		orderSelect+` WHERE ro.customer_id = $1 AND ro.status NOT IN ('COMPLETED','CANCELLED')
		 ORDER BY ro.order_date DESC`, customerID)
}

func (r *pgRepository) UnreturnedOrdersByCustomer(ctx context.Context, customerID int64) ([]Order, error) {
	return r.queryOrders(ctx,
		orderSelect+` WHERE ro.customer_id = $1
		   AND EXISTS (SELECT 1 FROM rental_order_items roi
		               WHERE roi.rental_order_id = ro.id
		                 AND roi.dispatched_qty > roi.returned_qty)
		 ORDER BY ro.order_date DESC`, customerID)
}

func (r *pgRepository) InventoryItem(ctx context.Context, id int64) (ItemRef, error) {
	var ref ItemRef
	err := r.pool.QueryRow(ctx,
		`SELECT id, name_english, total_stock, active FROM inventory_items WHERE id = $1`, id).
		Scan(&ref.ID, &ref.NameEnglish, &ref.TotalStock, &ref.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return ItemRef{}, httpx.ErrNotFound
	}
	return ref, err
}

func (r *pgRepository) ActiveLinesForItem(ctx context.Context, inventoryItemID int64) ([]ActiveLine, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT roi.rental_order_id, roi.booked_qty, roi.returned_qty
		 FROM rental_order_items roi
		 JOIN rental_orders ro ON ro.id = roi.rental_order_id
		 WHERE roi.inventory_item_id = $1
		   AND ro.status NOT IN ('COMPLETED','CANCELLED')`, inventoryItemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []ActiveLine
	for rows.Next() {
		var l ActiveLine
		if err := rows.Scan(&l.OrderID, &l.BookedQty, &l.ReturnedQty); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *pgRepository) SetBillLink(ctx context.Context, orderID int64, billID *int64, outOfSync bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE rental_orders SET bill_id = $2, bill_out_of_sync = $3, updated_at = NOW()
		 WHERE id = $1`, orderID, billID, outOfSync)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
