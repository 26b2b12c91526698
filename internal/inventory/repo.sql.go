package inventory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mandap-rentals/mandap-server/internal/platform/httpx"
)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the postgres-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const itemColumns = `id, name_gujarati, name_english, default_rate, category, display_order,
	active, total_stock, created_at, updated_at`

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.NameGujarati, &it.NameEnglish, &it.DefaultRate, &it.Category,
		&it.DisplayOrder, &it.Active, &it.TotalStock, &it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, httpx.ErrNotFound
	}
	return it, err
}

func (r *pgRepository) ListOrdered(ctx context.Context) ([]Item, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+itemColumns+` FROM inventory_items ORDER BY display_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *pgRepository) Get(ctx context.Context, id int64) (Item, error) {
	return scanItem(r.pool.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id))
}

func (r *pgRepository) Create(ctx context.Context, in CreateItemInput, category Category, displayOrder int) (Item, error) {
	return scanItem(r.pool.QueryRow(ctx,
		`INSERT INTO inventory_items
		   (name_gujarati, name_english, default_rate, category, display_order, active, total_stock)
		 VALUES ($1, $2, $3, $4, $5, TRUE, $6)
		 RETURNING `+itemColumns,
		in.NameGujarati, in.NameEnglish, in.DefaultRate, category, displayOrder, in.TotalStock))
}

func (r *pgRepository) Save(ctx context.Context, item Item) (Item, error) {
	return scanItem(r.pool.QueryRow(ctx,
		`UPDATE inventory_items
		 SET name_gujarati = $2, name_english = $3, default_rate = $4, category = $5,
		     active = $6, total_stock = $7, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+itemColumns,
		item.ID, item.NameGujarati, item.NameEnglish, item.DefaultRate, item.Category,
		item.Active, item.TotalStock))
}

func (r *pgRepository) MaxDisplayOrder(ctx context.Context) (int, error) {
	var max int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(display_order), 0) FROM inventory_items`).Scan(&max)
	return max, err
}

func (r *pgRepository) SetDisplayOrder(ctx context.Context, id int64, order int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE inventory_items SET display_order = $2, updated_at = NOW() WHERE id = $1`, id, order)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *pgRepository) ReservedQuantities(ctx context.Context) (map[int64]int, error) {
	return r.quantities(ctx,
		`SELECT roi.inventory_item_id, SUM(roi.booked_qty - roi.returned_qty)
		 FROM rental_order_items roi
		 JOIN rental_orders ro ON ro.id = roi.rental_order_id
		 WHERE ro.status NOT IN ('COMPLETED','CANCELLED')
		 GROUP BY roi.inventory_item_id`)
}

func (r *pgRepository) PendingDispatchQuantities(ctx context.Context) (map[int64]int, error) {
	return r.quantities(ctx,
		`SELECT roi.inventory_item_id, SUM(GREATEST(roi.booked_qty - roi.dispatched_qty, 0))
		 FROM rental_order_items roi
		 JOIN rental_orders ro ON ro.id = roi.rental_order_id
		 WHERE ro.status NOT IN ('COMPLETED','CANCELLED')
		 GROUP BY roi.inventory_item_id`)
}

func (r *pgRepository) quantities(ctx context.Context, query string) (map[int64]int, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int64]int)
	for rows.Next() {
		var id int64
		var qty int
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, err
		}
		out[id] = qty
	}
	return out, rows.Err()
}

func (r *pgRepository) ActiveUsage(ctx context.Context, itemID int64) ([]Usage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.name, ro.order_number, roi.booked_qty, roi.dispatched_qty, roi.returned_qty
		 FROM rental_order_items roi
		 JOIN rental_orders ro ON ro.id = roi.rental_order_id
		 JOIN customers c ON c.id = ro.customer_id
		 WHERE roi.inventory_item_id = $1
		   AND ro.status NOT IN ('COMPLETED','CANCELLED')
		 ORDER BY ro.order_number`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Usage
	for rows.Next() {
		var u Usage
		if err := rows.Scan(&u.CustomerID, &u.CustomerName, &u.OrderNumber,
			&u.BookedQty, &u.DispatchedQty, &u.ReturnedQty); err != nil {
			return nil, err
		}
		u.PendingDispatchQty = maxInt(0, u.BookedQty-u.DispatchedQty)
		u.PendingReturnQty = maxInt(0, u.DispatchedQty-u.ReturnedQty)
		out = append(out, u)
	}
	return out, rows.Err()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
