package customers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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

const customerColumns = `id, name, mobile, pal_numbers, alternate_contact, address, notes, active, created_at, updated_at`

func scanCustomer(row pgx.Row) (Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.Mobile, &c.PalNumbers, &c.AlternateContact,
		&c.Address, &c.Notes, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, httpx.ErrNotFound
	}
	return c, err
}

func (r *pgRepository) ListActive(ctx context.Context) ([]Customer, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+customerColumns+` FROM customers WHERE active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *pgRepository) Get(ctx context.Context, id int64) (Customer, error) {
	return scanCustomer(r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
}

func (r *pgRepository) FindByMobile(ctx context.Context, mobile string) (Customer, error) {
	return scanCustomer(r.pool.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE mobile = $1`, mobile))
}

func (r *pgRepository) Create(ctx context.Context, in CustomerInput) (Customer, error) {
	c, err := scanCustomer(r.pool.QueryRow(ctx,
		`INSERT INTO customers (name, mobile, pal_numbers, alternate_contact, address, notes, active)
		 VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		 RETURNING `+customerColumns,
		in.Name, in.Mobile, in.PalNumbers, in.AlternateContact, in.Address, in.Notes))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Customer{}, httpx.ErrDuplicate
		}
		return Customer{}, err
	}
	return c, nil
}

func (r *pgRepository) Update(ctx context.Context, id int64, in CustomerInput, active bool) (Customer, error) {
	c, err := scanCustomer(r.pool.QueryRow(ctx,
		`UPDATE customers
		 SET name = $2, mobile = $3, pal_numbers = $4, alternate_contact = $5,
		     address = $6, notes = $7, active = $8, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+customerColumns,
		id, in.Name, in.Mobile, in.PalNumbers, in.AlternateContact, in.Address, in.Notes, active))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Customer{}, httpx.ErrDuplicate
		}
		return Customer{}, err
	}
	return c, nil
}

func (r *pgRepository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE customers SET active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *pgRepository) LoadFlagSets(ctx context.Context) (FlagSets, error) {
	fs := FlagSets{
		AnyOrders:      make(map[int64]struct{}),
		ActiveOrders:   make(map[int64]struct{}),
		UnbilledOrders: make(map[int64]struct{}),
		BilledOrders:   make(map[int64]struct{}),
		PendingBills:   make(map[int64]struct{}),
	}
	load := func(dst map[int64]struct{}, query string) error {
		rows, err := r.pool.Query(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return err
			}
			dst[id] = struct{}{}
		}
		return rows.Err()
	}
	if err := load(fs.AnyOrders, `SELECT DISTINCT customer_id FROM rental_orders`); err != nil {
		return FlagSets{}, err
	}
	if err := load(fs.ActiveOrders,
		`SELECT DISTINCT customer_id FROM rental_orders WHERE status NOT IN ('COMPLETED','CANCELLED')`); err != nil {
		return FlagSets{}, err
	}
	if err := load(fs.UnbilledOrders,
		`SELECT DISTINCT customer_id FROM rental_orders WHERE bill_id IS NULL AND status <> 'CANCELLED'`); err != nil {
		return FlagSets{}, err
	}
	if err := load(fs.BilledOrders,
		`SELECT DISTINCT customer_id FROM rental_orders WHERE bill_id IS NOT NULL`); err != nil {
		return FlagSets{}, err
	}
	if err := load(fs.PendingBills,
		`SELECT DISTINCT b.customer_id FROM bills b
		 WHERE (SELECT b.total_amount - b.settlement_discount - COALESCE(SUM(p.amount), 0)
		        FROM payments p WHERE p.bill_id = b.id) > 0`); err != nil {
		return FlagSets{}, err
	}
	return fs, nil
}

func (r *pgRepository) HasActiveOrders(ctx context.Context, customerID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM rental_orders
		 WHERE customer_id = $1 AND status NOT IN ('COMPLETED','CANCELLED'))`, customerID).Scan(&exists)
	return exists, err
}

func (r *pgRepository) HasPendingBills(ctx context.Context, customerID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM bills b
		   WHERE b.customer_id = $1
		     AND b.total_amount - b.settlement_discount -
		         COALESCE((SELECT SUM(p.amount) FROM payments p WHERE p.bill_id = b.id), 0) > 0)`,
		customerID).Scan(&exists)
	return exists, err
}
