package events

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

const eventColumns = `id, name, event_type, event_year, event_date, description, active, created_at, updated_at`

func scanEvent(row pgx.Row) (Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.Name, &e.Type, &e.Year, &e.EventDate, &e.Description,
		&e.Active, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, httpx.ErrNotFound
	}
	return e, err
}

func (r *pgRepository) query(ctx context.Context, sql string, args ...any) ([]Event, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *pgRepository) ListActive(ctx context.Context) ([]Event, error) {
	return r.query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE active ORDER BY event_year DESC, event_date`)
}

func (r *pgRepository) ListByYear(ctx context.Context, year int) ([]Event, error) {
	return r.query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE event_year = $1 AND active ORDER BY event_date`, year)
}

func (r *pgRepository) ListByType(ctx context.Context, t Type) ([]Event, error) {
	return r.query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE event_type = $1 AND active
		 ORDER BY event_year DESC, event_date`, t)
}

func (r *pgRepository) DistinctYears(ctx context.Context) ([]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT event_year FROM events WHERE active ORDER BY event_year DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		out = append(out, y)
	}
	return out, rows.Err()
}

func (r *pgRepository) Get(ctx context.Context, id int64) (Event, error) {
	return scanEvent(r.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

func (r *pgRepository) Create(ctx context.Context, e Event) (Event, error) {
	return scanEvent(r.pool.QueryRow(ctx,
		`INSERT INTO events (name, event_type, event_year, event_date, description, active)
		 VALUES ($1, $2, $3, $4, $5, TRUE)
		 RETURNING `+eventColumns,
		e.Name, e.Type, e.Year, e.EventDate, e.Description))
}

func (r *pgRepository) Update(ctx context.Context, e Event) (Event, error) {
	return scanEvent(r.pool.QueryRow(ctx,
		`UPDATE events
		 SET name = $2, event_type = $3, event_year = $4, event_date = $5,
		     description = $6, active = $7, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+eventColumns,
		e.ID, e.Name, e.Type, e.Year, e.EventDate, e.Description, e.Active))
}

func (r *pgRepository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE events SET active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
