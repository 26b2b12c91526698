package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StockIntegrityJob cross-checks the stored dispatch/return counters of
// active rental orders against the append-only transaction log. The
// transaction log is the source of truth; counters are a running cache of it
// and can only drift through operator surgery or bugs.
type StockIntegrityJob struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStockIntegrityJob constructs the job.
func NewStockIntegrityJob(pool *pgxpool.Pool, logger *slog.Logger) *StockIntegrityJob {
	return &StockIntegrityJob{pool: pool, logger: logger}
}

type driftedLine struct {
	lineID          int64
	orderID         int64
	inventoryItemID int64
	storedDispatch  int
	storedReturn    int
	actualDispatch  int
	actualReturn    int
}

// Handle processes a TaskStockIntegrity task.
func (j *StockIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload StockIntegrityPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	drifted, err := j.scan(ctx)
	if err != nil {
		return err
	}
	if len(drifted) == 0 {
		j.logger.Info("stock integrity scan clean")
		return nil
	}

	for _, d := range drifted {
		j.logger.Warn("stock counter drift",
			slog.Int64("order_id", d.orderID),
			slog.Int64("line_id", d.lineID),
			slog.Int64("inventory_item_id", d.inventoryItemID),
			slog.Int("stored_dispatched", d.storedDispatch),
			slog.Int("actual_dispatched", d.actualDispatch),
			slog.Int("stored_returned", d.storedReturn),
			slog.Int("actual_returned", d.actualReturn))
	}
	if !payload.Repair {
		j.logger.Warn("stock integrity scan found drift", slog.Int("lines", len(drifted)))
		return nil
	}

	for _, d := range drifted {
		_, err := j.pool.Exec(ctx,
			`UPDATE rental_order_items SET dispatched_qty = $2, returned_qty = $3
			 WHERE id = $1`,
			d.lineID, d.actualDispatch, d.actualReturn)
		if err != nil {
			return err
		}
	}
	j.logger.Info("stock integrity repaired", slog.Int("lines", len(drifted)))
	return nil
}

func (j *StockIntegrityJob) scan(ctx context.Context) ([]driftedLine, error) {
	rows, err := j.pool.Query(ctx, `
		SELECT roi.id, roi.rental_order_id, roi.inventory_item_id,
		       roi.dispatched_qty, roi.returned_qty,
		       COALESCE(SUM(CASE WHEN t.type = 'DISPATCH' THEN ti.quantity ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN t.type = 'RETURN' THEN ti.quantity ELSE 0 END), 0)
		FROM rental_order_items roi
		JOIN rental_orders ro ON ro.id = roi.rental_order_id
		LEFT JOIN rental_order_transactions t ON t.rental_order_id = roi.rental_order_id
		LEFT JOIN rental_order_transaction_items ti
		       ON ti.transaction_id = t.id AND ti.inventory_item_id = roi.inventory_item_id
		WHERE ro.status NOT IN ('COMPLETED', 'CANCELLED')
		GROUP BY roi.id, roi.rental_order_id, roi.inventory_item_id,
		         roi.dispatched_qty, roi.returned_qty`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drifted []driftedLine
	for rows.Next() {
		var d driftedLine
		if err := rows.Scan(&d.lineID, &d.orderID, &d.inventoryItemID,
			&d.storedDispatch, &d.storedReturn, &d.actualDispatch, &d.actualReturn); err != nil {
			return nil, err
		}
		if d.storedDispatch != d.actualDispatch || d.storedReturn != d.actualReturn {
			drifted = append(drifted, d)
		}
	}
	return drifted, rows.Err()
}
