package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// SessionSweepJob deletes live sessions whose user has since been
// deactivated. Token expiry is handled by Redis TTLs; the sweep closes the
// window between deactivating an account and its sessions expiring.
type SessionSweepJob struct {
	pool   *pgxpool.Pool
	client *redis.Client
	logger *slog.Logger
}

// NewSessionSweepJob constructs the job.
func NewSessionSweepJob(pool *pgxpool.Pool, client *redis.Client, logger *slog.Logger) *SessionSweepJob {
	return &SessionSweepJob{pool: pool, client: client, logger: logger}
}

// Handle processes a TaskSessionSweep task.
func (j *SessionSweepJob) Handle(ctx context.Context, _ *asynq.Task) error {
	type sessionPayload struct {
		UserID int64 `json:"user_id"`
	}

	inactive := make(map[int64]bool)
	swept := 0
	iter := j.client.Scan(ctx, 0, "session:*", 200).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := j.client.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}
		var sess sessionPayload
		if json.Unmarshal(raw, &sess) != nil || sess.UserID == 0 {
			continue
		}
		gone, seen := inactive[sess.UserID]
		if !seen {
			var active bool
			err := j.pool.QueryRow(ctx,
				`SELECT is_active FROM users WHERE id = $1`, sess.UserID).Scan(&active)
			gone = err != nil || !active
			inactive[sess.UserID] = gone
		}
		if gone {
			if err := j.client.Del(ctx, key).Err(); err == nil {
				swept++
			}
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	j.logger.Info("session sweep complete", slog.Int("swept", swept))
	return nil
}
