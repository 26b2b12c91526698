package audit

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Service reads audit records.
type Service struct {
	pool *pgxpool.Pool
}

// NewService constructs a Service.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// Entries returns the raw audit records for one entity, oldest first.
func (s *Service) Entries(ctx context.Context, entity, entityID string) ([]Entry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, actor_id, action, entity, entity_id, snapshot, occurred_at
		 FROM audit_logs
		 WHERE entity = $1 AND entity_id = $2
		 ORDER BY occurred_at, id`, entity, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Entity, &e.EntityID, &e.Snapshot, &e.At); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Timeline returns the field-level change history for one entity.
func (s *Service) Timeline(ctx context.Context, entity, entityID string) ([]TimelineEvent, error) {
	entries, err := s.Entries(ctx, entity, entityID)
	if err != nil {
		return nil, err
	}
	return BuildTimeline(entries), nil
}
