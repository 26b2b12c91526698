// Package audit reads the append-only audit_logs table and rebuilds
// field-level change timelines from the stored snapshots.
package audit

import (
	"encoding/json"
	"time"
)

// Entry is one stored audit record.
type Entry struct {
	ID       int64           `json:"id"`
	ActorID  int64           `json:"actor_id"`
	Action   string          `json:"action"`
	Entity   string          `json:"entity"`
	EntityID string          `json:"entity_id"`
	Snapshot json.RawMessage `json:"snapshot"`
	At       time.Time       `json:"at"`
}

// FieldChange is one field transition between consecutive snapshots.
type FieldChange struct {
	Field string `json:"field"`
	From  any    `json:"from"`
	To    any    `json:"to"`
}

// TimelineEvent is one audit record enriched with the diff against the
// previous snapshot of the same entity.
type TimelineEvent struct {
	ActorID int64         `json:"actor_id"`
	Action  string        `json:"action"`
	At      time.Time     `json:"at"`
	Changes []FieldChange `json:"changes"`
}
