// Package jobs holds the background worker: the nightly stock-integrity scan
// and the session sweep, both scheduled through Asynq.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStockIntegrity recomputes rental counters from the transaction log.
	TaskStockIntegrity = "stock:integrity"
	// TaskSessionSweep removes sessions belonging to deactivated users.
	TaskSessionSweep = "sessions:sweep"
)

// StockIntegrityPayload parameterises a stock-integrity scan. With Repair
// set, drifted counters are rewritten from the transaction log; otherwise
// the scan only reports.
type StockIntegrityPayload struct {
	Repair bool `json:"repair"`
}

// NewStockIntegrityTask constructs an Asynq task.
func NewStockIntegrityTask(repair bool) (*asynq.Task, error) {
	data, err := json.Marshal(StockIntegrityPayload{Repair: repair})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStockIntegrity, data), nil
}

// NewSessionSweepTask constructs an Asynq task.
func NewSessionSweepTask() (*asynq.Task, error) {
	return asynq.NewTask(TaskSessionSweep, nil), nil
}
