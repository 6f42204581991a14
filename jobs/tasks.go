package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportSnapshot submits a saved report from Current Data.
	TaskReportSnapshot = "report:snapshot"
)

// SnapshotPayload selects the report date. Empty means the worker's today.
type SnapshotPayload struct {
	Date string `json:"date,omitempty"`
}

// NewReportSnapshotTask constructs an Asynq task.
func NewReportSnapshotTask(payload SnapshotPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportSnapshot, data), nil
}
