package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRosterIntegrity is the task type for the ledger integrity scan.
	TaskRosterIntegrity = "roster:integrity"
	// TaskSessionsSweep is the task type for expired session-record cleanup.
	TaskSessionsSweep = "sessions:sweep"
)

// RosterIntegrityPayload configures a ledger integrity scan.
type RosterIntegrityPayload struct {
	// FailOnDangling makes the task return an error (and retry) when
	// dangling assignments are found, instead of only reporting them.
	FailOnDangling bool `json:"fail_on_dangling"`
}

// NewRosterIntegrityTask constructs an Asynq task for the integrity scan.
func NewRosterIntegrityTask(payload RosterIntegrityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRosterIntegrity, data), nil
}

// SessionsSweepPayload configures the session-record sweep.
type SessionsSweepPayload struct {
	// Retention keeps expired records around for this long before removal.
	Retention time.Duration `json:"retention"`
}

// NewSessionsSweepTask constructs an Asynq task for the session sweep.
func NewSessionsSweepTask(payload SessionsSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionsSweep, data), nil
}
