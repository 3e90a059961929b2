package models

import "time"

// ExecutionStatus is the delivery state of one dispatch attempt.
// Pending is the only non-terminal state; retries by the queue substrate
// produce a new delivery attempt against the same execution id.
type ExecutionStatus string

const (
	ExecutionStatusPending ExecutionStatus = "pending"
	ExecutionStatusSuccess ExecutionStatus = "success"
	ExecutionStatusError   ExecutionStatus = "error"
)

// Execution is the audit record of one attempted dispatch of one action for
// one trigger match. It is created with status pending before the webhook
// job is enqueued, so a record exists for every job that was ever visible to
// the dispatcher. Rows are append-only apart from the terminal status
// transition.
type Execution struct {
	ID           string          `json:"id"`
	ProjectID    string          `json:"project_id"`
	AutomationID string          `json:"automation_id"`
	TriggerID    string          `json:"trigger_id"`
	ActionID     string          `json:"action_id"`
	Status       ExecutionStatus `json:"status"`
	SourceID     string          `json:"source_id"` // Entity that changed
	Input        map[string]any  `json:"input"`     // Snapshot captured for audit
	Error        string          `json:"error,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	FinishedAt   *time.Time      `json:"finished_at,omitempty"`
}
