package models

import "time"

// Automation links one trigger to one action. The processor resolves the
// automations of a matched trigger and requires exactly one.
type Automation struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id" validate:"required"`
	Name      string    `json:"name"       validate:"required"`
	TriggerID string    `json:"trigger_id" validate:"required"`
	ActionID  string    `json:"action_id"  validate:"required"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
