package models

import (
	"time"

	"github.com/hooklinehq/hookline/pkg/filter"
)

// TriggerStatus represents the lifecycle state of a trigger.
type TriggerStatus string

const (
	TriggerStatusActive   TriggerStatus = "active"   // Evaluated against change events
	TriggerStatusInactive TriggerStatus = "inactive" // Kept but never evaluated
)

// Trigger is a persisted subscription pairing an event source and a filter
// predicate. The associated action is linked through exactly one Automation;
// zero or several automations for one trigger is a configuration error, not
// a degraded match.
type Trigger struct {
	ID          string           `json:"id"`
	ProjectID   string           `json:"project_id"   validate:"required"`
	Name        string           `json:"name"         validate:"required,min=3"`
	EventSource EventSource      `json:"event_source" validate:"required,oneof=dataset prompt"`
	Status      TriggerStatus    `json:"status"       validate:"required,oneof=active inactive"`
	Filter      filter.Predicate `json:"filter"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	DeletedAt   *time.Time       `json:"deleted_at,omitempty"`
}
