package models

import (
	"encoding/json"
	"time"
)

// ActionType discriminates the configuration variant an action carries.
// Webhook is the only variant today; the dispatcher selects the delivery
// implementation by this tag instead of branching on strings downstream.
type ActionType string

const ActionTypeWebhook ActionType = "webhook"

// Action is a configured side effect executed on a trigger match. Config
// holds the variant-specific configuration document and is interpreted by
// the package owning the variant (pkg/webhook for ActionTypeWebhook).
type Action struct {
	ID        string          `json:"id"`
	ProjectID string          `json:"project_id" validate:"required"`
	Type      ActionType      `json:"type"       validate:"required,oneof=webhook"`
	Config    json.RawMessage `json:"config"     validate:"required"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
