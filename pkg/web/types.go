// Package web provides HTTP request and response types for the automation
// configuration API.
package web

import (
	"github.com/hooklinehq/hookline/pkg/filter"
	"github.com/hooklinehq/hookline/pkg/models"
	"github.com/hooklinehq/hookline/pkg/webhook"
)

// CreateTriggerRequest represents the request body for creating a new trigger.
type CreateTriggerRequest struct {
	ProjectID   string           `json:"project_id"   validate:"required"`
	Name        string           `json:"name"         validate:"required,min=3"`
	EventSource string           `json:"event_source" validate:"required,oneof=dataset prompt"`
	Status      string           `json:"status"       validate:"omitempty,oneof=active inactive"`
	Filter      filter.Predicate `json:"filter"`
}

// UpdateTriggerRequest represents the request body for updating an existing
// trigger. All fields are optional to support partial updates; the event
// source is immutable once the trigger exists.
type UpdateTriggerRequest struct {
	Name   *string           `json:"name,omitempty"   validate:"omitempty,min=3"`
	Status *string           `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	Filter *filter.Predicate `json:"filter,omitempty"`
}

// UpsertWebhookActionRequest represents the write body for a webhook action.
// Headers arrive as form rows; secret rows with an empty value keep the
// stored plaintext.
type UpsertWebhookActionRequest struct {
	ProjectID   string                `json:"project_id"   validate:"required"`
	URL         string                `json:"url"          validate:"required,url"`
	Headers     []webhook.HeaderEntry `json:"headers"`
	APIVersions map[string]string     `json:"api_versions" validate:"omitempty,dive,keys,oneof=dataset prompt,endkeys,required"`
}

// CreateAutomationRequest represents the request body for linking a trigger
// to an action.
type CreateAutomationRequest struct {
	ProjectID string `json:"project_id" validate:"required"`
	Name      string `json:"name"       validate:"required"`
	TriggerID string `json:"trigger_id" validate:"required"`
	ActionID  string `json:"action_id"  validate:"required"`
}

// WebhookActionResponse is the redacted read model of a webhook action.
// Secret header plaintext never appears here.
type WebhookActionResponse struct {
	ID          string                  `json:"id"`
	ProjectID   string                  `json:"project_id"`
	Type        string                  `json:"type"`
	URL         string                  `json:"url"`
	Headers     []webhook.HeaderDisplay `json:"headers"`
	APIVersions map[string]string       `json:"api_versions"`
}

// TransformWebhookActionResponse builds the redacted read model for an action.
func TransformWebhookActionResponse(action *models.Action, config *webhook.Config) WebhookActionResponse {
	versions := make(map[string]string, len(config.APIVersions))
	for source, version := range config.APIVersions {
		versions[string(source)] = version
	}

	return WebhookActionResponse{
		ID:          action.ID,
		ProjectID:   action.ProjectID,
		Type:        string(action.Type),
		URL:         config.URL,
		Headers:     config.DisplayHeaders(),
		APIVersions: versions,
	}
}
