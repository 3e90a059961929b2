// Package events defines the message types flowing between the dispatch
// pipeline's services.
package events

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hooklinehq/hookline/pkg/models"
)

type EventType string

// Kafka topics.
const ChangeTopic = "hookline.changes"   // Change events from entity mutations
const WebhookTopic = "hookline.webhooks" // Webhook delivery jobs

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	EntityChangedEvent   EventType = "entity.changed"
	WebhookDispatchEvent EventType = "webhook.dispatch"
)

// ErrInvalidEventData is returned when an event fails structural validation.
var ErrInvalidEventData = errors.New("invalid event data")

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	ProjectID string         `json:"project_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// EntityChanged describes a single mutation to a tracked entity. It is
// immutable once enqueued: the snapshot is the entity's public fields at
// change time, consumed by the change event processor and then discarded.
type EntityChanged struct {
	BaseEvent

	EntitySource models.EventSource  `json:"entity_source" validate:"required"`
	EntityID     string              `json:"entity_id"     validate:"required"`
	Action       models.ChangeAction `json:"action"        validate:"required"`
	Snapshot     map[string]any      `json:"snapshot"`
}

func (e EntityChanged) GetType() EventType {
	return EntityChangedEvent
}

// Validate checks the fields the processor cannot work without.
func (e EntityChanged) Validate() error {
	if e.ProjectID == "" || e.EntityID == "" || e.EntitySource == "" || e.Action == "" {
		return ErrInvalidEventData
	}

	return nil
}

// EvaluationData builds the combined object filters are evaluated against:
// the entity snapshot plus the synthetic action column, so the change kind
// is itself filterable.
func (e EntityChanged) EvaluationData() map[string]any {
	data := make(map[string]any, len(e.Snapshot)+1)
	for key, value := range e.Snapshot {
		data[key] = value
	}

	data[models.ActionColumn] = string(e.Action)

	return data
}

// WebhookDispatch is the delivery job for one recorded execution. It is
// published only after the execution row exists, so every job the
// dispatcher sees has its audit record.
type WebhookDispatch struct {
	BaseEvent

	ExecutionID  string              `json:"execution_id"  validate:"required"`
	AutomationID string              `json:"automation_id" validate:"required"`
	TriggerID    string              `json:"trigger_id"    validate:"required"`
	ActionID     string              `json:"action_id"     validate:"required"`
	EntitySource models.EventSource  `json:"entity_source" validate:"required"`
	EntityID     string              `json:"entity_id"`
	Action       models.ChangeAction `json:"action"`
	Snapshot     map[string]any      `json:"snapshot"`
}

func (e WebhookDispatch) GetType() EventType {
	return WebhookDispatchEvent
}

// TopicFor maps an event type to the Kafka topic it is published on.
func TopicFor(eventType EventType) string {
	if eventType == WebhookDispatchEvent {
		return WebhookTopic
	}

	return ChangeTopic
}

func NewBaseEvent(eventType EventType, projectID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		ProjectID: projectID,
		Metadata:  make(map[string]any),
	}
}
