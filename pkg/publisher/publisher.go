// Package publisher assembles change events from entity mutations and
// enqueues them for trigger evaluation.
package publisher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hooklinehq/hookline/pkg/eventbus"
	"github.com/hooklinehq/hookline/pkg/events"
	"github.com/hooklinehq/hookline/pkg/models"
)

// ChangePublisher is the pipeline's entry point. Callers invoke
// PublishChange after an entity mutation commits; a publish failure
// propagates so the caller can surface it instead of losing the change.
type ChangePublisher struct {
	eventBus eventbus.EventBus
	logger   *slog.Logger
}

// NewChangePublisher creates a new change publisher.
func NewChangePublisher(eventBus eventbus.EventBus, logger *slog.Logger) *ChangePublisher {
	return &ChangePublisher{
		eventBus: eventBus,
		logger:   logger.With("module", "change_publisher"),
	}
}

// PublishChange builds and enqueues the change event for one mutation. The
// event id is a ULID from the bus, so ids of events published by one process
// are monotonically ordered and double as a version marker. The snapshot is
// the entity's public fields at change time and is never mutated afterwards.
func (p *ChangePublisher) PublishChange(
	ctx context.Context,
	projectID string,
	source models.EventSource,
	entityID string,
	action models.ChangeAction,
	snapshot map[string]any,
) (*events.EntityChanged, error) {
	event := events.EntityChanged{
		BaseEvent:    events.NewBaseEvent(events.EntityChangedEvent, projectID),
		EntitySource: source,
		EntityID:     entityID,
		Action:       action,
		Snapshot:     snapshot,
	}
	event.ID = p.eventBus.GenerateID()

	err := event.Validate()
	if err != nil {
		return nil, fmt.Errorf("refusing to publish change event: %w", err)
	}

	logger := p.logger.With(
		"event_id", event.ID,
		"entity_source", source,
		"entity_id", entityID,
		"change_action", action,
	)

	err = p.eventBus.Publish(ctx, projectID, event)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to publish change event", "error", err)

		return nil, err
	}

	logger.DebugContext(ctx, "Published change event")

	return &event, nil
}
