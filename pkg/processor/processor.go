// Package processor consumes change events, matches them against active
// triggers and fans out one recorded execution per matched trigger.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hooklinehq/hookline/pkg/eventbus"
	"github.com/hooklinehq/hookline/pkg/events"
	"github.com/hooklinehq/hookline/pkg/filter"
	"github.com/hooklinehq/hookline/pkg/models"
	"github.com/hooklinehq/hookline/pkg/otelhelper"
	"github.com/hooklinehq/hookline/pkg/persistence"
)

// ErrMisconfiguredTrigger is returned when a matched trigger does not link
// to exactly one automation. This is an operator problem, not a transient
// one: the trigger is skipped and never retried until its config is fixed.
var ErrMisconfiguredTrigger = errors.New("trigger must have exactly one automation")

// Processor evaluates change events against trigger configurations. Trigger
// configuration is read fresh from the store on every event.
type Processor struct {
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	recorder    *Recorder
	fields      *filter.Registry
	guard       DedupGuard
	tracer      trace.Tracer
	logger      *slog.Logger
}

// NewProcessor creates a change event processor. guard may be nil, in which
// case redelivered events are reprocessed (over-notify rather than
// under-notify).
func NewProcessor(
	store persistence.Persistence,
	eventBus eventbus.EventBus,
	fields *filter.Registry,
	guard DedupGuard,
	logger *slog.Logger,
) *Processor {
	return &Processor{
		persistence: store,
		eventBus:    eventBus,
		recorder:    NewRecorder(store, logger),
		fields:      fields,
		guard:       guard,
		tracer:      otel.Tracer("hookline/processor"),
		logger:      logger.With("module", "change_processor"),
	}
}

// ProcessEvent handles a single change event. Per-trigger faults are logged
// and isolated so one malformed trigger never blocks its siblings; only a
// failure of the batch-level trigger lookup is returned, signalling the bus
// to redeliver the whole event.
func (p *Processor) ProcessEvent(ctx context.Context, event *events.EntityChanged) error {
	ctx, span := otelhelper.StartSpan(ctx, p.tracer, "processor.process_event",
		attribute.String(otelhelper.EventIDKey, event.ID),
		attribute.String(otelhelper.ProjectIDKey, event.ProjectID),
		attribute.String(otelhelper.EntitySourceKey, string(event.EntitySource)),
		attribute.String(otelhelper.EntityIDKey, event.EntityID),
	)
	defer span.End()

	logger := p.logger.With(
		"event_id", event.ID,
		"project_id", event.ProjectID,
		"entity_source", event.EntitySource,
		"entity_id", event.EntityID,
		"change_action", event.Action,
	)

	err := event.Validate()
	if err != nil {
		// Malformed events can never become valid; redelivering them
		// would poison the queue.
		logger.ErrorContext(ctx, "Dropping invalid change event", "error", err)

		return nil
	}

	if p.guard != nil {
		seen, err := p.guard.Seen(ctx, event.ID)
		if err != nil {
			logger.WarnContext(ctx, "Dedup guard unavailable, reprocessing", "error", err)
		} else if seen {
			logger.InfoContext(ctx, "Skipping already processed change event")

			return nil
		}
	}

	triggers, err := p.persistence.Triggers().ActiveBySource(ctx, event.ProjectID, event.EntitySource)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load active triggers", "error", err)
		otelhelper.SetError(span, err)

		return fmt.Errorf("failed to load active triggers: %w", err)
	}

	logger.DebugContext(ctx, "Evaluating triggers", "count", len(triggers))

	data := event.EvaluationData()
	mapper := p.fields.Mapper(string(event.EntitySource))

	for _, trigger := range triggers {
		err := p.processTrigger(ctx, trigger, event, data, mapper)
		if err != nil {
			logger.ErrorContext(ctx, "Trigger processing failed",
				"trigger_id", trigger.ID,
				"error", err)
			otelhelper.SetError(span, err, attribute.String(otelhelper.TriggerIDKey, trigger.ID))
		}
	}

	// Mark only after the trigger loop ran. An earlier marker would make
	// the redelivery of a failed lookup a no-op and drop the event.
	if p.guard != nil {
		err := p.guard.Mark(ctx, event.ID)
		if err != nil {
			logger.WarnContext(ctx, "Failed to mark change event as processed", "error", err)
		}
	}

	return nil
}

func (p *Processor) processTrigger(
	ctx context.Context,
	trigger *models.Trigger,
	event *events.EntityChanged,
	data map[string]any,
	mapper filter.FieldMapper,
) error {
	logger := p.logger.With("event_id", event.ID, "trigger_id", trigger.ID)

	if !filter.Evaluate(data, trigger.Filter, mapper) {
		logger.DebugContext(ctx, "Trigger filter did not match")

		return nil
	}

	automations, err := p.persistence.Automations().GetByTriggerID(ctx, trigger.ID)
	if err != nil {
		return fmt.Errorf("failed to load automations: %w", err)
	}

	if len(automations) != 1 {
		return fmt.Errorf("trigger %s has %d automations: %w", trigger.ID, len(automations), ErrMisconfiguredTrigger)
	}

	automation := automations[0]

	action, err := p.persistence.Actions().GetByID(ctx, automation.ActionID)
	if err != nil {
		if persistence.IsActionNotFound(err) {
			// Stale configuration: the automation outlived its action.
			logger.WarnContext(ctx, "Action no longer exists, skipping trigger",
				"action_id", automation.ActionID)

			return nil
		}

		return fmt.Errorf("failed to load action %s: %w", automation.ActionID, err)
	}

	executionID, err := p.recorder.Record(ctx, trigger, automation, action, event)
	if err != nil {
		return fmt.Errorf("failed to record execution: %w", err)
	}

	job := events.WebhookDispatch{
		BaseEvent:    events.NewBaseEvent(events.WebhookDispatchEvent, event.ProjectID),
		ExecutionID:  executionID,
		AutomationID: automation.ID,
		TriggerID:    trigger.ID,
		ActionID:     action.ID,
		EntitySource: trigger.EventSource,
		EntityID:     event.EntityID,
		Action:       event.Action,
		Snapshot:     event.Snapshot,
	}
	job.ID = p.eventBus.GenerateID()

	err = p.eventBus.Publish(ctx, event.ProjectID, job)
	if err != nil {
		return fmt.Errorf("failed to enqueue webhook job for execution %s: %w", executionID, err)
	}

	logger.InfoContext(ctx, "Dispatched execution",
		"execution_id", executionID,
		"automation_id", automation.ID,
		"action_id", action.ID)

	return nil
}
