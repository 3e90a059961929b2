package processor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hooklinehq/hookline/pkg/events"
	"github.com/hooklinehq/hookline/pkg/models"
	"github.com/hooklinehq/hookline/pkg/persistence"
)

// Recorder persists the execution audit record for one matched (trigger,
// action) pair. Record must complete before the webhook job is enqueued:
// an execution record exists for every job ever visible to the dispatcher,
// whether or not delivery later succeeds.
type Recorder struct {
	persistence persistence.Persistence
	logger      *slog.Logger
}

// NewRecorder creates a new execution recorder.
func NewRecorder(store persistence.Persistence, logger *slog.Logger) *Recorder {
	return &Recorder{
		persistence: store,
		logger:      logger.With("module", "execution_recorder"),
	}
}

// Record writes a pending execution with a fresh id. Redelivered change
// events produce a new record per attempt; deduplication, when wanted, sits
// in front of the processor.
func (r *Recorder) Record(
	ctx context.Context,
	trigger *models.Trigger,
	automation *models.Automation,
	action *models.Action,
	event *events.EntityChanged,
) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate execution ID: %w", err)
	}

	execution := &models.Execution{
		ID:           id.String(),
		ProjectID:    event.ProjectID,
		AutomationID: automation.ID,
		TriggerID:    trigger.ID,
		ActionID:     action.ID,
		Status:       models.ExecutionStatusPending,
		SourceID:     event.EntityID,
		Input:        auditInput(event),
	}

	err = r.persistence.Executions().Create(ctx, execution)
	if err != nil {
		return "", err
	}

	r.logger.DebugContext(ctx, "Recorded pending execution",
		"execution_id", execution.ID,
		"trigger_id", trigger.ID,
		"action_id", action.ID)

	return execution.ID, nil
}

// auditInput captures the subset of the change event kept on the execution
// row for later audit.
func auditInput(event *events.EntityChanged) map[string]any {
	input := map[string]any{
		"id":     event.EntityID,
		"type":   string(event.EntitySource),
		"action": string(event.Action),
	}

	if name, ok := event.Snapshot["name"]; ok {
		input["name"] = name
	}

	return input
}
