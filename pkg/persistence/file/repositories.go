package file

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hooklinehq/hookline/pkg/models"
	"github.com/hooklinehq/hookline/pkg/persistence"
)

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}

	return id.String(), nil
}

// TriggerRepository stores trigger configurations as JSON files.
type TriggerRepository struct {
	store store
}

func (r *TriggerRepository) ActiveBySource(ctx context.Context, projectID string, source models.EventSource) ([]*models.Trigger, error) {
	ids, err := r.store.ids()
	if err != nil {
		return nil, err
	}

	triggers := make([]*models.Trigger, 0)

	for _, id := range ids {
		trigger, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if trigger.DeletedAt != nil {
			continue
		}

		if trigger.ProjectID != projectID || trigger.EventSource != source {
			continue
		}

		if trigger.Status != models.TriggerStatusActive {
			continue
		}

		triggers = append(triggers, trigger)
	}

	return triggers, nil
}

func (r *TriggerRepository) GetByID(_ context.Context, id string) (*models.Trigger, error) {
	var trigger models.Trigger

	err := r.store.read(id, &trigger, persistence.ErrTriggerNotFound)
	if err != nil {
		return nil, err
	}

	return &trigger, nil
}

func (r *TriggerRepository) Save(_ context.Context, trigger *models.Trigger) error {
	now := time.Now().UTC()

	if trigger.CreatedAt.IsZero() {
		trigger.CreatedAt = now
	}

	trigger.UpdatedAt = now

	if trigger.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}

		trigger.ID = id
	}

	return r.store.write(trigger.ID, trigger)
}

func (r *TriggerRepository) Delete(_ context.Context, id string) error {
	return r.store.remove(id, persistence.ErrTriggerNotFound)
}

// ActionRepository stores action configurations as JSON files.
type ActionRepository struct {
	store store
}

func (r *ActionRepository) GetByID(_ context.Context, id string) (*models.Action, error) {
	var action models.Action

	err := r.store.read(id, &action, persistence.ErrActionNotFound)
	if err != nil {
		return nil, err
	}

	return &action, nil
}

func (r *ActionRepository) Save(_ context.Context, action *models.Action) error {
	now := time.Now().UTC()

	if action.CreatedAt.IsZero() {
		action.CreatedAt = now
	}

	action.UpdatedAt = now

	if action.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}

		action.ID = id
	}

	return r.store.write(action.ID, action)
}

func (r *ActionRepository) Delete(_ context.Context, id string) error {
	return r.store.remove(id, persistence.ErrActionNotFound)
}

// AutomationRepository stores trigger-to-action links as JSON files.
type AutomationRepository struct {
	store store
}

func (r *AutomationRepository) GetByID(_ context.Context, id string) (*models.Automation, error) {
	var automation models.Automation

	err := r.store.read(id, &automation, persistence.ErrAutomationNotFound)
	if err != nil {
		return nil, err
	}

	return &automation, nil
}

func (r *AutomationRepository) GetByTriggerID(ctx context.Context, triggerID string) ([]*models.Automation, error) {
	ids, err := r.store.ids()
	if err != nil {
		return nil, err
	}

	automations := make([]*models.Automation, 0)

	for _, id := range ids {
		automation, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if automation.TriggerID == triggerID {
			automations = append(automations, automation)
		}
	}

	return automations, nil
}

func (r *AutomationRepository) Save(_ context.Context, automation *models.Automation) error {
	now := time.Now().UTC()

	if automation.CreatedAt.IsZero() {
		automation.CreatedAt = now
	}

	automation.UpdatedAt = now

	if automation.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}

		automation.ID = id
	}

	return r.store.write(automation.ID, automation)
}

func (r *AutomationRepository) Delete(_ context.Context, id string) error {
	return r.store.remove(id, persistence.ErrAutomationNotFound)
}

// ExecutionRepository stores dispatch audit records as JSON files.
type ExecutionRepository struct {
	store store
}

func (r *ExecutionRepository) Create(_ context.Context, execution *models.Execution) error {
	if execution.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}

		execution.ID = id
	}

	if execution.CreatedAt.IsZero() {
		execution.CreatedAt = time.Now().UTC()
	}

	return r.store.write(execution.ID, execution)
}

func (r *ExecutionRepository) GetByID(_ context.Context, id string) (*models.Execution, error) {
	var execution models.Execution

	err := r.store.read(id, &execution, persistence.ErrExecutionNotFound)
	if err != nil {
		return nil, err
	}

	return &execution, nil
}

func (r *ExecutionRepository) UpdateStatus(ctx context.Context, id string, status models.ExecutionStatus, errorMessage string) error {
	execution, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	execution.Status = status
	execution.Error = errorMessage
	execution.FinishedAt = &now

	return r.store.write(execution.ID, execution)
}
