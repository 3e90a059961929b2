// Package persistence provides the storage abstraction for triggers,
// actions, automations and executions.
package persistence

import (
	"context"

	"github.com/hooklinehq/hookline/pkg/models"
)

// Persistence bundles the repositories of the automation store. The store is
// read-mostly from the dispatch pipeline's perspective: configuration writes
// happen through the API service, the pipeline only appends executions and
// flips their terminal status.
type Persistence interface {
	Triggers() TriggerRepository
	Actions() ActionRepository
	Automations() AutomationRepository
	Executions() ExecutionRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// TriggerRepository stores trigger configurations. ActiveBySource is the
// processor's hot-path lookup and always reads fresh; stale triggers could
// mis-route or miss events, so no caching layer sits in front of it.
type TriggerRepository interface {
	ActiveBySource(ctx context.Context, projectID string, source models.EventSource) ([]*models.Trigger, error)
	GetByID(ctx context.Context, id string) (*models.Trigger, error)
	Save(ctx context.Context, trigger *models.Trigger) error
	Delete(ctx context.Context, id string) error
}

// ActionRepository stores action configurations.
type ActionRepository interface {
	GetByID(ctx context.Context, id string) (*models.Action, error)
	Save(ctx context.Context, action *models.Action) error
	Delete(ctx context.Context, id string) error
}

// AutomationRepository stores the trigger-to-action links.
type AutomationRepository interface {
	GetByID(ctx context.Context, id string) (*models.Automation, error)
	GetByTriggerID(ctx context.Context, triggerID string) ([]*models.Automation, error)
	Save(ctx context.Context, automation *models.Automation) error
	Delete(ctx context.Context, id string) error
}

// ExecutionRepository stores dispatch audit records. Executions are
// append-only; UpdateStatus is the single permitted mutation and moves a
// record from pending to its terminal state.
type ExecutionRepository interface {
	Create(ctx context.Context, execution *models.Execution) error
	GetByID(ctx context.Context, id string) (*models.Execution, error)
	UpdateStatus(ctx context.Context, id string, status models.ExecutionStatus, errorMessage string) error
}
