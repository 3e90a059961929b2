package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hooklinehq/hookline/pkg/models"
	"github.com/hooklinehq/hookline/pkg/persistence"
)

// AutomationRepository handles automation-related database operations.
type AutomationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewAutomationRepository creates a new automation repository.
func NewAutomationRepository(db *sql.DB, logger *slog.Logger) *AutomationRepository {
	return &AutomationRepository{db: db, logger: logger}
}

func (r *AutomationRepository) GetByID(ctx context.Context, id string) (*models.Automation, error) {
	query := `
		SELECT
			id
		  , project_id
		  , name
		  , trigger_id
		  , action_id
		  , created_at
		  , updated_at
		FROM automations
		WHERE id = $1
	`

	var automation models.Automation

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&automation.ID,
		&automation.ProjectID,
		&automation.Name,
		&automation.TriggerID,
		&automation.ActionID,
		&automation.CreatedAt,
		&automation.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("GetByID", "automation", id, persistence.ErrAutomationNotFound)
		}

		return nil, fmt.Errorf("failed to scan automation: %w", err)
	}

	return &automation, nil
}

// GetByTriggerID returns every automation linked to a trigger. The processor
// requires exactly one; enforcing that is its job, not the repository's.
func (r *AutomationRepository) GetByTriggerID(ctx context.Context, triggerID string) ([]*models.Automation, error) {
	query := `
		SELECT
			id
		  , project_id
		  , name
		  , trigger_id
		  , action_id
		  , created_at
		  , updated_at
		FROM automations
		WHERE trigger_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, triggerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query automations: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	automations := make([]*models.Automation, 0)

	for rows.Next() {
		var automation models.Automation

		err := rows.Scan(
			&automation.ID,
			&automation.ProjectID,
			&automation.Name,
			&automation.TriggerID,
			&automation.ActionID,
			&automation.CreatedAt,
			&automation.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan automation: %w", err)
		}

		automations = append(automations, &automation)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating automations: %w", err)
	}

	return automations, nil
}

// Save inserts or updates an automation.
func (r *AutomationRepository) Save(ctx context.Context, automation *models.Automation) error {
	now := time.Now().UTC()

	if automation.CreatedAt.IsZero() {
		automation.CreatedAt = now
	}

	automation.UpdatedAt = now

	if automation.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate automation ID: %w", err)
		}

		automation.ID = id.String()
	}

	query := `
		INSERT INTO automations (id, project_id, name, trigger_id, action_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			trigger_id = EXCLUDED.trigger_id,
			action_id = EXCLUDED.action_id,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		automation.ID,
		automation.ProjectID,
		automation.Name,
		automation.TriggerID,
		automation.ActionID,
		automation.CreatedAt,
		automation.UpdatedAt,
	)
	if err != nil {
		return persistence.NewStoreError("Save", "automation", automation.ID, err)
	}

	return nil
}

func (r *AutomationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM automations WHERE id = $1`, id)
	if err != nil {
		return persistence.NewStoreError("Delete", "automation", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}

	if affected == 0 {
		return persistence.NewStoreError("Delete", "automation", id, persistence.ErrAutomationNotFound)
	}

	return nil
}
