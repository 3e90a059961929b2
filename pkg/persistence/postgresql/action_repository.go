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

// ActionRepository handles action-related database operations.
type ActionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewActionRepository creates a new action repository.
func NewActionRepository(db *sql.DB, logger *slog.Logger) *ActionRepository {
	return &ActionRepository{db: db, logger: logger}
}

func (r *ActionRepository) GetByID(ctx context.Context, id string) (*models.Action, error) {
	query := `
		SELECT
			id
		  , project_id
		  , type
		  , config
		  , created_at
		  , updated_at
		FROM actions
		WHERE id = $1
	`

	var (
		action     models.Action
		actionType string
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&action.ID,
		&action.ProjectID,
		&actionType,
		&action.Config,
		&action.CreatedAt,
		&action.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("GetByID", "action", id, persistence.ErrActionNotFound)
		}

		return nil, fmt.Errorf("failed to scan action: %w", err)
	}

	action.Type = models.ActionType(actionType)

	return &action, nil
}

// Save inserts or updates an action.
func (r *ActionRepository) Save(ctx context.Context, action *models.Action) error {
	now := time.Now().UTC()

	if action.CreatedAt.IsZero() {
		action.CreatedAt = now
	}

	action.UpdatedAt = now

	if action.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate action ID: %w", err)
		}

		action.ID = id.String()
	}

	query := `
		INSERT INTO actions (id, project_id, type, config, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			type = EXCLUDED.type,
			config = EXCLUDED.config,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		action.ID,
		action.ProjectID,
		string(action.Type),
		[]byte(action.Config),
		action.CreatedAt,
		action.UpdatedAt,
	)
	if err != nil {
		return persistence.NewStoreError("Save", "action", action.ID, err)
	}

	return nil
}

func (r *ActionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM actions WHERE id = $1`, id)
	if err != nil {
		return persistence.NewStoreError("Delete", "action", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}

	if affected == 0 {
		return persistence.NewStoreError("Delete", "action", id, persistence.ErrActionNotFound)
	}

	return nil
}
