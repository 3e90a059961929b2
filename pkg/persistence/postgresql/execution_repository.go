package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hooklinehq/hookline/pkg/models"
	"github.com/hooklinehq/hookline/pkg/persistence"
)

// ExecutionRepository handles execution audit records. Rows are append-only;
// the only mutation is the pending-to-terminal status transition, which
// keeps the store transaction-free beyond single-row updates.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewExecutionRepository creates a new execution repository.
func NewExecutionRepository(db *sql.DB, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, logger: logger}
}

// Create inserts a fresh execution record.
func (r *ExecutionRepository) Create(ctx context.Context, execution *models.Execution) error {
	if execution.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate execution ID: %w", err)
		}

		execution.ID = id.String()
	}

	if execution.CreatedAt.IsZero() {
		execution.CreatedAt = time.Now().UTC()
	}

	inputJSON, err := json.Marshal(execution.Input)
	if err != nil {
		return fmt.Errorf("failed to marshal execution input: %w", err)
	}

	query := `
		INSERT INTO executions (id, project_id, automation_id, trigger_id, action_id, status, source_id, input, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.db.ExecContext(ctx, query,
		execution.ID,
		execution.ProjectID,
		execution.AutomationID,
		execution.TriggerID,
		execution.ActionID,
		string(execution.Status),
		execution.SourceID,
		inputJSON,
		execution.Error,
		execution.CreatedAt,
	)
	if err != nil {
		return persistence.NewStoreError("Create", "execution", execution.ID, err)
	}

	return nil
}

func (r *ExecutionRepository) GetByID(ctx context.Context, id string) (*models.Execution, error) {
	query := `
		SELECT
			id
		  , project_id
		  , automation_id
		  , trigger_id
		  , action_id
		  , status
		  , source_id
		  , input
		  , error
		  , created_at
		  , finished_at
		FROM executions
		WHERE id = $1
	`

	var (
		execution  models.Execution
		status     string
		inputJSON  []byte
		finishedAt sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&execution.ID,
		&execution.ProjectID,
		&execution.AutomationID,
		&execution.TriggerID,
		&execution.ActionID,
		&status,
		&execution.SourceID,
		&inputJSON,
		&execution.Error,
		&execution.CreatedAt,
		&finishedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("GetByID", "execution", id, persistence.ErrExecutionNotFound)
		}

		return nil, fmt.Errorf("failed to scan execution: %w", err)
	}

	execution.Status = models.ExecutionStatus(status)

	if len(inputJSON) > 0 {
		err = json.Unmarshal(inputJSON, &execution.Input)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal execution input: %w", err)
		}
	}

	if finishedAt.Valid {
		execution.FinishedAt = &finishedAt.Time
	}

	return &execution, nil
}

// UpdateStatus moves an execution to its terminal state.
func (r *ExecutionRepository) UpdateStatus(ctx context.Context, id string, status models.ExecutionStatus, errorMessage string) error {
	query := `
		UPDATE executions
		SET status = $2, error = $3, finished_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, string(status), errorMessage)
	if err != nil {
		return persistence.NewStoreError("UpdateStatus", "execution", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}

	if affected == 0 {
		return persistence.NewStoreError("UpdateStatus", "execution", id, persistence.ErrExecutionNotFound)
	}

	return nil
}
