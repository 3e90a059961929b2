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

	"github.com/hooklinehq/hookline/pkg/filter"
	"github.com/hooklinehq/hookline/pkg/models"
	"github.com/hooklinehq/hookline/pkg/persistence"
)

// TriggerRepository handles trigger-related database operations.
type TriggerRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTriggerRepository creates a new trigger repository.
func NewTriggerRepository(db *sql.DB, logger *slog.Logger) *TriggerRepository {
	return &TriggerRepository{db: db, logger: logger}
}

// ActiveBySource returns the active triggers subscribed to an event source
// within a project. This is the processor's per-event lookup and always hits
// the database; trigger configuration is never cached.
func (r *TriggerRepository) ActiveBySource(ctx context.Context, projectID string, source models.EventSource) ([]*models.Trigger, error) {
	query := `
		SELECT
			id
		  , project_id
		  , name
		  , event_source
		  , status
		  , filter
		  , created_at
		  , updated_at
		  , deleted_at
		FROM triggers
		WHERE project_id = $1
		  AND event_source = $2
		  AND status = $3
		  AND deleted_at IS NULL
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, projectID, string(source), string(models.TriggerStatusActive))
	if err != nil {
		return nil, fmt.Errorf("failed to query triggers: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	triggers := make([]*models.Trigger, 0)

	for rows.Next() {
		trigger, err := scanTrigger(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trigger: %w", err)
		}

		triggers = append(triggers, trigger)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating triggers: %w", err)
	}

	return triggers, nil
}

func (r *TriggerRepository) GetByID(ctx context.Context, id string) (*models.Trigger, error) {
	query := `
		SELECT
			id
		  , project_id
		  , name
		  , event_source
		  , status
		  , filter
		  , created_at
		  , updated_at
		  , deleted_at
		FROM triggers
		WHERE id = $1 AND deleted_at IS NULL
	`

	row := r.db.QueryRowContext(ctx, query, id)

	trigger, err := scanTrigger(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("GetByID", "trigger", id, persistence.ErrTriggerNotFound)
		}

		return nil, fmt.Errorf("failed to scan trigger: %w", err)
	}

	return trigger, nil
}

// Save inserts or updates a trigger.
func (r *TriggerRepository) Save(ctx context.Context, trigger *models.Trigger) error {
	now := time.Now().UTC()

	if trigger.CreatedAt.IsZero() {
		trigger.CreatedAt = now
	}

	trigger.UpdatedAt = now

	if trigger.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate trigger ID: %w", err)
		}

		trigger.ID = id.String()
	}

	filterJSON, err := json.Marshal(trigger.Filter)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger filter: %w", err)
	}

	query := `
		INSERT INTO triggers (id, project_id, name, event_source, status, filter, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			event_source = EXCLUDED.event_source,
			status = EXCLUDED.status,
			filter = EXCLUDED.filter,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		trigger.ID,
		trigger.ProjectID,
		trigger.Name,
		string(trigger.EventSource),
		string(trigger.Status),
		filterJSON,
		trigger.CreatedAt,
		trigger.UpdatedAt,
	)
	if err != nil {
		return persistence.NewStoreError("Save", "trigger", trigger.ID, err)
	}

	return nil
}

// Delete soft deletes a trigger by setting deleted_at.
func (r *TriggerRepository) Delete(ctx context.Context, id string) error {
	query := `UPDATE triggers SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return persistence.NewStoreError("Delete", "trigger", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}

	if affected == 0 {
		return persistence.NewStoreError("Delete", "trigger", id, persistence.ErrTriggerNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrigger(row rowScanner) (*models.Trigger, error) {
	var (
		trigger    models.Trigger
		source     string
		status     string
		filterJSON []byte
		deletedAt  sql.NullTime
	)

	err := row.Scan(
		&trigger.ID,
		&trigger.ProjectID,
		&trigger.Name,
		&source,
		&status,
		&filterJSON,
		&trigger.CreatedAt,
		&trigger.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	trigger.EventSource = models.EventSource(source)
	trigger.Status = models.TriggerStatus(status)

	if len(filterJSON) > 0 {
		var predicate filter.Predicate

		err = json.Unmarshal(filterJSON, &predicate)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal trigger filter: %w", err)
		}

		trigger.Filter = predicate
	}

	if deletedAt.Valid {
		trigger.DeletedAt = &deletedAt.Time
	}

	return &trigger, nil
}
