// Package postgresql provides PostgreSQL persistence for triggers, actions,
// automations and executions.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // postgres driver

	"github.com/hooklinehq/hookline/pkg/persistence"
	"github.com/hooklinehq/hookline/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db          *sql.DB
	logger      *slog.Logger
	triggers    *TriggerRepository
	actions     *ActionRepository
	automations *AutomationRepository
	executions  *ExecutionRepository
}

// NewPersistence connects, runs migrations and builds the repositories.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:          database,
		logger:      logger,
		triggers:    NewTriggerRepository(database, logger),
		actions:     NewActionRepository(database, logger),
		automations: NewAutomationRepository(database, logger),
		executions:  NewExecutionRepository(database, logger),
	}, nil
}

func (p *Persistence) Triggers() persistence.TriggerRepository {
	return p.triggers
}

func (p *Persistence) Actions() persistence.ActionRepository {
	return p.actions
}

func (p *Persistence) Automations() persistence.AutomationRepository {
	return p.automations
}

func (p *Persistence) Executions() persistence.ExecutionRepository {
	return p.executions
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}
