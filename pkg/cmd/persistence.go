package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hooklinehq/hookline/pkg/persistence"
	"github.com/hooklinehq/hookline/pkg/persistence/file"
	"github.com/hooklinehq/hookline/pkg/persistence/postgresql"
)

// NewPersistence selects the store by URL scheme: postgres for production,
// a plain directory path for local development.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		store, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}

		return store, nil
	default:
		return file.NewPersistence(strings.TrimPrefix(databaseURL, "file://")), nil
	}
}
