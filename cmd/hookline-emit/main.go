// hookline-emit publishes a single change event from the command line. It is
// a development and backfill tool; production callers publish through
// publisher.ChangePublisher directly.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/hooklinehq/hookline/pkg/cmd"
	"github.com/hooklinehq/hookline/pkg/log"
	"github.com/hooklinehq/hookline/pkg/models"
	"github.com/hooklinehq/hookline/pkg/publisher"
)

func main() {
	command := &cli.Command{
		Name:                  "hookline-emit",
		Usage:                 "Publish a change event for trigger evaluation",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "event-bus",
				Usage:    "Event bus type (kafka, gochannel)",
				Required: true,
				Sources:  cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:     "project-id",
				Usage:    "Project the changed entity belongs to",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "source",
				Usage:    "Entity source (dataset, prompt)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "entity-id",
				Usage:    "ID of the changed entity",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "action",
				Usage:    "Change action (created, updated, deleted)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "snapshot",
				Usage: "Entity snapshot as a JSON object",
				Value: "{}",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("hookline-emit")

			var snapshot map[string]any

			err := json.Unmarshal([]byte(command.String("snapshot")), &snapshot)
			if err != nil {
				return fmt.Errorf("snapshot must be a JSON object: %w", err)
			}

			eventBus := cmd.NewEventBus(command.String("event-bus"), "hookline-emit", logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.Error("Failed to close event bus", "error", err)
				}
			}()

			changePublisher := publisher.NewChangePublisher(eventBus, logger)

			event, err := changePublisher.PublishChange(
				ctx,
				command.String("project-id"),
				models.EventSource(command.String("source")),
				command.String("entity-id"),
				models.ChangeAction(command.String("action")),
				snapshot,
			)
			if err != nil {
				return err
			}

			logger.InfoContext(ctx, "Change event published", "event_id", event.ID)

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
