package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/hooklinehq/hookline/pkg/cmd"
	"github.com/hooklinehq/hookline/pkg/log"
	"github.com/hooklinehq/hookline/pkg/otelhelper"
	"github.com/hooklinehq/hookline/pkg/processor"
)

func main() {
	command := &cli.Command{
		Name:                  "hookline-processor",
		Usage:                 "Start the change event processor service",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "processor-id",
				Aliases: []string{"id"},
				Usage:   "Custom processor ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("PROCESSOR_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:     "event-bus",
				Usage:    "Event bus type (kafka, gochannel)",
				Required: true,
				Sources:  cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for the idempotency guard (optional)",
				Value:   "",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OpenTelemetry tracing",
				Value:   false,
				Sources: cli.EnvVars("TRACING_ENABLED"),
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

			processorID := command.String("processor-id")
			if processorID == "" {
				processorID = fmt.Sprintf("processor-%s", uuid.New().String()[:8])
			}

			logger := log.WithModule("hookline-processor").With("processor_id", processorID)
			logger.InfoContext(ctx, "Initializing Hookline processor")

			if command.Bool("tracing") {
				tracerProvider, err := otelhelper.NewTracerProvider(ctx, "hookline-processor")
				if err != nil {
					return fmt.Errorf("failed to initialize tracer: %w", err)
				}

				defer func() {
					if err := tracerProvider.Shutdown(ctx); err != nil {
						slog.Error("Failed to shutdown tracer provider", "error", err)
					}
				}()
			}

			eventBus := cmd.NewEventBus(command.String("event-bus"), "hookline-processor", logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.Error("Failed to close event bus", "error", err)
				}
			}()

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.Error("Failed to close persistence", "error", err)
				}
			}()

			var guard processor.DedupGuard

			if redisURL := command.String("redis-url"); redisURL != "" {
				redisGuard, err := processor.NewRedisDedup(redisURL)
				if err != nil {
					return fmt.Errorf("failed to connect to redis: %w", err)
				}

				defer func() {
					if err := redisGuard.Close(); err != nil {
						logger.Error("Failed to close redis client", "error", err)
					}
				}()

				guard = redisGuard
			}

			return NewProcessorManager(
				processorID,
				persistence,
				eventBus,
				cmd.NewFieldRegistry(),
				guard,
				logger,
			).Start(ctx)
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
