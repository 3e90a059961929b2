package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hooklinehq/hookline/pkg/eventbus"
	"github.com/hooklinehq/hookline/pkg/events"
	"github.com/hooklinehq/hookline/pkg/filter"
	"github.com/hooklinehq/hookline/pkg/persistence"
	"github.com/hooklinehq/hookline/pkg/processor"
)

type ProcessorManager struct {
	id        string
	logger    *slog.Logger
	eventBus  eventbus.EventBus
	processor *processor.Processor
}

func NewProcessorManager(
	id string,
	store persistence.Persistence,
	eventBus eventbus.EventBus,
	fields *filter.Registry,
	guard processor.DedupGuard,
	logger *slog.Logger,
) *ProcessorManager {
	return &ProcessorManager{
		id:        id,
		logger:    logger.With("module", "hookline-processor", "processor_id", id),
		eventBus:  eventBus,
		processor: processor.NewProcessor(store, eventBus, fields, guard, logger),
	}
}

func (m *ProcessorManager) Start(ctx context.Context) error {
	m.logger.InfoContext(ctx, "Starting processor manager")

	err := m.eventBus.Handle(events.EntityChangedEvent, m.handleEntityChanged)
	if err != nil {
		return err
	}

	err = m.eventBus.Subscribe(ctx)
	if err != nil {
		m.logger.ErrorContext(ctx, "Failed to subscribe to event bus", "error", err)

		return err
	}

	m.logger.InfoContext(ctx, "Processor started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	m.logger.InfoContext(ctx, "Shutting down processor...")

	return nil
}

func (m *ProcessorManager) handleEntityChanged(ctx context.Context, event any) error {
	changeEvent, ok := event.(*events.EntityChanged)
	if !ok {
		m.logger.ErrorContext(ctx, "Invalid event type for EntityChanged")

		return nil
	}

	return m.processor.ProcessEvent(ctx, changeEvent)
}
