package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hooklinehq/hookline/pkg/dispatcher"
	"github.com/hooklinehq/hookline/pkg/eventbus"
	"github.com/hooklinehq/hookline/pkg/events"
	"github.com/hooklinehq/hookline/pkg/persistence"
)

type DispatcherManager struct {
	id         string
	logger     *slog.Logger
	eventBus   eventbus.EventBus
	dispatcher *dispatcher.Dispatcher
}

func NewDispatcherManager(
	id string,
	store persistence.Persistence,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
) *DispatcherManager {
	return &DispatcherManager{
		id:         id,
		logger:     logger.With("module", "hookline-dispatcher", "dispatcher_id", id),
		eventBus:   eventBus,
		dispatcher: dispatcher.NewDispatcher(store, logger),
	}
}

func (m *DispatcherManager) Start(ctx context.Context) error {
	m.logger.InfoContext(ctx, "Starting dispatcher manager")

	err := m.eventBus.Handle(events.WebhookDispatchEvent, m.handleWebhookDispatch)
	if err != nil {
		return err
	}

	err = m.eventBus.Subscribe(ctx)
	if err != nil {
		m.logger.ErrorContext(ctx, "Failed to subscribe to event bus", "error", err)

		return err
	}

	m.logger.InfoContext(ctx, "Dispatcher started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	m.logger.InfoContext(ctx, "Shutting down dispatcher...")

	return nil
}

func (m *DispatcherManager) handleWebhookDispatch(ctx context.Context, event any) error {
	job, ok := event.(*events.WebhookDispatch)
	if !ok {
		m.logger.ErrorContext(ctx, "Invalid event type for WebhookDispatch")

		return nil
	}

	return m.dispatcher.Dispatch(ctx, job)
}
