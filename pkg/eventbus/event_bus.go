// Package eventbus provides the queue-mediated communication layer between
// the publisher, processor and dispatcher services.
package eventbus

import (
	"context"

	"github.com/hooklinehq/hookline/pkg/events"
)

type Event interface {
	GetType() events.EventType
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

type EventHandler func(ctx context.Context, event any) error

// EventBus is injected into every service; each process creates one at
// startup and closes it at shutdown. The substrate underneath offers
// at-least-once delivery with per-message retry on handler error.
type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
