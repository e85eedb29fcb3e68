package bus

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"tambo-herd/internal/domain/event"
)

// EventBus fans out herd events to subscribers such as the cloud-sync
// projections. Publishing is fire-and-forget for the caller: handler failures
// are logged and never bubble back into the command path.
type EventBus interface {
	Publish(ctx context.Context, event event.DomainEvent)
	PublishBatch(ctx context.Context, events []event.DomainEvent)
	Subscribe(eventType string, handler EventHandler)
}

// EventHandler handles domain events
type EventHandler interface {
	Handle(ctx context.Context, event event.DomainEvent) error
}

// EventHandlerFunc allows functions to implement EventHandler
type EventHandlerFunc func(ctx context.Context, event event.DomainEvent) error

func (f EventHandlerFunc) Handle(ctx context.Context, event event.DomainEvent) error {
	return f(ctx, event)
}

// InMemoryEventBus implements EventBus in memory
type InMemoryEventBus struct {
	handlers map[string][]EventHandler
	mutex    sync.RWMutex
	logger   *zap.Logger
}

func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{
		handlers: make(map[string][]EventHandler),
		logger:   logger,
	}
}

func (b *InMemoryEventBus) Publish(ctx context.Context, ev event.DomainEvent) {
	b.mutex.RLock()
	handlers := append(b.handlers[ev.EventType()], b.handlers["*"]...)
	b.mutex.RUnlock()

	for _, handler := range handlers {
		if err := handler.Handle(ctx, ev); err != nil {
			b.logger.Warn("event handler failed",
				zap.String("event_type", ev.EventType()),
				zap.String("animal_id", ev.AggregateID()),
				zap.Error(err))
		}
	}
}

func (b *InMemoryEventBus) PublishBatch(ctx context.Context, events []event.DomainEvent) {
	for _, ev := range events {
		b.Publish(ctx, ev)
	}
}

// Subscribe registers a handler for one event type, or "*" for all.
func (b *InMemoryEventBus) Subscribe(eventType string, handler EventHandler) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
