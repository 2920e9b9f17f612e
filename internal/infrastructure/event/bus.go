// Package event provides the in-process domain event bus.
package event

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/shared"
)

// Handler processes domain events of the types it subscribed to
type Handler interface {
	Handle(ctx context.Context, event shared.DomainEvent) error
}

// HandlerFunc adapts a function to the Handler interface
type HandlerFunc func(ctx context.Context, event shared.DomainEvent) error

// Handle calls the wrapped function
func (f HandlerFunc) Handle(ctx context.Context, event shared.DomainEvent) error {
	return f(ctx, event)
}

// InMemoryEventBus implements shared.EventPublisher with in-process pub/sub.
// Dispatch is synchronous; a failing or panicking handler is logged and
// never propagates back to the publisher.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zap.Logger
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for the given event types
func (b *InMemoryEventBus) Subscribe(handler Handler, eventTypes ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, eventType := range eventTypes {
		b.handlers[eventType] = append(b.handlers[eventType], handler)
	}
	b.logger.Debug("Event handler subscribed", zap.Strings("event_types", eventTypes))
}

// Publish dispatches the event to all handlers registered for its type
func (b *InMemoryEventBus) Publish(ctx context.Context, event shared.DomainEvent) error {
	b.mu.RLock()
	handlers := b.handlers[event.EventType()]
	b.mu.RUnlock()

	for _, handler := range handlers {
		if err := b.dispatch(ctx, handler, event); err != nil {
			b.logger.Error("Event handler failed",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Error(err))
		}
	}
	return nil
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, handler Handler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event handler panicked",
				zap.String("event_type", event.EventType()),
				zap.Any("panic", r))
		}
	}()
	return handler.Handle(ctx, event)
}

var _ shared.EventPublisher = (*InMemoryEventBus)(nil)
