package events

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// EventHandler reacts to one published event.
type EventHandler func(context.Context, Event) error

// Dispatcher fans portal events out to subscribers.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// InMemoryDispatcher runs subscribers synchronously on the publishing goroutine.
// Side effects belong to the publisher's request, so a failing or panicking
// subscriber is logged and never surfaces to the caller that published.
type InMemoryDispatcher struct {
	mu       sync.RWMutex
	handlers map[EventType][]EventHandler
	logger   *zap.Logger
}

// NewInMemoryDispatcher creates a dispatcher. A nil logger discards failures.
func NewInMemoryDispatcher(logger *zap.Logger) *InMemoryDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryDispatcher{
		handlers: make(map[EventType][]EventHandler),
		logger:   logger,
	}
}

// Publish delivers event to every subscriber of its type, in subscription order.
func (d *InMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	subscribers := append([]EventHandler(nil), d.handlers[event.Type]...)
	d.mu.RUnlock()

	for i, handler := range subscribers {
		if err := d.invoke(ctx, handler, event); err != nil {
			d.logger.Warn("event handler failed",
				zap.String("event_type", string(event.Type)),
				zap.String("event_id", event.ID),
				zap.Int("handler", i),
				zap.Error(err))
		}
	}
	return nil
}

func (d *InMemoryDispatcher) invoke(ctx context.Context, handler EventHandler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(ctx, event)
}

// Subscribe registers handler for eventType.
func (d *InMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}
