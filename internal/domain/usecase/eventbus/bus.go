package eventbus

import (
	"context"
	"sync"

	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/event"
)

// Bus manages event subscriptions and dispatching. Handlers run
// synchronously in subscription order; a panicking handler is logged and
// does not stop the ones after it.
type Bus struct {
	mu       sync.RWMutex
	handlers map[event.Type][]event.Handler
	all      []event.Handler
	logger   coreport.Logger
}

var (
	_ event.Publisher  = (*Bus)(nil)
	_ event.Subscriber = (*Bus)(nil)
)

// NewBus creates a new event bus
func NewBus(logger coreport.Logger) *Bus {
	return &Bus{
		handlers: make(map[event.Type][]event.Handler),
		logger:   logger,
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(t event.Type, h event.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[t] = append(b.handlers[t], h)
	b.logger.Debug("Subscribed handler to event type", map[string]any{
		"event_type":    t,
		"handler_count": len(b.handlers[t]),
	})
}

// SubscribeAll adds a handler that receives every event after the typed handlers
func (b *Bus) SubscribeAll(h event.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.all = append(b.all, h)
}

// Publish dispatches an event to its handlers
func (b *Bus) Publish(ctx context.Context, e event.Event) {
	b.mu.RLock()
	handlers := make([]event.Handler, 0, len(b.handlers[e.Type()])+len(b.all))
	handlers = append(handlers, b.handlers[e.Type()]...)
	handlers = append(handlers, b.all...)
	b.mu.RUnlock()

	for i, h := range handlers {
		b.dispatch(ctx, e, i, h)
	}
}

func (b *Bus) dispatch(ctx context.Context, e event.Event, index int, h event.Handler) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event handler panicked", map[string]any{
				"event_type":    e.Type(),
				"handler_index": index,
				"panic":         r,
			})
		}
	}()
	h(ctx, e)
}
