package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Handler receives events for a subscribed type. Handlers run synchronously on
// the emitting goroutine and must not block.
type Handler func(event *Event)

// subscription pairs a handler with the id handed back to the subscriber
type subscription struct {
	id      uint64
	handler Handler
}

// Bus is an in-process publish/subscribe event bus. Subscribe and Unsubscribe
// may be called at any time; Emit may be called from any goroutine.
type Bus struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[EventType][]subscription
	log      zerolog.Logger
}

// NewBus creates a new event bus
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[EventType][]subscription),
		log:      log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe registers a handler for an event type and returns an id that can
// be passed to Unsubscribe. Long-lived subscribers may ignore the id.
func (b *Bus) Subscribe(eventType EventType, handler Handler) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: b.nextID, handler: handler})
	return b.nextID
}

// Unsubscribe removes a previously registered handler. Unknown ids are a no-op,
// so double-unsubscribing is safe.
func (b *Bus) Unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for eventType, subs := range b.handlers {
		for i, sub := range subs {
			if sub.id == id {
				b.handlers[eventType] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers an event to every handler subscribed to its type. A panicking
// handler is recovered and logged so one bad subscriber cannot take down the
// emitter.
func (b *Bus) Emit(eventType EventType, module string, data map[string]interface{}) {
	event := &Event{
		Type:      eventType,
		Module:    module,
		Timestamp: time.Now(),
		Data:      data,
	}

	b.mu.RLock()
	subs := make([]subscription, len(b.handlers[eventType]))
	copy(subs, b.handlers[eventType])
	b.mu.RUnlock()

	for _, sub := range subs {
		b.dispatch(event, sub.handler)
	}
}

func (b *Bus) dispatch(event *Event, handler Handler) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Str("event_type", string(event.Type)).
				Interface("panic", r).
				Msg("Event handler panicked")
		}
	}()
	handler(event)
}
