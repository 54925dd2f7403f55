package eventbus

import (
	"context"
	"errors"
	"sync"
	"time"

	"backoffice/internal/shared/logger"
)

// Event types published inside the service
const (
	EventTypeCollectionChanged = "collection.changed"
	EventTypeUserLoggedIn      = "session.logged_in"
	EventTypeUserLoggedOut     = "session.logged_out"
	EventTypeLanguageChanged   = "i18n.language_changed"
)

// Event represents a generic event
type Event interface {
	Type() string
	Data() interface{}
	Timestamp() time.Time
	Source() string
}

// Handler defines the event handler function type
type Handler func(ctx context.Context, event Event) error

// Bus is the contract consumers depend on
type Bus interface {
	Subscribe(eventType string, handler Handler) func()
	Publish(ctx context.Context, event Event) error
	PublishAndForget(ctx context.Context, event Event)
}

// EventBus is an in-memory event bus. Events handed to PublishAndForget are
// delivered in the order they were queued.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]subscription
	nextID   uint64
	logger   logger.Logger

	qmu      sync.Mutex
	queue    []queued
	draining bool
}

type subscription struct {
	id      uint64
	handler Handler
}

type queued struct {
	ctx   context.Context
	event Event
}

// NewEventBus creates a new event bus instance
func NewEventBus(log logger.Logger) *EventBus {
	if log == nil {
		log = logger.NewNop()
	}
	return &EventBus{
		handlers: make(map[string][]subscription),
		logger:   log.WithComponent("eventbus"),
	}
}

// Subscribe adds a handler for an event type and returns a function removing it.
func (eb *EventBus) Subscribe(eventType string, handler Handler) func() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.nextID++
	id := eb.nextID
	eb.handlers[eventType] = append(eb.handlers[eventType], subscription{id: id, handler: handler})
	eb.logger.Debugf("Subscribed handler for event type: %s", eventType)

	return func() { eb.remove(eventType, id) }
}

func (eb *EventBus) remove(eventType string, id uint64) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subs := eb.handlers[eventType]
	for i, s := range subs {
		if s.id == id {
			eb.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(eb.handlers[eventType]) == 0 {
		delete(eb.handlers, eventType)
	}
}

// Publish runs every handler for the event in subscription order. A failing
// handler does not stop the others; all failures are returned joined.
func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	eb.mu.RLock()
	subs := append([]subscription(nil), eb.handlers[event.Type()]...)
	eb.mu.RUnlock()

	if len(subs) == 0 {
		return nil
	}

	eb.logger.Debugf("Publishing event type: %s to %d handlers", event.Type(), len(subs))

	var errs []error
	for i, s := range subs {
		if err := s.handler(ctx, event); err != nil {
			eb.logger.Errorf("Handler %d failed for event %s: %v", i, event.Type(), err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublishAndForget queues the event for background delivery. Queued events
// reach handlers one at a time, in queue order; the delivering goroutine
// exits once the queue is empty.
func (eb *EventBus) PublishAndForget(ctx context.Context, event Event) {
	eb.qmu.Lock()
	defer eb.qmu.Unlock()

	eb.queue = append(eb.queue, queued{ctx: context.WithoutCancel(ctx), event: event})
	if !eb.draining {
		eb.draining = true
		go eb.drain()
	}
}

func (eb *EventBus) drain() {
	for {
		eb.qmu.Lock()
		if len(eb.queue) == 0 {
			eb.queue = nil
			eb.draining = false
			eb.qmu.Unlock()
			return
		}
		next := eb.queue[0]
		eb.queue[0] = queued{}
		eb.queue = eb.queue[1:]
		eb.qmu.Unlock()

		if err := eb.Publish(next.ctx, next.event); err != nil {
			eb.logger.Errorf("Failed to publish event %s: %v", next.event.Type(), err)
		}
	}
}

// SubscriberCount returns the number of handlers for an event type
func (eb *EventBus) SubscriberCount(eventType string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.handlers[eventType])
}

// BasicEvent implements the Event interface
type BasicEvent struct {
	eventType string
	data      interface{}
	timestamp time.Time
	source    string
}

// NewEvent creates an event raised by source
func NewEvent(eventType string, data interface{}, source string) Event {
	return &BasicEvent{
		eventType: eventType,
		data:      data,
		timestamp: time.Now(),
		source:    source,
	}
}

func (e *BasicEvent) Type() string         { return e.eventType }
func (e *BasicEvent) Data() interface{}    { return e.data }
func (e *BasicEvent) Timestamp() time.Time { return e.timestamp }
func (e *BasicEvent) Source() string       { return e.source }

// CollectionChange is the payload of collection.changed
type CollectionChange struct {
	Entity    string `json:"entity"`
	Operation string `json:"operation"`
	ID        string `json:"id,omitempty"`
	Count     int    `json:"count"`
}

// Collection change operations
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
	OpLoad   = "load"
	OpReset  = "reset"
)
