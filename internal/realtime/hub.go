// Package realtime pushes collection changes to connected panels over WebSocket.
package realtime

import (
	"context"
	"strings"
	"sync"
	"time"

	"backoffice/internal/shared/eventbus"
	"backoffice/internal/shared/logger"

	"github.com/google/uuid"
)

// Message types sent to clients.
const (
	MessageConnected = "connected"
	MessageChange    = eventbus.EventTypeCollectionChanged
)

const defaultBuffer = 32

// Message is the frame written to a WebSocket client.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

type client struct {
	ch       chan Message
	entities map[string]struct{}
}

func (c *client) wants(entity string) bool {
	if len(c.entities) == 0 {
		return true
	}
	_, ok := c.entities[entity]
	return ok
}

// Hub fans collection.changed events out to subscribers. A subscriber that
// does not keep up loses messages instead of stalling the publisher.
type Hub struct {
	mu          sync.RWMutex
	clients     map[string]*client
	buffer      int
	closed      bool
	unsubscribe func()
	log         logger.Logger
}

// NewHub subscribes to bus; buffer <= 0 uses the default per-client buffer.
func NewHub(bus eventbus.Bus, buffer int, log logger.Logger) *Hub {
	if log == nil {
		log = logger.NewNop()
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	h := &Hub{
		clients: make(map[string]*client),
		buffer:  buffer,
		log:     log.WithComponent("realtime"),
	}
	if bus != nil {
		h.unsubscribe = bus.Subscribe(eventbus.EventTypeCollectionChanged, h.onChange)
	}
	return h
}

func (h *Hub) onChange(_ context.Context, e eventbus.Event) error {
	change, ok := e.Data().(eventbus.CollectionChange)
	if !ok {
		h.log.Warnf("Ignoring %s event with payload %T", e.Type(), e.Data())
		return nil
	}
	h.Broadcast(change.Entity, Message{Type: MessageChange, Data: change, Timestamp: e.Timestamp()})
	return nil
}

// Subscribe registers a client interested in entities (all when none are
// given). The returned cancel func is idempotent and closes the channel.
func (h *Hub) Subscribe(entities ...string) (string, <-chan Message, func()) {
	id := uuid.NewString()
	c := &client{ch: make(chan Message, h.buffer), entities: map[string]struct{}{}}
	for _, e := range entities {
		if e = strings.TrimSpace(e); e != "" {
			c.entities[e] = struct{}{}
		}
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(c.ch)
		return id, c.ch, func() {}
	}
	h.clients[id] = c
	h.mu.Unlock()

	h.log.WithFields(map[string]interface{}{"subscriber_id": id, "entities": entities}).Debug("Subscriber added")

	var once sync.Once
	return id, c.ch, func() {
		once.Do(func() { h.remove(id) })
	}
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(c.ch)
	}
}

// Broadcast delivers m to every subscriber interested in entity.
func (h *Hub) Broadcast(entity string, m Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, c := range h.clients {
		if !c.wants(entity) {
			continue
		}
		select {
		case c.ch <- m:
		default:
			h.log.WithFields(map[string]interface{}{"subscriber_id": id, "entity": entity}).Warn("Subscriber buffer full, dropping change")
		}
	}
}

// Clients is the number of live subscribers.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close detaches from the bus and closes every subscriber channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	if h.unsubscribe != nil {
		h.unsubscribe()
	}
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.ch)
	}
}
