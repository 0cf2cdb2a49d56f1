// Package realtime fans domain events out to websocket clients subscribed to
// team or project scopes. Delivery is best-effort, at-most-once: a publish
// never blocks the caller and is never retried.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
)

// ScopeKind distinguishes team channels from project channels.
type ScopeKind string

const (
	ScopeTeam    ScopeKind = "team"
	ScopeProject ScopeKind = "project"
)

// Scope is a fan-out subscription key identifying a team or project channel.
type Scope struct {
	Kind ScopeKind
	ID   uint
}

func TeamScope(id uint) Scope    { return Scope{Kind: ScopeTeam, ID: id} }
func ProjectScope(id uint) Scope { return Scope{Kind: ScopeProject, ID: id} }

func (s Scope) String() string {
	return fmt.Sprintf("%s:%d", s.Kind, s.ID)
}

// Event is the wire shape pushed to subscribers.
type Event struct {
	Name string      `json:"event"`
	Data interface{} `json:"data"`
}

// Client is one connected subscriber. The transport drains Send; a client
// whose buffer is full simply misses events.
type Client struct {
	ID     string
	UserID uint
	scopes map[Scope]bool
	Send   chan []byte
}

// NewClient creates a client for a connection owned by userID.
func NewClient(userID uint) *Client {
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		scopes: make(map[Scope]bool),
		Send:   make(chan []byte, 32),
	}
}

type scopedEvent struct {
	scope Scope
	event Event
}

// Hub owns the subscription table and dispatches published events. A single
// run loop serializes dispatch, which keeps delivery FIFO per scope for
// events published from one orchestration flow.
type Hub struct {
	mu        sync.RWMutex
	clients   map[string]*Client
	broadcast chan scopedEvent
	logger    *log.Logger
}

// NewHub creates a hub. Run must be started for events to flow.
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		clients:   make(map[string]*Client),
		broadcast: make(chan scopedEvent, 256),
		logger:    logger,
	}
}

// Run dispatches published events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Println("Event hub started")
	for {
		select {
		case <-ctx.Done():
			h.logger.Println("Event hub shutting down...")
			return

		case msg := <-h.broadcast:
			h.dispatch(msg)
		}
	}
}

func (h *Hub) dispatch(msg scopedEvent) {
	data, err := json.Marshal(msg.event)
	if err != nil {
		h.logger.Printf("Failed to marshal %s event: %v", msg.event.Name, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if !client.scopes[msg.scope] {
			continue
		}
		select {
		case client.Send <- data:
		default:
			// Client buffer full, skip
		}
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
}

// Unregister removes a connection and all of its subscriptions, closing its
// send channel. Safe to call more than once.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		close(client.Send)
	}
}

// Subscribe adds the client to a scope. A client may hold any number of
// scopes at once.
func (h *Hub) Subscribe(clientID string, scope Scope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		client.scopes[scope] = true
	}
}

// Unsubscribe removes the client from a scope.
func (h *Hub) Unsubscribe(clientID string, scope Scope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		delete(client.scopes, scope)
	}
}

// Publish queues an event for every subscriber of scope. It never blocks and
// never fails; when the hub is saturated the event is dropped and logged.
func (h *Hub) Publish(scope Scope, name string, data interface{}) {
	select {
	case h.broadcast <- scopedEvent{scope: scope, event: Event{Name: name, Data: data}}:
	default:
		h.logger.Printf("Hub saturated, dropping %s event for %s", name, scope)
	}
}
