package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/flashclass/internal/app/models"
)

// Hub maintains the set of active clients per class and broadcasts events to them
type Hub struct {
	// Registered clients organized by class ID
	clients map[string]map[*Client]bool

	broadcast  chan *Event
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// closed when Run returns
	done chan struct{}

	now    func() time.Time
	logger zerolog.Logger
}

// Event is a class change pushed to connected members
type Event struct {
	Type      string    `json:"type"`
	ClassID   string    `json:"classId"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	// audience is evaluated per subscriber at delivery; subscribers that fail it are dropped.
	// nil delivers to everyone.
	audience func(models.Identity) bool
	// closing detaches every subscriber of the class instead of delivering
	closing bool
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan *Event, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string]map[*Client]bool),
		done:       make(chan struct{}),
		now:        time.Now,
		logger:     logger,
	}
}

// Run handles registrations and broadcasts until ctx is done, then closes every client
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.classID]; !ok {
		h.clients[client.classID] = make(map[*Client]bool)
	}
	h.clients[client.classID][client] = true

	h.logger.Info().
		Str("classID", client.classID).
		Str("userID", client.viewer.ID).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.classID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.classID)
	}

	h.logger.Info().
		Str("classID", client.classID).
		Str("userID", client.viewer.ID).
		Msg("Client unregistered")
}

func (h *Hub) broadcastEvent(event *Event) {
	if event.closing {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.closeClassLocked(event.ClassID)
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("classID", event.ClassID).Msg("Failed to marshal event for broadcast")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[event.ClassID]
	if !ok {
		h.logger.Debug().Str("classID", event.ClassID).Msg("No clients in class for broadcast")
		return
	}

	delivered := 0
	for client := range clients {
		if event.audience != nil && !event.audience(client.viewer) {
			h.logger.Info().
				Str("classID", event.ClassID).
				Str("userID", client.viewer.ID).
				Msg("Subscriber can no longer view class, dropping")
			h.removeLocked(client)
			continue
		}
		select {
		case client.send <- data:
			delivered++
		default:
			// slow consumer
			h.removeLocked(client)
		}
	}

	h.logger.Debug().
		Str("classID", event.ClassID).
		Str("type", event.Type).
		Int("clientCount", delivered).
		Msg("Event broadcasted to class")
}

func (h *Hub) closeClassLocked(classID string) {
	for client := range h.clients[classID] {
		h.removeLocked(client)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

func (h *Hub) attach(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) detach(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues an event for every subscriber of the class
func (h *Hub) Publish(classID, eventType string, payload any) {
	h.PublishTo(classID, eventType, payload, nil)
}

// PublishTo queues an event for the subscribers of the class that pass audience.
// It never blocks the caller; events are dropped when the queue is full.
func (h *Hub) PublishTo(classID, eventType string, payload any, audience func(models.Identity) bool) {
	event := &Event{Type: eventType, ClassID: classID, Payload: payload, Timestamp: h.now().UTC(), audience: audience}
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn().Str("classID", classID).Str("type", eventType).Msg("Event queue full, dropping event")
	}
}

// CloseClass detaches every subscriber of the class once the events queued before it are
// delivered. With a full queue the subscribers are detached right away.
func (h *Hub) CloseClass(classID string) {
	select {
	case h.broadcast <- &Event{ClassID: classID, closing: true}:
	default:
		h.mu.Lock()
		defer h.mu.Unlock()
		h.closeClassLocked(classID)
	}
}

// DisconnectUser detaches every stream opened by userID and returns how many were closed
func (h *Hub) DisconnectUser(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	closed := 0
	for _, clients := range h.clients {
		for client := range clients {
			if client.viewer.ID == userID {
				h.removeLocked(client)
				closed++
			}
		}
	}
	if closed > 0 {
		h.logger.Info().Str("userID", userID).Int("streams", closed).Msg("User streams closed")
	}
	return closed
}

// GetClientsCount returns the number of connected clients for a class
func (h *Hub) GetClientsCount(classID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.clients[classID]; ok {
		return len(clients)
	}
	return 0
}
