package websocket

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lorrc/ticketing-system/internal/core/domain"
	"github.com/lorrc/ticketing-system/internal/core/ports"
)

// Topics a client may subscribe to.
var Topics = []string{domain.TopicTicketPool, domain.TopicLogs}

// IsValidTopic reports whether topic is served by the hub.
func IsValidTopic(topic string) bool {
	for _, t := range Topics {
		if t == topic {
			return true
		}
	}
	return false
}

// Hub maintains the set of active Clients and broadcasts pool events to the
// clients subscribed to each topic.
type Hub struct {
	// clients holds every registered connection
	clients map[*Client]bool

	// rooms maps topic names to subscribed clients
	rooms map[string]map[*Client]bool

	// Broadcast channel for events
	broadcast chan domain.Event

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// done is closed when Run returns
	done chan struct{}

	// mu protects the clients and rooms maps
	mu sync.RWMutex

	logger *slog.Logger
}

// Ensure Hub implements the EventBroadcaster interface.
var _ ports.EventBroadcaster = (*Hub)(nil)

// NewHub creates a new WebSocket hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan domain.Event, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With("component", "websocket_hub"),
	}
}

// Broadcast queues an event for delivery. It never blocks: when the queue is
// full the event is dropped.
func (h *Hub) Broadcast(event domain.Event) error {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("broadcast channel full, dropping event",
			"event_type", event.Type,
			"topic", event.Topic,
		)
	}
	return nil
}

// Run starts the hub's event loop until ctx is done. Remaining clients are
// disconnected on exit.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// leave unregisters client unless the hub has already stopped.
func (h *Hub) leave(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	for _, topic := range client.GetSubscriptions() {
		h.joinLocked(client, topic)
	}

	h.logger.Info("client registered",
		"actor_id", client.ActorID,
		"topics", client.GetSubscriptions(),
		"total_connections", len(h.clients),
	)
}

// unregisterClient removes a client from the hub and all rooms
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[client] {
		return
	}
	delete(h.clients, client)
	h.leaveAllLocked(client)
	client.CloseSend()

	h.logger.Info("client unregistered", "actor_id", client.ActorID)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		h.leaveAllLocked(client)
		client.CloseSend()
	}
	h.clients = make(map[*Client]bool)
}

func (h *Hub) leaveAllLocked(client *Client) {
	for _, topic := range client.GetSubscriptions() {
		if room, ok := h.rooms[topic]; ok {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, topic)
			}
		}
	}
}

func (h *Hub) joinLocked(client *Client, topic string) {
	if h.rooms[topic] == nil {
		h.rooms[topic] = make(map[*Client]bool)
	}
	h.rooms[topic][client] = true
}

// broadcastEvent sends an event to every client subscribed to its topic
func (h *Hub) broadcastEvent(event domain.Event) {
	h.mu.RLock()
	room := h.rooms[event.Topic]
	clients := make([]*Client, 0, len(room))
	for client := range room {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	if len(clients) == 0 {
		return
	}

	h.logger.Debug("broadcasting event",
		"event_type", event.Type,
		"topic", event.Topic,
		"client_count", len(clients),
	)

	for _, client := range clients {
		select {
		case client.Send <- event:
		default:
			// Slow consumer. Drop it here rather than through the Unregister
			// channel, which only this goroutine reads.
			h.logger.Warn("client send buffer full, unregistering", "actor_id", client.ActorID)
			h.unregisterClient(client)
		}
	}
}

// sendTo queues event for one registered client. The hub lock keeps the
// send from racing with CloseSend.
func (h *Hub) sendTo(client *Client, event domain.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.clients[client] {
		return
	}
	select {
	case client.Send <- event:
	default:
	}
}

// subscribe adds a client to a topic room
func (h *Hub) subscribe(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client.AddSubscription(topic)
	if h.clients[client] {
		h.joinLocked(client, topic)
	}

	h.logger.Debug("client subscribed", "actor_id", client.ActorID, "topic", topic)
}

// unsubscribe removes a client from a topic room
func (h *Hub) unsubscribe(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.rooms[topic]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, topic)
		}
	}
	client.RemoveSubscription(topic)

	h.logger.Debug("client unsubscribed", "actor_id", client.ActorID, "topic", topic)
}

// GetClientCount returns the total number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetClientsInRoom returns the number of clients subscribed to a topic
func (h *Hub) GetClientsInRoom(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[topic])
}
