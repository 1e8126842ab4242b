package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lorrc/ticketing-system/internal/core/domain"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Default time allowed to read the next pong message from the peer.
	defaultPongWait = 60 * time.Second

	// Default ping period. Must be less than the pong wait.
	defaultPingPeriod = (defaultPongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024

	sendBufferSize = 256
)

// Client message types.
const (
	MessageSubscribe   = "SUBSCRIBE"
	MessageUnsubscribe = "UNSUBSCRIBE"
	MessagePing        = "PING"
	MessagePong        = "PONG"
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// Buffered channel of outbound messages.
	Send chan domain.Event

	// ActorID is the signed-in vendor, customer or admin, empty for viewers.
	ActorID string

	subscriptions map[string]bool
	pingPeriod    time.Duration
	pongWait      time.Duration
	closeOnce     sync.Once
	mu            sync.RWMutex
	logger        *slog.Logger
}

// NewClient creates a client subscribed to topics.
func NewClient(hub *Hub, conn *websocket.Conn, actorID string, topics []string, logger *slog.Logger) *Client {
	c := &Client{
		Hub:           hub,
		Conn:          conn,
		Send:          make(chan domain.Event, sendBufferSize),
		ActorID:       actorID,
		subscriptions: make(map[string]bool),
		pingPeriod:    defaultPingPeriod,
		pongWait:      defaultPongWait,
		logger:        logger.With("actor_id", actorID),
	}
	for _, topic := range topics {
		if IsValidTopic(topic) {
			c.subscriptions[topic] = true
		}
	}
	return c
}

// SetKeepalive overrides the ping period and pong wait. It must be called
// before the pumps start; a ping period not shorter than pongWait is ignored.
func (c *Client) SetKeepalive(pingPeriod, pongWait time.Duration) {
	if pingPeriod <= 0 || pongWait <= pingPeriod {
		return
	}
	c.pingPeriod = pingPeriod
	c.pongWait = pongWait
}

// CloseSend safely closes the Send channel exactly once
func (c *Client) CloseSend() {
	c.closeOnce.Do(func() {
		close(c.Send)
	})
}

func (c *Client) AddSubscription(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscriptions[topic] = true
}

func (c *Client) RemoveSubscription(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscriptions, topic)
}

func (c *Client) HasSubscription(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.subscriptions[topic]
}

// GetSubscriptions returns a copy of all subscriptions
func (c *Client) GetSubscriptions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	subs := make([]string, 0, len(c.subscriptions))
	for topic := range c.subscriptions {
		subs = append(subs, topic)
	}
	return subs
}

// ReadPump pumps messages from the websocket connection to the hub.
// This method runs in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.leave(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.pongWait)); err != nil {
		c.logger.Error("failed to set read deadline", "error", err)
		return
	}

	c.Conn.SetPongHandler(func(string) error {
		if err := c.Conn.SetReadDeadline(time.Now().Add(c.pongWait)); err != nil {
			c.logger.Error("failed to set read deadline in pong handler", "error", err)
		}
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			break
		}

		c.handleIncomingMessage(message)
	}
}

// WritePump pumps messages from the hub to the websocket connection.
// This method runs in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.Send:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline", "error", err)
				return
			}

			if !ok {
				// The hub closed the channel.
				if err := c.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug("failed to send close message", "error", err)
				}
				return
			}

			if err := c.writeJSON(event); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline for ping", "error", err)
				return
			}

			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}

func (c *Client) writeJSON(event domain.Event) error {
	w, err := c.Conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(w).Encode(event); err != nil {
		_ = w.Close()
		return err
	}

	return w.Close()
}

// ClientMessage is the structure for messages sent from the client.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// SubscribePayload is the payload for subscribe/unsubscribe messages
type SubscribePayload struct {
	Topic string `json:"topic"`
}

func (c *Client) handleIncomingMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.Warn("failed to unmarshal client message", "error", err)
		return
	}

	switch msg.Type {
	case MessageSubscribe, MessageUnsubscribe:
		var p SubscribePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.logger.Warn("failed to unmarshal subscribe payload", "error", err)
			return
		}
		if !IsValidTopic(p.Topic) {
			c.logger.Warn("unknown topic in subscribe request", "topic", p.Topic)
			return
		}
		if msg.Type == MessageSubscribe {
			c.Hub.subscribe(c, p.Topic)
		} else {
			c.Hub.unsubscribe(c, p.Topic)
		}

	case MessagePing:
		c.sendPong()

	default:
		c.logger.Debug("received unknown message type", "type", msg.Type)
	}
}

func (c *Client) sendPong() {
	c.Hub.sendTo(c, domain.Event{Type: MessagePong})
}
