package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	wsAdapter "github.com/lorrc/ticketing-system/internal/adapters/primary/websocket"
	"github.com/lorrc/ticketing-system/internal/auth"
	"github.com/lorrc/ticketing-system/internal/config"
	"github.com/lorrc/ticketing-system/internal/core/domain"
	"github.com/lorrc/ticketing-system/internal/core/ports"
)

// WebSocketHandler handles WebSocket connection upgrades
type WebSocketHandler struct {
	hub          *wsAdapter.Hub
	pool         ports.TicketPool
	tm           *auth.TokenManager
	upgrader     websocket.Upgrader
	pingInterval time.Duration
	pongWait     time.Duration
	logger       *slog.Logger
}

// NewWebSocketHandler creates a new WebSocket handler. pool may be nil, in
// which case new ticketpool subscribers wait for the next update instead of
// getting the current snapshot.
func NewWebSocketHandler(
	hub *wsAdapter.Hub,
	pool ports.TicketPool,
	tm *auth.TokenManager,
	cfg *config.Config,
	logger *slog.Logger,
) *WebSocketHandler {
	handler := &WebSocketHandler{
		hub:          hub,
		pool:         pool,
		tm:           tm,
		pingInterval: cfg.WebSocket.PingInterval,
		pongWait:     cfg.WebSocket.PongWait,
		logger:       logger.With("handler", "websocket"),
	}

	handler.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		CheckOrigin:     handler.makeOriginChecker(cfg),
	}

	return handler
}

// makeOriginChecker creates an origin checking function based on configuration
func (h *WebSocketHandler) makeOriginChecker(cfg *config.Config) func(r *http.Request) bool {
	allowedOrigins := cfg.WebSocket.AllowedOrigins

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		if cfg.IsDevelopment() {
			if origin != "" {
				h.logger.Debug("allowing websocket connection in development mode",
					"origin", origin,
					"remote_addr", r.RemoteAddr,
				)
			}
			return true
		}

		// No origin header (same-origin request or non-browser client)
		if origin == "" {
			return true
		}

		parsedOrigin, err := url.Parse(origin)
		if err != nil {
			h.logger.Warn("failed to parse websocket origin",
				"origin", origin,
				"error", err,
			)
			return false
		}

		originHost := parsedOrigin.Host

		for _, allowed := range allowedOrigins {
			// Support wildcard subdomains like "*.example.com"
			if strings.HasPrefix(allowed, "*.") {
				suffix := allowed[1:]
				if strings.HasSuffix(originHost, suffix) || originHost == allowed[2:] {
					return true
				}
			} else if originHost == allowed {
				return true
			}
		}

		h.logger.Warn("websocket connection rejected due to origin",
			"origin", origin,
			"remote_addr", r.RemoteAddr,
			"allowed_origins", allowedOrigins,
		)
		return false
	}
}

// requestedTopics parses ?topics=ticketpool,logs. No parameter means every topic.
func requestedTopics(r *http.Request) []string {
	raw := r.URL.Query().Get("topics")
	if raw == "" {
		return wsAdapter.Topics
	}

	var topics []string
	for _, topic := range strings.Split(raw, ",") {
		topic = strings.TrimSpace(topic)
		if wsAdapter.IsValidTopic(topic) {
			topics = append(topics, topic)
		}
	}
	return topics
}

// ServeHTTP handles WebSocket connection requests. The token is optional:
// anonymous viewers may watch the pool, but a token that is present must be
// valid.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// 1. Optional authentication via query parameter
	var actorID string
	if tokenString := r.URL.Query().Get("token"); tokenString != "" {
		claims, err := h.tm.ValidateToken(tokenString)
		if err != nil {
			h.logger.WarnContext(ctx, "websocket connection rejected: invalid token",
				"remote_addr", r.RemoteAddr,
				"error", err,
			)
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}
		actorID = claims.ActorID
	}

	topics := requestedTopics(r)
	if len(topics) == 0 {
		http.Error(w, "No valid topics requested", http.StatusBadRequest)
		return
	}

	// 2. Upgrade the connection
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to upgrade websocket connection",
			"actor_id", actorID,
			"error", err,
		)
		return
	}

	h.logger.InfoContext(ctx, "websocket connection established",
		"actor_id", actorID,
		"topics", topics,
		"remote_addr", r.RemoteAddr,
	)

	// 3. Create the client and queue the current pool so the page renders
	// before the next change.
	client := wsAdapter.NewClient(h.hub, conn, actorID, topics, h.logger)
	client.SetKeepalive(h.pingInterval, h.pongWait)
	if h.pool != nil && client.HasSubscription(domain.TopicTicketPool) {
		client.Send <- domain.NewPoolUpdatedEvent(h.pool.Snapshot())
	}
	client.Hub.Register <- client

	// 4. Start the I/O pumps in new goroutines
	go client.WritePump()
	go client.ReadPump()
}
