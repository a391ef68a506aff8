package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"tabscan/internal/infrastructure"
	"tabscan/pkg/contracts/events"
)

// Hub maintains the set of active clients and fans broadcast messages
// out to all of them. Every payload crossing the hub is a typed
// envelope from pkg/contracts/events, serialized once and delivered
// verbatim to each client.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Serialized envelopes awaiting fan-out
	broadcast chan []byte

	// Register requests from new connections
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex for thread-safe operations
	mu sync.RWMutex

	// Logger instance
	logger *slog.Logger

	// Keepalive settings applied to every client connection
	keepalive Keepalive

	// Metrics
	totalConnections int64
	messagesSent     int64
	messagesReceived int64
	droppedClients   int64

	// Control
	quit        chan struct{}
	running     bool
	metricsQuit chan struct{}
}

// Keepalive bounds the liveness protocol on client connections. Pings
// go out every PingPeriod and the peer has PongWait after the last
// pong before the read side gives up.
type Keepalive struct {
	PongWait   time.Duration
	PingPeriod time.Duration
}

func defaultKeepalive() Keepalive {
	return Keepalive{PongWait: pongWait, PingPeriod: pingPeriod}
}

// NewHub creates a new Hub instance with dependency injection
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger = logger.With(slog.String("component", "websocket.hub"))

	return &Hub{
		broadcast:   make(chan []byte),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		clients:     make(map[*Client]bool),
		logger:      logger,
		keepalive:   defaultKeepalive(),
		quit:        make(chan struct{}),
		metricsQuit: make(chan struct{}),
	}
}

// WithKeepalive overrides the ping schedule for clients registered
// after the call. Pings must fire before the pong deadline or healthy
// peers get dropped, so an out-of-range period is re-derived from the
// wait.
func (h *Hub) WithKeepalive(pongWait, pingPeriod time.Duration) *Hub {
	if pongWait <= 0 {
		pongWait = defaultKeepalive().PongWait
	}
	if pingPeriod <= 0 || pingPeriod >= pongWait {
		pingPeriod = (pongWait * 9) / 10
	}
	h.keepalive = Keepalive{PongWait: pongWait, PingPeriod: pingPeriod}
	return h
}

// Start starts the hub's goroutines
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
	go h.reportMetrics()
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.totalConnections++
			h.mu.Unlock()

			ctx := context.Background()
			if client.traceID != "" {
				ctx = infrastructure.WithTraceID(ctx, client.traceID)
			}

			h.logger.InfoContext(ctx, "Client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			GetMetrics().RecordConnection()

			// Greet the new client so it can pick up its assigned id
			payload, err := marshalEnvelope(events.MessageTypeConnect, map[string]interface{}{
				"status":    "connected",
				"message":   "Connected to TabScan stream",
				"client_id": client.id,
			}, client.traceID)
			if err == nil {
				select {
				case client.send <- payload:
					h.logger.DebugContext(ctx, "Sent connection message to client",
						slog.String("client_id", client.id))
				default:
					h.logger.WarnContext(ctx, "Failed to send connection message - client buffer full",
						slog.String("client_id", client.id))
				}
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				count := len(h.clients)
				h.mu.Unlock()

				ctx := context.Background()
				if client.traceID != "" {
					ctx = infrastructure.WithTraceID(ctx, client.traceID)
				}

				h.logger.InfoContext(ctx, "Client unregistered",
					slog.Int("total_clients", count),
					slog.String("client_id", client.id),
					slog.Duration("connection_duration", time.Since(client.connectedAt)))

				GetMetrics().RecordDisconnection(time.Since(client.connectedAt))
			} else {
				h.mu.Unlock()
			}

		case message := <-h.broadcast:
			// Copy the client set so sends happen without the lock held
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			h.logger.Debug("Broadcasting message to clients",
				slog.Int("client_count", len(clients)),
				slog.Int("message_size", len(message)))

			successCount := 0
			failCount := 0

			for _, client := range clients {
				select {
				case client.send <- message:
					successCount++
				default:
					// A full send buffer means the client stopped
					// draining. Cut it loose rather than stall the
					// other clients.
					failCount++
					h.mu.Lock()
					close(client.send)
					delete(h.clients, client)
					h.droppedClients++
					h.mu.Unlock()

					GetMetrics().RecordDroppedClient()

					ctx := context.Background()
					if client.traceID != "" {
						ctx = infrastructure.WithTraceID(ctx, client.traceID)
					}
					h.logger.WarnContext(ctx, "Client send buffer full, disconnecting",
						slog.String("client_id", client.id))
				}
			}

			h.mu.Lock()
			h.messagesSent += int64(successCount)
			h.mu.Unlock()

			if failCount > 0 {
				h.logger.Warn("Some clients failed to receive broadcast",
					slog.Int("success_count", successCount),
					slog.Int("fail_count", failCount))
			}
		}
	}
}

// recordReceived folds a client's inbound traffic into the hub totals
func (h *Hub) recordReceived(bytes int64) {
	h.mu.Lock()
	h.messagesReceived++
	h.mu.Unlock()

	GetMetrics().RecordMessage("received", bytes, true)
}

// Broadcast sends a typed event to all connected clients. The services
// layer publishes every scan snapshot and dataset update through this
// method.
func (h *Hub) Broadcast(messageType string, data interface{}) {
	h.BroadcastWithTrace(messageType, data, "")
}

// BroadcastWithTrace sends a typed event carrying the trace id of the
// request that produced it.
func (h *Hub) BroadcastWithTrace(messageType string, data interface{}, traceID string) {
	payload, err := marshalEnvelope(events.MessageType(messageType), data, traceID)
	if err != nil {
		ctx := context.Background()
		if traceID != "" {
			ctx = infrastructure.WithTraceID(ctx, traceID)
		}
		h.logger.ErrorContext(ctx, "Error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", messageType))
		return
	}
	h.send(payload)
}

// send hands a serialized envelope to the run loop. A stopped hub
// drops messages instead of blocking senders.
func (h *Hub) send(payload []byte) {
	select {
	case h.broadcast <- payload:
	case <-h.quit:
	}
}

// marshalEnvelope wraps a payload in the standard wire envelope
func marshalEnvelope(messageType events.MessageType, data interface{}, traceID string) ([]byte, error) {
	return json.Marshal(events.WebSocketMessage{
		BaseMessage: events.BaseMessage{
			ID:        uuid.NewString(),
			Type:      messageType,
			Timestamp: time.Now().UTC(),
			TraceID:   traceID,
		},
		Data: data,
	})
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Stop gracefully stops the hub
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)
	close(h.metricsQuit)

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

// reportMetrics periodically reports hub metrics
func (h *Hub) reportMetrics() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.metricsQuit:
			h.logger.Info("Metrics reporting shutting down")
			return

		case <-ticker.C:
			h.mu.RLock()
			activeClients := len(h.clients)
			totalConnections := h.totalConnections
			messagesSent := h.messagesSent
			messagesReceived := h.messagesReceived
			h.mu.RUnlock()

			GetMetrics().RecordQueueDepth(int64(len(h.broadcast)))

			h.logger.Info("WebSocket hub metrics",
				slog.Int("active_clients", activeClients),
				slog.Int64("total_connections", totalConnections),
				slog.Int64("messages_sent", messagesSent),
				slog.Int64("messages_received", messagesReceived),
				slog.Int("broadcast_queue", len(h.broadcast)))
		}
	}
}

// GetHubMetrics returns current hub metrics
func (h *Hub) GetHubMetrics() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return map[string]interface{}{
		"active_clients":    len(h.clients),
		"total_connections": h.totalConnections,
		"messages_sent":     h.messagesSent,
		"messages_received": h.messagesReceived,
		"dropped_clients":   h.droppedClients,
	}
}
