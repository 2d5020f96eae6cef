package websocket

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/darijacast/server/domain/entities"
	"github.com/darijacast/server/usecase"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Clients only send small
	// control messages; audio never travels over this channel.
	maxMessageSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The overlay page is served from the same process
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub maintains the set of active clients and broadcasts announcements to
// all of them. Each client consumes at its own pace from its buffered send
// channel; a client that falls too far behind is dropped.
type Hub struct {
	// Registered clients keyed by connection ID.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Marshaled payloads to fan out to every client.
	broadcast chan []byte

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	threshold *usecase.ThresholdStore

	logger *zap.Logger
}

// Ensure Hub satisfies the announcer's broadcast port
var _ usecase.Broadcaster = (*Hub)(nil)

// NewHub creates a new WebSocket hub
func NewHub(threshold *usecase.ThresholdStore, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 16),
		threshold:  threshold,
		logger:     logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()

			// Every new connection immediately learns the current threshold
			if payload, err := json.Marshal(NewThresholdUpdateMessage(h.threshold.Get())); err == nil {
				client.trySend(payload)
			}
			h.logger.Info("Client registered", zap.String("clientID", client.id))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Info("Client unregistered", zap.String("clientID", client.id))

		case payload := <-h.broadcast:
			h.mu.Lock()
			for id, client := range h.clients {
				select {
				case client.send <- payload:
				default:
					close(client.send)
					delete(h.clients, id)
					h.logger.Warn("Dropped slow client", zap.String("clientID", id))
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastDonation fans a full donation event out to all clients
func (h *Hub) BroadcastDonation(event entities.DonationEvent) {
	h.enqueue(NewDonationMessage(event))
}

// BroadcastNoMessage fans a no-message notification out to all clients
func (h *Hub) BroadcastNoMessage(event entities.DonationEvent) {
	h.enqueue(NewNoMessageDonation(event))
}

// BroadcastThreshold pushes a threshold change to all clients, including the
// one that set it
func (h *Hub) BroadcastThreshold(threshold int) {
	h.enqueue(NewThresholdUpdateMessage(threshold))
}

func (h *Hub) enqueue(message interface{}) {
	payload, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Failed to marshal broadcast message", zap.Error(err))
		return
	}
	h.broadcast <- payload
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan []byte

	// Connection ID for this client
	id string

	// Logger
	logger *zap.Logger
}

// trySend queues a payload without blocking the hub loop
func (c *Client) trySend(payload []byte) {
	select {
	case c.send <- payload:
	default:
	}
}

// HandleWebSocket handles websocket requests from the peer.
func HandleWebSocket(hub *Hub, c echo.Context, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	client := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		id:     uuid.NewString(),
		logger: logger,
	}

	client.hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}

// readPump pumps messages from the websocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		c.processMessage(message)
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// processMessage processes incoming control messages from the client
func (c *Client) processMessage(message []byte) {
	var msg map[string]interface{}
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.Error("Failed to parse message", zap.Error(err))
		return
	}

	msgType, ok := msg["type"].(string)
	if !ok {
		c.logger.Error("Message missing type field")
		return
	}

	switch MessageType(msgType) {
	case MessageTypeSetThreshold:
		c.handleSetThreshold(msg)
	case MessageTypeAudioFinished:
		// Advisory only: playback pacing is entirely client-side
		c.logger.Debug("Client finished playback", zap.String("clientID", c.id))
	default:
		c.logger.Warn("Unknown message type", zap.String("type", msgType))
	}
}

// handleSetThreshold applies a client-requested threshold change. Invalid
// values are ignored; valid ones are stored and rebroadcast to everyone.
func (c *Client) handleSetThreshold(msg map[string]interface{}) {
	var raw string
	switch v := msg["value"].(type) {
	case string:
		raw = strings.TrimSpace(v)
	case float64:
		if v != float64(int(v)) {
			c.logger.Warn("Ignoring non-integer threshold value", zap.Float64("value", v))
			return
		}
		raw = strconv.Itoa(int(v))
	default:
		c.logger.Warn("Threshold update missing value", zap.String("clientID", c.id))
		return
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		c.logger.Warn("Ignoring invalid threshold value",
			zap.String("clientID", c.id),
			zap.String("value", raw))
		return
	}

	c.hub.threshold.Set(value)
	c.logger.Info("Threshold updated",
		zap.String("clientID", c.id),
		zap.Int("threshold", value))
	c.hub.BroadcastThreshold(value)
}
