package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"learning-system/internal/apperr"
	"learning-system/internal/auth"
	"learning-system/pkg/logger"
)

// Message represents the standard message format exchanged over WebSocket.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

// Hub fans realtime notifications out to every open connection of a user. A user
// may hold several connections at once (one per tab or device).
type Hub struct {
	users      map[uint]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	stopped    chan struct{}
	mu         sync.RWMutex
	upgrader   websocket.Upgrader
	log        *logger.Logger
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID uint
	done   chan struct{}
}

// NewHub builds a hub that accepts upgrades from the given origins. An empty list or
// "*" accepts any origin.
func NewHub(allowedOrigins []string, baseLog *logger.Logger) *Hub {
	h := &Hub{
		users:      make(map[uint]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopped:    make(chan struct{}),
		log:        baseLog.With("component", "WebSocketHub"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || len(set) == 0 || set[origin]
	}
}

// Run owns registration state until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.users[client.userID] == nil {
				h.users[client.userID] = make(map[*Client]bool)
			}
			h.users[client.userID][client] = true
			count := len(h.users[client.userID])
			h.mu.Unlock()
			h.log.Debug("client registered", "user_id", client.userID, "connections", count)

		case client := <-h.unregister:
			h.remove(client)

		case <-ctx.Done():
			h.mu.Lock()
			for userID, clients := range h.users {
				for c := range clients {
					close(c.send)
				}
				delete(h.users, userID)
			}
			h.mu.Unlock()
			h.log.Info("websocket hub stopped")
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.users[client.userID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.users, client.userID)
	}
	close(client.send)
	h.log.Debug("client unregistered", "user_id", client.userID)
}

// ConnectionCount reports how many live connections a user has.
func (h *Hub) ConnectionCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// SendMessageToUser queues a message for every connection of the user. Users with
// no connection are skipped; a client whose buffer is full is dropped.
func (h *Hub) SendMessageToUser(userID uint, messageType string, data interface{}) {
	if h.ConnectionCount(userID) == 0 {
		return
	}

	messageBytes, err := json.Marshal(Message{Type: messageType, Data: data})
	if err != nil {
		h.log.Error("marshal message failed", "user_id", userID, "type", messageType, "error", err)
		return
	}

	// Sends happen under the read lock so remove cannot close a channel mid-send.
	var full []*Client
	h.mu.RLock()
	for c := range h.users[userID] {
		select {
		case c.send <- messageBytes:
		default:
			full = append(full, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range full {
		h.log.Warn("send buffer full, dropping client", "user_id", userID)
		go h.drop(c)
	}
}

// reply queues a message for a single registered client.
func (h *Hub) reply(c *Client, messageBytes []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.users[c.userID][c] {
		return
	}
	select {
	case c.send <- messageBytes:
	default:
	}
}

func (h *Hub) drop(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stopped:
	}
}

// HandleWebSocket upgrades an authenticated request and registers the connection
// under the caller's user id.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		apperr.Write(w, apperr.Unauthorized("authentication required"))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "user_id", identity.UserID, "error", err)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		userID: identity.UserID,
		done:   make(chan struct{}),
	}

	select {
	case h.register <- client:
	case <-h.stopped:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump continuously reads messages from the WebSocket connection.
func (c *Client) readPump() {
	defer func() {
		close(c.done)
		c.hub.drop(c)
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
				c.hub.log.Warn("unexpected websocket close", "user_id", c.userID, "error", err)
			}
			return
		}
		c.handleMessage(message)
	}
}

// handleMessage answers client keepalives. Notifications only flow server to client.
func (c *Client) handleMessage(message []byte) {
	var msg Message
	if err := json.Unmarshal(message, &msg); err != nil {
		c.hub.log.Debug("ignoring malformed client message", "user_id", c.userID, "error", err)
		return
	}

	switch msg.Type {
	case "ping":
		reply, _ := json.Marshal(Message{Type: "pong", Data: map[string]int64{"ts": time.Now().Unix()}})
		c.hub.reply(c, reply)
	default:
		c.hub.log.Debug("ignoring client message", "user_id", c.userID, "type", msg.Type)
	}
}

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
				c.hub.log.Debug("websocket write failed", "user_id", c.userID, "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
