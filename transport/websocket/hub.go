package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/wricardo/stackquest/game/engine"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	sendBuffer      = 256
	broadcastBuffer = 1024
)

// Client message types.
const (
	TypeHold    = "hold"
	TypeRelease = "release"
	TypeReset   = "reset"
	TypeQuit    = "quit"
)

// Server event names.
const (
	EventSnapshot = "snapshot"
	EventError    = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// InputHandler receives the input clients send over the socket.
type InputHandler interface {
	Hold(sessionID string, dir engine.Vector) error
	Release(sessionID string) error
	Reset(sessionID string) error
	Quit(sessionID string) error
}

// Message is sent from the hub to clients.
type Message struct {
	SessionID string           `json:"session_id"`
	Event     string           `json:"event"`
	Snapshot  *engine.Snapshot `json:"snapshot,omitempty"`
	Data      any              `json:"data,omitempty"`
}

// ClientMessage is sent from clients to the hub. A hold names its direction
// either as held keys or as one direction name.
type ClientMessage struct {
	Type      string   `json:"type"`
	Keys      []string `json:"keys,omitempty"`
	Direction string   `json:"direction,omitempty"`
}

func (m ClientMessage) direction() (engine.Vector, error) {
	if len(m.Keys) > 0 {
		return engine.DirectionFromKeys(m.Keys...)
	}
	dir, err := engine.ParseDirection(m.Direction)
	if err != nil {
		return engine.Vector{}, err
	}
	return dir.Clamp(), nil
}

// Client represents a WebSocket client
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients by session ID
	sessions map[string]map[*Client]bool
	mu       sync.RWMutex

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	input   InputHandler
	inputMu sync.RWMutex

	logger *log.Logger
}

// NewHub creates a new WebSocket hub. Input may be nil and set later with
// SetInputHandler.
func NewHub(input InputHandler, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		input:      input,
		logger:     logger.WithPrefix("ws"),
	}
}

// SetInputHandler replaces the handler client input is forwarded to.
func (h *Hub) SetInputHandler(input InputHandler) {
	h.inputMu.Lock()
	defer h.inputMu.Unlock()
	h.input = input
}

func (h *Hub) inputHandler() InputHandler {
	h.inputMu.RLock()
	defer h.inputMu.RUnlock()
	return h.input
}

// Run starts the hub's event loop. It returns when ctx is done, after
// disconnecting every client. Run must be called at most once.
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
			h.removeClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// ServeWS upgrades the request and attaches the connection to sessionID.
// The initial snapshot, when not nil, is the first message the client
// receives.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string, initial *engine.Snapshot) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "session", sessionID, "err", err)
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		sessionID: sessionID,
	}

	if initial != nil {
		if data, err := json.Marshal(&Message{SessionID: sessionID, Event: EventSnapshot, Snapshot: initial}); err == nil {
			client.send <- data
		}
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// BroadcastSnapshot queues a snapshot for every client of sessionID. When
// the queue is full the snapshot is dropped; the next one supersedes it.
func (h *Hub) BroadcastSnapshot(sessionID string, snap *engine.Snapshot) {
	h.queue(&Message{SessionID: sessionID, Event: EventSnapshot, Snapshot: snap})
}

// BroadcastEvent queues a custom event for every client of sessionID.
func (h *Hub) BroadcastEvent(sessionID string, event string, data any) {
	h.queue(&Message{SessionID: sessionID, Event: event, Data: data})
}

func (h *Hub) queue(message *Message) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("broadcast queue full, dropping message", "session", message.SessionID, "event", message.Event)
	}
}

// ClientCount returns the number of clients attached to sessionID.
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// registerClient adds a client to a session
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true

	h.logger.Debug("client registered", "session", client.sessionID, "clients", len(h.sessions[client.sessionID]))
}

// unregisterClient removes a client from a session and closes its send
// channel. It reports whether that left the session without clients.
func (h *Hub) unregisterClient(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.sessions[client.sessionID]
	if !ok || !clients[client] {
		return false
	}
	delete(clients, client)
	close(client.send)

	h.logger.Debug("client unregistered", "session", client.sessionID, "clients", len(clients))

	if len(clients) == 0 {
		delete(h.sessions, client.sessionID)
		return true
	}
	return false
}

// removeClient unregisters a client and releases the session's held input
// once nobody is left to release it.
func (h *Hub) removeClient(client *Client) {
	if !h.unregisterClient(client) {
		return
	}
	input := h.inputHandler()
	if input == nil {
		return
	}
	if err := input.Release(client.sessionID); err != nil {
		h.logger.Warn("release on disconnect failed", "session", client.sessionID, "err", err)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, clients := range h.sessions {
		for client := range clients {
			close(client.send)
		}
		delete(h.sessions, id)
	}
}

// broadcastMessage sends a message to all clients in a session. Clients
// whose buffer is full are disconnected.
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal broadcast message", "err", err)
		return
	}

	var slow []*Client
	h.mu.RLock()
	for client := range h.sessions[message.SessionID] {
		select {
		case client.send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.removeClient(client)
	}
}

// sendTo delivers data to one client if it is still registered.
func (h *Hub) sendTo(client *Client, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.sessions[client.sessionID][client] {
		return
	}
	select {
	case client.send <- data:
	default:
	}
}

// handleInput decodes one client message and forwards it to the input
// handler. Failures are reported back to that client only.
func (h *Hub) handleInput(client *Client, raw []byte) {
	if err := h.dispatch(client.sessionID, raw); err != nil {
		data, _ := json.Marshal(&Message{
			SessionID: client.sessionID,
			Event:     EventError,
			Data:      map[string]string{"error": err.Error()},
		})
		h.sendTo(client, data)
	}
}

func (h *Hub) dispatch(sessionID string, raw []byte) error {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}

	input := h.inputHandler()
	if input == nil {
		return fmt.Errorf("input is not accepted on this server")
	}

	switch msg.Type {
	case TypeHold:
		dir, err := msg.direction()
		if err != nil {
			return err
		}
		return input.Hold(sessionID, dir)
	case TypeRelease:
		return input.Release(sessionID)
	case TypeReset:
		return input.Reset(sessionID)
	case TypeQuit:
		return input.Quit(sessionID)
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("read failed", "session", c.sessionID, "err", err)
			}
			break
		}
		c.hub.handleInput(c, data)
	}
}

// writePump pumps messages from the hub to the WebSocket connection. Each
// message is its own frame.
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
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
