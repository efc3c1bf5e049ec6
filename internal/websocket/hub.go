// Package adminws pushes platform events to connected admin sessions.
package adminws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	websocket "github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	logger     *zap.Logger
}

// Client is one admin connection. send is never closed; done is closed
// once the hub drops the client or shuts down.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	adminID   string
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Error     string          `json:"error,omitempty"`
	Timestamp string          `json:"timestamp"`
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, adminID string) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		adminID: adminID,
		send:    make(chan []byte, 32),
		done:    make(chan struct{}),
	}
}

// Run serves registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.register:
			h.clients[client] = struct{}{}
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
			}
		case payload := <-h.broadcast:
			h.deliver(payload)
		}
	}
}

// Register adds client to the hub. After shutdown the client is closed
// straight away.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.close()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
		client.close()
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	client.close()
}

// Broadcast queues event for every connected admin. Events are dropped when
// the queue is full.
func (h *Hub) Broadcast(event string, payload any) {
	encoded, err := encodeMessage(event, payload)
	if err != nil {
		h.logger.Error("admin hub encode event", zap.String("event", event), zap.Error(err))
		return
	}

	select {
	case h.broadcast <- encoded:
	default:
		h.logger.Warn("admin hub queue full, dropping event", zap.String("event", event))
	}
}

func (h *Hub) deliver(payload []byte) {
	for client := range h.clients {
		if !client.enqueue(payload) {
			h.drop(client)
		}
	}
}

func encodeMessage(event string, payload any) ([]byte, error) {
	message := Message{
		Type:      event,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		message.Payload = raw
	}
	return json.Marshal(message)
}

// ReadPump keeps the connection open and answers pings. Admin clients do
// not publish events.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var incoming struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(payload, &incoming); err != nil {
			writeError(c, "invalid message payload")
			continue
		}
		if incoming.Type != "ping" {
			writeError(c, "unsupported message type")
			continue
		}

		pong, err := encodeMessage("pong", nil)
		if err != nil {
			continue
		}
		c.enqueue(pong)
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// enqueue reports false when the client is closed or its buffer is full.
func (c *Client) enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func writeError(client *Client, message string) {
	payload, err := json.Marshal(Message{
		Type:      "error",
		Error:     message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	if !client.enqueue(payload) {
		client.hub.Unregister(client)
	}
}
