// Package realtime routes push notifications to the live WebSocket session
// of a user.
package realtime

import (
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"
)

const sendBuffer = 64

var ErrSlowClient = errors.New("realtime: client send buffer full")

// Client is one live session. Its send channel is drained by the socket's
// write pump.
type Client struct {
	userID string
	send   chan []byte
	once   sync.Once
}

func NewClient(userID string) *Client {
	return &Client{userID: userID, send: make(chan []byte, sendBuffer)}
}

func (c *Client) UserID() string { return c.userID }

// Messages is closed when the hub drops the client.
func (c *Client) Messages() <-chan []byte { return c.send }

func (c *Client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub keeps at most one session per user. A newer session replaces the
// older one, which is closed.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	log     *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{clients: make(map[string]*Client), log: log.Named("realtime")}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	prev := h.clients[c.userID]
	h.clients[c.userID] = c
	h.mu.Unlock()

	if prev != nil && prev != c {
		prev.close()
		h.log.Debug("replaced session", zap.String("user_id", c.userID))
	}
}

// Unregister removes c only if it is still the user's current session.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	cur, ok := h.clients[c.userID]
	if ok && cur == c {
		delete(h.clients, c.userID)
	}
	h.mu.Unlock()

	if ok && cur == c {
		c.close()
	}
}

func (h *Hub) Online(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Push serializes payload and hands it to the user's session. An offline
// user is not an error.
func (h *Hub) Push(userID string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return h.deliver(userID, data)
}

func (h *Hub) deliver(userID string, data []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.clients[userID]
	if !ok {
		h.log.Debug("user offline, push skipped", zap.String("user_id", userID))
		return nil
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrSlowClient
	}
}

// CloseAll drops every session, used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[string]*Client)
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}
