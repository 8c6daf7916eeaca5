package services

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event kinds pushed to websocket clients.
const (
	EventMealLogged   = "meal.logged"
	EventMealDeleted  = "meal.deleted"
	EventAlertCreated = "alert.created"
)

// wsConn is the part of *websocket.Conn the hub needs.
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type WSClient struct {
	UserID string
	Conn   wsConn

	writeMu sync.Mutex
}

// Write serializes writes; a websocket connection allows one writer at a time.
func (c *WSClient) Write(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

type RealtimeHub struct {
	mu      sync.RWMutex
	clients map[string]map[*WSClient]struct{}
	logger  *zap.Logger
}

func NewRealtimeHub(logger *zap.Logger) *RealtimeHub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RealtimeHub{clients: make(map[string]map[*WSClient]struct{}), logger: logger}
}

func (h *RealtimeHub) Register(c *WSClient) {
	h.mu.Lock()
	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = make(map[*WSClient]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
	h.mu.Unlock()
}

func (h *RealtimeHub) Unregister(c *WSClient) {
	h.mu.Lock()
	if set := h.clients[c.UserID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()
	_ = c.Conn.Close()
}

// ClientCount returns the number of open connections for userID.
func (h *RealtimeHub) ClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Broadcast sends {"kind": kind, ...payload} to every connection of userID.
// A nil hub drops the event.
func (h *RealtimeHub) Broadcast(userID, kind string, payload map[string]any) {
	if h == nil {
		return
	}
	msg := map[string]any{"kind": kind}
	for k, v := range payload {
		msg[k] = v
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Warn("realtime payload not encodable", zap.String("kind", kind), zap.Error(err))
		return
	}

	h.mu.RLock()
	targets := make([]*WSClient, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.Write(websocket.TextMessage, data); err != nil {
			h.logger.Debug("realtime write failed", zap.String("user_id", userID), zap.Error(err))
			h.Unregister(c)
		}
	}
}
