// handlers/realtime.go - WebSocket toast delivery
package handlers

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// Toast is one transient notification pushed to the client.
type Toast struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DurationMS  int64  `json:"duration_ms"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NotificationHub fans toasts out to every open connection of a user.
// Undeliverable toasts are dropped; they are transient UI, never state.
type NotificationHub struct {
	mu      sync.RWMutex
	clients map[uint]map[*wsClient]struct{}
}

var notificationHub = &NotificationHub{
	clients: make(map[uint]map[*wsClient]struct{}),
}

// GetNotificationHub returns the process-wide hub.
func GetNotificationHub() *NotificationHub {
	return notificationHub
}

// Notify implements the toast sink for achievement and XP events.
func (h *NotificationHub) Notify(userID uint, title, description string, duration time.Duration) {
	payload, err := json.Marshal(Toast{
		Type:        "toast",
		Title:       title,
		Description: description,
		DurationMS:  duration.Milliseconds(),
	})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
			// Slow consumer, drop rather than block the caller
		}
	}
}

func (h *NotificationHub) register(userID uint, client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*wsClient]struct{})
	}
	h.clients[userID][client] = struct{}{}
}

func (h *NotificationHub) unregister(userID uint, client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[userID]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.clients, userID)
		}
	}
}

// WebSocketUpgrade gates the upgrade handshake
func WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// NotificationSocket is the per-connection pump. Authenticated users
// receive their toasts; anonymous connections are accepted and idle.
func NotificationSocket() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		var userID uint
		switch v := conn.Locals("userId").(type) {
		case float64:
			userID = uint(v)
		case uint:
			userID = v
		default:
			// No identity, keep the socket open but deliver nothing
			discardUntilClose(conn)
			return
		}

		client := &wsClient{
			conn: conn,
			send: make(chan []byte, 16),
		}
		notificationHub.register(userID, client)
		defer notificationHub.unregister(userID, client)

		done := make(chan struct{})

		// Writer: single goroutine owns all writes to this conn
		go func() {
			ping := time.NewTicker(30 * time.Second)
			defer ping.Stop()
			for {
				select {
				case msg := <-client.send:
					if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
						return
					}
				case <-ping.C:
					if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		// Reader: we only care about close
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		close(done)
		log.Printf("Notification socket closed for user %d", userID)
	})
}

func discardUntilClose(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
