package live

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"workforce-portal/gateway/internal/services"
)

// Event types pushed to connected dashboards. Clients re-fetch the
// authoritative lists when one arrives.
const (
	EventWelcome        = "WELCOME"
	EventTasksUpdated   = "TASKS_UPDATED"
	EventPointsAwarded  = "POINTS_AWARDED"
	EventRewardsUpdated = "REWARDS_UPDATED"
)

type Message struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	ClientID  string      `json:"client_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

type client struct {
	conn *websocket.Conn
	id   string
	send chan Message
}

// Hub tracks connected dashboard clients and fans events out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*client)}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWS upgrades the connection and runs the read/write pumps until the
// client goes away.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		services.GetMetrics().IncrementWebSocketErrors()
		return
	}

	clientID := r.URL.Query().Get("clientId")
	if clientID == "" {
		clientID = uuid.NewString()
	}

	c := &client{
		conn: conn,
		id:   clientID,
		send: make(chan Message, 256),
	}

	h.mu.Lock()
	h.clients[clientID] = c
	h.mu.Unlock()
	services.GetMetrics().IncrementWebSocketConnections()
	log.Printf("dashboard client connected: %s", clientID)

	defer func() {
		h.mu.Lock()
		delete(h.clients, clientID)
		h.mu.Unlock()
		services.GetMetrics().DecrementWebSocketConnections()

		conn.Close()
		log.Printf("dashboard client disconnected: %s", clientID)
	}()

	go writePump(c)

	c.send <- Message{
		Type:      EventWelcome,
		ClientID:  clientID,
		Timestamp: time.Now().Unix(),
		Payload: map[string]interface{}{
			"message": "Connected to Workforce Portal",
			"version": "1.0",
		},
	}

	readPump(c)
}

func readPump(c *client) {
	defer c.conn.Close()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket error for %s: %v", c.id, err)
				services.GetMetrics().IncrementWebSocketErrors()
			}
			return
		}

		services.GetMetrics().IncrementWebSocketMessages()

		switch msg.Type {
		case "PING":
			c.send <- Message{
				Type:      "PONG",
				ClientID:  c.id,
				Timestamp: time.Now().Unix(),
			}
		default:
			log.Printf("unknown message type from %s: %s", c.id, msg.Type)
		}
	}
}

func writePump(c *client) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))

			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Broadcast queues an event for every connected client. Slow clients with a
// full queue are skipped rather than blocking the caller.
func (h *Hub) Broadcast(eventType string, payload interface{}) {
	msg := Message{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().Unix(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- msg:
			services.GetMetrics().IncrementWebSocketMessages()
		default:
			services.GetMetrics().IncrementWebSocketErrors()
		}
	}
}

// CloseAll tears down every connection during shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, c := range h.clients {
		close(c.send)
		c.conn.Close()
		log.Printf("closed connection for client: %s", id)
	}
	h.clients = make(map[string]*client)
}
