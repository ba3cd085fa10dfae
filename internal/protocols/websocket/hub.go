// Package websocket - Live Comment Stream
// Read-only fanout of comment events to browsers watching an instante.
// Clients never send application messages; the hub only pushes.
package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"diario/pkg/logger"
	"diario/pkg/models"
)

const (
	writeWait       = 10 * time.Second    // Time allowed to write a message
	pongWait        = 60 * time.Second    // Time allowed to read the next pong
	pingPeriod      = (pongWait * 9) / 10 // Send pings to client
	maxRoomSize     = 1000                // Max clients per instante
	cleanupInterval = 5 * time.Minute     // Empty-room cleanup interval
	sendBuffer      = 16                  // Slow consumers get dropped, not queued
)

// Hub manages per-instante rooms of stream subscribers
type Hub struct {
	roomsMu sync.RWMutex
	rooms   map[string]*room // instante_id -> room
	stop    chan struct{}
	wg      sync.WaitGroup
}

type room struct {
	clientsMu sync.RWMutex
	clients   map[*client]bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates the live comment stream hub
func NewHub() *Hub {
	hub := &Hub{
		rooms: make(map[string]*room),
		stop:  make(chan struct{}),
	}

	hub.wg.Add(1)
	go hub.cleanupRooms()

	return hub
}

// Publish fans a comment event out to everyone watching its instante.
// Never blocks: full client buffers cause a disconnect instead.
func (h *Hub) Publish(event models.CommentEvent) {
	h.roomsMu.RLock()
	r, ok := h.rooms[event.InstanteID]
	h.roomsMu.RUnlock()
	if !ok {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Errorf("failed to marshal comment event: %v", err)
		return
	}

	r.clientsMu.RLock()
	defer r.clientsMu.RUnlock()
	for c := range r.clients {
		select {
		case c.send <- payload:
		default:
			// Slow consumer; closing send makes its writePump exit
			go c.conn.Close()
		}
	}
}

// Subscribe attaches a connection to an instante's room and blocks
// until the client disconnects
func (h *Hub) Subscribe(conn *websocket.Conn, instanteID string) {
	r := h.getOrCreateRoom(instanteID)

	r.clientsMu.Lock()
	if len(r.clients) >= maxRoomSize {
		r.clientsMu.Unlock()
		conn.Close()
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	r.clients[c] = true
	r.clientsMu.Unlock()

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		c.writePump()
	}()

	// The read side exists only to notice disconnects and answer pings
	c.readPump()

	r.clientsMu.Lock()
	delete(r.clients, c)
	r.clientsMu.Unlock()
	close(c.send)
}

// ClientCount reports how many clients watch an instante
func (h *Hub) ClientCount(instanteID string) int {
	h.roomsMu.RLock()
	r, ok := h.rooms[instanteID]
	h.roomsMu.RUnlock()
	if !ok {
		return 0
	}
	r.clientsMu.RLock()
	defer r.clientsMu.RUnlock()
	return len(r.clients)
}

// Stop shuts the hub down and waits for client pumps to exit
func (h *Hub) Stop() {
	close(h.stop)

	h.roomsMu.Lock()
	for id, r := range h.rooms {
		r.clientsMu.Lock()
		for c := range r.clients {
			c.conn.Close()
		}
		r.clientsMu.Unlock()
		delete(h.rooms, id)
	}
	h.roomsMu.Unlock()

	h.wg.Wait()
}

func (h *Hub) getOrCreateRoom(instanteID string) *room {
	h.roomsMu.Lock()
	defer h.roomsMu.Unlock()

	if r, ok := h.rooms[instanteID]; ok {
		return r
	}
	r := &room{clients: make(map[*client]bool)}
	h.rooms[instanteID] = r
	return r
}

// cleanupRooms periodically removes rooms nobody watches
func (h *Hub) cleanupRooms() {
	defer h.wg.Done()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.roomsMu.Lock()
			for id, r := range h.rooms {
				r.clientsMu.RLock()
				empty := len(r.clients) == 0
				r.clientsMu.RUnlock()
				if empty {
					delete(h.rooms, id)
					logger.Debugf("cleaned up empty comment stream room: %s", id)
				}
			}
			h.roomsMu.Unlock()

		case <-h.stop:
			return
		}
	}
}

func (c *client) readPump() {
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Incoming frames are discarded; the stream is one-way
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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
