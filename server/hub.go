package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/phanxgames/village"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Message is one frame pushed to websocket clients.
type Message struct {
	Type string `json:"type"`
	// Snapshot is set on "state" messages.
	Snapshot *village.Snapshot `json:"snapshot,omitempty"`
	// Items is set on "items" messages.
	Items []village.Item `json:"items,omitempty"`
	Tick  uint64         `json:"tick,omitempty"`
	// Event fields are set on "event" messages.
	Event     string   `json:"event,omitempty"`
	ItemID    string   `json:"itemId,omitempty"`
	X         float64  `json:"x,omitempty"`
	Y         float64  `json:"y,omitempty"`
	Selection []string `json:"selection,omitempty"`
	Time      int64    `json:"time,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans village updates out to every connected websocket client. It is an
// EventSink, so the world can report events to it directly.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}

	lastVersion uint64
	published   bool
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// EmitEvent implements village.EventSink.
func (h *Hub) EmitEvent(e village.Event) {
	h.broadcast(Message{
		Type:      "event",
		Event:     e.Type.String(),
		ItemID:    e.ItemID,
		X:         e.X,
		Y:         e.Y,
		Selection: e.Selection,
		Time:      e.Time,
	})
}

// Publish broadcasts the item list when the store changed since the last
// call. It runs on the loop goroutine, typically from LoopConfig.OnUpdate.
func (h *Hub) Publish(w *village.World) {
	if vs, ok := w.Store().(interface{ Version() uint64 }); ok {
		v := vs.Version()
		if h.published && v == h.lastVersion {
			return
		}
		h.lastVersion, h.published = v, true
	}
	if h.Len() == 0 {
		return
	}
	h.broadcast(Message{Type: "items", Items: w.Items(), Tick: w.Ticks()})
}

func (h *Hub) broadcast(m Message) {
	data, err := json.Marshal(m)
	if err != nil {
		village.Log.WithError(err).Warn("hub: encode message")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Slow client; drop the frame rather than stall the loop.
		}
	}
}

// serve upgrades the request, sends first and then streams broadcasts
// until the client goes away.
func (h *Hub) serve(wr http.ResponseWriter, r *http.Request, first Message) {
	conn, err := upgrader.Upgrade(wr, r, nil)
	if err != nil {
		village.Log.WithError(err).Warn("hub: upgrade failed")
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	if data, err := json.Marshal(first); err == nil {
		c.send <- data
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	village.Log.WithFields(logrus.Fields{"remote": r.RemoteAddr, "clients": n}).Info("websocket client connected")

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		close(c.send)
	}
}

// readPump discards client frames and keeps the read deadline fresh.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		if err := c.conn.Close(); err != nil {
			village.Log.WithError(err).Debug("hub: close")
		}
		village.Log.Info("websocket client disconnected")
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
