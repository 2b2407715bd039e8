// Package ws serves event streams over WebSocket using gorilla/websocket.
//
//	hub := ws.NewHub()
//	go hub.Run(ctx)
//
//	router.Get("/api/ws", "ws", func(w http.ResponseWriter, r *http.Request) {
//	    client, err := ws.Upgrade(w, r, hub)
//	    if err != nil {
//	        return
//	    }
//	    h := n.AddListener(notifier.Func(func(e notifier.Event) error {
//	        client.SendJSON(e)
//	        return nil
//	    }))
//	    go func() { <-client.Context().Done(); n.RemoveListener(h) }()
//	})
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shashiranjanraj/bgfixture/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 64
)

// ErrHubStopped is returned by Upgrade once the hub has shut down.
var ErrHubStopped = errors.New("ws: hub stopped")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// UI pages are served from other origins (file://, dev servers).
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ─── Client ───────────────────────────────────────────────────────────────────

// Client is one connected WebSocket peer.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	ctx    context.Context
	cancel context.CancelFunc
	query  map[string][]string
}

// Context ends when the client disconnects or the hub stops.
func (c *Client) Context() context.Context { return c.ctx }

// Query is the query string the client connected with.
func (c *Client) Query() map[string][]string { return c.query }

// Send queues data for this client without blocking. It reports false when
// the message was dropped because the client is gone or too slow.
func (c *Client) Send(data []byte) bool {
	if c.ctx.Err() != nil {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// SendJSON marshals v and queues it like Send.
func (c *Client) SendJSON(v any) (bool, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return false, fmt.Errorf("ws: marshal: %w", err)
	}
	return c.Send(data), nil
}

// readPump forwards inbound frames to the hub until the connection fails.
func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				logger.Warn("ws: unexpected close", "error", err)
			}
			return
		}
		select {
		case c.hub.inbound <- Message{Client: c, Data: msg}:
		case <-c.ctx.Done():
			return
		}
	}
}

// writePump drains send onto the connection and keeps it alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// ─── Hub ──────────────────────────────────────────────────────────────────────

// Message is an inbound frame received from a client.
type Message struct {
	Client *Client
	Data   []byte
}

// Hub tracks connected clients and dispatches their inbound frames to
// OnMessage on the hub goroutine.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	inbound    chan Message
	broadcast  chan []byte
	stopped    chan struct{}
	count      atomic.Int64
	wg         sync.WaitGroup

	// OnMessage is called for every inbound message (optional). Set it
	// before Run.
	OnMessage func(hub *Hub, msg Message)
}

// NewHub creates a Hub. Call hub.Run(ctx) in a goroutine at startup.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan Message, 256),
		broadcast:  make(chan []byte, 256),
		stopped:    make(chan struct{}),
	}
}

// Run is the hub event loop. It returns when ctx ends, after disconnecting
// every client and waiting for their pumps to exit.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.stopped)
		for client := range h.clients {
			h.drop(client)
		}
		h.wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.count.Store(int64(len(h.clients)))
			logger.Info("ws: client connected", "total", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				logger.Info("ws: client disconnected", "total", len(h.clients))
			}

		case msg := <-h.broadcast:
			for client := range h.clients {
				client.Send(msg)
			}

		case msg := <-h.inbound:
			if h.OnMessage != nil {
				h.OnMessage(h, msg)
			}
		}
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	h.count.Store(int64(len(h.clients)))
	c.cancel()
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stopped:
	}
}

// Broadcast queues data for every connected client.
func (h *Hub) Broadcast(data []byte) {
	select {
	case h.broadcast <- data:
	case <-h.stopped:
	}
}

// ClientCount returns the number of currently connected clients.
func (h *Hub) ClientCount() int { return int(h.count.Load()) }

// ─── Upgrade ─────────────────────────────────────────────────────────────────

// Upgrade upgrades an HTTP connection to a WebSocket and registers the
// resulting client with hub. On error the response has already been written.
func Upgrade(w http.ResponseWriter, r *http.Request, hub *Hub) (*Client, error) {
	select {
	case <-hub.stopped:
		http.Error(w, ErrHubStopped.Error(), http.StatusServiceUnavailable)
		return nil, ErrHubStopped
	default:
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("ws: upgrade failed", "error", err)
		return nil, fmt.Errorf("ws: upgrade: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		ctx:    ctx,
		cancel: cancel,
		query:  r.URL.Query(),
	}

	hub.wg.Add(2)
	select {
	case hub.register <- client:
	case <-hub.stopped:
		hub.wg.Add(-2)
		cancel()
		conn.Close()
		return nil, ErrHubStopped
	}

	go func() { defer hub.wg.Done(); client.writePump() }()
	go func() { defer hub.wg.Done(); client.readPump() }()
	return client, nil
}
