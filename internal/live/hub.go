package live

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Topic names for the two projections. A client belongs to exactly
// one topic at a time; which one is decided by the caller's identity,
// not by anything the client sends.
const (
	TopicAdmin  = "admin"
	TopicPublic = "public"
)

// Hub tracks websocket clients grouped by topic and fans frames out
// to them. Registration, removal and the role switch all happen
// under one lock so a teardown and a setup can never interleave.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Client]bool
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[*Client]bool)}
}

// Register adds a client to its topic.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.addLocked(c)
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.removeLocked(c) {
		close(c.send)
	}
}

func (h *Hub) addLocked(c *Client) {
	if h.topics[c.topic] == nil {
		h.topics[c.topic] = make(map[*Client]bool)
	}
	h.topics[c.topic][c] = true
}

func (h *Hub) removeLocked(c *Client) bool {
	clients, ok := h.topics[c.topic]
	if !ok {
		return false
	}
	if _, ok := clients[c]; !ok {
		return false
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.topics, c.topic)
	}
	return true
}

// Switch moves a client to another topic. Teardown of the old
// membership and setup of the new one happen under the same lock, so
// no frame for the old role can reach the client after the switch and
// no duplicate listener accumulates. The send channel (and therefore
// the single write pump) stays the same.
func (h *Hub) Switch(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.topic == topic {
		return
	}
	h.removeLocked(c)
	c.topic = topic
	h.addLocked(c)
}

// Broadcast queues a frame for every client on the topic. A client
// whose send buffer is full is dropped rather than allowed to stall
// the rest.
func (h *Hub) Broadcast(topic string, message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.topics[topic] {
		select {
		case c.send <- message:
		default:
			if h.removeLocked(c) {
				close(c.send)
			}
		}
	}
}

// Send queues a frame for a single client. The frame is dropped when
// the buffer is full or the client has already left the hub; checking
// membership under the lock keeps a send off a channel that Unregister
// or a broadcast eviction closed.
func (h *Hub) Send(c *Client, message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.topics[c.topic]; !ok || !clients[c] {
		return
	}
	select {
	case c.send <- message:
	default:
	}
}

// Client is one websocket connection.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	topic string

	// onMessage is invoked for every text frame the client sends;
	// used for in-band re-authentication.
	onMessage func(c *Client, data []byte)
}

// NewClient wraps an upgraded connection on the given starting topic.
func NewClient(hub *Hub, conn *websocket.Conn, topic string, onMessage func(*Client, []byte)) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, 256),
		topic:     topic,
		onMessage: onMessage,
	}
}

// Topic returns the client's current topic.
func (c *Client) Topic() string {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	return c.topic
}

// Run registers the client and pumps until the connection drops.
func (c *Client) Run() {
	c.hub.Register(c)
	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		if c.onMessage != nil {
			c.onMessage(c, message)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("live: write failed: %v", err)
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
