package websocket

import (
	"encoding/json"
	"sync"

	"taskhub/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Conn is the part of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client merepresentasikan klien WebSocket. Every client receives every
// task event; tasks are shared across sessions.
type Client struct {
	Conn Conn
	Mu   sync.Mutex
}

// Event is broadcast after every task mutation.
type Event struct {
	Type string    `json:"type"`
	Kind string    `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

// Hub mengelola koneksi WebSocket.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub membuat instance Hub baru.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run menjalankan loop Hub untuk mengelola register, unregister, dan broadcast.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			h.drop(client)
		case message := <-h.broadcast:
			for client := range h.clients {
				client.Mu.Lock()
				err := client.Conn.WriteMessage(websocket.TextMessage, message)
				client.Mu.Unlock()
				if err != nil {
					h.drop(client)
				}
			}
		case <-h.done:
			for client := range h.clients {
				h.drop(client)
			}
			return
		}
	}
}

func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.Conn.Close()
	}
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish queues ev for every connected client. It never blocks a request:
// when the queue is full the event is dropped.
func (h *Hub) Publish(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		logger.ErrorLogger.Error("Error encoding hub event", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- data:
	case <-h.done:
	default:
		logger.SystemLogger.Warn("Hub queue full, dropping event", zap.String("type", ev.Type))
	}
}

// Close stops Run and closes every client connection.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}
