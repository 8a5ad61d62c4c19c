package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"hostel-server/models"
)

// Client represents a connected desk screen
type Client struct {
	Hub      *Hub
	WorkerID uint
	Conn     *websocket.Conn
	Send     chan []byte
}

// Message is the envelope for every frame sent to or received from a client
type Message struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// SnapshotFunc loads the current state of every room.
type SnapshotFunc func(ctx context.Context) ([]models.Room, error)

// MessageHandler handles a message type sent by a client
type MessageHandler func(*Client, *Message) error

// Hub fans room state changes out to every connected client
type Hub struct {
	clients map[*Client]bool

	// Broadcast channel for messages to all clients
	broadcast chan *Message

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	handlers map[string]MessageHandler
	snapshot SnapshotFunc
	done     chan struct{}
	mu       sync.RWMutex
}

// NewHub creates a new room board hub. snapshot may be nil.
func NewHub(snapshot SnapshotFunc) *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Message, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		handlers:   make(map[string]MessageHandler),
		snapshot:   snapshot,
		done:       make(chan struct{}),
	}
	h.handlers["ping"] = h.handlePing
	h.handlers["snapshot"] = h.handleSnapshot
	return h
}

// Run starts the hub's main loop and returns when ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			return

		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Debug().Uint("worker_id", client.WorkerID).Msg("🔌 Room board client registered")
			_ = h.sendSnapshot(ctx, client)

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			log.Debug().Uint("worker_id", client.WorkerID).Msg("🔌 Room board client unregistered")

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// PublishRoom queues a room_state message for every client. It never blocks the caller.
func (h *Hub) PublishRoom(room models.Room) {
	msg := &Message{Type: "room_state", Timestamp: time.Now(), Data: room}
	select {
	case h.broadcast <- msg:
	default:
		log.Warn().Uint("room_id", room.ID).Msg("⚠️ Room board broadcast channel is full, dropping update")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// broadcastMessage sends a message to all connected clients, dropping slow ones
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Msg("❌ Error marshaling message")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			close(client.Send)
			delete(h.clients, client)
		}
	}
}

func (h *Hub) sendSnapshot(ctx context.Context, client *Client) error {
	if h.snapshot == nil {
		return nil
	}
	rooms, err := h.snapshot(ctx)
	if err != nil {
		log.Error().Err(err).Msg("❌ Failed to load room snapshot")
		return err
	}
	return client.SendMessage(&Message{Type: "snapshot", Timestamp: time.Now(), Data: rooms})
}

func (h *Hub) handlePing(client *Client, _ *Message) error {
	return client.SendMessage(&Message{Type: "pong", Timestamp: time.Now()})
}

func (h *Hub) handleSnapshot(client *Client, _ *Message) error {
	return h.sendSnapshot(context.Background(), client)
}
