// Package websocket pushes observation feed events to live map clients.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/couchcryptid/nivo-observations/internal/domain"
	"github.com/couchcryptid/nivo-observations/internal/observability"
	"github.com/gorilla/websocket"
)

const sendBufferSize = 256

// Frame is the envelope written to clients.
type Frame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub maintains the set of active clients and broadcasts messages.
// The client set is owned by the Run goroutine.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	upgrader   websocket.Upgrader
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewHub creates a hub. Call Run before serving clients.
func NewHub(logger *slog.Logger, metrics *observability.Metrics) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The live map is read-only public data.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger:  logger,
		metrics: metrics,
	}
}

// Run serves register, unregister, and broadcast requests until the context
// is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			h.logger.Info("live hub stopped", "reason", ctx.Err())
			return nil

		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.metrics.LiveClients.Set(float64(len(h.clients)))
			h.logger.Debug("live client registered", "remote", client.conn.RemoteAddr().String())

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.logger.Debug("live client unregistered", "remote", client.conn.RemoteAddr().String())
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					h.logger.Warn("live client send buffer full, removing", "remote", client.conn.RemoteAddr().String())
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.metrics.LiveClients.Set(float64(len(h.clients)))
}

// Name identifies the hub in feed metrics.
func (h *Hub) Name() string { return "live" }

// PublishBatch broadcasts each event as a {"type","payload"} frame.
// It implements feed.Sink.
func (h *Hub) PublishBatch(ctx context.Context, events []domain.FeedEvent) error {
	for _, ev := range events {
		if err := h.Broadcast(ctx, ev.Type, ev); err != nil {
			return err
		}
	}
	return nil
}

// Broadcast sends a frame to all connected clients. It is a no-op once the
// hub has stopped.
func (h *Hub) Broadcast(ctx context.Context, frameType string, payload any) error {
	msg, err := json.Marshal(Frame{Type: frameType, Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal live frame: %w", err)
	}
	select {
	case h.broadcast <- msg:
		return nil
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ServeWS upgrades the request and attaches the connection to the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{hub: h, conn: conn, send: make(chan []byte, sendBufferSize)}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
