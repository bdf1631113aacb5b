// Package realtime pushes claim activity to websocket subscribers.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"claimsight/internal/activity"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingEvery  = (pongWait * 9) / 10
	sendBuffer = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type outbound struct {
	Type  string          `json:"type"`
	Event *activity.Event `json:"event,omitempty"`
}

type subscriber struct {
	claimID string
	send    chan []byte
}

// Hub fans activity events out to connected websocket clients. A client may
// narrow its feed to one claim with the claim_id query parameter.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	logger *slog.Logger
}

type Option func(*Hub)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		h.logger = logger
	}
}

func NewHub(opts ...Option) *Hub {
	h := &Hub{
		subs:   make(map[*subscriber]struct{}),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hub) Register(r chi.Router) {
	r.Get("/ws/claims", h.ServeWS)
}

// Publish implements activity.Sink. Slow subscribers drop events rather than
// block the publisher.
func (h *Hub) Publish(ctx context.Context, event activity.Event) error {
	payload, err := json.Marshal(outbound{Type: "claim_activity", Event: &event})
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		if sub.claimID != "" && sub.claimID != event.ClaimID {
			continue
		}
		select {
		case sub.send <- payload:
		default:
			h.logger.WarnContext(ctx, "dropping activity for slow websocket subscriber",
				"claim_id", event.ClaimID,
				"action", event.Action,
			)
		}
	}
	return nil
}

// Subscribers reports the number of connected clients.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sub := &subscriber{
		claimID: strings.TrimSpace(r.URL.Query().Get("claim_id")),
		send:    make(chan []byte, sendBuffer),
	}
	h.add(sub)
	defer h.remove(sub)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writeLoop(ctx, conn, sub)
	}()

	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		cancel()
		<-writerDone
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Clients only send control frames; reading keeps pong handling alive.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			cancel()
			<-writerDone
			return
		}
	}
}

func (h *Hub) writeLoop(ctx context.Context, conn *websocket.Conn, sub *subscriber) {
	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()

	hello, _ := json.Marshal(outbound{Type: "subscribed"})
	if err := write(conn, websocket.TextMessage, hello); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-sub.send:
			if err := write(conn, websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			if err := write(conn, websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func write(conn *websocket.Conn, messageType int, data []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(messageType, data)
}

func (h *Hub) add(sub *subscriber) {
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
}
