package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"devconnector/internal/middleware"
	"devconnector/internal/observability"

	"github.com/cenkalti/backoff/v5"
	"github.com/gofiber/websocket/v2"
)

const (
	// Max connections per user
	maxConnsPerUser = 12
	// Max total connections
	maxTotalConns = 10000

	resubscribeInitialInterval = 500 * time.Millisecond
	resubscribeMaxInterval     = 30 * time.Second
)

var (
	ErrServerFull = errors.New("server connection limit reached")
	ErrUserFull   = errors.New("user connection limit reached")
)

// Hub maps userID -> set of Clients and fans events out to all of them.
type Hub struct {
	mu         sync.RWMutex
	conns      map[uint]map[*Client]struct{}
	totalConns int
	notifier   *Notifier

	// subscribed is true while this instance receives the Redis channel.
	subscribed    atomic.Bool
	retryInterval time.Duration
}

// NewHub creates a hub. With a Redis-backed notifier, published events travel
// through Redis so every instance delivers them; otherwise delivery is local.
func NewHub(notifier *Notifier) *Hub {
	return &Hub{
		conns:         make(map[uint]map[*Client]struct{}),
		notifier:      notifier,
		retryInterval: resubscribeInitialInterval,
	}
}

// Register a connection for a given userID. Returns the Client or error if limits exceeded.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.totalConns >= maxTotalConns {
		return nil, ErrServerFull
	}

	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerUser {
		return nil, ErrUserFull
	}

	client := newClient(h, conn, userID)
	m[client] = struct{}{}
	h.totalConns++
	observability.WebSocketConnections.Inc()
	return client, nil
}

// UnregisterClient removes client. It is safe to call more than once.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.UserID]
	if !ok {
		return
	}
	if _, exists := m[client]; exists {
		delete(m, client)
		h.totalConns--
		observability.WebSocketConnections.Dec()
		close(client.Send)
	}
	if len(m) == 0 {
		delete(h.conns, client.UserID)
	}
}

// ConnectionCount returns the number of registered clients.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalConns
}

// BroadcastAll sends message to every connected websocket client.
func (h *Hub) BroadcastAll(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for _, clients := range h.conns {
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// Publish delivers ev to every client of every instance. Events go through
// Redis only while this instance is subscribed; otherwise, or when the Redis
// publish fails, they are delivered locally.
func (h *Hub) Publish(ctx context.Context, ev Event) {
	payload, err := ev.Encode()
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to encode event", slog.String("error", err.Error()))
		return
	}

	if h.notifier.Enabled() && h.subscribed.Load() {
		err := h.notifier.Publish(ctx, payload)
		if err == nil {
			return
		}
		middleware.Logger.WarnContext(ctx, "failed to publish event, delivering locally",
			slog.String("type", ev.Type), slog.String("error", err.Error()))
	}
	h.BroadcastAll(payload)
}

// Subscribed reports whether events are currently received from Redis.
func (h *Hub) Subscribed() bool {
	return h.subscribed.Load()
}

// StartWiring subscribes to the Redis channel and forwards every event to local
// clients. When the first attempt fails it returns the error and keeps retrying
// in the background until ctx is done.
func (h *Hub) StartWiring(ctx context.Context) error {
	if !h.notifier.Enabled() {
		return nil
	}
	err := h.subscribe(ctx)
	if err != nil {
		go h.resubscribe(ctx)
	}
	return err
}

func (h *Hub) subscribe(ctx context.Context) error {
	if err := h.notifier.StartSubscriber(ctx, h.BroadcastAll); err != nil {
		return err
	}
	h.subscribed.Store(true)
	context.AfterFunc(ctx, func() { h.subscribed.Store(false) })
	return nil
}

func (h *Hub) resubscribe(ctx context.Context) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = h.retryInterval
	b.MaxInterval = resubscribeMaxInterval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, h.subscribe(ctx)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			middleware.Logger.Warn("post events subscription failed, retrying",
				slog.Duration("next", next), slog.String("error", err.Error()))
		}),
	)
	if err == nil {
		middleware.Logger.Info("subscribed to post events")
	}
}

// Shutdown closes every client's send channel. Each WritePump then sends a
// going-away close frame and closes its connection.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, userConns := range h.conns {
		for client := range userConns {
			close(client.Send)
			observability.WebSocketConnections.Dec()
		}
	}
	h.conns = make(map[uint]map[*Client]struct{})
	h.totalConns = 0
	return nil
}
