package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/skobelevs/gochat/internal/domain"
	"github.com/skobelevs/gochat/internal/service"
)

// Event is a single frame pushed to a connected client.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

var ErrSessionClosed = errors.New("session closed")
var ErrSendBufferFull = errors.New("send buffer full")

type Client struct {
	userId domain.UserId
	conn   *websocket.Conn
	send   chan Event

	ctx    context.Context
	cancel context.CancelFunc
}

// Hub maps online users to their active session. One session per user:
// a reconnect replaces and closes the previous one. Mutated only by the
// connection handler; the delivery path just looks sessions up.
type Hub struct {
	mu       sync.RWMutex
	sessions map[domain.UserId]*Client
}

// Delivery consults the hub through the service-level Presence interface.
var _ service.Presence = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{sessions: map[domain.UserId]*Client{}}
}

func (h *Hub) Add(userId domain.UserId, conn *websocket.Conn) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		userId: userId,
		conn:   conn,
		send:   make(chan Event, 64),
		ctx:    ctx,
		cancel: cancel,
	}

	h.mu.Lock()
	prev := h.sessions[userId]
	h.sessions[userId] = c
	h.mu.Unlock()

	if prev != nil {
		prev.cancel()
		_ = prev.conn.Close(websocket.StatusPolicyViolation, "session replaced")
	}

	go c.writeLoop()
	go c.keepAliveLoop()

	return c
}

func (h *Hub) Remove(c *Client) {
	c.cancel()

	h.mu.Lock()
	// A reconnect may already have replaced this client.
	if h.sessions[c.userId] == c {
		delete(h.sessions, c.userId)
	}
	h.mu.Unlock()

	_ = c.conn.Close(websocket.StatusNormalClosure, "bye")
}

// Session returns the receiver's live session, if any.
func (h *Hub) Session(userId domain.UserId) (service.Session, bool) {
	h.mu.RLock()
	c, ok := h.sessions[userId]
	h.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return c, true
}

// Push enqueues an event for the client. It never blocks: a full buffer or a
// closed session reports an error and the event is dropped.
func (c *Client) Push(event string, data any) error {
	ev := Event{Type: event, Data: data}
	select {
	case <-c.ctx.Done():
		return ErrSessionClosed
	case c.send <- ev:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Done closes when the session is removed or replaced.
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

func (c *Client) writeLoop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case ev := <-c.send:
			writeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			_ = wsjson.Write(writeCtx, c.conn, ev)
			cancel()
		}
	}
}

func (c *Client) keepAliveLoop() {
	ticker := time.NewTicker(25 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = c.conn.Ping(pingCtx)
			cancel()
		}
	}
}
