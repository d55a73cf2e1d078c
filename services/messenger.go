package services

import (
	"context"
	"sync"
	"time"

	"github.com/GrainArc/TrialMap/logger"
)

const (
	MessageStatus  = "status"
	MessageWarning = "warning"
)

// Message is a user-facing notice produced by an operation.
type Message struct {
	Type      string    `json:"type"`
	Text      string    `json:"text"`
	PlanID    uint      `json:"plan_id,omitempty"`
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"created_at"`
}

// Messenger decides how messages reach users.
type Messenger interface {
	Notify(ctx context.Context, msg Message)
}

type LogMessenger struct {
	log *logger.Logger
}

func NewLogMessenger(log *logger.Logger) *LogMessenger {
	return &LogMessenger{log: log.With("component", "messages")}
}

func (m *LogMessenger) Notify(_ context.Context, msg Message) {
	m.log.Info(msg.Text, "type", msg.Type, "plan_id", msg.PlanID, "count", msg.Count)
}

// MultiMessenger delivers each message to every messenger in order.
type MultiMessenger []Messenger

func (m MultiMessenger) Notify(ctx context.Context, msg Message) {
	for _, messenger := range m {
		messenger.Notify(ctx, msg)
	}
}

// MessageConn is the write side of a subscriber connection. *websocket.Conn satisfies it.
type MessageConn interface {
	SetWriteDeadline(t time.Time) error
	WriteJSON(v interface{}) error
	Close() error
}

// DefaultWriteTimeout bounds a single write to a subscriber.
const DefaultWriteTimeout = 5 * time.Second

// MessageHub fans messages out to subscribed connections. A connection
// whose write fails or exceeds the write timeout is closed and dropped.
type MessageHub struct {
	mu           sync.Mutex
	conns        map[MessageConn]struct{}
	writeTimeout time.Duration
	log          *logger.Logger
}

func NewMessageHub(log *logger.Logger) *MessageHub {
	return &MessageHub{
		conns:        make(map[MessageConn]struct{}),
		writeTimeout: DefaultWriteTimeout,
		log:          log.With("component", "message_hub"),
	}
}

// SetWriteTimeout changes the per-write deadline; non-positive values are ignored.
func (h *MessageHub) SetWriteTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.writeTimeout = d
}

func (h *MessageHub) Subscribe(conn MessageConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

func (h *MessageHub) Unsubscribe(conn MessageConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		_ = conn.Close()
	}
}

func (h *MessageHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *MessageHub) Notify(_ context.Context, msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		err := conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err == nil {
			err = conn.WriteJSON(msg)
		}
		if err != nil {
			h.log.Warn("dropping message subscriber", "error", err)
			delete(h.conns, conn)
			_ = conn.Close()
		}
	}
}
