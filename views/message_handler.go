package views

import (
	"net/http"
	"strings"

	"github.com/GrainArc/TrialMap/logger"
	"github.com/GrainArc/TrialMap/services"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// MessageHandler streams import messages to websocket subscribers.
type MessageHandler struct {
	hub      *services.MessageHub
	upgrader websocket.Upgrader
	log      *logger.Logger
}

// NewMessageHandler accepts browsers from allowedOrigins. An empty list keeps
// gorilla's same-origin check; "*" accepts every origin.
func NewMessageHandler(hub *services.MessageHub, allowedOrigins []string, log *logger.Logger) *MessageHandler {
	return &MessageHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin:     originChecker(allowedOrigins),
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: log.With("component", "message_ws"),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		set[strings.TrimRight(strings.ToLower(origin), "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || set["*"] {
			return true
		}
		return set[strings.ToLower(origin)]
	}
}

func (h *MessageHandler) Subscribe(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("failed to upgrade to websocket", "error", err)
		return
	}
	h.hub.Subscribe(conn)

	// Subscribers only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.hub.Unsubscribe(conn)
}
