package views

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/GrainArc/TrialMap/logger"
	"github.com/GrainArc/TrialMap/services"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageSubscription(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := services.NewMessageHub(logger.Nop())
	handler := NewMessageHandler(hub, nil, logger.Nop())

	r := gin.New()
	r.GET("/experiment/messages/ws", handler.Subscribe)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/experiment/messages/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Notify(context.Background(), services.Message{Type: services.MessageStatus, Text: "Created 3 features.", Count: 3})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg services.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "Created 3 features.", msg.Text)
	assert.Equal(t, 3, msg.Count)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestMessageSubscriptionOrigins(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		allowed []string
		origin  string
		wantOK  bool
	}{
		{name: "same origin by default", origin: "same", wantOK: true},
		{name: "foreign origin by default", origin: "https://evil.example", wantOK: false},
		{name: "listed origin", allowed: []string{"https://maps.example/"}, origin: "https://maps.example", wantOK: true},
		{name: "unlisted origin", allowed: []string{"https://maps.example"}, origin: "https://evil.example", wantOK: false},
		{name: "wildcard", allowed: []string{"*"}, origin: "https://evil.example", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := services.NewMessageHub(logger.Nop())
			r := gin.New()
			r.GET("/experiment/messages/ws", NewMessageHandler(hub, tt.allowed, logger.Nop()).Subscribe)
			srv := httptest.NewServer(r)
			defer srv.Close()

			origin := tt.origin
			if origin == "same" {
				origin = srv.URL
			}
			header := http.Header{"Origin": []string{origin}}
			url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/experiment/messages/ws"
			conn, resp, err := websocket.DefaultDialer.Dial(url, header)
			if tt.wantOK {
				require.NoError(t, err)
				conn.Close()
				return
			}
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		})
	}
}
