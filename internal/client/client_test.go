package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectSendsAPIKeyAndEchoes(t *testing.T) {
	upgrader := websocket.Upgrader{}
	seen := make(chan *http.Request, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, msg); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	logger, _ := logtest.NewNullLogger()
	endpoint := "ws" + strings.TrimPrefix(srv.URL, "http") + "/realtime/v1/websocket"
	c := New(endpoint, "anon-key", logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx))
	defer c.Close()

	r := <-seen
	assert.Equal(t, "anon-key", r.URL.Query().Get("apikey"))
	assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))

	require.NoError(t, c.WriteJSON(map[string]string{"event": "ping"}))
	msg, err := c.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"ping"}`, string(msg))
}

func TestConnectReportsHandshakeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	logger, _ := logtest.NewNullLogger()
	c := New("ws"+strings.TrimPrefix(srv.URL, "http"), "", logger)
	err := c.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")

	assert.Error(t, c.WriteJSON("x"))
	assert.NoError(t, c.Close())
}
