package chat_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Srujan253/Gupshup/internal/auth"
	"github.com/Srujan253/Gupshup/internal/chat"
	"github.com/Srujan253/Gupshup/internal/presence"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type wireEvent struct {
	Type string  `json:"type"`
	Data []int64 `json:"data"`
}

func newWSServer(t *testing.T) (*httptest.Server, *presence.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := presence.NewRegistry()
	hub := chat.NewHub(registry)
	go hub.Run()

	r := gin.New()
	chat.RegisterWS(r.Group(""), hub, testSecret)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, registry
}

func dial(t *testing.T, srv *httptest.Server, userID int64) *websocket.Conn {
	t.Helper()
	tok, err := auth.NewToken(testSecret, userID, 60)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + tok
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) wireEvent {
	t.Helper()
	var ev wireEvent
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestWebsocketHandshake(t *testing.T) {
	srv, registry := newWSServer(t)

	t.Run("bad token never reaches the registry", func(t *testing.T) {
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=garbage"
		_, resp, err := websocket.DefaultDialer.Dial(url, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Empty(t, registry.Snapshot())
	})

	t.Run("missing token is rejected", func(t *testing.T) {
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
		_, resp, err := websocket.DefaultDialer.Dial(url, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestWebsocketPresenceAndPush(t *testing.T) {
	srv, registry := newWSServer(t)

	// User 1 connects and hears about themself.
	conn1 := dial(t, srv, 1)
	ev := readEvent(t, conn1)
	assert.Equal(t, chat.EventOnlineUsersChanged, ev.Type)
	assert.Contains(t, ev.Data, int64(1))

	// User 2 joins; user 1 sees the bigger snapshot.
	conn2 := dial(t, srv, 2)
	readEvent(t, conn2)

	ev = readEvent(t, conn1)
	assert.Equal(t, chat.EventOnlineUsersChanged, ev.Type)
	assert.ElementsMatch(t, []int64{1, 2}, ev.Data)

	// A push through the registered handle lands on user 2's socket.
	handles := registry.Lookup(2)
	require.Len(t, handles, 1)
	require.NoError(t, handles[0].Emit(chat.EventNewMessage, map[string]string{"text": "hey"}))

	var raw struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, conn2.ReadJSON(&raw))
	assert.Equal(t, chat.EventNewMessage, raw.Type)
	assert.Equal(t, "hey", raw.Data["text"])

	// User 2 drops; user 1 sees them leave.
	conn2.Close()
	ev = readEvent(t, conn1)
	assert.Equal(t, chat.EventOnlineUsersChanged, ev.Type)
	assert.NotContains(t, ev.Data, int64(2))
}
