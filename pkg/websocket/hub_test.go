package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"learning-system/internal/auth"
	"learning-system/internal/models"
	"learning-system/pkg/logger"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	hub := NewHub(nil, logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	// The user id comes from a query parameter here; production routes put the
	// JWT middleware in front of HandleWebSocket.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id uint
		switch r.URL.Query().Get("user") {
		case "1":
			id = 1
		case "2":
			id = 2
		}
		if id != 0 {
			r = r.WithContext(auth.WithIdentity(r.Context(), auth.Identity{UserID: id, Role: models.RoleStudent}))
		}
		hub.HandleWebSocket(w, r)
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, user string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?user=" + user
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(raw, &msg))
	return msg
}

func TestSendMessageToUserReachesEveryConnection(t *testing.T) {
	hub, srv := startHub(t)

	first := dial(t, srv, "1")
	second := dial(t, srv, "1")
	other := dial(t, srv, "2")
	require.Eventually(t, func() bool {
		return hub.ConnectionCount(1) == 2 && hub.ConnectionCount(2) == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.SendMessageToUser(1, "progress_update", map[string]int{"overallProgress": 22})

	for _, conn := range []*websocket.Conn{first, second} {
		msg := readMessage(t, conn)
		require.Equal(t, "progress_update", msg.Type)
		require.Equal(t, map[string]interface{}{"overallProgress": float64(22)}, msg.Data)
	}

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := other.ReadMessage()
	require.Error(t, err)
}

func TestPingGetsPong(t *testing.T) {
	hub, srv := startHub(t)

	conn := dial(t, srv, "2")
	require.Eventually(t, func() bool { return hub.ConnectionCount(2) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(Message{Type: "ping"}))
	require.Equal(t, "pong", readMessage(t, conn).Type)
}

func TestClosedConnectionIsUnregistered(t *testing.T) {
	hub, srv := startHub(t)

	conn := dial(t, srv, "1")
	require.Eventually(t, func() bool { return hub.ConnectionCount(1) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ConnectionCount(1) == 0 }, 2*time.Second, 10*time.Millisecond)

	hub.SendMessageToUser(1, "quiz_graded", nil)
}

func TestHandleWebSocketRequiresIdentity(t *testing.T) {
	_, srv := startHub(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
