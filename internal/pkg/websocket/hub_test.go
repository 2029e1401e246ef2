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
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/flashclass/internal/app/models"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	handler := NewHandler(hub, nil, zerolog.Nop())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		_ = handler.Serve(w, r, q.Get("class"), models.Identity{ID: q.Get("user"), Role: models.RoleUser})
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, classID string) *websocket.Conn {
	t.Helper()
	return dialAs(t, srv, classID, "u1")
}

func dialAs(t *testing.T, srv *httptest.Server, classID, userID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?class=" + classID + "&user=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestPublishReachesClassClients(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, "c1")
	other := dial(t, srv, "c2")

	require.Eventually(t, func() bool { return hub.GetClientsCount("c1") == 1 && hub.GetClientsCount("c2") == 1 },
		time.Second, 10*time.Millisecond)

	hub.Publish("c1", "class.patched", map[string]any{"members": []string{"u1"}})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, "c1", event.ClassID)
	assert.Equal(t, "class.patched", event.Type)

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = other.ReadMessage()
	assert.Error(t, err, "client of another class receives nothing")
}

func TestClientUnregistersOnClose(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, "c1")
	require.Eventually(t, func() bool { return hub.GetClientsCount("c1") == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()

	assert.Eventually(t, func() bool { return hub.GetClientsCount("c1") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestUpgraderOrigins(t *testing.T) {
	up := newUpgrader([]string{"https://app.example.com"})
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, up.CheckOrigin(r))
	r.Header.Set("Origin", "https://app.example.com")
	assert.True(t, up.CheckOrigin(r))
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var event Event
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}

func requireClosed(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err, "stream stays open")
}

func TestPublishToDropsSubscribersOutsideAudience(t *testing.T) {
	hub, srv := startHub(t)
	alice := dialAs(t, srv, "c1", "alice")
	bob := dialAs(t, srv, "c1", "bob")
	require.Eventually(t, func() bool { return hub.GetClientsCount("c1") == 2 }, time.Second, 10*time.Millisecond)

	onlyBob := func(viewer models.Identity) bool { return viewer.ID == "bob" }
	hub.PublishTo("c1", "class.patched", map[string]any{"members": []string{"bob"}}, onlyBob)

	event := readEvent(t, bob)
	assert.Equal(t, "class.patched", event.Type)

	requireClosed(t, alice)
	assert.Eventually(t, func() bool { return hub.GetClientsCount("c1") == 1 }, time.Second, 10*time.Millisecond)

	// later events never reach the dropped subscriber, whatever their audience
	hub.Publish("c1", "class.patched", map[string]any{"manualMembers": []string{"jane"}})
	assert.Equal(t, "class.patched", readEvent(t, bob).Type)
}

func TestCloseClassAfterDeletion(t *testing.T) {
	hub, srv := startHub(t)
	conn := dialAs(t, srv, "c1", "alice")
	dialAs(t, srv, "c2", "alice")
	require.Eventually(t, func() bool { return hub.GetClientsCount("c1") == 1 && hub.GetClientsCount("c2") == 1 },
		time.Second, 10*time.Millisecond)

	hub.Publish("c1", "class.deleted", map[string]any{"deleted": true})
	hub.CloseClass("c1")

	assert.Equal(t, "class.deleted", readEvent(t, conn).Type)
	requireClosed(t, conn)
	assert.Eventually(t, func() bool { return hub.GetClientsCount("c1") == 0 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, hub.GetClientsCount("c2"))
}

func TestDisconnectUser(t *testing.T) {
	hub, srv := startHub(t)
	a1 := dialAs(t, srv, "c1", "alice")
	a2 := dialAs(t, srv, "c2", "alice")
	dialAs(t, srv, "c1", "bob")
	require.Eventually(t, func() bool { return hub.GetClientsCount("c1") == 2 && hub.GetClientsCount("c2") == 1 },
		time.Second, 10*time.Millisecond)

	assert.Equal(t, 2, hub.DisconnectUser("alice"))
	requireClosed(t, a1)
	requireClosed(t, a2)
	assert.Equal(t, 1, hub.GetClientsCount("c1"))
	assert.Equal(t, 0, hub.GetClientsCount("c2"))
	assert.Equal(t, 0, hub.DisconnectUser("alice"))
}

func TestCloseClassWithoutRunningHub(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	for i := 0; i < cap(hub.broadcast); i++ {
		hub.Publish("c1", "class.patched", nil)
	}
	client := &Client{hub: hub, send: make(chan []byte, 1), viewer: models.Identity{ID: "alice"}, classID: "c1"}
	hub.registerClient(client)

	hub.CloseClass("c1")

	assert.Equal(t, 0, hub.GetClientsCount("c1"))
	_, open := <-client.send
	assert.False(t, open)
}
