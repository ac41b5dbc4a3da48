package socket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to read one event from a WebSocket connection with a timeout.
func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	var event Event
	conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	_, p, err := conn.ReadMessage()
	require.NoError(t, err, "Failed to read message from WebSocket")
	require.NoError(t, json.Unmarshal(p, &event), "Failed to unmarshal Event JSON")
	return event
}

func TestHubBroadcastsOrders(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		ServeWs(hub, w, r, userID)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	conn1, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?user_id=owner1", nil)
	require.NoError(t, err, "Client 1 failed to connect")
	defer conn1.Close()

	conn2, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?user_id=owner2", nil)
	require.NoError(t, err, "Client 2 failed to connect")
	defer conn2.Close()

	// Registration goes through the hub loop; give it a beat before
	// broadcasting so both clients are in the room.
	time.Sleep(50 * time.Millisecond)

	payload := json.RawMessage(`{"customer":"Budi","items":[{"name":"Sate","qty":3}]}`)
	hub.Broadcast <- Event{Type: OrderType, Ref: "AB12CD34", Payload: payload}

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		event := readEvent(t, conn)
		assert.Equal(t, OrderType, event.Type)
		assert.Equal(t, "AB12CD34", event.Ref)
		assert.JSONEq(t, string(payload), string(event.Payload))
	}
}

func TestHubDropsDisconnectedClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r, "owner1")
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws", nil)
	require.NoError(t, err)
	conn.Close()

	// The broadcast after disconnect must not block the hub loop.
	time.Sleep(50 * time.Millisecond)
	hub.Broadcast <- Event{Type: OrderType, Ref: "X"}
	hub.Broadcast <- Event{Type: OrderType, Ref: "Y"}
}
