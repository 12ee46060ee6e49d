package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// dialClient connects a websocket client whose server side is registered in
// the hub under the id given in the query string.
func dialClient(t *testing.T, hub *Hub, srvURL, connID string) *websocket.Conn {
	t.Helper()

	want := hub.Count() + 1

	url := "ws" + strings.TrimPrefix(srvURL, "http") + "?id=" + connID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", connID, err)
	}
	t.Cleanup(func() { conn.Close() })

	// Wait for the server side to land in the registry.
	deadline := time.Now().Add(time.Second)
	for hub.Count() < want && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

func newHubServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		hub.Add(r.URL.Query().Get("id"), conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return msg
}

func TestHub_BroadcastAllReachesEveryClient(t *testing.T) {
	hub := NewHub()
	srv := newHubServer(t, hub)

	c1 := dialClient(t, hub, srv.URL, "a")
	c2 := dialClient(t, hub, srv.URL, "b")

	hub.BroadcastAll(Message{Type: "stats", Data: map[string]interface{}{"total": 1}})

	for _, conn := range []*websocket.Conn{c1, c2} {
		msg := readMessage(t, conn)
		if msg.Type != "stats" {
			t.Fatalf("expected stats message, got %q", msg.Type)
		}
	}
}

func TestHub_SendToReachesOnlyTarget(t *testing.T) {
	hub := NewHub()
	srv := newHubServer(t, hub)

	c1 := dialClient(t, hub, srv.URL, "a")
	c2 := dialClient(t, hub, srv.URL, "b")

	hub.SendTo("a", Message{Type: "you", Data: map[string]interface{}{"mine": 3}})

	msg := readMessage(t, c1)
	if msg.Type != "you" {
		t.Fatalf("expected you message, got %q", msg.Type)
	}

	c2.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := c2.ReadMessage(); err == nil {
		t.Fatalf("non-target client must not receive a caller-scoped message")
	}
}

func TestHub_SendToMissingConnectionIsSilent(t *testing.T) {
	hub := NewHub()

	// Must not panic or block: the client may have disconnected while its
	// event was still being handled.
	hub.SendTo("gone", Message{Type: "you", Data: nil})
}

func TestHub_RemoveDropsClient(t *testing.T) {
	hub := NewHub()
	srv := newHubServer(t, hub)

	dialClient(t, hub, srv.URL, "a")
	if hub.Count() != 1 {
		t.Fatalf("expected one client, got %d", hub.Count())
	}

	hub.Remove("a")
	if hub.Count() != 0 {
		t.Fatalf("expected empty registry, got %d", hub.Count())
	}
}
