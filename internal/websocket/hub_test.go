package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func dialMonitor(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	return conn
}

func TestHub_BroadcastReachesEveryMonitor(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer srv.Close()

	first := dialMonitor(t, srv)
	defer first.Close()
	second := dialMonitor(t, srv)
	defer second.Close()

	waitFor(t, func() bool { return hub.Connections() == 2 })

	payload := `{"endpoint":"/request","generated_text":"Hi"}`
	hub.Broadcast([]byte(payload))

	for i, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("monitor %d: read failed: %v", i, err)
		}
		if string(data) != payload {
			t.Fatalf("monitor %d: expected %q, got %q", i, payload, data)
		}
	}
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer srv.Close()

	conn := dialMonitor(t, srv)
	waitFor(t, func() bool { return hub.Connections() == 1 })

	conn.Close()
	waitFor(t, func() bool { return hub.Connections() == 0 })
}

func TestHub_RunWithoutRedisReturns(t *testing.T) {
	done := make(chan struct{})
	go func() {
		NewHub(nil).Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run should return immediately without a redis client")
	}
}

func TestHub_Close(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer srv.Close()

	conn := dialMonitor(t, srv)
	defer conn.Close()
	waitFor(t, func() bool { return hub.Connections() == 1 })

	hub.Close()
	if hub.Connections() != 0 {
		t.Fatalf("expected no connections after Close, got %d", hub.Connections())
	}
}
