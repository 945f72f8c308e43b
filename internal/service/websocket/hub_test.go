package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fishsense/internal/logger"

	"github.com/gorilla/websocket"
)

func TestHubService_BroadcastReachesViewer(t *testing.T) {
	hub := NewHubService(logger.Discard())
	go hub.Run()
	defer hub.Stop()

	upgrader := websocket.Upgrader{}
	registered := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade failed: %v", err)
			return
		}
		hub.Register(conn)
		close(registered)
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer client.Close()

	select {
	case <-registered:
	case <-time.After(time.Second):
		t.Fatal("Viewer was not registered")
	}

	hub.Broadcast([]byte(`{"type":"state"}`))

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	if string(msg) != `{"type":"state"}` {
		t.Errorf("Unexpected message %s", msg)
	}
	if hub.GetClientCount() != 1 {
		t.Errorf("Expected 1 client, got %d", hub.GetClientCount())
	}
}

func TestHubService_StoppedHubDoesNotBlock(t *testing.T) {
	hub := NewHubService(logger.Discard())
	hub.Stop()
	hub.Stop()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Broadcast([]byte("x"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a stopped hub")
	}
}
