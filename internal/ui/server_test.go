package ui

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestHealthEndpoint(t *testing.T) {
	srv := httptest.NewServer(NewServer(NewHub(nil)).router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestSwitcherStream(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(NewServer(hub).router)
	defer srv.Close()

	wsURL := strings.Replace(srv.URL, "http://", "ws://", 1) + "/api/switcher/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	defer conn.Close()

	// Wait for the subscription to land before broadcasting
	deadline := time.Now().Add(2 * time.Second)
	for {
		hub.mu.RLock()
		n := len(hub.listeners)
		hub.mu.RUnlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("stream handler never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.SessionStarted(sampleWindows(), 1)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if ev.Type != EventShow || ev.Index != 1 || len(ev.Windows) != 2 {
		t.Errorf("event = %+v, want show with 2 windows and index 1", ev)
	}
}

func TestSwitcherStreamReplaysActiveSession(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(NewServer(hub).router)
	defer srv.Close()

	// Session opens before the front-end connects
	hub.SessionStarted(sampleWindows(), 1)

	wsURL := strings.Replace(srv.URL, "http://", "ws://", 1) + "/api/switcher/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if ev.Type != EventShow || len(ev.Windows) != 2 {
		t.Errorf("replayed event = %+v, want the active show event", ev)
	}
}
