package ui

import (
	"testing"

	"github.com/bryanchriswhite/swaytab/internal/registry"
)

func sampleWindows() []registry.Window {
	return []registry.Window{
		{ID: 1, Title: "editor", AppID: "foot"},
		{ID: 2, Title: "browser", AppID: "firefox"},
	}
}

func TestHubBroadcastsSessionLifecycle(t *testing.T) {
	h := NewHub(nil)
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	h.SessionStarted(sampleWindows(), 1)
	ev := <-ch
	if ev.Type != EventShow {
		t.Fatalf("Type = %q, want %q", ev.Type, EventShow)
	}
	if len(ev.Windows) != 2 || ev.Index != 1 {
		t.Errorf("show event = %+v, want 2 windows with index 1", ev)
	}

	h.SelectionChanged(0)
	ev = <-ch
	if ev.Type != EventSelect || ev.Index != 0 {
		t.Errorf("select event = %+v, want index 0", ev)
	}

	h.SessionEnded()
	ev = <-ch
	if ev.Type != EventHide {
		t.Errorf("Type = %q, want %q", ev.Type, EventHide)
	}
}

func TestHubActiveReplay(t *testing.T) {
	h := NewHub(nil)

	if h.Active() != nil {
		t.Error("Active() != nil before any session")
	}

	h.SessionStarted(sampleWindows(), 1)
	h.SelectionChanged(0)

	// A front-end connecting mid-session sees the current selection
	active := h.Active()
	if active == nil {
		t.Fatal("Active() = nil during session")
	}
	if active.Type != EventShow || active.Index != 0 {
		t.Errorf("Active() = %+v, want show event with index 0", active)
	}

	h.SessionEnded()
	if h.Active() != nil {
		t.Error("Active() != nil after session ended")
	}
}

func TestHubSlowListenerDoesNotBlock(t *testing.T) {
	h := NewHub(nil)
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	// Overflow the listener buffer; broadcasts must not block
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.SelectionChanged(i)
		}
		close(done)
	}()
	<-done
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub(nil)
	ch := h.Subscribe()
	h.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Error("channel still open after Unsubscribe")
	}

	// Broadcasting after unsubscribe must not panic
	h.SessionEnded()
}
