// Package ui feeds the presentation layer: switcher state is broadcast
// to connected front-ends over a websocket. The feed is one-way;
// front-ends drive the daemon through the command channel.
package ui

import (
	"sync"

	"github.com/bryanchriswhite/swaytab/internal/icon"
	"github.com/bryanchriswhite/swaytab/internal/registry"
)

// Event types pushed to front-ends
const (
	EventShow   = "show"
	EventSelect = "select"
	EventHide   = "hide"
)

// WindowView is a window entry enriched with its resolved icon
type WindowView struct {
	registry.Window
	Icon string `json:"icon,omitempty"`
}

// Event is one switcher update
type Event struct {
	Type    string       `json:"type"`
	Windows []WindowView `json:"windows,omitempty"`
	Index   int          `json:"index"`
}

// Hub fans switcher updates out to subscribed front-ends
type Hub struct {
	icons *icon.Resolver

	mu        sync.RWMutex
	listeners []chan Event
	// last show event, replayed to front-ends that connect mid-session
	active *Event
}

// NewHub creates a Hub. icons may be nil when icon resolution is disabled.
func NewHub(icons *icon.Resolver) *Hub {
	return &Hub{icons: icons}
}

// Subscribe adds a listener for switcher events
func (h *Hub) Subscribe() chan Event {
	ch := make(chan Event, 10)
	h.mu.Lock()
	h.listeners = append(h.listeners, ch)
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener
func (h *Hub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, listener := range h.listeners {
		if listener == ch {
			h.listeners = append(h.listeners[:i], h.listeners[i+1:]...)
			close(ch)
			break
		}
	}
}

// Active returns the show event of the current session, if one is open
func (h *Hub) Active() *Event {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.active == nil {
		return nil
	}
	ev := *h.active
	return &ev
}

// SessionStarted implements switcher.Notifier
func (h *Hub) SessionStarted(windows []registry.Window, index int) {
	views := make([]WindowView, len(windows))
	for i, w := range windows {
		views[i] = WindowView{Window: w}
		if h.icons != nil {
			views[i].Icon = h.icons.Resolve(w.AppIdentifier())
		}
	}
	ev := Event{Type: EventShow, Windows: views, Index: index}

	h.mu.Lock()
	h.active = &ev
	h.mu.Unlock()
	h.broadcast(ev)
}

// SelectionChanged implements switcher.Notifier
func (h *Hub) SelectionChanged(index int) {
	h.mu.Lock()
	if h.active != nil {
		h.active.Index = index
	}
	h.mu.Unlock()
	h.broadcast(Event{Type: EventSelect, Index: index})
}

// SessionEnded implements switcher.Notifier
func (h *Hub) SessionEnded() {
	h.mu.Lock()
	h.active = nil
	h.mu.Unlock()
	h.broadcast(Event{Type: EventHide})
}

// broadcast delivers an event to all listeners without blocking
func (h *Hub) broadcast(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, listener := range h.listeners {
		select {
		case listener <- ev:
		default:
			// Skip if channel is full
		}
	}
}
