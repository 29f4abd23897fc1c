package compositor

import (
	"bytes"
	"testing"
)

func TestMessageRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte(`{"success":true}`)
	if err := writeMessage(&buf, msgSubscribe, payload); err != nil {
		t.Fatalf("writeMessage failed: %v", err)
	}

	msgType, got, err := readMessage(&buf)
	if err != nil {
		t.Fatalf("readMessage failed: %v", err)
	}
	if msgType != msgSubscribe {
		t.Errorf("msgType = %d, want %d", msgType, msgSubscribe)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload = %q, want %q", got, payload)
	}
}

func TestMessageEmptyPayload(t *testing.T) {
	var buf bytes.Buffer
	if err := writeMessage(&buf, msgGetTree, nil); err != nil {
		t.Fatalf("writeMessage failed: %v", err)
	}
	msgType, payload, err := readMessage(&buf)
	if err != nil {
		t.Fatalf("readMessage failed: %v", err)
	}
	if msgType != msgGetTree {
		t.Errorf("msgType = %d, want %d", msgType, msgGetTree)
	}
	if len(payload) != 0 {
		t.Errorf("payload length = %d, want 0", len(payload))
	}
}

func TestReadMessageBadMagic(t *testing.T) {
	buf := bytes.NewBufferString("not-i3\x00\x00\x00\x00\x00\x00\x00\x00")
	if _, _, err := readMessage(buf); err == nil {
		t.Error("expected error for bad magic")
	}
}

func TestDecodeWindowEvents(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantKind EventKind
		wantOK   bool
	}{
		{
			name:     "new",
			payload:  `{"change":"new","container":{"id":7,"name":"vim","app_id":"foot","pid":100,"type":"con"}}`,
			wantKind: WindowOpened,
			wantOK:   true,
		},
		{
			name:     "close",
			payload:  `{"change":"close","container":{"id":7,"pid":100,"type":"con"}}`,
			wantKind: WindowClosed,
			wantOK:   true,
		},
		{
			name:     "focus",
			payload:  `{"change":"focus","container":{"id":7,"pid":100,"type":"con"}}`,
			wantKind: WindowFocused,
			wantOK:   true,
		},
		{
			name:     "move",
			payload:  `{"change":"move","container":{"id":7,"pid":100,"type":"con"}}`,
			wantKind: WindowMoved,
			wantOK:   true,
		},
		{
			name:     "title",
			payload:  `{"change":"title","container":{"id":7,"name":"new title","pid":100,"type":"con"}}`,
			wantKind: WindowTitle,
			wantOK:   true,
		},
		{
			name:    "untracked change",
			payload: `{"change":"fullscreen_mode","container":{"id":7}}`,
			wantOK:  false,
		},
		{
			name:    "garbage",
			payload: `{{{`,
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := decodeEvent(eventWindow, []byte(tt.payload))
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if ev.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", ev.Kind, tt.wantKind)
			}
			if ev.WindowID != 7 {
				t.Errorf("WindowID = %d, want 7", ev.WindowID)
			}
		})
	}
}

func TestDecodeWindowEventXWaylandClass(t *testing.T) {
	payload := `{"change":"new","container":{"id":9,"pid":200,"type":"con","window_properties":{"class":"Signal"}}}`
	ev, ok := decodeEvent(eventWindow, []byte(payload))
	if !ok {
		t.Fatal("expected event to decode")
	}
	if ev.Class != "Signal" {
		t.Errorf("Class = %q, want %q", ev.Class, "Signal")
	}
}

func TestDecodeWorkspaceEvent(t *testing.T) {
	ev, ok := decodeEvent(eventWorkspace, []byte(`{"change":"focus","current":{"name":"3"}}`))
	if !ok {
		t.Fatal("expected event to decode")
	}
	if ev.Kind != WorkspaceFocused {
		t.Errorf("Kind = %v, want WorkspaceFocused", ev.Kind)
	}
	if ev.Workspace != "3" {
		t.Errorf("Workspace = %q, want %q", ev.Workspace, "3")
	}

	// Non-focus workspace changes are not tracked
	if _, ok := decodeEvent(eventWorkspace, []byte(`{"change":"init","current":{"name":"4"}}`)); ok {
		t.Error("expected init change to be ignored")
	}
}

func TestDecodeUnknownEventType(t *testing.T) {
	if _, ok := decodeEvent(99, []byte(`{}`)); ok {
		t.Error("expected unknown event type to be ignored")
	}
}

func TestNodeIsWindow(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want bool
	}{
		{"wayland window", Node{Type: "con", PID: 42}, true},
		{"floating window", Node{Type: "floating_con", PID: 42}, true},
		{"layout container", Node{Type: "con", PID: 0}, false},
		{"workspace", Node{Type: "workspace", PID: 0}, false},
		{"output", Node{Type: "output"}, false},
	}
	for _, tt := range tests {
		if got := tt.node.IsWindow(); got != tt.want {
			t.Errorf("%s: IsWindow() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSocketPath(t *testing.T) {
	t.Setenv("SWAYSOCK", "/run/sway.sock")
	t.Setenv("I3SOCK", "/run/i3.sock")
	if path, err := SocketPath(); err != nil || path != "/run/sway.sock" {
		t.Errorf("SocketPath() = %q, %v; want /run/sway.sock", path, err)
	}

	t.Setenv("SWAYSOCK", "")
	if path, err := SocketPath(); err != nil || path != "/run/i3.sock" {
		t.Errorf("SocketPath() = %q, %v; want /run/i3.sock", path, err)
	}

	t.Setenv("I3SOCK", "")
	if _, err := SocketPath(); err == nil {
		t.Error("expected error with no socket env set")
	}
}
