package compositor

import "encoding/json"

// EventKind classifies a compositor event
type EventKind int

const (
	// WindowOpened reports a newly created window
	WindowOpened EventKind = iota
	// WindowClosed reports a destroyed window
	WindowClosed
	// WindowFocused reports a focus change
	WindowFocused
	// WindowMoved reports a window moved between workspaces
	WindowMoved
	// WindowTitle reports a title change
	WindowTitle
	// WorkspaceFocused reports the active workspace changing
	WorkspaceFocused
)

// Event is one decoded compositor event
type Event struct {
	Kind     EventKind
	WindowID int64
	Title    string
	AppID    string
	Class    string
	// Workspace is set for WorkspaceFocused events. Window events do not
	// carry a workspace name; reconciliation corrects placement instead.
	Workspace string
}

type windowEventPayload struct {
	Change    string `json:"change"`
	Container Node   `json:"container"`
}

type workspaceEventPayload struct {
	Change  string `json:"change"`
	Current *Node  `json:"current"`
}

// decodeEvent maps a raw event payload onto an Event. Returns ok=false
// for event subtypes the daemon does not track.
func decodeEvent(eventType uint32, payload []byte) (Event, bool) {
	switch eventType {
	case eventWindow:
		var ev windowEventPayload
		if err := json.Unmarshal(payload, &ev); err != nil {
			return Event{}, false
		}
		kind, ok := windowChangeKind(ev.Change)
		if !ok {
			return Event{}, false
		}
		return Event{
			Kind:     kind,
			WindowID: ev.Container.ID,
			Title:    ev.Container.Name,
			AppID:    ev.Container.AppID,
			Class:    ev.Container.Class(),
		}, true
	case eventWorkspace:
		var ev workspaceEventPayload
		if err := json.Unmarshal(payload, &ev); err != nil {
			return Event{}, false
		}
		if ev.Change != "focus" || ev.Current == nil {
			return Event{}, false
		}
		return Event{
			Kind:      WorkspaceFocused,
			Workspace: ev.Current.Name,
		}, true
	}
	return Event{}, false
}

func windowChangeKind(change string) (EventKind, bool) {
	switch change {
	case "new":
		return WindowOpened, true
	case "close":
		return WindowClosed, true
	case "focus":
		return WindowFocused, true
	case "move":
		return WindowMoved, true
	case "title":
		return WindowTitle, true
	}
	return 0, false
}
