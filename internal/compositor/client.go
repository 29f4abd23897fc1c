// Package compositor speaks the native sway/i3 IPC protocol: tree and
// workspace queries, focus commands, and the window/workspace event
// subscription the daemon's registry consumes.
package compositor

import (
	"fmt"
	"os"
)

// Client is the query/command surface of the compositor connection.
type Client interface {
	// Tree returns the full window/workspace tree
	Tree() (*Node, error)

	// Workspaces returns the list of workspaces
	Workspaces() ([]Workspace, error)

	// FocusWindow asks the compositor to focus a window by container ID
	FocusWindow(id int64) error

	// Close closes the connection to the compositor
	Close() error
}

// EventSource is a subscription to asynchronous compositor events.
// Subscribe must be called once before NextEvent.
type EventSource interface {
	Subscribe(events ...string) error
	NextEvent() (Event, error)
	Close() error
}

// SocketPath resolves the compositor's IPC socket from the environment
func SocketPath() (string, error) {
	if path := os.Getenv("SWAYSOCK"); path != "" {
		return path, nil
	}
	if path := os.Getenv("I3SOCK"); path != "" {
		return path, nil
	}
	return "", fmt.Errorf("neither SWAYSOCK nor I3SOCK is set; is sway running?")
}
