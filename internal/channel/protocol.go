// Package channel implements the daemon's command channel: a unix
// socket accepting one textual command per connection and replying
// with a single JSON line before closing.
package channel

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bryanchriswhite/swaytab/internal/config"
	"github.com/bryanchriswhite/swaytab/internal/registry"
)

// Command names accepted on the wire
const (
	CmdShow     = "SHOW"
	CmdNext     = "NEXT"
	CmdPrev     = "PREV"
	CmdSelect   = "SELECT"
	CmdCancel   = "CANCEL"
	CmdStatus   = "STATUS"
	CmdShutdown = "SHUTDOWN"
)

// ErrorKind names a failure in an error reply
type ErrorKind string

const (
	// KindNoWindows: the filtered candidate set was empty at session start
	KindNoWindows ErrorKind = "NoWindows"
	// KindInvalidState: the command is illegal for the current session state
	KindInvalidState ErrorKind = "InvalidState"
	// KindMalformed: the request line could not be parsed
	KindMalformed ErrorKind = "MalformedRequest"
)

// Command is one parsed request
type Command struct {
	Name string
	// Mode is set for SHOW; empty means the daemon's configured default
	Mode config.Mode
}

// ParseCommand parses one request line
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}

	name := strings.ToUpper(fields[0])
	switch name {
	case CmdShow:
		cmd := Command{Name: name}
		if len(fields) > 2 {
			return Command{}, fmt.Errorf("SHOW takes at most one argument")
		}
		if len(fields) == 2 {
			mode, err := config.ParseMode(strings.ToLower(fields[1]))
			if err != nil {
				return Command{}, err
			}
			cmd.Mode = mode
		}
		return cmd, nil
	case CmdNext, CmdPrev, CmdSelect, CmdCancel, CmdStatus, CmdShutdown:
		if len(fields) != 1 {
			return Command{}, fmt.Errorf("%s takes no arguments", name)
		}
		return Command{Name: name}, nil
	}
	return Command{}, fmt.Errorf("unknown command: %s", fields[0])
}

// Reply is the single JSON line sent back for every request
type Reply struct {
	Status    string            `json:"status"`
	Kind      ErrorKind         `json:"kind,omitempty"`
	Message   string            `json:"message,omitempty"`
	Switching bool              `json:"switching,omitempty"`
	Degraded  bool              `json:"degraded,omitempty"`
	Windows   []registry.Window `json:"windows,omitempty"`
	Index     int               `json:"index"`
}

// OK reports whether the reply is a success payload
func (r Reply) OK() bool {
	return r.Status == "ok"
}

func ackReply() Reply {
	return Reply{Status: "ok"}
}

func errorReply(kind ErrorKind, message string) Reply {
	return Reply{Status: "error", Kind: kind, Message: message}
}

// SocketPath returns the per-user rendezvous point for the channel
func SocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "swaytab.sock")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "swaytab.sock")
	}
	return filepath.Join(home, ".cache", "swaytab.sock")
}
