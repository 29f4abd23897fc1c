package channel

import (
	"path/filepath"
	"testing"

	"github.com/bryanchriswhite/swaytab/internal/config"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line     string
		wantName string
		wantMode config.Mode
		wantErr  bool
	}{
		{"SHOW\n", CmdShow, "", false},
		{"show", CmdShow, "", false},
		{"  Show  ", CmdShow, "", false},
		{"SHOW current\n", CmdShow, config.ModeCurrent, false},
		{"SHOW all", CmdShow, config.ModeAll, false},
		{"SHOW ALL", CmdShow, config.ModeAll, false},
		{"SHOW bogus", "", "", true},
		{"SHOW all extra", "", "", true},
		{"NEXT\n", CmdNext, "", false},
		{"prev", CmdPrev, "", false},
		{"SELECT", CmdSelect, "", false},
		{"CANCEL", CmdCancel, "", false},
		{"STATUS", CmdStatus, "", false},
		{"SHUTDOWN", CmdShutdown, "", false},
		{"NEXT now", "", "", true},
		{"FLY", "", "", true},
		{"", "", "", true},
		{"   \n", "", "", true},
	}

	for _, tt := range tests {
		cmd, err := ParseCommand(tt.line)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseCommand(%q): expected error", tt.line)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCommand(%q) failed: %v", tt.line, err)
			continue
		}
		if cmd.Name != tt.wantName {
			t.Errorf("ParseCommand(%q).Name = %q, want %q", tt.line, cmd.Name, tt.wantName)
		}
		if cmd.Mode != tt.wantMode {
			t.Errorf("ParseCommand(%q).Mode = %q, want %q", tt.line, cmd.Mode, tt.wantMode)
		}
	}
}

func TestReplyOK(t *testing.T) {
	if !ackReply().OK() {
		t.Error("ackReply().OK() = false")
	}
	if errorReply(KindNoWindows, "empty").OK() {
		t.Error("errorReply().OK() = true")
	}
}

func TestSocketPathRuntimeDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	if got, want := SocketPath(), filepath.Join("/run/user/1000", "swaytab.sock"); got != want {
		t.Errorf("SocketPath() = %q, want %q", got, want)
	}
}
