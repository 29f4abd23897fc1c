package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bryanchriswhite/swaytab/internal/logger"
)

// pidfilePath returns the per-user pidfile location
func pidfilePath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "swaytab.pid")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "swaytab.pid")
	}
	return filepath.Join(home, ".cache", "swaytab.pid")
}

// acquirePidfile guards against a second daemon instance. A pidfile
// whose process is gone is treated as stale and replaced.
func acquirePidfile() (func(), error) {
	path := pidfilePath()

	if data, err := os.ReadFile(path); err == nil {
		pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
		if err == nil && processAlive(pid) {
			return nil, fmt.Errorf("daemon already running with pid %d (pidfile %s)", pid, path)
		}
		logger.WithComponent("daemon").Info().
			Str("path", path).
			Msg("Removing stale pidfile")
		os.Remove(path)
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write pidfile: %w", err)
	}

	release := func() {
		os.Remove(path)
	}
	return release, nil
}

// processAlive reports whether a pid names a live process
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	_, err := os.Stat(filepath.Join("/proc", strconv.Itoa(pid)))
	return err == nil
}
