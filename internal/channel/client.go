package channel

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

const clientTimeout = 5 * time.Second

// Send opens one connection, sends one command line, and returns the
// daemon's reply. The connection is closed after the reply is read.
func Send(path, command string) (Reply, error) {
	conn, err := net.DialTimeout("unix", path, clientTimeout)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to connect to daemon at %s (is the daemon running?): %w", path, err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(clientTimeout))

	if _, err := fmt.Fprintf(conn, "%s\n", command); err != nil {
		return Reply{}, fmt.Errorf("failed to send command: %w", err)
	}

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && line == "" {
		return Reply{}, fmt.Errorf("failed to read daemon reply: %w", err)
	}

	var reply Reply
	if err := json.Unmarshal([]byte(line), &reply); err != nil {
		return Reply{}, fmt.Errorf("failed to parse daemon reply: %w", err)
	}
	return reply, nil
}
