package compositor

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"sync"
)

// i3 IPC framing: 6-byte magic, little-endian u32 payload length and
// message type, JSON payload. Event replies have the high type bit set.
const magic = "i3-ipc"

const (
	msgRunCommand    uint32 = 0
	msgGetWorkspaces uint32 = 1
	msgSubscribe     uint32 = 2
	msgGetTree       uint32 = 4
)

const eventFlag uint32 = 1 << 31

const (
	eventWorkspace uint32 = 0
	eventWindow    uint32 = 3
)

// Conn is a single connection to the compositor's IPC socket.
// Queries and the event stream use separate connections: once a
// connection subscribes, the compositor interleaves events with replies.
type Conn struct {
	mu         sync.Mutex
	c          net.Conn
	subscribed bool
}

// Dial connects to the compositor socket resolved from the environment
func Dial() (*Conn, error) {
	path, err := SocketPath()
	if err != nil {
		return nil, err
	}
	return DialPath(path)
}

// DialPath connects to a specific compositor socket
func DialPath(path string) (*Conn, error) {
	c, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to compositor at %s: %w", path, err)
	}
	return &Conn{c: c}, nil
}

// Close closes the connection
func (c *Conn) Close() error {
	return c.c.Close()
}

func writeMessage(w io.Writer, msgType uint32, payload []byte) error {
	buf := make([]byte, len(magic)+8+len(payload))
	copy(buf, magic)
	binary.LittleEndian.PutUint32(buf[6:], uint32(len(payload)))
	binary.LittleEndian.PutUint32(buf[10:], msgType)
	copy(buf[14:], payload)
	_, err := w.Write(buf)
	return err
}

func readMessage(r io.Reader) (uint32, []byte, error) {
	header := make([]byte, len(magic)+8)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, nil, err
	}
	if string(header[:6]) != magic {
		return 0, nil, fmt.Errorf("bad IPC magic %q", header[:6])
	}
	length := binary.LittleEndian.Uint32(header[6:])
	msgType := binary.LittleEndian.Uint32(header[10:])
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, err
	}
	return msgType, payload, nil
}

// roundTrip sends one request and returns the matching reply payload,
// skipping any interleaved events.
func (c *Conn) roundTrip(msgType uint32, payload []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := writeMessage(c.c, msgType, payload); err != nil {
		return nil, fmt.Errorf("failed to send IPC message: %w", err)
	}
	for {
		replyType, reply, err := readMessage(c.c)
		if err != nil {
			return nil, fmt.Errorf("failed to read IPC reply: %w", err)
		}
		if replyType&eventFlag != 0 {
			continue
		}
		if replyType != msgType {
			return nil, fmt.Errorf("IPC reply type mismatch: sent %d, got %d", msgType, replyType)
		}
		return reply, nil
	}
}

// Tree returns the full window/workspace tree
func (c *Conn) Tree() (*Node, error) {
	payload, err := c.roundTrip(msgGetTree, nil)
	if err != nil {
		return nil, err
	}
	var root Node
	if err := json.Unmarshal(payload, &root); err != nil {
		return nil, fmt.Errorf("failed to decode tree: %w", err)
	}
	return &root, nil
}

// Workspaces returns the list of workspaces
func (c *Conn) Workspaces() ([]Workspace, error) {
	payload, err := c.roundTrip(msgGetWorkspaces, nil)
	if err != nil {
		return nil, err
	}
	var workspaces []Workspace
	if err := json.Unmarshal(payload, &workspaces); err != nil {
		return nil, fmt.Errorf("failed to decode workspaces: %w", err)
	}
	return workspaces, nil
}

type commandResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// FocusWindow asks the compositor to focus a window by container ID
func (c *Conn) FocusWindow(id int64) error {
	cmd := fmt.Sprintf("[con_id=%d] focus", id)
	payload, err := c.roundTrip(msgRunCommand, []byte(cmd))
	if err != nil {
		return err
	}
	var results []commandResult
	if err := json.Unmarshal(payload, &results); err != nil {
		return fmt.Errorf("failed to decode command result: %w", err)
	}
	for _, res := range results {
		if !res.Success {
			return fmt.Errorf("focus command failed: %s", res.Error)
		}
	}
	return nil
}

// Subscribe registers this connection for the named event types
func (c *Conn) Subscribe(events ...string) error {
	payload, err := json.Marshal(events)
	if err != nil {
		return err
	}
	reply, err := c.roundTrip(msgSubscribe, payload)
	if err != nil {
		return err
	}
	var res commandResult
	if err := json.Unmarshal(reply, &res); err != nil {
		return fmt.Errorf("failed to decode subscribe result: %w", err)
	}
	if !res.Success {
		return fmt.Errorf("subscribe rejected: %s", res.Error)
	}
	c.mu.Lock()
	c.subscribed = true
	c.mu.Unlock()
	return nil
}

// NextEvent blocks until the next subscribed event arrives
func (c *Conn) NextEvent() (Event, error) {
	for {
		msgType, payload, err := readMessage(c.c)
		if err != nil {
			return Event{}, err
		}
		if msgType&eventFlag == 0 {
			continue
		}
		ev, ok := decodeEvent(msgType&^eventFlag, payload)
		if !ok {
			continue
		}
		return ev, nil
	}
}
