package channel

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/bryanchriswhite/swaytab/internal/config"
	"github.com/bryanchriswhite/swaytab/internal/logger"
	"github.com/bryanchriswhite/swaytab/internal/registry"
	"github.com/bryanchriswhite/swaytab/internal/switcher"
)

const defaultReadTimeout = 5 * time.Second

// Server accepts command connections and dispatches them to the state
// machine. The state machine's own lock serializes mutations, so the
// server can run one goroutine per connection.
type Server struct {
	switcher    *switcher.Switcher
	reg         *registry.Registry
	defaultMode config.Mode
	// requestShutdown is invoked after a SHUTDOWN reply is flushed
	requestShutdown func()
	readTimeout     time.Duration

	mu   sync.Mutex
	ln   net.Listener
	path string
	wg   sync.WaitGroup
}

// NewServer creates a command channel server
func NewServer(sw *switcher.Switcher, reg *registry.Registry, defaultMode config.Mode, requestShutdown func()) *Server {
	return &Server{
		switcher:        sw,
		reg:             reg,
		defaultMode:     defaultMode,
		requestShutdown: requestShutdown,
		readTimeout:     defaultReadTimeout,
	}
}

// Listen binds the rendezvous socket, replacing a stale socket file
func (s *Server) Listen(path string) error {
	if _, err := os.Stat(path); err == nil {
		logger.WithComponent("channel").Info().
			Str("path", path).
			Msg("Removing stale socket")
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return fmt.Errorf("failed to bind socket at %s: %w", path, err)
	}

	s.mu.Lock()
	s.ln = ln
	s.path = path
	s.mu.Unlock()

	logger.WithComponent("channel").Info().
		Str("path", path).
		Msg("Command channel listening")
	return nil
}

// Serve accepts connections until ctx is cancelled. Listen must have
// been called first.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return errors.New("server is not listening")
	}

	// Unblock Accept on cancellation
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.wg.Wait()
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// Close releases the listener and removes the socket file
func (s *Server) Close() {
	s.mu.Lock()
	ln, path := s.ln, s.path
	s.ln = nil
	s.mu.Unlock()

	if ln != nil {
		ln.Close()
	}
	if path != "" {
		if err := os.Remove(path); err == nil {
			logger.WithComponent("channel").Info().
				Str("path", path).
				Msg("Removed socket file")
		}
	}
}

// handleConn serves one request/reply exchange and closes the connection.
// A client that stalls past the read deadline is dropped without touching
// session state: its command is treated as never received.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	log := logger.WithComponent("channel")

	conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && line == "" {
		log.Debug().Err(err).Msg("Dropping client connection")
		return
	}

	reply, shutdown := s.dispatch(line)

	conn.SetWriteDeadline(time.Now().Add(s.readTimeout))
	payload, err := json.Marshal(reply)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode reply")
		return
	}
	if _, err := conn.Write(append(payload, '\n')); err != nil {
		log.Debug().Err(err).Msg("Failed to write reply")
		return
	}

	if shutdown && s.requestShutdown != nil {
		log.Info().Msg("Shutdown requested via command channel")
		s.requestShutdown()
	}
}

// dispatch runs one command through the state machine. The second
// return value reports whether the daemon should shut down after the
// reply is flushed.
func (s *Server) dispatch(line string) (Reply, bool) {
	cmd, err := ParseCommand(line)
	if err != nil {
		logger.WithComponent("channel").Warn().
			Str("line", line).
			Msg("Malformed request")
		return errorReply(KindMalformed, err.Error()), false
	}

	logger.WithComponent("channel").Debug().
		Str("command", cmd.Name).
		Msg("Dispatching command")

	switch cmd.Name {
	case CmdShow:
		mode := cmd.Mode
		if mode == "" {
			mode = s.defaultMode
		}
		view, err := s.switcher.Begin(mode)
		if err != nil {
			return s.errToReply(err), false
		}
		return s.viewReply(view), false

	case CmdNext:
		view, err := s.switcher.Next()
		if err != nil {
			return s.errToReply(err), false
		}
		return s.viewReply(view), false

	case CmdPrev:
		view, err := s.switcher.Prev()
		if err != nil {
			return s.errToReply(err), false
		}
		return s.viewReply(view), false

	case CmdSelect:
		if err := s.switcher.Select(); err != nil {
			return s.errToReply(err), false
		}
		return ackReply(), false

	case CmdCancel:
		if err := s.switcher.Cancel(); err != nil {
			return s.errToReply(err), false
		}
		return ackReply(), false

	case CmdStatus:
		status := s.switcher.Status()
		reply := ackReply()
		reply.Switching = status.Active
		reply.Degraded = s.reg.Degraded()
		if status.View != nil {
			reply.Windows = status.View.Windows
			reply.Index = status.View.Index
		}
		return reply, false

	case CmdShutdown:
		return ackReply(), true
	}

	return errorReply(KindMalformed, "unknown command"), false
}

func (s *Server) viewReply(view switcher.View) Reply {
	reply := ackReply()
	reply.Switching = true
	reply.Windows = view.Windows
	reply.Index = view.Index
	return reply
}

func (s *Server) errToReply(err error) Reply {
	switch {
	case errors.Is(err, switcher.ErrNoWindows):
		return errorReply(KindNoWindows, err.Error())
	case errors.Is(err, switcher.ErrInvalidState):
		return errorReply(KindInvalidState, err.Error())
	}
	return errorReply(KindInvalidState, err.Error())
}
