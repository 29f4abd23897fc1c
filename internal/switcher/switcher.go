// Package switcher owns the lifecycle of one Alt-Tab interaction:
// begin freezes an MRU snapshot, next/prev cycle through it, and
// select/cancel close the session.
package switcher

import (
	"errors"
	"sync"

	"github.com/bryanchriswhite/swaytab/internal/config"
	"github.com/bryanchriswhite/swaytab/internal/logger"
	"github.com/bryanchriswhite/swaytab/internal/registry"
)

var (
	// ErrNoWindows is returned when a session would have nothing to cycle
	ErrNoWindows = errors.New("no windows to switch between")
	// ErrInvalidState rejects a command that is illegal for the current
	// session state; the session is left untouched
	ErrInvalidState = errors.New("command not valid in current state")
)

// Focuser issues focus requests back to the compositor
type Focuser interface {
	FocusWindow(id int64) error
}

// Notifier receives presentation-layer updates. All methods must be
// non-blocking; they are called while no lock is held.
type Notifier interface {
	SessionStarted(windows []registry.Window, index int)
	SelectionChanged(index int)
	SessionEnded()
}

// View is the reply payload for commands that render the switcher:
// the frozen window list and the highlighted index.
type View struct {
	Windows []registry.Window
	Index   int
}

// Status reports whether a session is active and, if so, its view
type Status struct {
	Active bool
	View   *View
}

// session is the state of one switching interaction. The snapshot is
// frozen at begin: cycling order stays stable even as windows open,
// close, or steal focus mid-session.
type session struct {
	mode     config.Mode
	snapshot []registry.Window
	cursor   int
}

// Switcher is the Idle/Switching state machine. One mutex spans every
// transition, so concurrent command connections cannot race into
// conflicting sessions; no transition does I/O while holding it.
type Switcher struct {
	reg    *registry.Registry
	focus  Focuser
	notify Notifier

	mu      sync.Mutex
	current *session
}

// New creates a Switcher. notify may be nil.
func New(reg *registry.Registry, focus Focuser, notify Notifier) *Switcher {
	return &Switcher{reg: reg, focus: focus, notify: notify}
}

// Active reports whether a switching session is open
func (s *Switcher) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// Begin opens a session in the given workspace mode. The registry is
// reconciled first so the snapshot reflects live reality; the snapshot
// is then frozen for the session's duration. Fails with ErrNoWindows
// when the filtered list is empty and ErrInvalidState when a session
// is already open.
func (s *Switcher) Begin(mode config.Mode) (View, error) {
	// Reconcile before taking the lock: no I/O under the session lock.
	// Losing a race here just means the loser sees ErrInvalidState below.
	if err := s.reg.Reconcile(); err != nil {
		logger.WithComponent("switcher").Warn().Err(err).Msg("Reconciliation before session failed, using last-known windows")
	}

	s.mu.Lock()
	if s.current != nil {
		s.mu.Unlock()
		return View{}, ErrInvalidState
	}

	snapshot := s.reg.Snapshot(mode)
	if len(snapshot) == 0 {
		s.mu.Unlock()
		return View{}, ErrNoWindows
	}

	// Alt-Tab convention: the first press lands on the previous window
	cursor := 0
	if len(snapshot) > 1 {
		cursor = 1
	}
	s.current = &session{mode: mode, snapshot: snapshot, cursor: cursor}
	view := s.viewLocked()
	s.mu.Unlock()

	logger.WithComponent("switcher").Debug().
		Int("windows", len(view.Windows)).
		Str("mode", string(mode)).
		Msg("Switching session started")
	if s.notify != nil {
		s.notify.SessionStarted(view.Windows, view.Index)
	}
	return view, nil
}

// Next advances the highlight, wrapping at the end
func (s *Switcher) Next() (View, error) {
	return s.cycle(1)
}

// Prev moves the highlight backwards, wrapping at the front
func (s *Switcher) Prev() (View, error) {
	return s.cycle(-1)
}

func (s *Switcher) cycle(step int) (View, error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return View{}, ErrInvalidState
	}
	n := len(s.current.snapshot)
	s.current.cursor = (s.current.cursor + step + n) % n
	view := s.viewLocked()
	s.mu.Unlock()

	if s.notify != nil {
		s.notify.SelectionChanged(view.Index)
	}
	return view, nil
}

// Select closes the session and requests focus for the highlighted
// window. A window that vanished mid-session is simply not focusable:
// the request is skipped and the session still closes cleanly.
func (s *Switcher) Select() error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return ErrInvalidState
	}
	target := s.current.snapshot[s.current.cursor]
	s.current = nil
	s.mu.Unlock()

	if s.notify != nil {
		s.notify.SessionEnded()
	}

	if !s.reg.Contains(target.ID) {
		logger.WithComponent("switcher").Debug().
			Int64("window", target.ID).
			Msg("Selected window closed mid-session, skipping focus request")
		return nil
	}

	if err := s.focus.FocusWindow(target.ID); err != nil {
		logger.WithComponent("switcher").Warn().
			Err(err).
			Int64("window", target.ID).
			Msg("Focus request failed")
		return nil
	}

	// Promote immediately rather than waiting for the focus event
	s.reg.PromoteFocus(target.ID)
	logger.WithComponent("switcher").Debug().
		Int64("window", target.ID).
		Str("title", target.Title).
		Msg("Selected window")
	return nil
}

// Cancel closes the session without a focus request
func (s *Switcher) Cancel() error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return ErrInvalidState
	}
	s.current = nil
	s.mu.Unlock()

	if s.notify != nil {
		s.notify.SessionEnded()
	}
	logger.WithComponent("switcher").Debug().Msg("Switching session cancelled")
	return nil
}

// Status reports the session state; legal in both states
func (s *Switcher) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Status{}
	}
	view := s.viewLocked()
	return Status{Active: true, View: &view}
}

// viewLocked copies the session view (caller must hold lock)
func (s *Switcher) viewLocked() View {
	windows := make([]registry.Window, len(s.current.snapshot))
	copy(windows, s.current.snapshot)
	return View{Windows: windows, Index: s.current.cursor}
}
