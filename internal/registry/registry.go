// Package registry maintains the authoritative window list and its
// most-recently-used order, fed by compositor events and corrected by
// periodic full-tree reconciliation.
package registry

import (
	"fmt"
	"sync"

	"github.com/bryanchriswhite/swaytab/internal/compositor"
	"github.com/bryanchriswhite/swaytab/internal/config"
	"github.com/bryanchriswhite/swaytab/internal/logger"
)

// Window identifies one application window
type Window struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	AppID     string `json:"app_id,omitempty"`
	Class     string `json:"class,omitempty"`
	Workspace string `json:"workspace"`
}

// AppIdentifier returns the best display identifier for the owning
// application: the Wayland app_id, or WM_CLASS for XWayland windows.
func (w Window) AppIdentifier() string {
	if w.AppID != "" {
		return w.AppID
	}
	return w.Class
}

// Registry owns the window table and MRU order. The windows slice is
// kept most-recently-focused first; each live window appears exactly
// once. Only the event consumer mutates it; command handlers read
// snapshots under a short-held lock.
type Registry struct {
	client compositor.Client

	mu               sync.Mutex
	windows          []Window
	currentWorkspace string
	degraded         bool
}

// New creates a Registry and performs the initial reconciliation.
// Failing to reach the compositor here is an initialization error.
func New(client compositor.Client) (*Registry, error) {
	r := &Registry{client: client}
	if err := r.Reconcile(); err != nil {
		return nil, fmt.Errorf("failed to query compositor tree: %w", err)
	}
	return r, nil
}

// Snapshot returns the MRU-ordered window list, filtered to the active
// workspace when mode is current. Pure read; the returned slice is a copy.
func (r *Registry) Snapshot(mode config.Mode) []Window {
	r.mu.Lock()
	defer r.mu.Unlock()

	if mode == config.ModeCurrent && r.currentWorkspace != "" {
		filtered := make([]Window, 0, len(r.windows))
		for _, w := range r.windows {
			if w.Workspace == r.currentWorkspace {
				filtered = append(filtered, w)
			}
		}
		return filtered
	}

	out := make([]Window, len(r.windows))
	copy(out, r.windows)
	return out
}

// Contains reports whether a window id is currently live
func (r *Registry) Contains(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indexOf(id) >= 0
}

// Degraded reports whether the compositor event link is down and the
// registry is serving last-known data
func (r *Registry) Degraded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.degraded
}

func (r *Registry) setDegraded(degraded bool) {
	r.mu.Lock()
	r.degraded = degraded
	r.mu.Unlock()
}

// indexOf returns the MRU position of id, or -1 (caller must hold lock)
func (r *Registry) indexOf(id int64) int {
	for i := range r.windows {
		if r.windows[i].ID == id {
			return i
		}
	}
	return -1
}

// HandleEvent applies one compositor event to the window table
func (r *Registry) HandleEvent(ev compositor.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ev.Kind {
	case compositor.WindowOpened:
		// New windows join the back of the MRU order; they are not
		// "recently used" until focused.
		if r.indexOf(ev.WindowID) >= 0 {
			return
		}
		r.windows = append(r.windows, r.windowFromEvent(ev))

	case compositor.WindowClosed:
		if pos := r.indexOf(ev.WindowID); pos >= 0 {
			r.windows = append(r.windows[:pos], r.windows[pos+1:]...)
		}

	case compositor.WindowFocused:
		pos := r.indexOf(ev.WindowID)
		if pos < 0 {
			// Missed the opened event; synthesize an entry
			r.windows = append([]Window{r.windowFromEvent(ev)}, r.windows...)
			return
		}
		w := r.windows[pos]
		r.windows = append(r.windows[:pos], r.windows[pos+1:]...)
		r.windows = append([]Window{w}, r.windows...)

	case compositor.WindowMoved:
		if pos := r.indexOf(ev.WindowID); pos >= 0 && ev.Workspace != "" {
			r.windows[pos].Workspace = ev.Workspace
		}

	case compositor.WindowTitle:
		if pos := r.indexOf(ev.WindowID); pos >= 0 {
			r.windows[pos].Title = ev.Title
		}

	case compositor.WorkspaceFocused:
		r.currentWorkspace = ev.Workspace
	}
}

func (r *Registry) windowFromEvent(ev compositor.Event) Window {
	return Window{
		ID:        ev.WindowID,
		Title:     ev.Title,
		AppID:     ev.AppID,
		Class:     ev.Class,
		Workspace: r.currentWorkspace,
	}
}

// PromoteFocus moves a window to the front of the MRU order without
// waiting for the compositor's focus event to arrive
func (r *Registry) PromoteFocus(id int64) {
	r.HandleEvent(compositor.Event{Kind: compositor.WindowFocused, WindowID: id})
}

// Reconcile re-queries the full tree and merges it with local state,
// correcting drift from missed or out-of-order events
func (r *Registry) Reconcile() error {
	tree, err := r.client.Tree()
	if err != nil {
		return err
	}

	var current string
	if workspaces, err := r.client.Workspaces(); err == nil {
		for _, ws := range workspaces {
			if ws.Focused {
				current = ws.Name
				break
			}
		}
	}

	fresh := collectWindows(tree, "")
	focused := findFocusedWindow(tree)

	r.mu.Lock()
	r.windows = mergeMRU(r.windows, fresh, focused)
	if current != "" {
		r.currentWorkspace = current
	}
	count := len(r.windows)
	r.mu.Unlock()

	logger.WithComponent("registry").Debug().
		Int("windows", count).
		Int64("focused", focused).
		Msg("Reconciled window list")
	return nil
}

// mergeMRU merges a fresh window list into the existing MRU order:
// the focused window first, surviving windows in their old order with
// fresh fields, newly discovered windows at the end.
func mergeMRU(old, fresh []Window, focusedID int64) []Window {
	freshByID := make(map[int64]Window, len(fresh))
	for _, w := range fresh {
		freshByID[w.ID] = w
	}

	result := make([]Window, 0, len(fresh))
	added := make(map[int64]bool, len(fresh))

	if w, ok := freshByID[focusedID]; ok && focusedID != 0 {
		result = append(result, w)
		added[focusedID] = true
	}

	for _, oldWin := range old {
		if added[oldWin.ID] {
			continue
		}
		if w, ok := freshByID[oldWin.ID]; ok {
			result = append(result, w)
			added[oldWin.ID] = true
		}
	}

	// Preserve tree order for windows seen for the first time
	for _, w := range fresh {
		if !added[w.ID] {
			result = append(result, w)
			added[w.ID] = true
		}
	}

	return result
}

// collectWindows flattens the layout tree into a window list, tracking
// the containing workspace name during descent
func collectWindows(node *compositor.Node, workspace string) []Window {
	if node == nil {
		return nil
	}
	if node.Type == "workspace" && node.Name != "" {
		workspace = node.Name
	}

	var windows []Window
	if node.IsWindow() {
		windows = append(windows, Window{
			ID:        node.ID,
			Title:     node.Name,
			AppID:     node.AppID,
			Class:     node.Class(),
			Workspace: workspace,
		})
	}
	for _, child := range node.Nodes {
		windows = append(windows, collectWindows(child, workspace)...)
	}
	for _, child := range node.FloatingNodes {
		windows = append(windows, collectWindows(child, workspace)...)
	}
	return windows
}

// findFocusedWindow returns the id of the focused window in the tree,
// or 0 when no window holds focus
func findFocusedWindow(node *compositor.Node) int64 {
	if node == nil {
		return 0
	}
	if node.IsWindow() && node.Focused {
		return node.ID
	}
	for _, child := range node.Nodes {
		if id := findFocusedWindow(child); id != 0 {
			return id
		}
	}
	for _, child := range node.FloatingNodes {
		if id := findFocusedWindow(child); id != 0 {
			return id
		}
	}
	return 0
}
