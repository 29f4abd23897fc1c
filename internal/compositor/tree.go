package compositor

// Node is one container in the compositor's layout tree
type Node struct {
	ID               int64             `json:"id"`
	Name             string            `json:"name"`
	Type             string            `json:"type"`
	AppID            string            `json:"app_id"`
	PID              int               `json:"pid"`
	Focused          bool              `json:"focused"`
	WindowProperties *WindowProperties `json:"window_properties"`
	Nodes            []*Node           `json:"nodes"`
	FloatingNodes    []*Node           `json:"floating_nodes"`
}

// WindowProperties carries X11 properties for XWayland windows
type WindowProperties struct {
	Class string `json:"class"`
	Title string `json:"title"`
}

// IsWindow reports whether this node is an application window rather
// than a layout container. Windows have a pid, containers don't.
func (n *Node) IsWindow() bool {
	return (n.Type == "con" || n.Type == "floating_con") && n.PID != 0
}

// Class returns the X11 WM_CLASS for XWayland windows, if any
func (n *Node) Class() string {
	if n.WindowProperties == nil {
		return ""
	}
	return n.WindowProperties.Class
}

// Workspace describes one compositor workspace
type Workspace struct {
	Name    string `json:"name"`
	Focused bool   `json:"focused"`
}
