package tui

import "github.com/charmbracelet/bubbles/key"

// Keys are the inspector's key bindings.
type Keys struct {
	Up, Down      key.Binding
	Expand        key.Binding
	Collapse      key.Binding
	Toggle        key.Binding
	PointerLeft   key.Binding
	PointerRight  key.Binding
	PointerUp     key.Binding
	PointerDown   key.Binding
	PointerToNode key.Binding
	ClickLeft     key.Binding
	ClickRight    key.Binding
	ClickMiddle   key.Binding
	Export        key.Binding
	Patch         key.Binding
	Apps          key.Binding
	Pause         key.Binding
	Refresh       key.Binding
	Quit          key.Binding
}

// DefaultKeys returns the stock bindings.
func DefaultKeys() Keys {
	return Keys{
		Up:            key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:          key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Expand:        key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "expand")),
		Collapse:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "collapse")),
		Toggle:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "toggle")),
		PointerLeft:   key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "pointer left")),
		PointerRight:  key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "pointer right")),
		PointerUp:     key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "pointer up")),
		PointerDown:   key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "pointer down")),
		PointerToNode: key.NewBinding(key.WithKeys("."), key.WithHelp(".", "pointer to node")),
		ClickLeft:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "click")),
		ClickRight:    key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "right click")),
		ClickMiddle:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "middle click")),
		Export:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy subtree")),
		Patch:         key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "re-gather subtree")),
		Apps:          key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "apps")),
		Pause:         key.NewBinding(key.WithKeys("p", " "), key.WithHelp("p", "pause")),
		Refresh:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k Keys) help() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Expand, k.Collapse, k.PointerToNode, k.ClickLeft, k.Export, k.Apps, k.Pause, k.Refresh, k.Quit}
}
