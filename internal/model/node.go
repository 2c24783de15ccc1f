package model

// Node is one gathered UI node: its display fields, screen bounds, address
// and, once expanded, its children.
//
// Expanded distinguishes "children not gathered yet" (false) from
// "gathered, no children" (true with an empty Children slice).
type Node struct {
	Name                 string    `yaml:"name"                    json:"name"`
	ClassName            string    `yaml:"class,omitempty"         json:"class,omitempty"`
	AutomationID         string    `yaml:"automation_id,omitempty" json:"automation_id,omitempty"`
	ControlType          string    `yaml:"control_type"            json:"control_type"`
	LocalizedControlType string    `yaml:"localized,omitempty"     json:"localized,omitempty"`
	Bounds               [4]int    `yaml:"bounds,flow"             json:"bounds"` // [x, y, width, height]
	DrillID              DrillID   `yaml:"drill"                   json:"drill"`
	RuntimeID            RuntimeID `yaml:"runtime"                 json:"runtime"`
	Expanded             bool      `yaml:"expanded,omitempty"      json:"expanded,omitempty"`
	Children             []Node    `yaml:"children,omitempty"      json:"children,omitempty"`
}

// SetChildren records gathered children, marking the node expanded even
// when there are none.
func (n *Node) SetChildren(children []Node) {
	if children == nil {
		children = []Node{}
	}
	n.Children = children
	n.Expanded = true
}

// ClearChildren forgets the node's children, returning it to the
// not-yet-gathered state.
func (n *Node) ClearChildren() {
	n.Children = nil
	n.Expanded = false
}

// Contains reports whether the screen point lies within the node's bounds.
func (n *Node) Contains(x, y int) bool {
	b := n.Bounds
	return x >= b[0] && x < b[0]+b[2] && y >= b[1] && y < b[1]+b[3]
}

// Area is the bounds area in square pixels.
func (n *Node) Area() int {
	return n.Bounds[2] * n.Bounds[3]
}

// degenerate reports bounds that cannot meaningfully contain a pointer:
// zero or negative size, or the huge placeholder rectangles some providers
// report for off-screen nodes.
func (n *Node) degenerate() bool {
	w, h := n.Bounds[2], n.Bounds[3]
	if w <= 0 || h <= 0 {
		return true
	}
	const limit = 1 << 20
	return w > limit || h > limit
}
