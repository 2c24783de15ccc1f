package model

// FlatNode is a node with a path breadcrumb instead of children.
type FlatNode struct {
	Name        string    `yaml:"n,omitempty"  json:"n,omitempty"`
	ControlType string    `yaml:"ct"           json:"ct"`
	ClassName   string    `yaml:"c,omitempty"  json:"c,omitempty"`
	Bounds      [4]int    `yaml:"b,flow"       json:"b"`
	DrillID     DrillID   `yaml:"d"            json:"d"`
	RuntimeID   RuntimeID `yaml:"r"            json:"r"`
	Expanded    bool      `yaml:"x,omitempty"  json:"x,omitempty"`
	Path        string    `yaml:"p,omitempty"  json:"p,omitempty"`
}

// FlattenNodes converts a tree of nodes into a flat list in depth-first
// order. Each entry gets a path string made of the control types above it
// joined with " > ".
func FlattenNodes(nodes []Node) []FlatNode {
	var result []FlatNode
	for _, n := range nodes {
		flattenRecursive(n, "", &result)
	}
	return result
}

func flattenRecursive(n Node, parentPath string, result *[]FlatNode) {
	currentPath := n.ControlType
	if parentPath != "" {
		currentPath = parentPath + " > " + n.ControlType
	}

	*result = append(*result, FlatNode{
		Name:        n.Name,
		ControlType: n.ControlType,
		ClassName:   n.ClassName,
		Bounds:      n.Bounds,
		DrillID:     n.DrillID,
		RuntimeID:   n.RuntimeID,
		Expanded:    n.Expanded,
		Path:        currentPath,
	})

	for _, child := range n.Children {
		flattenRecursive(child, currentPath, result)
	}
}
