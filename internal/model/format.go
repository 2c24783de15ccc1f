package model

import (
	"fmt"
	"strings"
)

// FormatTree renders n and its recorded descendants as indented text, one
// node per line, two spaces per level. Unexpanded nodes are marked with a
// trailing "…".
func FormatTree(n Node) string {
	var b strings.Builder
	formatRecursive(&b, n, 0)
	return b.String()
}

func formatRecursive(b *strings.Builder, n Node, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(FormatLabel(n))
	if !n.Expanded {
		b.WriteString(" …")
	}
	b.WriteByte('\n')
	for _, child := range n.Children {
		formatRecursive(b, child, depth+1)
	}
}

// FormatLabel is the one-line description of a node used in text output.
func FormatLabel(n Node) string {
	return fmt.Sprintf("name=%q control_type=%s class_name=%q drill=%s runtime_id=%s rect=%v",
		n.Name, n.ControlType, n.ClassName, n.DrillID, n.RuntimeID, n.Bounds)
}
