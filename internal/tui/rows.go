package tui

import (
	"github.com/mj1618/ui-inspector/internal/inspector"
	"github.com/mj1618/ui-inspector/internal/model"
)

// row is one visible line of the tree view.
type row struct {
	node    *model.Node
	depth   int
	open    bool
	loading bool
}

// visibleRows lists the nodes the user can see: the root and, below every
// open node, its gathered children.
func visibleRows(in *inspector.Inspector) []row {
	if !in.HasTree {
		return nil
	}
	var rows []row
	var walk func(n *model.Node, depth int)
	walk = func(n *model.Node, depth int) {
		open := in.IsOpen(n.DrillID)
		rows = append(rows, row{
			node:    n,
			depth:   depth,
			open:    open,
			loading: in.Fetch.State(n.DrillID, n.RuntimeID) != inspector.FetchNone,
		})
		if !open || !n.Expanded {
			return
		}
		for i := range n.Children {
			walk(&n.Children[i], depth+1)
		}
	}
	walk(&in.Tree, 0)
	return rows
}

// indexOf finds the row addressed by id, or -1.
func indexOf(rows []row, id model.DrillID) int {
	for i, r := range rows {
		if r.node.DrillID.Equal(id) {
			return i
		}
	}
	return -1
}
