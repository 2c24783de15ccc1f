package model

// Walk visits n and every recorded descendant depth-first, parents before
// children. Returning false from fn stops the walk.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Walk(fn) {
			return false
		}
	}
	return true
}

// Descendants returns pointers to every recorded descendant of n, depth-first,
// excluding n itself.
func (n *Node) Descendants() []*Node {
	var out []*Node
	for i := range n.Children {
		n.Children[i].Walk(func(d *Node) bool {
			out = append(out, d)
			return true
		})
	}
	return out
}

// Lookup follows id's path from n by child index. n is taken to be the node
// addressed by Root. It returns nil when the path leaves the recorded tree.
func (n *Node) Lookup(id DrillID) *Node {
	switch id.Kind() {
	case DrillRoot:
		return n
	case DrillUnknown:
		return nil
	}
	cur := n
	for _, idx := range id.path {
		found := cur.childAt(idx)
		if found == nil {
			return nil
		}
		cur = found
	}
	return cur
}

// childAt finds the child recorded at provider index idx. Children that
// failed to gather are omitted from the list, so the slice position and the
// provider index can differ; the DrillID's last segment is authoritative.
func (n *Node) childAt(idx int) *Node {
	if idx < len(n.Children) {
		if last, ok := n.Children[idx].DrillID.Last(); ok && last == idx {
			return &n.Children[idx]
		}
	}
	for i := range n.Children {
		if last, ok := n.Children[i].DrillID.Last(); ok && last == idx {
			return &n.Children[i]
		}
	}
	return nil
}

// FindByRuntimeID returns the first node, depth-first from n inclusive,
// whose RuntimeID equals id.
func (n *Node) FindByRuntimeID(id RuntimeID) *Node {
	var found *Node
	n.Walk(func(d *Node) bool {
		if d.RuntimeID.Equal(id) {
			found = d
			return false
		}
		return true
	})
	return found
}

// DeepestAt returns the recorded descendant of n with the smallest area that
// contains the point, ignoring degenerate bounds. It returns nil when no
// descendant contains the point.
func (n *Node) DeepestAt(x, y int) *Node {
	var best *Node
	for _, d := range n.Descendants() {
		if d.degenerate() || !d.Contains(x, y) {
			continue
		}
		if best == nil || d.Area() < best.Area() {
			best = d
		}
	}
	return best
}

// ExpandedIDs lists the DrillIDs of n and every descendant whose children
// have been gathered.
func (n *Node) ExpandedIDs() []DrillID {
	var ids []DrillID
	n.Walk(func(d *Node) bool {
		if d.Expanded {
			ids = append(ids, d.DrillID)
		}
		return true
	})
	return ids
}

// Splice replaces the children of the node at id with children, rebasing
// their DrillIDs under id. It reports false when id is not in the tree.
func (n *Node) Splice(id DrillID, children []Node) bool {
	target := n.Lookup(id)
	if target == nil {
		return false
	}
	RebaseDrillIDs(children, target.DrillID)
	target.SetChildren(children)
	return true
}

// Replace swaps the node at patch.DrillID for patch. It reports false when
// the address is not in the tree.
func (n *Node) Replace(patch Node) bool {
	target := n.Lookup(patch.DrillID)
	if target == nil {
		return false
	}
	*target = patch
	return true
}
