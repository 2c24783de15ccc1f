package model

// RebaseDrillIDs rewrites the DrillIDs of children and all their
// descendants so that they are addressed under prefix.
//
// Only the final segment of each child's current DrillID is kept: it is the
// child's index within its own parent at gather time. The prefix supplies
// everything above it. Children whose DrillID is Root or Unknown are left
// alone, together with their subtrees. Because the ancestor segments are
// always replaced, running the pass twice with the same prefix gives the
// same result, so a tree that is already root-relative is unchanged when
// rebased against Root.
func RebaseDrillIDs(children []Node, prefix DrillID) {
	for i := range children {
		child := &children[i]
		pos, ok := child.DrillID.Last()
		if !ok {
			continue
		}
		child.DrillID = prefix.Append(pos)
		RebaseDrillIDs(child.Children, child.DrillID)
	}
}
