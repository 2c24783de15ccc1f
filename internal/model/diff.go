package model

import "fmt"

// ChangeType represents the kind of UI change detected.
type ChangeType string

const (
	ChangeAdded   ChangeType = "added"
	ChangeRemoved ChangeType = "removed"
	ChangeChanged ChangeType = "changed"
)

// Change is a single difference between two gathers of the same subtree.
type Change struct {
	Type        ChangeType           `yaml:"type"              json:"type"`
	RuntimeID   RuntimeID            `yaml:"r"                 json:"r"`
	DrillID     DrillID              `yaml:"d"                 json:"d"`
	Name        string               `yaml:"n,omitempty"       json:"n,omitempty"`
	ControlType string               `yaml:"ct,omitempty"      json:"ct,omitempty"`
	Path        string               `yaml:"p,omitempty"       json:"p,omitempty"`
	Fields      map[string][2]string `yaml:"changes,omitempty" json:"changes,omitempty"`
}

// DiffNodes compares two flat node lists and returns the changes. Nodes are
// matched by runtime id, so a node that only moved is reported as changed
// with a "d" field. Nodes without a runtime id are matched by drill id.
func DiffNodes(prev, curr []FlatNode) []Change {
	prevMap := make(map[string]FlatNode, len(prev))
	for _, n := range prev {
		prevMap[identity(n)] = n
	}
	currMap := make(map[string]FlatNode, len(curr))
	for _, n := range curr {
		currMap[identity(n)] = n
	}

	var changes []Change
	for _, n := range curr {
		old, existed := prevMap[identity(n)]
		if !existed {
			changes = append(changes, changeOf(ChangeAdded, n, nil))
			continue
		}
		if diffs := diffFields(old, n); diffs != nil {
			changes = append(changes, changeOf(ChangeChanged, n, diffs))
		}
	}
	for _, n := range prev {
		if _, exists := currMap[identity(n)]; !exists {
			changes = append(changes, changeOf(ChangeRemoved, n, nil))
		}
	}
	return changes
}

func identity(n FlatNode) string {
	if n.RuntimeID.IsZero() {
		return "drill:" + n.DrillID.Key()
	}
	return n.RuntimeID.Key()
}

func changeOf(t ChangeType, n FlatNode, fields map[string][2]string) Change {
	return Change{
		Type:        t,
		RuntimeID:   n.RuntimeID,
		DrillID:     n.DrillID,
		Name:        n.Name,
		ControlType: n.ControlType,
		Path:        n.Path,
		Fields:      fields,
	}
}

func diffFields(prev, curr FlatNode) map[string][2]string {
	diffs := make(map[string][2]string)

	if prev.Name != curr.Name {
		diffs["n"] = [2]string{prev.Name, curr.Name}
	}
	if prev.ControlType != curr.ControlType {
		diffs["ct"] = [2]string{prev.ControlType, curr.ControlType}
	}
	if prev.ClassName != curr.ClassName {
		diffs["c"] = [2]string{prev.ClassName, curr.ClassName}
	}
	if prev.Bounds != curr.Bounds {
		diffs["b"] = [2]string{
			fmt.Sprintf("%v", prev.Bounds),
			fmt.Sprintf("%v", curr.Bounds),
		}
	}
	if !prev.DrillID.Equal(curr.DrillID) {
		diffs["d"] = [2]string{prev.DrillID.String(), curr.DrillID.String()}
	}

	if len(diffs) == 0 {
		return nil
	}
	return diffs
}

// CountChanges tallies changes by type.
func CountChanges(changes []Change) (added, removed, changed int) {
	for _, c := range changes {
		switch c.Type {
		case ChangeAdded:
			added++
		case ChangeRemoved:
			removed++
		case ChangeChanged:
			changed++
		}
	}
	return added, removed, changed
}
