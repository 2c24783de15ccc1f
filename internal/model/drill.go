package model

import (
	"fmt"
	"strconv"
	"strings"
)

// DrillKind discriminates the forms a DrillID can take.
type DrillKind int

const (
	// DrillUnknown is an address that has not been assigned yet.
	DrillUnknown DrillKind = iota
	// DrillRoot is the starting point of a gather.
	DrillRoot
	// DrillChild is a path of child indices from the root.
	DrillChild
)

// DrillID addresses a node by the child indices leading to it from the root
// of one particular gathered tree. Comparing DrillIDs taken from two
// unrelated gathers is meaningless.
//
// The zero value is Unknown.
type DrillID struct {
	kind DrillKind
	path []int
}

// RelativeToMismatch is called when RelativeTo is given an ancestor whose
// path is not a prefix of the receiver. It defaults to a no-op; the command
// layer points it at the debug logger.
var RelativeToMismatch = func(id, ancestor DrillID) {}

// Root returns the DrillID of a gather root.
func Root() DrillID {
	return DrillID{kind: DrillRoot}
}

// Unknown returns an unassigned DrillID.
func Unknown() DrillID {
	return DrillID{}
}

// Child returns a child path DrillID. The path is copied.
func Child(path ...int) DrillID {
	p := make([]int, len(path))
	copy(p, path)
	return DrillID{kind: DrillChild, path: p}
}

// Kind reports which form the DrillID takes.
func (d DrillID) Kind() DrillKind { return d.kind }

// IsRoot reports whether d addresses the gather root.
func (d DrillID) IsRoot() bool { return d.kind == DrillRoot }

// IsUnknown reports whether d has not been assigned.
func (d DrillID) IsUnknown() bool { return d.kind == DrillUnknown }

// AsChild returns a copy of the path, or false for Root and Unknown.
func (d DrillID) AsChild() ([]int, bool) {
	if d.kind != DrillChild {
		return nil, false
	}
	p := make([]int, len(d.path))
	copy(p, d.path)
	return p, true
}

// Depth is the number of path segments (0 for Root and Unknown).
func (d DrillID) Depth() int {
	if d.kind != DrillChild {
		return 0
	}
	return len(d.path)
}

// Last returns the final path segment, the index of the node within its
// parent's child list.
func (d DrillID) Last() (int, bool) {
	if d.kind != DrillChild || len(d.path) == 0 {
		return 0, false
	}
	return d.path[len(d.path)-1], true
}

// Append returns d extended by the given child indices. Root and Unknown
// are treated as the empty path.
func (d DrillID) Append(indices ...int) DrillID {
	var base []int
	if d.kind == DrillChild {
		base = d.path
	}
	p := make([]int, 0, len(base)+len(indices))
	p = append(p, base...)
	p = append(p, indices...)
	return DrillID{kind: DrillChild, path: p}
}

// Concat prepends d to suffix. It is used when a subtree addressed relative
// to its own root is spliced under d.
func (d DrillID) Concat(suffix DrillID) DrillID {
	if suffix.kind != DrillChild {
		return d
	}
	return d.Append(suffix.path...)
}

// RelativeTo strips the ancestor's path from d. When ancestor is not a
// prefix of d, d is returned unchanged and RelativeToMismatch is invoked.
func (d DrillID) RelativeTo(ancestor DrillID) DrillID {
	if ancestor.kind != DrillChild {
		return d
	}
	if d.kind != DrillChild || len(ancestor.path) > len(d.path) {
		RelativeToMismatch(d, ancestor)
		return d
	}
	for i, seg := range ancestor.path {
		if d.path[i] != seg {
			RelativeToMismatch(d, ancestor)
			return d
		}
	}
	if len(ancestor.path) == len(d.path) {
		return Root()
	}
	return Child(d.path[len(ancestor.path):]...)
}

// HasPrefix reports whether ancestor's path is a prefix of d's path.
// Root is a prefix of every Child and of itself.
func (d DrillID) HasPrefix(ancestor DrillID) bool {
	switch ancestor.kind {
	case DrillRoot:
		return d.kind != DrillUnknown
	case DrillUnknown:
		return false
	}
	if d.kind != DrillChild || len(ancestor.path) > len(d.path) {
		return false
	}
	for i, seg := range ancestor.path {
		if d.path[i] != seg {
			return false
		}
	}
	return true
}

// Equal reports whether two DrillIDs are the same address.
func (d DrillID) Equal(other DrillID) bool {
	if d.kind != other.kind || len(d.path) != len(other.path) {
		return false
	}
	for i := range d.path {
		if d.path[i] != other.path[i] {
			return false
		}
	}
	return true
}

// Key returns a string usable as a map key. It is the same as String.
func (d DrillID) Key() string { return d.String() }

// String renders "root", "unknown" or the comma-separated path.
func (d DrillID) String() string {
	switch d.kind {
	case DrillRoot:
		return "root"
	case DrillChild:
		parts := make([]string, len(d.path))
		for i, seg := range d.path {
			parts[i] = strconv.Itoa(seg)
		}
		return strings.Join(parts, ",")
	default:
		return "unknown"
	}
}

// ParseDrillID parses the String form. Path segments may also be separated
// by dots or slashes ("0.1.2", "0/1/2") and may be wrapped in brackets.
func ParseDrillID(s string) (DrillID, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	switch strings.ToLower(s) {
	case "root":
		return Root(), nil
	case "", "unknown":
		return Unknown(), nil
	}
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '.' || r == '/' || r == ' '
	})
	path := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return Unknown(), fmt.Errorf("invalid drill id %q: %w", s, err)
		}
		if v < 0 {
			return Unknown(), fmt.Errorf("invalid drill id %q: negative index %d", s, v)
		}
		path = append(path, v)
	}
	return DrillID{kind: DrillChild, path: path}, nil
}

// MarshalText implements encoding.TextMarshaler so DrillIDs serialize as
// their String form in YAML and JSON.
func (d DrillID) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *DrillID) UnmarshalText(text []byte) error {
	parsed, err := ParseDrillID(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
