package model

import (
	"fmt"
	"strconv"
	"strings"
)

// RuntimeID is the provider-issued identity of a live node. It is only
// used to check whether an address still points at the same node; it is
// never used to locate one.
type RuntimeID []int32

// Equal reports whether both ids refer to the same node.
func (r RuntimeID) Equal(other RuntimeID) bool {
	if len(r) != len(other) {
		return false
	}
	for i := range r {
		if r[i] != other[i] {
			return false
		}
	}
	return true
}

// IsZero reports whether the id is empty.
func (r RuntimeID) IsZero() bool { return len(r) == 0 }

// Key returns a string usable as a map key.
func (r RuntimeID) Key() string { return r.String() }

// String renders the id as an upper-case hex list, e.g. "[2A,1F0]".
func (r RuntimeID) String() string {
	parts := make([]string, len(r))
	for i, v := range r {
		parts[i] = strings.ToUpper(strconv.FormatInt(int64(v), 16))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// ParseRuntimeID parses the String form.
func ParseRuntimeID(s string) (RuntimeID, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	if s == "" {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	id := make(RuntimeID, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseInt(strings.TrimSpace(f), 16, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid runtime id %q: %w", s, err)
		}
		id = append(id, int32(v))
	}
	return id, nil
}

// MarshalText implements encoding.TextMarshaler.
func (r RuntimeID) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *RuntimeID) UnmarshalText(text []byte) error {
	parsed, err := ParseRuntimeID(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
