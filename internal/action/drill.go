// Package action resolves addressed nodes back to live elements and
// replays input against them.
package action

import (
	"errors"
	"fmt"

	"github.com/mj1618/ui-inspector/internal/model"
	"github.com/mj1618/ui-inspector/internal/platform"
)

// ErrResolution is the parent of every drill failure.
var ErrResolution = errors.New("cannot resolve drill id")

var (
	// ErrBadPath is returned for Root and Unknown addresses.
	ErrBadPath = fmt.Errorf("%w: bad path", ErrResolution)
	// ErrEmptyPath is returned for a child address with no segments.
	ErrEmptyPath = fmt.Errorf("%w: empty path", ErrResolution)
	// ErrStale is returned when the resolved element is not the node the
	// caller expected.
	ErrStale = errors.New("address no longer refers to the same node")
)

// OutOfBoundsError reports a path segment past the end of its parent's
// children.
type OutOfBoundsError struct {
	Segment int // position in the path
	Given   int // requested child index
	Max     int // highest index that exists, -1 when there are no children
	Err     error
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("drill segment %d: index %d out of bounds (max %d): %v", e.Segment, e.Given, e.Max, e.Err)
}

func (e *OutOfBoundsError) Unwrap() error { return e.Err }

// Is makes every OutOfBoundsError match ErrResolution.
func (e *OutOfBoundsError) Is(target error) bool { return target == ErrResolution }

// Drill walks id's path from start, one child index per segment.
func Drill(acc platform.Accessibility, start platform.Element, id model.DrillID) (platform.Element, error) {
	path, ok := id.AsChild()
	if !ok {
		return nil, ErrBadPath
	}
	if len(path) == 0 {
		return nil, ErrEmptyPath
	}
	cur := start
	for seg, target := range path {
		if target < 0 {
			return nil, ErrBadPath
		}
		child, err := acc.FirstChild(cur)
		if err != nil {
			if errors.Is(err, platform.ErrNoElement) {
				return nil, &OutOfBoundsError{Segment: seg, Given: target, Max: -1, Err: err}
			}
			return nil, fmt.Errorf("%w: segment %d: %w", ErrResolution, seg, err)
		}
		for i := 0; i < target; i++ {
			next, err := acc.NextSibling(child)
			if err != nil {
				if errors.Is(err, platform.ErrNoElement) {
					return nil, &OutOfBoundsError{Segment: seg, Given: target, Max: i, Err: err}
				}
				return nil, fmt.Errorf("%w: segment %d: %w", ErrResolution, seg, err)
			}
			child = next
		}
		cur = child
	}
	return cur, nil
}

// Resolve finds the live element at id, drilling from the desktop root.
// Root resolves to the desktop itself. When expect is non-empty the
// element's runtime id must match it.
func Resolve(acc platform.Accessibility, id model.DrillID, expect model.RuntimeID) (platform.Element, error) {
	root, err := acc.Root()
	if err != nil {
		return nil, fmt.Errorf("desktop root: %w", err)
	}
	el := root
	if !id.IsRoot() {
		if el, err = Drill(acc, root, id); err != nil {
			return nil, err
		}
	}
	if err := CheckRuntimeID(el, expect); err != nil {
		return nil, err
	}
	return el, nil
}

// CheckRuntimeID verifies that el still carries the expected runtime id.
// An empty expectation always passes.
func CheckRuntimeID(el platform.Element, expect model.RuntimeID) error {
	if expect.IsZero() {
		return nil
	}
	got, err := el.RuntimeID()
	if err != nil {
		return fmt.Errorf("runtime id: %w", err)
	}
	if !got.Equal(expect) {
		return fmt.Errorf("%w: expected %s, found %s", ErrStale, expect, got)
	}
	return nil
}
