package platform

import (
	"fmt"
	"strconv"
	"strings"
)

// MouseButton represents a mouse button.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
)

// String returns the flag spelling of the button.
func (b MouseButton) String() string {
	switch b {
	case MouseLeft:
		return "left"
	case MouseRight:
		return "right"
	case MouseMiddle:
		return "middle"
	default:
		return "button(" + strconv.Itoa(int(b)) + ")"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (b MouseButton) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *MouseButton) UnmarshalText(text []byte) error {
	parsed, err := ParseMouseButton(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// ParseMouseButton converts a string flag value to MouseButton.
func ParseMouseButton(s string) (MouseButton, error) {
	switch strings.ToLower(s) {
	case "left":
		return MouseLeft, nil
	case "right":
		return MouseRight, nil
	case "middle":
		return MouseMiddle, nil
	default:
		return MouseLeft, fmt.Errorf("unknown mouse button: %q (expected left, right, or middle)", s)
	}
}

// Bounds represents a screen rectangle.
type Bounds struct {
	X, Y, Width, Height int
}

// Array returns the bounds in the [x, y, width, height] form used by nodes.
func (b Bounds) Array() [4]int {
	return [4]int{b.X, b.Y, b.Width, b.Height}
}

// ParseBBox parses a "x,y,w,h" string into a Bounds.
func ParseBBox(s string) (*Bounds, error) {
	vals, err := parseInts(s, 4)
	if err != nil {
		return nil, fmt.Errorf("invalid bbox %q: %w", s, err)
	}
	return &Bounds{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

// ParsePoint parses an "x,y" string.
func ParsePoint(s string) (x, y int, err error) {
	vals, err := parseInts(s, 2)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return vals[0], vals[1], nil
}

func parseInts(s string, n int) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma-separated values", n)
	}
	vals := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}
