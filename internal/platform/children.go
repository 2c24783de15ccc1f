package platform

import (
	"errors"
	"fmt"
)

// StopPolicy decides when sibling enumeration ends.
type StopPolicy int

const (
	// EndOfSiblings walks until the provider reports no next sibling.
	EndOfSiblings StopPolicy = iota
	// RootEnd stops at the desktop sentinel window, including it. Asking the
	// desktop for the sibling after its last child can hang.
	RootEnd
	// LastChild asks the provider for the parent's last child up front and
	// stops once it is reached, including it.
	LastChild
	// TaskbarEnd stops at the taskbar end marker, excluding it.
	TaskbarEnd
)

// Sentinels recognised by the stop policies.
const (
	DesktopSentinelName    = "Program Manager"
	DesktopSentinelClass   = "Progman"
	TaskbarEndAutomationID = "TaskbarEndAccessibilityElement"
)

func (p StopPolicy) String() string {
	switch p {
	case EndOfSiblings:
		return "end-of-siblings"
	case RootEnd:
		return "root-end"
	case LastChild:
		return "last-child"
	case TaskbarEnd:
		return "taskbar-end"
	default:
		return fmt.Sprintf("stop-policy(%d)", int(p))
	}
}

func (p StopPolicy) includeLast() bool {
	return p != TaskbarEnd
}

// Children enumerates the direct children of parent in provider order.
//
// The first child is always included. Enumeration ends when the policy
// matches or the provider has no further sibling. A navigation failure
// other than ErrNoElement also ends it; the children found so far are
// returned together with that error.
func Children(acc Accessibility, parent Element, policy StopPolicy) ([]Element, error) {
	stop, err := stopFunc(acc, parent, policy)
	if err != nil {
		return nil, err
	}

	first, err := acc.FirstChild(parent)
	if err != nil {
		if errors.Is(err, ErrNoElement) {
			return nil, nil
		}
		return nil, fmt.Errorf("first child: %w", err)
	}

	children := []Element{first}
	next := first
	for {
		sibling, err := acc.NextSibling(next)
		if err != nil {
			if errors.Is(err, ErrNoElement) {
				return children, nil
			}
			return children, fmt.Errorf("next sibling after %d children: %w", len(children), err)
		}
		if stop(sibling) {
			if policy.includeLast() {
				children = append(children, sibling)
			}
			return children, nil
		}
		children = append(children, sibling)
		next = sibling
	}
}

func stopFunc(acc Accessibility, parent Element, policy StopPolicy) (func(Element) bool, error) {
	switch policy {
	case EndOfSiblings:
		return func(Element) bool { return false }, nil
	case RootEnd:
		return IsDesktopSentinel, nil
	case TaskbarEnd:
		return func(el Element) bool {
			id, err := el.AutomationID()
			return err == nil && id == TaskbarEndAutomationID
		}, nil
	case LastChild:
		last, err := acc.LastChild(parent)
		if err != nil {
			if errors.Is(err, ErrNoElement) {
				return func(Element) bool { return false }, nil
			}
			return nil, fmt.Errorf("last child: %w", err)
		}
		want, err := last.RuntimeID()
		if err != nil {
			return nil, fmt.Errorf("runtime id of last child: %w", err)
		}
		return func(el Element) bool {
			rid, err := el.RuntimeID()
			return err == nil && rid.Equal(want)
		}, nil
	default:
		return nil, fmt.Errorf("unknown stop policy %d", int(policy))
	}
}

// IsDesktopSentinel reports whether el is the window that ends the desktop's
// child list.
func IsDesktopSentinel(el Element) bool {
	name, err := el.Name()
	if err != nil || name != DesktopSentinelName {
		return false
	}
	class, err := el.ClassName()
	return err == nil && class == DesktopSentinelClass
}
