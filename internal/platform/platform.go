package platform

import (
	"errors"

	"github.com/mj1618/ui-inspector/internal/model"
)

// ErrNoElement is returned by tree navigation when there is no element in
// the requested direction: no parent, no first child, no next sibling.
var ErrNoElement = errors.New("no element")

// Element is a live handle to one node in the host accessibility tree.
// Every property read goes to the provider and may fail, for example when
// the node has been destroyed since it was obtained.
type Element interface {
	Name() (string, error)
	ClassName() (string, error)
	AutomationID() (string, error)
	ControlType() (string, error)
	LocalizedControlType() (string, error)
	// BoundingRect returns [x, y, width, height] in screen coordinates.
	BoundingRect() ([4]int, error)
	RuntimeID() (model.RuntimeID, error)
}

// Accessibility is the host accessibility interface. Implementations are
// blocking and are only ever called from the worker goroutine that opened
// them.
type Accessibility interface {
	// ElementAt returns the deepest element under the screen point.
	ElementAt(x, y int) (Element, error)
	// Root returns the desktop element.
	Root() (Element, error)
	Parent(el Element) (Element, error)
	FirstChild(el Element) (Element, error)
	NextSibling(el Element) (Element, error)
	LastChild(el Element) (Element, error)
	// Click synthesizes a click on the element.
	Click(el Element, button MouseButton) error
}
