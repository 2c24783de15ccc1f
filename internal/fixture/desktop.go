// Package fixture implements platform.Accessibility over an in-memory
// desktop described in YAML. It backs the "fixture" backend and the tests.
package fixture

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mj1618/ui-inspector/internal/model"
	"github.com/mj1618/ui-inspector/internal/platform"
)

// BackendName is the registry name of the fixture backend.
const BackendName = "fixture"

// ErrDestroyed is returned for operations on a node that has been removed
// from the desktop or is configured to fail.
var ErrDestroyed = errors.New("element not available")

// Click is one recorded click.
type Click struct {
	RuntimeID model.RuntimeID
	Name      string
	Button    platform.MouseButton
}

type node struct {
	spec     NodeSpec
	runtime  model.RuntimeID
	fail     map[string]bool
	parent   *node
	children []*node
	removed  bool
}

// Desktop is an in-memory accessibility tree.
type Desktop struct {
	mu          sync.Mutex
	root        *node
	byRuntime   map[string]*node
	nextRuntime int32
	clicks      []Click
}

var _ platform.Accessibility = (*Desktop)(nil)

// New builds a desktop rooted at spec.
func New(spec NodeSpec) (*Desktop, error) {
	d := &Desktop{byRuntime: make(map[string]*node), nextRuntime: 1}
	root, err := d.build(spec, nil)
	if err != nil {
		return nil, err
	}
	d.root = root
	return d, nil
}

// Factory returns a platform.Factory that loads path on every open.
func Factory(path string) platform.Factory {
	return func() (platform.Accessibility, error) {
		if path == "" {
			return Default()
		}
		return Load(path)
	}
}

func (d *Desktop) build(spec NodeSpec, parent *node) (*node, error) {
	n := &node{spec: spec, parent: parent, fail: make(map[string]bool)}
	for _, f := range spec.Fail {
		n.fail[f] = true
	}
	if spec.Runtime != "" {
		rid, err := model.ParseRuntimeID(spec.Runtime)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", spec.Name, err)
		}
		n.runtime = rid
	} else {
		n.runtime = model.RuntimeID{0x2A, d.nextRuntime}
		d.nextRuntime++
	}
	if _, dup := d.byRuntime[n.runtime.Key()]; dup {
		return nil, fmt.Errorf("node %q: duplicate runtime id %s", spec.Name, n.runtime)
	}
	d.byRuntime[n.runtime.Key()] = n
	for _, cs := range spec.Children {
		child, err := d.build(cs, n)
		if err != nil {
			return nil, err
		}
		n.children = append(n.children, child)
	}
	n.spec.Children = nil
	return n, nil
}

// element is the handle returned to callers. It stays valid as a value
// after its node is removed; operations on it then fail.
type element struct {
	d *Desktop
	n *node
}

func (d *Desktop) wrap(n *node) platform.Element {
	return element{d: d, n: n}
}

func (d *Desktop) unwrap(el platform.Element) (*node, error) {
	e, ok := el.(element)
	if !ok || e.d != d {
		return nil, fmt.Errorf("element does not belong to this desktop")
	}
	return e.n, nil
}

// check must be called with d.mu held.
func (n *node) check(op string) error {
	if n.removed || n.fail["all"] || n.fail[op] {
		return fmt.Errorf("%s of %q: %w", op, n.spec.Name, ErrDestroyed)
	}
	return nil
}

func (e element) read(op string, fn func(n *node)) error {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if err := e.n.check(op); err != nil {
		return err
	}
	fn(e.n)
	return nil
}

func (e element) Name() (s string, err error) {
	err = e.read("name", func(n *node) { s = n.spec.Name })
	return s, err
}

func (e element) ClassName() (s string, err error) {
	err = e.read("class", func(n *node) { s = n.spec.Class })
	return s, err
}

func (e element) AutomationID() (s string, err error) {
	err = e.read("automation_id", func(n *node) { s = n.spec.AutomationID })
	return s, err
}

func (e element) ControlType() (s string, err error) {
	err = e.read("control_type", func(n *node) { s = n.spec.ControlType })
	return s, err
}

func (e element) LocalizedControlType() (s string, err error) {
	err = e.read("localized", func(n *node) {
		s = n.spec.Localized
		if s == "" {
			s = n.spec.ControlType
		}
	})
	return s, err
}

func (e element) BoundingRect() (r [4]int, err error) {
	err = e.read("bounds", func(n *node) { r = n.spec.Bounds })
	return r, err
}

func (e element) RuntimeID() (rid model.RuntimeID, err error) {
	err = e.read("runtime", func(n *node) {
		rid = make(model.RuntimeID, len(n.runtime))
		copy(rid, n.runtime)
	})
	return rid, err
}

func (e element) String() string {
	return fmt.Sprintf("%s %q", e.n.runtime, e.n.spec.Name)
}

// Root returns the desktop element.
func (d *Desktop) Root() (platform.Element, error) {
	return d.wrap(d.root), nil
}

// ElementAt returns the deepest node whose bounds contain the point,
// preferring earlier siblings. The desktop itself is returned when nothing
// else matches.
func (d *Desktop) ElementAt(x, y int) (platform.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cur := d.root
	for {
		next := (*node)(nil)
		for _, c := range cur.children {
			if c.removed {
				continue
			}
			b := c.spec.Bounds
			if x >= b[0] && x < b[0]+b[2] && y >= b[1] && y < b[1]+b[3] {
				next = c
				break
			}
		}
		if next == nil {
			return d.wrap(cur), nil
		}
		cur = next
	}
}

func (d *Desktop) navigate(el platform.Element, op string, fn func(n *node) *node) (platform.Element, error) {
	n, err := d.unwrap(el)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := n.check(op); err != nil {
		return nil, err
	}
	target := fn(n)
	if target == nil {
		return nil, platform.ErrNoElement
	}
	return d.wrap(target), nil
}

// Parent implements platform.Accessibility.
func (d *Desktop) Parent(el platform.Element) (platform.Element, error) {
	return d.navigate(el, "parent", func(n *node) *node { return n.parent })
}

// FirstChild implements platform.Accessibility.
func (d *Desktop) FirstChild(el platform.Element) (platform.Element, error) {
	return d.navigate(el, "first_child", func(n *node) *node {
		if len(n.children) == 0 {
			return nil
		}
		return n.children[0]
	})
}

// LastChild implements platform.Accessibility.
func (d *Desktop) LastChild(el platform.Element) (platform.Element, error) {
	return d.navigate(el, "last_child", func(n *node) *node {
		if len(n.children) == 0 {
			return nil
		}
		return n.children[len(n.children)-1]
	})
}

// NextSibling implements platform.Accessibility.
func (d *Desktop) NextSibling(el platform.Element) (platform.Element, error) {
	return d.navigate(el, "next_sibling", func(n *node) *node {
		if n.parent == nil {
			return nil
		}
		siblings := n.parent.children
		for i, s := range siblings {
			if s == n && i+1 < len(siblings) {
				return siblings[i+1]
			}
		}
		return nil
	})
}

// Click records a click on the element.
func (d *Desktop) Click(el platform.Element, button platform.MouseButton) error {
	n, err := d.unwrap(el)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := n.check("click"); err != nil {
		return err
	}
	d.clicks = append(d.clicks, Click{RuntimeID: n.runtime, Name: n.spec.Name, Button: button})
	return nil
}

// Clicks returns the clicks recorded so far.
func (d *Desktop) Clicks() []Click {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Click, len(d.clicks))
	copy(out, d.clicks)
	return out
}
