package fixture

import (
	"fmt"

	"github.com/mj1618/ui-inspector/internal/model"
)

func (d *Desktop) lookup(rid model.RuntimeID) (*node, error) {
	n, ok := d.byRuntime[rid.Key()]
	if !ok || n.removed {
		return nil, fmt.Errorf("runtime id %s: %w", rid, ErrDestroyed)
	}
	return n, nil
}

// Remove detaches the node and its subtree. Handles already given out for
// them fail from then on.
func (d *Desktop) Remove(rid model.RuntimeID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.lookup(rid)
	if err != nil {
		return err
	}
	if n.parent == nil {
		return fmt.Errorf("cannot remove the desktop root")
	}
	siblings := n.parent.children
	for i, s := range siblings {
		if s == n {
			n.parent.children = append(siblings[:i:i], siblings[i+1:]...)
			break
		}
	}
	markRemoved(n)
	return nil
}

func markRemoved(n *node) {
	n.removed = true
	for _, c := range n.children {
		markRemoved(c)
	}
}

// Insert adds spec as the index-th child of the node with runtime id
// parent, shifting later siblings. An index past the end appends. It
// returns the runtime id assigned to the new node.
func (d *Desktop) Insert(parent model.RuntimeID, index int, spec NodeSpec) (model.RuntimeID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, err := d.lookup(parent)
	if err != nil {
		return nil, err
	}
	n, err := d.build(spec, p)
	if err != nil {
		return nil, err
	}
	if index < 0 || index > len(p.children) {
		index = len(p.children)
	}
	p.children = append(p.children, nil)
	copy(p.children[index+1:], p.children[index:])
	p.children[index] = n
	return n.runtime, nil
}

// Rename changes a node's name in place, keeping its runtime id.
func (d *Desktop) Rename(rid model.RuntimeID, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.lookup(rid)
	if err != nil {
		return err
	}
	n.spec.Name = name
	return nil
}

// Fail makes op fail for the node from now on. See NodeSpec.Fail.
func (d *Desktop) Fail(rid model.RuntimeID, op string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.lookup(rid)
	if err != nil {
		return err
	}
	n.fail[op] = true
	return nil
}

// RuntimeIDOf returns the runtime id of the first node, depth-first, with
// the given name.
func (d *Desktop) RuntimeIDOf(name string) (model.RuntimeID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var walk func(n *node) model.RuntimeID
	walk = func(n *node) model.RuntimeID {
		if n.spec.Name == name {
			return n.runtime
		}
		for _, c := range n.children {
			if rid := walk(c); rid != nil {
				return rid
			}
		}
		return nil
	}
	rid := walk(d.root)
	return rid, rid != nil
}
