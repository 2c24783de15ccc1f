// Package gather turns live accessibility elements into addressed
// model.Node trees.
package gather

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mj1618/ui-inspector/internal/model"
	"github.com/mj1618/ui-inspector/internal/platform"
)

// ErrFocalNotFound is returned when the focal element cannot be located in
// the tree gathered around it.
var ErrFocalNotFound = errors.New("focal element not found in gathered tree")

// Result is an ancestry-filtered gather: the tree rooted at the outermost
// ancestor and a copy of the focal node as found in it.
type Result struct {
	Tree  model.Node `yaml:"tree"  json:"tree"`
	Focal model.Node `yaml:"focal" json:"focal"`
}

// Gatherer reads trees from one Accessibility. It is used only from the
// goroutine that owns the provider.
type Gatherer struct {
	acc platform.Accessibility
	log *zap.Logger

	// MaxDepth bounds Unfiltered below its start node (0 = unlimited).
	// Nodes at the limit are recorded without children.
	MaxDepth int
}

// New returns a Gatherer. A nil logger is replaced by a no-op one.
func New(acc platform.Accessibility, log *zap.Logger) *Gatherer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gatherer{acc: acc, log: log}
}

// Describe reads every property of el into a node with an Unknown address
// and no children. Any failing read fails the node.
func (g *Gatherer) Describe(el platform.Element) (model.Node, error) {
	var n model.Node
	var err error
	if n.Name, err = el.Name(); err != nil {
		return n, fmt.Errorf("name: %w", err)
	}
	if n.ClassName, err = el.ClassName(); err != nil {
		return n, fmt.Errorf("class name: %w", err)
	}
	if n.AutomationID, err = el.AutomationID(); err != nil {
		return n, fmt.Errorf("automation id: %w", err)
	}
	if n.ControlType, err = el.ControlType(); err != nil {
		return n, fmt.Errorf("control type: %w", err)
	}
	if n.LocalizedControlType, err = el.LocalizedControlType(); err != nil {
		return n, fmt.Errorf("localized control type: %w", err)
	}
	if n.Bounds, err = el.BoundingRect(); err != nil {
		return n, fmt.Errorf("bounding rect: %w", err)
	}
	if n.RuntimeID, err = el.RuntimeID(); err != nil {
		return n, fmt.Errorf("runtime id: %w", err)
	}
	return n, nil
}

// At gathers the ancestry-filtered tree around the element under a screen
// point.
func (g *Gatherer) At(x, y int) (Result, error) {
	el, err := g.acc.ElementAt(x, y)
	if err != nil {
		return Result{}, fmt.Errorf("element at %d,%d: %w", x, y, err)
	}
	return g.AncestryFiltered(el)
}

// AncestryFiltered gathers the tree from the outermost ancestor of focal
// down to focal. Every node on that chain is expanded; their other
// children are recorded without children. The outermost ancestor is always
// expanded as well. The tree is addressed from its root.
func (g *Gatherer) AncestryFiltered(focal platform.Element) (Result, error) {
	focalID, err := focal.RuntimeID()
	if err != nil {
		return Result{}, fmt.Errorf("focal runtime id: %w", err)
	}
	outermost, chain := g.ancestry(focal, focalID)

	tree, err := g.filtered(outermost, 0, model.Root(), chain)
	if err != nil {
		return Result{}, fmt.Errorf("gather root: %w", err)
	}
	model.RebaseDrillIDs(tree.Children, model.Root())

	found := tree.FindByRuntimeID(focalID)
	if found == nil {
		return Result{}, fmt.Errorf("%w: runtime id %s", ErrFocalNotFound, focalID)
	}
	return Result{Tree: tree, Focal: *found}, nil
}

// ancestry climbs from focal to the outermost ancestor and returns it with
// the set of runtime ids on the way. A failing Parent call ends the climb
// where it is.
func (g *Gatherer) ancestry(focal platform.Element, focalID model.RuntimeID) (platform.Element, map[string]bool) {
	chain := map[string]bool{focalID.Key(): true}
	cur := focal
	for {
		parent, err := g.acc.Parent(cur)
		if err != nil {
			if !errors.Is(err, platform.ErrNoElement) {
				g.log.Warn("ancestor walk stopped early", zap.Int("depth", len(chain)), zap.Error(err))
			}
			return cur, chain
		}
		rid, err := parent.RuntimeID()
		if err != nil {
			g.log.Warn("ancestor without runtime id", zap.Int("depth", len(chain)), zap.Error(err))
			return cur, chain
		}
		if chain[rid.Key()] {
			g.log.Warn("ancestor cycle", zap.Stringer("runtime", rid))
			return cur, chain
		}
		chain[rid.Key()] = true
		cur = parent
	}
}

func (g *Gatherer) filtered(el platform.Element, depth int, id model.DrillID, chain map[string]bool) (model.Node, error) {
	n, err := g.Describe(el)
	if err != nil {
		return n, err
	}
	n.DrillID = id
	if depth > 0 && !chain[n.RuntimeID.Key()] {
		return n, nil
	}

	kids := g.children(el, n, policyFor(depth))
	children := make([]model.Node, 0, len(kids))
	for i, kid := range kids {
		child, err := g.filtered(kid, depth+1, model.Child(i), chain)
		if err != nil {
			g.log.Debug("skipping child", zap.Stringer("parent", n.DrillID), zap.Int("index", i), zap.Error(err))
			continue
		}
		children = append(children, child)
	}
	n.SetChildren(children)
	return n, nil
}

// Unfiltered gathers the whole subtree under start. The result is
// addressed as if start sat at base in a larger tree.
func (g *Gatherer) Unfiltered(start platform.Element, base model.DrillID) (model.Node, error) {
	n, err := g.unfiltered(start, 0)
	if err != nil {
		return n, fmt.Errorf("gather start: %w", err)
	}
	n.DrillID = base
	model.RebaseDrillIDs(n.Children, base)
	return n, nil
}

func (g *Gatherer) unfiltered(el platform.Element, depth int) (model.Node, error) {
	n, err := g.Describe(el)
	if err != nil {
		return n, err
	}
	if g.MaxDepth > 0 && depth >= g.MaxDepth {
		return n, nil
	}
	kids := g.children(el, n, policyFor(depth))
	children := make([]model.Node, 0, len(kids))
	for i, kid := range kids {
		child, err := g.unfiltered(kid, depth+1)
		if err != nil {
			g.log.Debug("skipping child", zap.String("parent", n.Name), zap.Int("index", i), zap.Error(err))
			continue
		}
		child.DrillID = model.Child(i)
		children = append(children, child)
	}
	n.SetChildren(children)
	return n, nil
}

// Children gathers one level below parent, addressed under parentID.
// Children are recorded without their own children.
func (g *Gatherer) Children(parent platform.Element, parentID model.DrillID) ([]model.Node, error) {
	kids, err := platform.Children(g.acc, parent, platform.EndOfSiblings)
	if err != nil {
		if len(kids) == 0 {
			return nil, fmt.Errorf("children of %s: %w", parentID, err)
		}
		g.log.Debug("partial children", zap.Stringer("parent", parentID), zap.Int("count", len(kids)), zap.Error(err))
	}
	children := make([]model.Node, 0, len(kids))
	for i, kid := range kids {
		child, err := g.Describe(kid)
		if err != nil {
			g.log.Debug("skipping child", zap.Stringer("parent", parentID), zap.Int("index", i), zap.Error(err))
			continue
		}
		child.DrillID = model.Child(i)
		children = append(children, child)
	}
	model.RebaseDrillIDs(children, parentID)
	return children, nil
}

func (g *Gatherer) children(el platform.Element, n model.Node, policy platform.StopPolicy) []platform.Element {
	kids, err := platform.Children(g.acc, el, policy)
	if err != nil {
		g.log.Debug("child walk ended early",
			zap.String("parent", n.Name),
			zap.Stringer("policy", policy),
			zap.Int("count", len(kids)),
			zap.Error(err))
	}
	return kids
}

// policyFor picks the sibling stop policy for a level. The top level may
// be the desktop, whose child walk must stop at the sentinel.
func policyFor(depth int) platform.StopPolicy {
	if depth == 0 {
		return platform.RootEnd
	}
	return platform.EndOfSiblings
}
