// Package inspector is the consumer side of the bridge: it owns the
// current snapshot, decides when to capture, tracks lazy child fetches and
// merges replies once per tick.
package inspector

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mj1618/ui-inspector/internal/bridge"
	"github.com/mj1618/ui-inspector/internal/model"
	"github.com/mj1618/ui-inspector/internal/platform"
	"github.com/mj1618/ui-inspector/internal/resolve"
)

var (
	// ErrNoTree is returned by operations that need a snapshot before the
	// first capture has arrived.
	ErrNoTree = errors.New("no tree captured yet")
	// ErrNotInTree is returned for addresses the snapshot does not hold.
	ErrNotInTree = errors.New("address not in current tree")
	// ErrClickPending is returned when a click is already waiting for its
	// acknowledgement.
	ErrClickPending = errors.New("a click is already pending")
)

// Channel is the consumer's view of the bridge.
type Channel interface {
	TrySend(req bridge.Request) (uuid.UUID, error)
	Drain() []bridge.Reply
}

// Patch is what a re-gather changed below an address.
type Patch struct {
	DrillID model.DrillID
	Changes []model.Change
}

// Point is a screen position.
type Point struct {
	X, Y int
}

// Inspector holds the consumer state. It is not safe for concurrent use;
// every method is meant to be called from the tick loop.
type Inspector struct {
	ch      Channel
	log     *zap.Logger
	trigger *Trigger

	Tree     model.Node
	HasTree  bool
	Focal    model.Node
	Selected model.DrillID
	// Expanded holds the addresses the user has open, keyed by DrillID.Key.
	Expanded map[string]model.DrillID
	InFlight bool
	Fetch    *FetchCoordinator
	Paused   bool
	// Fresh is set when a new capture replaces the tree. The front end
	// clears it once it has reset its own view state.
	Fresh     bool
	LastError error
	Apps      []resolve.App
	Exported  *model.Node
	// Patched describes the last applied patch until the front end
	// clears it.
	Patched *Patch

	captureID    uuid.UUID
	pendingClick uuid.UUID
}

// New returns an inspector sending on ch.
func New(ch Channel, cooldown time.Duration, log *zap.Logger) *Inspector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Inspector{
		ch:       ch,
		log:      log,
		trigger:  NewTrigger(cooldown),
		Expanded: make(map[string]model.DrillID),
		Fetch:    NewFetchCoordinator(),
	}
}

// SetCooldown changes the capture cooldown.
func (in *Inspector) SetCooldown(d time.Duration) {
	in.trigger.SetCooldown(d)
	in.log.Info("capture cooldown changed", zap.Duration("cooldown", d))
}

// Cooldown returns the current capture cooldown.
func (in *Inspector) Cooldown() time.Duration {
	return in.trigger.Cooldown()
}

// PendingClick reports whether a click is waiting for its acknowledgement.
func (in *Inspector) PendingClick() bool {
	return in.pendingClick != uuid.Nil
}

// Update runs one tick: merge replies, merge fetched children, dispatch
// pending fetches, update the hover selection and maybe trigger a capture.
// hover is nil when the pointer position is unknown.
func (in *Inspector) Update(now time.Time, hover *Point) {
	for _, r := range in.ch.Drain() {
		in.handle(r)
	}
	in.mergeFetched()
	in.Fetch.DispatchPending(in.ch.TrySend)

	if in.Paused || hover == nil {
		return
	}
	if in.HasTree {
		if n := in.Tree.DeepestAt(hover.X, hover.Y); n != nil {
			in.Selected = n.DrillID
		}
	}

	switch in.trigger.Check(now, hover.X, hover.Y, in.InFlight) {
	case Fire:
		id, err := in.ch.TrySend(bridge.CaptureTreeAt{X: hover.X, Y: hover.Y})
		if err != nil {
			in.trigger.Forget()
			in.log.Warn("capture not sent", zap.Error(err))
			return
		}
		in.InFlight = true
		in.captureID = id
	case DroppedInFlight:
		in.log.Warn("capture skipped, previous capture still in flight",
			zap.Int("x", hover.X), zap.Int("y", hover.Y))
	case Debounced:
		in.log.Debug("capture debounced", zap.Int("x", hover.X), zap.Int("y", hover.Y))
	}
}

// Refresh makes the next cooldown capture even if the pointer has not moved.
func (in *Inspector) Refresh() {
	in.trigger.Forget()
}

// TogglePause stops or resumes capturing.
func (in *Inspector) TogglePause() bool {
	in.Paused = !in.Paused
	in.log.Info("inspector pause toggled", zap.Bool("paused", in.Paused))
	return in.Paused
}

func (in *Inspector) handle(r bridge.Reply) {
	switch m := r.(type) {
	case bridge.TreeCaptured:
		if m.ID == in.captureID {
			in.InFlight = false
		}
		in.Tree = m.Tree
		in.HasTree = true
		in.Focal = m.Focal
		in.Selected = m.Focal.DrillID
		in.Expanded = make(map[string]model.DrillID)
		for _, id := range m.Tree.ExpandedIDs() {
			in.Expanded[id.Key()] = id
		}
		in.Fetch.Reset()
		in.Fresh = true
		in.LastError = nil
		in.log.Debug("tree captured", zap.Stringer("focal", m.Focal.DrillID), zap.String("name", m.Focal.Name))
	case bridge.ChildrenGathered:
		if !in.Fetch.Receive(m.ID, m.DrillID, m.RuntimeID, m.Children) {
			in.log.Debug("discarding stale children", zap.Stringer("drill", m.DrillID), zap.Stringer("runtime", m.RuntimeID))
		}
	case bridge.TreePatched:
		if !in.HasTree {
			in.log.Warn("patch without a tree", zap.Stringer("drill", m.Patch.DrillID))
			return
		}
		old := in.Tree.Lookup(m.Patch.DrillID)
		if old == nil || !old.RuntimeID.Equal(m.Patch.RuntimeID) {
			in.log.Debug("discarding stale patch",
				zap.Stringer("drill", m.Patch.DrillID), zap.Stringer("runtime", m.Patch.RuntimeID))
			return
		}
		changes := patchChanges(*old, m.Patch)
		in.Tree.Replace(m.Patch)
		for _, id := range m.Patch.ExpandedIDs() {
			in.Expanded[id.Key()] = id
		}
		in.Patched = &Patch{DrillID: m.Patch.DrillID, Changes: changes}
		added, removed, changed := model.CountChanges(changes)
		in.log.Info("subtree patched",
			zap.Stringer("drill", m.Patch.DrillID),
			zap.Int("added", added),
			zap.Int("removed", removed),
			zap.Int("changed", changed))
	case bridge.TreeExported:
		tree := m.Tree
		in.Exported = &tree
	case bridge.AppsResolved:
		in.Apps = m.Apps
	case bridge.ClickAck:
		if m.ID == in.pendingClick {
			in.pendingClick = uuid.Nil
		}
		if m.Unsupported {
			in.log.Warn("click ignored: unsupported button")
		}
	case bridge.ErrorReply:
		in.handleError(m)
	default:
		in.log.Warn("unexpected reply", zap.String("type", fmt.Sprintf("%T", r)))
	}
}

func (in *Inspector) handleError(m bridge.ErrorReply) {
	in.LastError = m
	switch m.Kind {
	case bridge.KindCaptureTreeAt:
		if m.ID == in.captureID {
			in.InFlight = false
		}
		in.trigger.Forget()
	case bridge.KindClick, bridge.KindClickAt:
		if m.ID == in.pendingClick {
			in.pendingClick = uuid.Nil
		}
	case bridge.KindGatherChildren:
		if id, ok := in.Fetch.Fail(m.ID); ok {
			delete(in.Expanded, id.Key())
		}
	}
	in.log.Warn("request failed", zap.String("kind", string(m.Kind)), zap.Error(m.Err))
}

// mergeFetched splices fetched children into the tree. Children whose
// parent no longer carries the fetched runtime id are dropped.
func (in *Inspector) mergeFetched() {
	for _, k := range in.Fetch.Ready() {
		children, _ := in.Fetch.TakeFetched(k.DrillID, k.RuntimeID)
		if !in.HasTree {
			continue
		}
		target := in.Tree.Lookup(k.DrillID)
		if target == nil || !target.RuntimeID.Equal(k.RuntimeID) {
			in.log.Debug("dropping children for moved node", zap.Stringer("drill", k.DrillID))
			continue
		}
		in.Tree.Splice(k.DrillID, children)
	}
}

func (in *Inspector) lookup(id model.DrillID) (*model.Node, error) {
	if !in.HasTree {
		return nil, ErrNoTree
	}
	n := in.Tree.Lookup(id)
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotInTree, id)
	}
	return n, nil
}

// Expand opens a node, requesting its children if they have not been
// gathered.
func (in *Inspector) Expand(id model.DrillID) error {
	n, err := in.lookup(id)
	if err != nil {
		return err
	}
	in.Expanded[id.Key()] = id
	if !n.Expanded {
		in.Fetch.Request(id, n.RuntimeID)
	}
	return nil
}

// Collapse closes a node and abandons any fetch for it.
func (in *Inspector) Collapse(id model.DrillID) error {
	n, err := in.lookup(id)
	if err != nil {
		return err
	}
	delete(in.Expanded, id.Key())
	in.Fetch.Abandon(id, n.RuntimeID)
	return nil
}

// IsOpen reports whether the user has the node open.
func (in *Inspector) IsOpen(id model.DrillID) bool {
	_, ok := in.Expanded[id.Key()]
	return ok
}

// Click sends a click for an addressed node, guarded by its runtime id.
func (in *Inspector) Click(id model.DrillID, button platform.MouseButton) error {
	if in.PendingClick() {
		return ErrClickPending
	}
	n, err := in.lookup(id)
	if err != nil {
		return err
	}
	reqID, err := in.ch.TrySend(bridge.Click{DrillID: id, RuntimeID: n.RuntimeID, Button: button})
	if err != nil {
		return err
	}
	in.pendingClick = reqID
	return nil
}

// Export asks for the full subtree below a node.
func (in *Inspector) Export(id model.DrillID, toClipboard bool) error {
	n, err := in.lookup(id)
	if err != nil {
		return err
	}
	_, err = in.ch.TrySend(bridge.ExportTree{DrillID: id, RuntimeID: n.RuntimeID, Clipboard: toClipboard})
	return err
}

// Patch asks for the full subtree below a node to replace it in place.
func (in *Inspector) Patch(id model.DrillID) error {
	n, err := in.lookup(id)
	if err != nil {
		return err
	}
	_, err = in.ch.TrySend(bridge.PatchTree{DrillID: id, RuntimeID: n.RuntimeID})
	return err
}

// ResolveApps asks for the desktop's resolved applications.
func (in *Inspector) ResolveApps() error {
	_, err := in.ch.TrySend(bridge.ResolveApps{})
	return err
}

// patchChanges diffs a re-gathered subtree against the snapshot's copy.
// Children below nodes the snapshot never expanded are left out, so newly
// gathered levels do not show up as additions.
func patchChanges(old, patch model.Node) []model.Change {
	known := make(map[string]bool)
	old.Walk(func(n *model.Node) bool {
		if n.Expanded {
			known[n.RuntimeID.Key()] = true
		}
		return true
	})
	trimmed := trimTo(patch, known)
	return model.DiffNodes(model.FlattenNodes([]model.Node{old}), model.FlattenNodes([]model.Node{trimmed}))
}

func trimTo(n model.Node, known map[string]bool) model.Node {
	if !known[n.RuntimeID.Key()] {
		n.Children = nil
		return n
	}
	kids := make([]model.Node, len(n.Children))
	for i, c := range n.Children {
		kids[i] = trimTo(c, known)
	}
	n.Children = kids
	return n
}
