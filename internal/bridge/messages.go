package bridge

import (
	"github.com/google/uuid"

	"github.com/mj1618/ui-inspector/internal/model"
	"github.com/mj1618/ui-inspector/internal/platform"
	"github.com/mj1618/ui-inspector/internal/resolve"
)

// Kind names a request type. Replies carry the kind of the request they
// answer.
type Kind string

const (
	KindCaptureTreeAt  Kind = "capture_tree_at"
	KindGatherChildren Kind = "gather_children"
	KindExportTree     Kind = "export_tree"
	KindClick          Kind = "click"
	KindClickAt        Kind = "click_at"
	KindPatchTree      Kind = "patch_tree"
	KindResolveApps    Kind = "resolve_apps"
)

// Request is a message to the worker.
type Request interface {
	Kind() Kind
}

// CaptureTreeAt gathers the ancestry-filtered tree around the element
// under a screen point.
type CaptureTreeAt struct {
	X, Y int
}

// GatherChildren gathers one level below an addressed node.
type GatherChildren struct {
	DrillID   model.DrillID
	RuntimeID model.RuntimeID
}

// ExportTree gathers the full subtree below an addressed node. With
// Clipboard set the worker also copies its text form to the clipboard.
type ExportTree struct {
	DrillID   model.DrillID
	RuntimeID model.RuntimeID
	Clipboard bool
}

// Click clicks an addressed node. A non-empty RuntimeID guards against the
// address having moved.
type Click struct {
	DrillID   model.DrillID
	RuntimeID model.RuntimeID
	Button    platform.MouseButton
}

// ClickAt clicks whatever is under a screen point.
type ClickAt struct {
	X, Y   int
	Button platform.MouseButton
}

// PatchTree re-gathers the full subtree below an addressed node so the
// consumer can splice it into its snapshot.
type PatchTree struct {
	DrillID   model.DrillID
	RuntimeID model.RuntimeID
}

// ResolveApps resolves the desktop's top-level windows.
type ResolveApps struct{}

func (CaptureTreeAt) Kind() Kind  { return KindCaptureTreeAt }
func (GatherChildren) Kind() Kind { return KindGatherChildren }
func (ExportTree) Kind() Kind     { return KindExportTree }
func (Click) Kind() Kind          { return KindClick }
func (ClickAt) Kind() Kind        { return KindClickAt }
func (PatchTree) Kind() Kind      { return KindPatchTree }
func (ResolveApps) Kind() Kind    { return KindResolveApps }

// Envelope is what travels on the threadbound channel.
type Envelope struct {
	ID      uuid.UUID
	Request Request
}

// Header identifies the request a reply answers.
type Header struct {
	ID   uuid.UUID
	Kind Kind
}

// Head returns the header. Every reply type embeds Header.
func (h Header) Head() Header { return h }

// Reply is a message from the worker. The worker sends exactly one per
// request.
type Reply interface {
	Head() Header
}

// TreeCaptured answers CaptureTreeAt.
type TreeCaptured struct {
	Header
	Tree  model.Node
	Focal model.Node
}

// ChildrenGathered answers GatherChildren, echoing its key.
type ChildrenGathered struct {
	Header
	DrillID   model.DrillID
	RuntimeID model.RuntimeID
	Children  []model.Node
}

// TreeExported answers ExportTree.
type TreeExported struct {
	Header
	Tree model.Node
}

// ClickAck answers Click and ClickAt. Unsupported is set when the button
// was ignored.
type ClickAck struct {
	Header
	Unsupported bool
}

// TreePatched answers PatchTree.
type TreePatched struct {
	Header
	Patch model.Node
}

// AppsResolved answers ResolveApps.
type AppsResolved struct {
	Header
	Apps []resolve.App
}

// ErrorReply is sent when a handler fails.
type ErrorReply struct {
	Header
	Err error
}

func (r ErrorReply) Error() string {
	return string(r.Kind) + ": " + r.Err.Error()
}

func (r ErrorReply) Unwrap() error { return r.Err }
