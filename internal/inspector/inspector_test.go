package inspector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mj1618/ui-inspector/internal/action"
	"github.com/mj1618/ui-inspector/internal/bridge"
	"github.com/mj1618/ui-inspector/internal/fixture"
	"github.com/mj1618/ui-inspector/internal/gather"
	"github.com/mj1618/ui-inspector/internal/model"
	"github.com/mj1618/ui-inspector/internal/platform"
)

const twoPanes = `
desktop:
  name: Desktop
  control_type: Pane
  bounds: [0, 0, 1000, 1000]
  runtime: "[1]"
  children:
    - name: Main
      control_type: Window
      bounds: [0, 0, 500, 500]
      runtime: "[2]"
      children:
        - {name: OK, control_type: Button, bounds: [10, 10, 40, 20], runtime: "[3]"}
    - name: Side
      control_type: Pane
      bounds: [600, 0, 300, 300]
      runtime: "[4]"
      children:
        - {name: A, control_type: Edit, bounds: [610, 10, 50, 20], runtime: "[5]"}
        - {name: B, control_type: Edit, bounds: [610, 40, 50, 20], runtime: "[6]"}
`

// fakeChannel records requests and hands back queued replies.
type fakeChannel struct {
	sent    []bridge.Request
	ids     []uuid.UUID
	replies []bridge.Reply
	full    bool
}

func (c *fakeChannel) TrySend(req bridge.Request) (uuid.UUID, error) {
	if c.full {
		return uuid.Nil, bridge.ErrChannelFull
	}
	id := uuid.New()
	c.sent = append(c.sent, req)
	c.ids = append(c.ids, id)
	return id, nil
}

func (c *fakeChannel) Drain() []bridge.Reply {
	out := c.replies
	c.replies = nil
	return out
}

func (c *fakeChannel) push(r bridge.Reply) { c.replies = append(c.replies, r) }

func (c *fakeChannel) count(kind bridge.Kind) int {
	n := 0
	for _, r := range c.sent {
		if r.Kind() == kind {
			n++
		}
	}
	return n
}

func (c *fakeChannel) last() (bridge.Request, uuid.UUID) {
	return c.sent[len(c.sent)-1], c.ids[len(c.ids)-1]
}

func captureAt(t *testing.T, x, y int) gather.Result {
	t.Helper()
	d, err := fixture.Parse([]byte(twoPanes))
	require.NoError(t, err)
	res, err := gather.New(d, zaptest.NewLogger(t)).At(x, y)
	require.NoError(t, err)
	return res
}

const cooldown = 100 * time.Millisecond

// captured returns an inspector holding a capture at the OK button, with
// the clock at t0+2 cooldowns.
func captured(t *testing.T, log *zap.Logger) (*Inspector, *fakeChannel, time.Time) {
	t.Helper()
	ch := &fakeChannel{}
	in := New(ch, cooldown, log)
	t0 := time.Unix(1000, 0)
	hover := &Point{X: 20, Y: 15}

	in.Update(t0, hover)
	require.Empty(t, ch.sent)
	in.Update(t0.Add(cooldown), hover)
	require.Len(t, ch.sent, 1)
	req, id := ch.last()
	require.Equal(t, bridge.CaptureTreeAt{X: 20, Y: 15}, req)
	require.True(t, in.InFlight)

	res := captureAt(t, 20, 15)
	ch.push(bridge.TreeCaptured{Header: bridge.Header{ID: id, Kind: bridge.KindCaptureTreeAt}, Tree: res.Tree, Focal: res.Focal})
	in.Update(t0.Add(cooldown+cooldown/2), nil)
	require.True(t, in.HasTree)
	return in, ch, t0.Add(2 * cooldown)
}

func TestInspector_Capture(t *testing.T) {
	in, _, _ := captured(t, zaptest.NewLogger(t))

	assert.False(t, in.InFlight)
	assert.True(t, in.Fresh)
	assert.Equal(t, "OK", in.Focal.Name)
	assert.True(t, in.Focal.DrillID.Equal(model.Child(0, 0)))
	assert.True(t, in.Selected.Equal(model.Child(0, 0)))
	assert.True(t, in.IsOpen(model.Root()))
	assert.True(t, in.IsOpen(model.Child(0)))
	assert.False(t, in.IsOpen(model.Child(1)))

	side := in.Tree.Lookup(model.Child(1))
	require.NotNil(t, side)
	assert.False(t, side.Expanded)
}

func TestInspector_ExpandSiblingFetchesOnce(t *testing.T) {
	in, ch, now := captured(t, zaptest.NewLogger(t))

	require.NoError(t, in.Expand(model.Child(1)))
	in.Update(now, nil)
	in.Update(now.Add(time.Millisecond), nil)
	require.NoError(t, in.Expand(model.Child(1)))
	in.Update(now.Add(2*time.Millisecond), nil)

	require.Equal(t, 1, ch.count(bridge.KindGatherChildren))
	req, id := ch.last()
	assert.Equal(t, bridge.GatherChildren{DrillID: model.Child(1), RuntimeID: model.RuntimeID{4}}, req)

	ch.push(bridge.ChildrenGathered{
		Header:    bridge.Header{ID: id, Kind: bridge.KindGatherChildren},
		DrillID:   model.Child(1),
		RuntimeID: model.RuntimeID{4},
		Children: []model.Node{
			{Name: "A", ControlType: "Edit", DrillID: model.Child(0), RuntimeID: model.RuntimeID{5}},
			{Name: "B", ControlType: "Edit", DrillID: model.Child(1), RuntimeID: model.RuntimeID{6}},
		},
	})
	in.Update(now.Add(3*time.Millisecond), nil)

	side := in.Tree.Lookup(model.Child(1))
	require.NotNil(t, side)
	assert.True(t, side.Expanded)
	require.Len(t, side.Children, 2)
	b := in.Tree.Lookup(model.Child(1, 1))
	require.NotNil(t, b)
	assert.Equal(t, "B", b.Name)
	assert.Equal(t, 0, in.Fetch.Len())
}

func TestInspector_ExpandAlreadyGatheredSendsNothing(t *testing.T) {
	in, ch, now := captured(t, zaptest.NewLogger(t))

	require.NoError(t, in.Expand(model.Child(0)))
	in.Update(now, nil)
	assert.Equal(t, 0, ch.count(bridge.KindGatherChildren))
	assert.ErrorIs(t, in.Expand(model.Child(7)), ErrNotInTree)
}

func TestInspector_ChildrenAfterNewCaptureAreDropped(t *testing.T) {
	in, ch, now := captured(t, zaptest.NewLogger(t))

	require.NoError(t, in.Expand(model.Child(1)))
	in.Update(now, nil)
	_, fetchID := ch.last()

	res := captureAt(t, 20, 15)
	ch.push(bridge.TreeCaptured{Header: bridge.Header{ID: uuid.New(), Kind: bridge.KindCaptureTreeAt}, Tree: res.Tree, Focal: res.Focal})
	ch.push(bridge.ChildrenGathered{
		Header:    bridge.Header{ID: fetchID, Kind: bridge.KindGatherChildren},
		DrillID:   model.Child(1),
		RuntimeID: model.RuntimeID{4},
		Children:  []model.Node{{Name: "A", DrillID: model.Child(1, 0)}},
	})
	in.Update(now.Add(time.Millisecond), nil)

	side := in.Tree.Lookup(model.Child(1))
	require.NotNil(t, side)
	assert.False(t, side.Expanded)
	assert.Equal(t, 0, in.Fetch.Len())
}

func TestInspector_ChildrenForMovedNodeAreDropped(t *testing.T) {
	in, ch, now := captured(t, zaptest.NewLogger(t))

	require.NoError(t, in.Expand(model.Child(1)))
	in.Update(now, nil)
	_, fetchID := ch.last()

	root := in.Tree
	root.Children = []model.Node{
		root.Children[0],
		{Name: "Other", DrillID: model.Child(1), RuntimeID: model.RuntimeID{9}},
	}
	ch.push(bridge.TreePatched{
		Header: bridge.Header{ID: uuid.New(), Kind: bridge.KindPatchTree},
		Patch:  root,
	})
	ch.push(bridge.ChildrenGathered{
		Header:    bridge.Header{ID: fetchID, Kind: bridge.KindGatherChildren},
		DrillID:   model.Child(1),
		RuntimeID: model.RuntimeID{4},
		Children:  []model.Node{{Name: "A", DrillID: model.Child(1, 0)}},
	})
	in.Update(now.Add(time.Millisecond), nil)

	moved := in.Tree.Lookup(model.Child(1))
	require.NotNil(t, moved)
	assert.Equal(t, "Other", moved.Name)
	assert.Empty(t, moved.Children)
}

func TestInspector_CollapseAbandonsFetch(t *testing.T) {
	in, ch, now := captured(t, zaptest.NewLogger(t))

	require.NoError(t, in.Expand(model.Child(1)))
	in.Update(now, nil)
	_, fetchID := ch.last()
	require.NoError(t, in.Collapse(model.Child(1)))

	ch.push(bridge.ChildrenGathered{
		Header:    bridge.Header{ID: fetchID, Kind: bridge.KindGatherChildren},
		DrillID:   model.Child(1),
		RuntimeID: model.RuntimeID{4},
	})
	in.Update(now.Add(time.Millisecond), nil)
	assert.False(t, in.Tree.Lookup(model.Child(1)).Expanded)
	assert.False(t, in.IsOpen(model.Child(1)))
}

func TestInspector_FetchErrorClosesNode(t *testing.T) {
	in, ch, now := captured(t, zaptest.NewLogger(t))

	require.NoError(t, in.Expand(model.Child(1)))
	in.Update(now, nil)
	_, fetchID := ch.last()

	ch.push(bridge.ErrorReply{Header: bridge.Header{ID: fetchID, Kind: bridge.KindGatherChildren}, Err: action.ErrStale})
	in.Update(now.Add(time.Millisecond), nil)
	assert.False(t, in.IsOpen(model.Child(1)))
	assert.Equal(t, 0, in.Fetch.Len())
	assert.ErrorIs(t, in.LastError, action.ErrStale)
}

func TestInspector_FailedCaptureKeepsTree(t *testing.T) {
	in, ch, now := captured(t, zaptest.NewLogger(t))
	before := in.Tree

	hover := &Point{X: 700, Y: 20}
	in.Update(now.Add(cooldown), hover)
	req, id := ch.last()
	require.Equal(t, bridge.CaptureTreeAt{X: 700, Y: 20}, req)
	require.True(t, in.InFlight)

	ch.push(bridge.ErrorReply{Header: bridge.Header{ID: id, Kind: bridge.KindCaptureTreeAt}, Err: errors.New("element at 700,20: gone")})
	in.Update(now.Add(cooldown+time.Millisecond), nil)

	assert.False(t, in.InFlight)
	assert.Error(t, in.LastError)
	assert.Equal(t, before, in.Tree)

	in.Update(now.Add(2*cooldown+time.Millisecond), hover)
	assert.Equal(t, 3, ch.count(bridge.KindCaptureTreeAt), "a failed capture is retried at the same point")
}

func TestInspector_InFlightDropsCapture(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	ch := &fakeChannel{}
	in := New(ch, cooldown, zap.New(core))
	t0 := time.Unix(1000, 0)

	in.Update(t0, &Point{X: 1, Y: 1})
	in.Update(t0.Add(cooldown), &Point{X: 1, Y: 1})
	in.Update(t0.Add(2*cooldown), &Point{X: 2, Y: 2})

	assert.Equal(t, 1, ch.count(bridge.KindCaptureTreeAt))
	assert.Equal(t, 1, logs.FilterMessage("capture skipped, previous capture still in flight").Len())
}

func TestInspector_DebounceAndRefresh(t *testing.T) {
	in, ch, now := captured(t, zaptest.NewLogger(t))
	hover := &Point{X: 20, Y: 15}

	in.Update(now.Add(cooldown), hover)
	assert.Equal(t, 1, ch.count(bridge.KindCaptureTreeAt))

	in.Refresh()
	in.Update(now.Add(2*cooldown), hover)
	assert.Equal(t, 2, ch.count(bridge.KindCaptureTreeAt))
}

func TestInspector_PausedDoesNotCapture(t *testing.T) {
	ch := &fakeChannel{}
	in := New(ch, cooldown, zaptest.NewLogger(t))
	t0 := time.Unix(1000, 0)
	assert.True(t, in.TogglePause())

	for i := 0; i < 5; i++ {
		in.Update(t0.Add(time.Duration(i)*cooldown), &Point{X: i, Y: i})
	}
	assert.Empty(t, ch.sent)
	assert.False(t, in.TogglePause())
}

func TestInspector_ChannelFullRetries(t *testing.T) {
	ch := &fakeChannel{full: true}
	in := New(ch, cooldown, zaptest.NewLogger(t))
	t0 := time.Unix(1000, 0)
	hover := &Point{X: 5, Y: 5}

	in.Update(t0, hover)
	in.Update(t0.Add(cooldown), hover)
	assert.False(t, in.InFlight)

	ch.full = false
	in.Update(t0.Add(2*cooldown), hover)
	assert.True(t, in.InFlight)
	assert.Equal(t, 1, ch.count(bridge.KindCaptureTreeAt))
}

func TestInspector_Click(t *testing.T) {
	in, ch, now := captured(t, zaptest.NewLogger(t))

	require.NoError(t, in.Click(model.Child(0, 0), platform.MouseLeft))
	req, id := ch.last()
	assert.Equal(t, bridge.Click{DrillID: model.Child(0, 0), RuntimeID: model.RuntimeID{3}, Button: platform.MouseLeft}, req)
	assert.True(t, in.PendingClick())
	assert.ErrorIs(t, in.Click(model.Child(0, 0), platform.MouseLeft), ErrClickPending)

	ch.push(bridge.ClickAck{Header: bridge.Header{ID: id, Kind: bridge.KindClick}})
	in.Update(now, nil)
	assert.False(t, in.PendingClick())

	require.NoError(t, in.Click(model.Child(0, 0), platform.MouseRight))
	_, id = ch.last()
	ch.push(bridge.ErrorReply{Header: bridge.Header{ID: id, Kind: bridge.KindClick}, Err: action.ErrStale})
	in.Update(now.Add(time.Millisecond), nil)
	assert.False(t, in.PendingClick())
	assert.ErrorIs(t, in.LastError, action.ErrStale)
}

func TestInspector_NoTree(t *testing.T) {
	in := New(&fakeChannel{}, cooldown, nil)
	assert.ErrorIs(t, in.Expand(model.Root()), ErrNoTree)
	assert.ErrorIs(t, in.Click(model.Child(0), platform.MouseLeft), ErrNoTree)
	assert.ErrorIs(t, in.Export(model.Child(0), false), ErrNoTree)
}

func TestInspector_WithBridge(t *testing.T) {
	d, err := fixture.Default()
	require.NoError(t, err)

	b := bridge.New(bridge.Options{WorkerSleep: time.Millisecond}, zaptest.NewLogger(t))
	b.Start(context.Background(), func() (platform.Accessibility, error) { return d, nil })
	t.Cleanup(func() {
		b.Close()
		<-b.Done()
	})

	in := New(b, 5*time.Millisecond, zaptest.NewLogger(t))
	hover := &Point{X: 190, Y: 550}
	require.Eventually(t, func() bool {
		in.Update(time.Now(), hover)
		return in.HasTree
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "Zero", in.Focal.Name)
	zero := in.Focal.DrillID

	notepad := model.Child(1)
	require.NoError(t, in.Expand(notepad))
	require.Eventually(t, func() bool {
		in.Update(time.Now(), nil)
		n := in.Tree.Lookup(notepad)
		return n != nil && n.Expanded
	}, 2*time.Second, 5*time.Millisecond)
	assert.Len(t, in.Tree.Lookup(notepad).Children, 3)
	assert.Equal(t, "Text Editor", in.Tree.Lookup(model.Child(1, 1)).Name)

	pad, ok := d.RuntimeIDOf("Number pad")
	require.True(t, ok)
	require.NoError(t, d.Remove(pad))

	require.NoError(t, in.Click(zero, platform.MouseLeft))
	require.Eventually(t, func() bool {
		in.Update(time.Now(), nil)
		return !in.PendingClick()
	}, 2*time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, in.LastError, action.ErrResolution)
	assert.Empty(t, d.Clicks())
}

func TestInspector_PatchReportsChanges(t *testing.T) {
	in, ch, now := captured(t, zaptest.NewLogger(t))

	main := *in.Tree.Lookup(model.Child(0))
	patch := main
	patch.Children = append([]model.Node(nil), main.Children...)
	patch.Children[0].Name = "Okay"
	patch.Children = append(patch.Children, model.Node{
		Name: "Cancel", ControlType: "Button", DrillID: model.Child(0, 1), RuntimeID: model.RuntimeID{7},
		Expanded: true,
		Children: []model.Node{{Name: "Deep", DrillID: model.Child(0, 1, 0), RuntimeID: model.RuntimeID{8}}},
	})

	ch.push(bridge.TreePatched{
		Header: bridge.Header{ID: uuid.New(), Kind: bridge.KindPatchTree},
		Patch:  patch,
	})
	in.Update(now, nil)

	require.NotNil(t, in.Patched)
	assert.True(t, in.Patched.DrillID.Equal(model.Child(0)))
	added, removed, changed := model.CountChanges(in.Patched.Changes)
	assert.Equal(t, 1, added, "unexpanded levels of the patch are not additions")
	assert.Equal(t, 0, removed)
	assert.Equal(t, 1, changed)
	assert.Equal(t, "Okay", in.Tree.Lookup(model.Child(0, 0)).Name)
	assert.True(t, in.IsOpen(model.Child(0, 1)))
}

func TestInspector_StalePatchIsDiscarded(t *testing.T) {
	in, ch, now := captured(t, zaptest.NewLogger(t))

	ch.push(bridge.TreePatched{
		Header: bridge.Header{ID: uuid.New(), Kind: bridge.KindPatchTree},
		Patch:  model.Node{Name: "Ghost", DrillID: model.Child(1), RuntimeID: model.RuntimeID{99}},
	})
	in.Update(now, nil)

	side := in.Tree.Lookup(model.Child(1))
	require.NotNil(t, side)
	assert.Equal(t, "Side", side.Name)
	assert.True(t, side.RuntimeID.Equal(model.RuntimeID{4}))
	assert.Nil(t, in.Patched)
}
