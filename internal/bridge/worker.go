package bridge

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/mj1618/ui-inspector/internal/action"
	"github.com/mj1618/ui-inspector/internal/gather"
	"github.com/mj1618/ui-inspector/internal/model"
	"github.com/mj1618/ui-inspector/internal/platform"
	"github.com/mj1618/ui-inspector/internal/resolve"
)

// WorkerOption customises the worker started by Start.
type WorkerOption func(*worker)

// WithResolvers sets the app resolvers used for ResolveApps.
func WithResolvers(r *resolve.Registry) WorkerOption {
	return func(w *worker) { w.resolvers = r }
}

// WithClipboard replaces the clipboard writer used by ExportTree.
func WithClipboard(write func(string) error) WorkerOption {
	return func(w *worker) { w.copy = write }
}

type worker struct {
	b          *Bridge
	log        *zap.Logger
	acc        platform.Accessibility
	gatherer   *gather.Gatherer
	dispatcher *action.Dispatcher
	resolvers  *resolve.Registry
	copy       func(string) error
}

// Start runs the worker on a goroutine locked to its own OS thread. The
// factory is called on that thread and the provider it returns is never
// touched from anywhere else. The worker exits when the threadbound channel
// is closed, when ctx is done, or when the factory fails.
func (b *Bridge) Start(ctx context.Context, factory platform.Factory, opts ...WorkerOption) {
	b.sendMu.Lock()
	if b.started {
		b.sendMu.Unlock()
		return
	}
	b.started = true
	b.sendMu.Unlock()

	w := &worker{
		b:    b,
		log:  b.log.Named("worker"),
		copy: clipboard.WriteAll,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.resolvers == nil {
		w.resolvers = resolve.Default(w.log)
	}
	go w.run(ctx, factory)
}

func (w *worker) run(ctx context.Context, factory platform.Factory) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	acc, err := factory()
	if err != nil {
		w.log.Error("cannot open accessibility backend", zap.Error(err))
		w.b.stop(fmt.Errorf("open backend: %w", err))
		return
	}
	w.acc = acc
	w.gatherer = gather.New(acc, w.log)
	w.gatherer.MaxDepth = w.b.opts.MaxDepth
	w.dispatcher = action.NewDispatcher(acc, w.log)
	w.log.Debug("worker started")

	for {
		var env Envelope
		var ok bool
		select {
		case env, ok = <-w.b.threadbound:
		case <-ctx.Done():
			w.log.Debug("worker cancelled")
			w.b.stop(ctx.Err())
			return
		}
		if !ok {
			w.log.Debug("threadbound channel closed")
			w.b.stop(ErrClosed)
			return
		}

		reply := w.handle(env)
		select {
		case w.b.gamebound <- reply:
		case <-ctx.Done():
			w.log.Error("cannot deliver reply", zap.Stringer("id", env.ID), zap.Error(ctx.Err()))
			w.b.stop(ctx.Err())
			return
		}

		if w.b.opts.WorkerSleep > 0 {
			t := time.NewTimer(w.b.opts.WorkerSleep)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
				w.b.stop(ctx.Err())
				return
			}
		}
	}
}

// handle dispatches one envelope and always produces exactly one reply.
func (w *worker) handle(env Envelope) (reply Reply) {
	kind := env.Request.Kind()
	h := Header{ID: env.ID, Kind: kind}
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			w.log.Error("handler panicked", zap.String("kind", string(kind)), zap.Any("panic", p))
			reply = ErrorReply{Header: h, Err: fmt.Errorf("handler panic: %v", p)}
		}
		if er, ok := reply.(ErrorReply); ok {
			w.log.Warn("request failed", zap.String("kind", string(kind)), zap.Error(er.Err))
			return
		}
		w.log.Debug("request handled", zap.String("kind", string(kind)), zap.Duration("took", time.Since(start)))
	}()

	var err error
	switch req := env.Request.(type) {
	case CaptureTreeAt:
		var res gather.Result
		if res, err = w.gatherer.At(req.X, req.Y); err == nil {
			return TreeCaptured{Header: h, Tree: res.Tree, Focal: res.Focal}
		}
	case GatherChildren:
		var children []model.Node
		if children, err = w.children(req); err == nil {
			return ChildrenGathered{Header: h, DrillID: req.DrillID, RuntimeID: req.RuntimeID, Children: children}
		}
	case ExportTree:
		var tree model.Node
		if tree, err = w.subtree(req.DrillID, req.RuntimeID); err == nil {
			if req.Clipboard {
				err = w.copy(model.FormatTree(tree))
			}
			if err == nil {
				return TreeExported{Header: h, Tree: tree}
			}
			err = fmt.Errorf("clipboard: %w", err)
		}
	case PatchTree:
		var patch model.Node
		if patch, err = w.subtree(req.DrillID, req.RuntimeID); err == nil {
			return TreePatched{Header: h, Patch: patch}
		}
	case Click:
		err = w.dispatcher.Click(req.DrillID, req.Button, req.RuntimeID)
		if err == nil || errors.Is(err, action.ErrUnsupportedButton) {
			return ClickAck{Header: h, Unsupported: err != nil}
		}
	case ClickAt:
		err = w.dispatcher.ClickAt(req.X, req.Y, req.Button)
		if err == nil || errors.Is(err, action.ErrUnsupportedButton) {
			return ClickAck{Header: h, Unsupported: err != nil}
		}
	case ResolveApps:
		var apps []resolve.App
		if apps, err = w.resolvers.Snapshot(w.acc); err == nil {
			return AppsResolved{Header: h, Apps: apps}
		}
	default:
		err = fmt.Errorf("unknown request %T", env.Request)
	}
	return ErrorReply{Header: h, Err: err}
}

func (w *worker) children(req GatherChildren) ([]model.Node, error) {
	el, err := action.Resolve(w.acc, req.DrillID, req.RuntimeID)
	if err != nil {
		return nil, err
	}
	return w.gatherer.Children(el, req.DrillID)
}

func (w *worker) subtree(id model.DrillID, rid model.RuntimeID) (model.Node, error) {
	el, err := action.Resolve(w.acc, id, rid)
	if err != nil {
		return model.Node{}, err
	}
	return w.gatherer.Unfiltered(el, id)
}
