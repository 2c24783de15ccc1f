// Package bridge connects the non-blocking consumer to the single worker
// goroutine that owns the accessibility provider.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrChannelFull is returned by TrySend when the threadbound channel
	// has no room. The request is dropped.
	ErrChannelFull = errors.New("threadbound channel full")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("bridge closed")
	// ErrWorkerStopped reports that the worker has exited.
	ErrWorkerStopped = errors.New("inspector worker stopped")
)

// Options sizes the channels and paces the worker.
type Options struct {
	ThreadboundCapacity int
	GameboundCapacity   int
	// WorkerSleep is the pause after each handled request.
	WorkerSleep time.Duration
	// MaxDepth bounds full subtree gathers (0 = unlimited).
	MaxDepth int
}

// DefaultOptions returns the stock channel sizes and pacing.
func DefaultOptions() Options {
	return Options{
		ThreadboundCapacity: 10,
		GameboundCapacity:   10,
		WorkerSleep:         50 * time.Millisecond,
	}
}

// Bridge is the channel pair between the consumer and the worker.
type Bridge struct {
	opts        Options
	log         *zap.Logger
	threadbound chan Envelope
	gamebound   chan Reply

	sendMu sync.RWMutex
	closed bool

	callMu sync.Mutex

	started  bool
	done     chan struct{}
	stopOnce sync.Once
	errMu    sync.Mutex
	err      error
}

// New creates a bridge. Start must be called to run its worker.
func New(opts Options, log *zap.Logger) *Bridge {
	def := DefaultOptions()
	if opts.ThreadboundCapacity <= 0 {
		opts.ThreadboundCapacity = def.ThreadboundCapacity
	}
	if opts.GameboundCapacity <= 0 {
		opts.GameboundCapacity = def.GameboundCapacity
	}
	if opts.WorkerSleep < 0 {
		opts.WorkerSleep = 0
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Bridge{
		opts:        opts,
		log:         log,
		threadbound: make(chan Envelope, opts.ThreadboundCapacity),
		gamebound:   make(chan Reply, opts.GameboundCapacity),
		done:        make(chan struct{}),
	}
}

// TrySend queues a request without blocking and returns its id. A full
// channel drops the request with ErrChannelFull.
func (b *Bridge) TrySend(req Request) (uuid.UUID, error) {
	if err := b.Err(); err != nil {
		return uuid.Nil, err
	}
	b.sendMu.RLock()
	defer b.sendMu.RUnlock()
	if b.closed {
		return uuid.Nil, ErrClosed
	}
	env := Envelope{ID: uuid.New(), Request: req}
	select {
	case b.threadbound <- env:
		b.log.Debug("request queued", zap.Stringer("id", env.ID), zap.String("kind", string(req.Kind())))
		return env.ID, nil
	default:
		b.log.Warn("dropping request", zap.String("kind", string(req.Kind())), zap.Error(ErrChannelFull))
		return uuid.Nil, ErrChannelFull
	}
}

// Drain returns every reply currently waiting, without blocking.
func (b *Bridge) Drain() []Reply {
	var out []Reply
	for {
		select {
		case r := <-b.gamebound:
			out = append(out, r)
		default:
			return out
		}
	}
}

// Call sends req and waits for its reply. It is for request/response
// consumers and must not be mixed with Drain on the same bridge. An
// ErrorReply is returned together with its error.
func (b *Bridge) Call(ctx context.Context, req Request) (Reply, error) {
	b.callMu.Lock()
	defer b.callMu.Unlock()

	env := Envelope{ID: uuid.New(), Request: req}
	if err := b.send(ctx, env); err != nil {
		return nil, err
	}
	for {
		select {
		case r := <-b.gamebound:
			if r.Head().ID != env.ID {
				b.log.Debug("discarding unrelated reply", zap.Stringer("id", r.Head().ID))
				continue
			}
			if er, ok := r.(ErrorReply); ok {
				return r, er
			}
			return r, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-b.done:
			return nil, b.Err()
		}
	}
}

// Caller sends one request and waits for its reply.
type Caller interface {
	Call(ctx context.Context, req Request) (Reply, error)
}

// CallAs calls req on c and asserts the reply type.
func CallAs[T Reply](ctx context.Context, c Caller, req Request) (T, error) {
	var zero T
	reply, err := c.Call(ctx, req)
	if err != nil {
		return zero, err
	}
	typed, ok := reply.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected reply %T to %s", reply, req.Kind())
	}
	return typed, nil
}

func (b *Bridge) send(ctx context.Context, env Envelope) error {
	b.sendMu.RLock()
	defer b.sendMu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	select {
	case b.threadbound <- env:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-b.done:
		return b.Err()
	}
}

// Close closes the threadbound channel. The worker stops after it has
// handled what was already queued.
func (b *Bridge) Close() {
	b.sendMu.Lock()
	defer b.sendMu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.threadbound)
	if !b.started {
		b.stop(ErrClosed)
	}
}

// Done is closed when the worker exits.
func (b *Bridge) Done() <-chan struct{} { return b.done }

// Err is nil while the worker runs and wraps ErrWorkerStopped after.
func (b *Bridge) Err() error {
	b.errMu.Lock()
	defer b.errMu.Unlock()
	return b.err
}

func (b *Bridge) stop(cause error) {
	b.stopOnce.Do(func() {
		b.errMu.Lock()
		b.err = fmt.Errorf("%w: %w", ErrWorkerStopped, cause)
		b.errMu.Unlock()
		close(b.done)
	})
}
