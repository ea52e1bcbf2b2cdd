package poll

import (
	"context"
	"sync/atomic"
)

// Canceler signals a waiting producer or consumer to give up.
//
// Implementations must be safe for concurrent use:
//   - Multiple goroutines may call Done() concurrently
//   - Cancel() may be called concurrently with Done()
type Canceler interface {
	// Done returns true if cancellation has been triggered.
	Done() bool

	// Cancel triggers cancellation. Safe to call multiple times.
	Cancel()
}

// AtomicCanceler uses an atomic.Bool for cancellation signaling.
//
// Each call to Done() is a single atomic load, cheap enough to check on
// every failed Push or Pop.
//
// Typical performance:
//   - ContextCanceler.Done(): ~15-25ns
//   - AtomicCanceler.Done(): ~1-2ns
type AtomicCanceler struct {
	done atomic.Bool
}

// NewAtomic creates a new AtomicCanceler.
func NewAtomic() *AtomicCanceler {
	return &AtomicCanceler{}
}

// Done returns true if cancellation has been triggered.
func (a *AtomicCanceler) Done() bool {
	return a.done.Load()
}

// Cancel triggers cancellation.
//
// Safe to call multiple times; subsequent calls are no-ops.
func (a *AtomicCanceler) Cancel() {
	a.done.Store(true)
}

// Reset clears the cancellation flag.
//
// Not safe to call concurrently with Done() or Cancel().
func (a *AtomicCanceler) Reset() {
	a.done.Store(false)
}

// ContextCanceler adapts a context.Context, so deadlines and parent
// cancellation bound a wait.
//
// Each call to Done() performs a non-blocking select on ctx.Done(), which
// costs a channel operation.
type ContextCanceler struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewContext creates a ContextCanceler derived from parent.
func NewContext(parent context.Context) *ContextCanceler {
	ctx, cancel := context.WithCancel(parent)
	return &ContextCanceler{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Done returns true if the context has been cancelled or has expired.
func (c *ContextCanceler) Done() bool {
	select {
	case <-c.ctx.Done():
		return true
	default:
		return false
	}
}

// Cancel cancels the derived context.
func (c *ContextCanceler) Cancel() {
	c.cancel()
}

// Err returns the context's error: nil while live, otherwise
// context.Canceled or context.DeadlineExceeded.
func (c *ContextCanceler) Err() error {
	return c.ctx.Err()
}

// Context returns the underlying context.Context.
func (c *ContextCanceler) Context() context.Context {
	return c.ctx
}
