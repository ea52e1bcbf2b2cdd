// Package poll provides the caller-side waiting policy for non-blocking
// queues.
//
// The queues in package queue never block: a false Push or Pop is a normal
// result. This package holds the pieces a caller uses to decide what to do
// about it:
//   - Canceler: AtomicCanceler or ContextCanceler, checked on every retry
//   - Backoff: spin, then yield, then sleep with a capped, doubling delay
//   - Ticker: AtomicTicker or BatchTicker, for periodic work in hot loops
//   - PushWait / PopWait: retry a single operation until it succeeds or is
//     canceled
//   - Consumer: drains a queue on a locked (optionally CPU-pinned) OS thread
//
// Exactly one goroutine may push to a given SPSC ring and exactly one may
// pop from it; PushWait and PopWait do not change that.
package poll

import (
	"errors"
	"fmt"

	"github.com/randomizedcoder/spscring/internal/queue"
)

// ErrCanceled is returned when a wait is abandoned because its Canceler fired.
// When the Canceler carries a cause (ContextCanceler), the cause is wrapped
// too, so errors.Is(err, context.DeadlineExceeded) works.
var ErrCanceled = errors.New("poll: canceled")

// PushWait retries q.Push(v) until it succeeds or c is canceled.
//
// c may be nil (wait forever). b may be nil (DefaultBackoff); a non-nil b is
// reset before returning so it can be reused for the next item.
func PushWait[T any](q queue.Queue[T], v T, c Canceler, b *Backoff) error {
	if q.Push(v) {
		return nil
	}
	if b == nil {
		b = DefaultBackoff()
	}
	defer b.Reset()

	for {
		if c != nil && c.Done() {
			return canceled(c)
		}
		b.Wait()
		if q.Push(v) {
			return nil
		}
	}
}

// PopWait retries q.Pop() until it yields an item or c is canceled.
// c and b follow the same rules as in PushWait.
func PopWait[T any](q queue.Queue[T], c Canceler, b *Backoff) (T, error) {
	if v, ok := q.Pop(); ok {
		return v, nil
	}
	if b == nil {
		b = DefaultBackoff()
	}
	defer b.Reset()

	for {
		if c != nil && c.Done() {
			var zero T
			return zero, canceled(c)
		}
		b.Wait()
		if v, ok := q.Pop(); ok {
			return v, nil
		}
	}
}

func canceled(c Canceler) error {
	if e, ok := c.(interface{ Err() error }); ok {
		if err := e.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrCanceled, err)
		}
	}
	return ErrCanceled
}
