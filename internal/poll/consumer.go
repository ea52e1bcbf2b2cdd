package poll

import (
	"io"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/randomizedcoder/spscring/internal/queue"
)

// Consumer drains a queue from a dedicated OS thread until canceled.
//
// Run locks the calling goroutine to its thread (and, with Pin set, the
// thread to CPU) so the consumer side of an SPSC ring keeps its cache lines
// warm. Between empty polls it follows Backoff. On cancellation it drains
// whatever is already visible, then returns.
//
// Only one Consumer may run per SPSC ring.
type Consumer[T any] struct {
	Queue  queue.Queue[T]
	Handle func(T)
	Cancel Canceler

	// Ticker and OnTick, if both set, run OnTick whenever Ticker fires and
	// once more on exit. Ticker is stopped when Run returns.
	Ticker Ticker
	OnTick func()

	// Backoff between empty polls. nil uses DefaultBackoff.
	Backoff *Backoff

	// Pin the consumer thread to CPU (linux only; elsewhere logged and ignored).
	Pin bool
	CPU int

	Log *logrus.Entry
}

// Run drains the queue until Cancel fires and returns the number of items
// handled. It blocks; use Start to run it in the background.
func (c *Consumer[T]) Run() uint64 {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if c.Pin {
		if err := setAffinity(c.CPU); err != nil {
			c.logger().WithError(err).WithField("cpu", c.CPU).Warn("consumer: cpu pin failed, running unpinned")
		}
	}

	b := c.Backoff
	if b == nil {
		b = DefaultBackoff()
	}
	tick := c.Ticker != nil && c.OnTick != nil

	c.logger().WithField("pinned", c.Pin).Debug("consumer: started")

	var n uint64
	for {
		if tick && c.Ticker.Tick() {
			c.OnTick()
		}

		if v, ok := c.Queue.Pop(); ok {
			c.Handle(v)
			n++
			b.Reset()
			continue
		}

		if c.Cancel != nil && c.Cancel.Done() {
			for {
				v, ok := c.Queue.Pop()
				if !ok {
					break
				}
				c.Handle(v)
				n++
			}
			if tick {
				c.OnTick()
			}
			if c.Ticker != nil {
				c.Ticker.Stop()
			}
			c.logger().WithField("items", n).Debug("consumer: stopped")
			return n
		}

		b.Wait()
	}
}

// Start runs Run on a new goroutine. The returned channel receives the item
// count once and is then closed.
func (c *Consumer[T]) Start() <-chan uint64 {
	done := make(chan uint64, 1)
	go func() {
		defer close(done)
		done <- c.Run()
	}()
	return done
}

func (c *Consumer[T]) logger() *logrus.Entry {
	if c.Log != nil {
		return c.Log
	}
	return discard
}

var discard = func() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}()
