package poll

import (
	"sync/atomic"
	"time"
	_ "unsafe" // Required for go:linkname
)

// nanotime returns the current monotonic time in nanoseconds.
// This is faster than time.Now() because it returns a single int64
// and avoids constructing a time.Time struct.
//
// Note: This uses go:linkname to access an internal runtime function.
// It may break in future Go versions, though it has been stable.
//
//go:linkname nanotime runtime.nanotime
func nanotime() int64

// Ticker signals when an interval has elapsed, without a timer channel.
//
// A consumer loop calls Tick() once per iteration and does its periodic
// work (sampling occupancy, flushing stats) when it returns true.
type Ticker interface {
	// Tick returns true if the interval has elapsed since the last tick.
	// This is a non-blocking check.
	Tick() bool

	// Reset starts a new interval from now, restarting a stopped ticker.
	Reset()

	// Stop makes Tick report false until the next Reset. Consumer calls it
	// on exit.
	Stop()
}

// AtomicTicker compares runtime.nanotime against the last tick.
//
// Tick is safe for concurrent use: a compare-and-swap makes sure only one
// caller observes each tick.
//
// Typical performance:
//   - time.Ticker select: ~20-40ns
//   - AtomicTicker.Tick(): ~3-5ns
type AtomicTicker struct {
	interval int64 // nanoseconds
	lastTick atomic.Int64
	stopped  atomic.Bool
}

// NewAtomicTicker creates an AtomicTicker with the specified interval.
func NewAtomicTicker(interval time.Duration) *AtomicTicker {
	t := &AtomicTicker{
		interval: int64(interval),
	}
	t.lastTick.Store(nanotime())
	return t
}

// Tick returns true if the interval has elapsed since the last tick.
func (a *AtomicTicker) Tick() bool {
	if a.stopped.Load() {
		return false
	}
	now := nanotime()
	last := a.lastTick.Load()

	if now-last >= a.interval {
		if a.lastTick.CompareAndSwap(last, now) {
			return true
		}
	}
	return false
}

// Reset starts a new interval from now.
func (a *AtomicTicker) Reset() {
	a.lastTick.Store(nanotime())
	a.stopped.Store(false)
}

// Stop disables Tick until Reset.
func (a *AtomicTicker) Stop() {
	a.stopped.Store(true)
}

// Interval returns the ticker's interval.
func (a *AtomicTicker) Interval() time.Duration {
	return time.Duration(a.interval)
}

// BatchTicker reads the clock only on every Nth call to Tick().
//
// It amortizes the clock read across many loop iterations and is meant for
// a single goroutine (the consumer). With every=1000 and interval=100ms the
// clock is read once per 1000 calls and a tick fires if 100ms has passed.
type BatchTicker struct {
	interval time.Duration
	every    int
	count    int
	lastTick time.Time
	stopped  bool
}

// NewBatch creates a BatchTicker that reads the clock every N calls.
// every < 1 is treated as 1.
func NewBatch(interval time.Duration, every int) *BatchTicker {
	if every < 1 {
		every = 1
	}
	return &BatchTicker{
		interval: interval,
		every:    every,
		lastTick: time.Now(),
	}
}

// Tick returns true if the interval has elapsed.
//
// On calls between clock reads this returns false immediately.
func (b *BatchTicker) Tick() bool {
	if b.stopped {
		return false
	}
	b.count++
	if b.count%b.every != 0 {
		return false
	}

	now := time.Now()
	if now.Sub(b.lastTick) >= b.interval {
		b.lastTick = now
		return true
	}
	return false
}

// Reset clears the call count and starts a new interval from now.
func (b *BatchTicker) Reset() {
	b.count = 0
	b.lastTick = time.Now()
	b.stopped = false
}

// Stop disables Tick until Reset.
func (b *BatchTicker) Stop() {
	b.stopped = true
}

// Every returns the batch size.
func (b *BatchTicker) Every() int {
	return b.every
}

// Interval returns the ticker's interval.
func (b *BatchTicker) Interval() time.Duration {
	return b.interval
}

// StdTicker adapts a time.Ticker with a non-blocking receive. It is the
// baseline the other tickers are measured against; call Stop when done.
type StdTicker struct {
	ticker   *time.Ticker
	interval time.Duration
}

// NewStdTicker starts a time.Ticker with the given interval.
func NewStdTicker(interval time.Duration) *StdTicker {
	return &StdTicker{ticker: time.NewTicker(interval), interval: interval}
}

// Tick reports whether a tick is pending on the channel.
func (s *StdTicker) Tick() bool {
	select {
	case <-s.ticker.C:
		return true
	default:
		return false
	}
}

// Reset starts a new interval from now.
func (s *StdTicker) Reset() {
	s.ticker.Reset(s.interval)
}

// Stop releases the underlying timer. No tick is delivered after Stop
// until Reset.
func (s *StdTicker) Stop() {
	s.ticker.Stop()
}
