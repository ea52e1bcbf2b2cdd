package poll

import (
	"runtime"
	"time"
)

// Backoff is a three-stage wait used between failed Push or Pop attempts:
// busy-spin for Spins calls, then runtime.Gosched for Yields calls, then
// sleep, starting at MinSleep and doubling up to MaxSleep.
//
// The zero value yields on every call. A Backoff is owned by one goroutine.
type Backoff struct {
	Spins    int
	Yields   int
	MinSleep time.Duration
	MaxSleep time.Duration

	n     int
	sleep time.Duration
}

// DefaultBackoff returns the policy used when a nil Backoff is passed:
// 256 spins, 64 yields, then sleeps from 1µs up to 1ms.
func DefaultBackoff() *Backoff {
	return &Backoff{
		Spins:    256,
		Yields:   64,
		MinSleep: time.Microsecond,
		MaxSleep: time.Millisecond,
	}
}

// Wait blocks for the current stage's delay and advances the stage.
func (b *Backoff) Wait() {
	b.n++
	switch {
	case b.n <= b.Spins:
		// Hot spin: return immediately and let the caller poll again.
	case b.n <= b.Spins+b.Yields || b.MaxSleep <= 0:
		runtime.Gosched()
	default:
		if b.sleep < b.MinSleep {
			b.sleep = b.MinSleep
		}
		if b.sleep <= 0 {
			b.sleep = time.Microsecond
		}
		time.Sleep(b.sleep)
		if b.sleep *= 2; b.sleep > b.MaxSleep {
			b.sleep = b.MaxSleep
		}
	}
}

// Reset returns to the spin stage. Call it after a successful operation.
func (b *Backoff) Reset() {
	b.n = 0
	b.sleep = 0
}

// Stage reports what the next Wait will do: 0 spin, 1 yield, 2 sleep.
func (b *Backoff) Stage() int {
	switch {
	case b.n < b.Spins:
		return 0
	case b.n < b.Spins+b.Yields || b.MaxSleep <= 0:
		return 1
	default:
		return 2
	}
}
