package queue

import "sync/atomic"

// The index handoff needs acquire loads of the peer's index and release
// stores of the owner's index. sync/atomic is sequentially consistent, a
// superset of that order; the helpers keep the required ordering visible
// at each call site.

// loadAcquire is an acquire load of *p.
func loadAcquire(p *uint64) uint64 {
	return atomic.LoadUint64(p)
}

// storeRelease is a release store of v to *p.
func storeRelease(p *uint64, v uint64) {
	atomic.StoreUint64(p, v)
}
