package queue

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/sys/cpu"

	"github.com/randomizedcoder/spscring/internal/storage"
)

// ErrInvalidCapacity is returned when a queue is requested with capacity < 1.
var ErrInvalidCapacity = errors.New("queue: capacity must be at least 1")

// SPSC is a lock-free single-producer single-consumer ring.
//
// A ring of capacity N owns N+1 slots. head (consumer-owned) and tail
// (producer-owned) advance modulo N+1, so head == tail can only mean empty:
// a full ring leaves tail one slot behind head. No item counter is kept.
//
// Each side keeps its index next to a private copy of the peer's index on
// its own cache line, and only reloads the peer's index when the copy says
// full (producer) or empty (consumer).
//
// Typical performance (push+pop in one goroutine, amd64):
//   - ChannelQueue: ~40-60ns
//   - SPSC: ~3-6ns
type SPSC[T any] struct {
	_ cpu.CacheLinePad

	// Consumer side.
	head       uint64
	cachedTail uint64
	_          cpu.CacheLinePad

	// Producer side.
	tail       uint64
	cachedHead uint64
	_          cpu.CacheLinePad

	// Read-only after construction.
	slots  []T
	length uint64
	kind   storage.Kind
}

type options struct {
	kind  storage.Kind
	align int
}

// Option configures NewSPSC.
type Option func(*options)

// WithStorage selects the slot storage strategy. The default is
// storage.KindAligned.
func WithStorage(kind storage.Kind) Option {
	return func(o *options) { o.kind = kind }
}

// WithAlignment sets the slot alignment in bytes for storage.KindAligned.
// The default is storage.CacheLineSize.
func WithAlignment(bytes int) Option {
	return func(o *options) { o.align = bytes }
}

// NewSPSC creates a ring holding up to capacity items.
//
// Capacity is not rounded: any capacity >= 1 is accepted and wraparound
// uses compare-and-reset instead of a power-of-two mask.
func NewSPSC[T any](capacity int, opts ...Option) (*SPSC[T], error) {
	if capacity < 1 || capacity == math.MaxInt {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}

	o := options{kind: storage.KindAligned, align: storage.CacheLineSize}
	for _, opt := range opts {
		opt(&o)
	}

	st, err := storage.New[T](o.kind, capacity+1, o.align)
	if err != nil {
		return nil, fmt.Errorf("queue: allocate %d slots: %w", capacity+1, err)
	}

	return &SPSC[T]{
		slots:  st.Slots(),
		length: uint64(st.Len()),
		kind:   st.Kind(),
	}, nil
}

// MustSPSC is like NewSPSC but panics on error. Intended for tests,
// benchmarks and package-level initialization with constant arguments.
func MustSPSC[T any](capacity int, opts ...Option) *SPSC[T] {
	q, err := NewSPSC[T](capacity, opts...)
	if err != nil {
		panic(err)
	}
	return q
}

// Push adds v to the ring.
// Returns false, leaving the ring untouched, if it is full.
//
// SPSC CONTRACT: Only ONE goroutine may call Push().
func (q *SPSC[T]) Push(v T) bool {
	tail := q.tail
	next := tail + 1
	if next == q.length {
		next = 0
	}

	if next == q.cachedHead {
		q.cachedHead = loadAcquire(&q.head)
		if next == q.cachedHead {
			return false
		}
	}

	q.slots[tail] = v

	// Publish: the slot write happens before the consumer sees the new tail.
	storeRelease(&q.tail, next)
	return true
}

// Pop removes and returns the oldest item.
// Returns the zero value and false, leaving the ring untouched, if it is
// empty.
//
// SPSC CONTRACT: Only ONE goroutine may call Pop().
func (q *SPSC[T]) Pop() (T, bool) {
	var zero T

	head := q.head
	if head == q.cachedTail {
		q.cachedTail = loadAcquire(&q.tail)
		if head == q.cachedTail {
			return zero, false
		}
	}

	v := q.slots[head]
	q.slots[head] = zero // drop the reference for the GC

	next := head + 1
	if next == q.length {
		next = 0
	}

	// Release the slot back to the producer.
	storeRelease(&q.head, next)
	return v, true
}

// Len returns the number of queued items.
//
// Safe to call from any goroutine, but head and tail are loaded one after
// the other, not as a pair: under concurrent Push/Pop the result is a
// snapshot that may already be stale. Use it for metrics or backoff
// heuristics, never to decide whether Push or Pop will succeed.
func (q *SPSC[T]) Len() int {
	head := loadAcquire(&q.head)
	tail := loadAcquire(&q.tail)
	return int((tail + q.length - head) % q.length)
}

// IsEmpty reports whether Len() == 0. Same caveat as Len.
func (q *SPSC[T]) IsEmpty() bool {
	return q.Len() == 0
}

// IsFull reports whether Len() == Cap(). Same caveat as Len.
func (q *SPSC[T]) IsFull() bool {
	return q.Len() == int(q.length-1)
}

// Cap returns the capacity requested at construction.
func (q *SPSC[T]) Cap() int {
	return int(q.length - 1)
}

// Kind returns the storage strategy backing the slots.
func (q *SPSC[T]) Kind() storage.Kind {
	return q.kind
}
