// Package queue provides the single-producer single-consumer ring and the
// buffers it is measured against.
//
// Implementations:
//   - SPSC: lock-free ring over a storage strategy (plain or cache-aligned)
//   - ChannelQueue: buffered channel with non-blocking select, the baseline
//   - Fixed: single-goroutine, unchecked buffer with no wraparound
//
// # SPSC Contract
//
// SPSC is safe for exactly ONE goroutine calling Push and exactly ONE
// goroutine calling Pop, concurrently. The contract is structural and is not
// checked at runtime; a second producer or consumer corrupts the ring.
//
// Push and Pop never block and never allocate. A false result means "full"
// or "empty" and is an expected steady-state outcome: the caller decides
// whether to retry, drop or back off (see package poll).
package queue

// Queue is a non-blocking single-producer single-consumer queue.
type Queue[T any] interface {
	// Push adds an item to the queue.
	// Returns false if the queue is full.
	Push(T) bool

	// Pop removes and returns the oldest item.
	// Returns false if the queue is empty.
	Pop() (T, bool)
}

// Bounded is a Queue with a fixed capacity and occupancy queries.
//
// Under concurrent use Len, IsEmpty and IsFull are hints: they read the
// producer and consumer positions separately, not as a pair.
type Bounded[T any] interface {
	Queue[T]

	// Len returns the number of queued items.
	Len() int

	// Cap returns the maximum number of queued items.
	Cap() int

	// IsEmpty reports whether Len() == 0.
	IsEmpty() bool

	// IsFull reports whether Len() == Cap().
	IsFull() bool
}
