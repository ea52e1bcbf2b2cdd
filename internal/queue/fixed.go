package queue

// Fixed is a single-goroutine buffer with no overflow or underflow checks.
//
// Offsets only grow: space freed by Pop is not reused until Reset. The caller
// must never Push more than Cap() items between resets nor Pop more than was
// pushed; doing so hits a slice bounds panic or returns stale data.
//
// Fixed has no concurrency contract and deliberately does not implement
// Queue, so it cannot be handed to code expecting the SPSC guarantees.
type Fixed[T any] struct {
	slots []T
	head  int
	tail  int
}

// NewFixed creates a Fixed buffer with room for capacity items.
// Panics if capacity < 1.
func NewFixed[T any](capacity int) *Fixed[T] {
	if capacity < 1 {
		panic("queue: Fixed capacity must be at least 1")
	}
	return &Fixed[T]{slots: make([]T, capacity)}
}

// Push appends v.
func (f *Fixed[T]) Push(v T) {
	f.slots[f.tail] = v
	f.tail++
}

// Pop returns the oldest unread item.
func (f *Fixed[T]) Pop() T {
	v := f.slots[f.head]
	f.head++
	return v
}

// Len returns the number of pushed but unread items.
func (f *Fixed[T]) Len() int { return f.tail - f.head }

// Cap returns the capacity.
func (f *Fixed[T]) Cap() int { return len(f.slots) }

// IsEmpty reports whether Len() == 0.
func (f *Fixed[T]) IsEmpty() bool { return f.Len() == 0 }

// IsFull reports whether Len() == Cap().
func (f *Fixed[T]) IsFull() bool { return f.Len() == len(f.slots) }

// Reset rewinds both offsets so the buffer can be filled again.
// Slot contents are left in place.
func (f *Fixed[T]) Reset() {
	f.head, f.tail = 0, 0
}
