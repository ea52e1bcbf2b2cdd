package queue

// ChannelQueue wraps a buffered channel as a Bounded queue.
//
// This is the standard library approach and the baseline SPSC is compared
// against. Each Push/Pop is a non-blocking channel operation via select with
// default, which takes the channel lock even with one producer and one
// consumer.
type ChannelQueue[T any] struct {
	ch chan T
}

// NewChannel creates a ChannelQueue holding up to size items.
func NewChannel[T any](size int) *ChannelQueue[T] {
	return &ChannelQueue[T]{
		ch: make(chan T, size),
	}
}

// Push adds an item to the queue.
// Returns false if the queue is full (non-blocking).
func (q *ChannelQueue[T]) Push(v T) bool {
	select {
	case q.ch <- v:
		return true
	default:
		return false
	}
}

// Pop removes and returns an item from the queue.
// Returns false if the queue is empty (non-blocking).
func (q *ChannelQueue[T]) Pop() (T, bool) {
	select {
	case v := <-q.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// Len returns the current number of items in the queue.
func (q *ChannelQueue[T]) Len() int {
	return len(q.ch)
}

// Cap returns the capacity of the queue.
func (q *ChannelQueue[T]) Cap() int {
	return cap(q.ch)
}

// IsEmpty reports whether the queue holds no items.
func (q *ChannelQueue[T]) IsEmpty() bool {
	return len(q.ch) == 0
}

// IsFull reports whether the queue is at capacity.
func (q *ChannelQueue[T]) IsFull() bool {
	return len(q.ch) == cap(q.ch)
}
