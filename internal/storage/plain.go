package storage

import "fmt"

// Plain is a store backed by an ordinary slice.
//
// The slots may share cache lines with whatever the allocator placed next to
// them, including the queue's index words.
type Plain[T any] struct {
	slots []T
}

// NewPlain allocates length zero-valued slots.
func NewPlain[T any](length int) (*Plain[T], error) {
	if length < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLength, length)
	}
	return &Plain[T]{slots: make([]T, length)}, nil
}

// Slots returns the slot array.
func (p *Plain[T]) Slots() []T { return p.slots }

// Len returns the number of slots.
func (p *Plain[T]) Len() int { return len(p.slots) }

// Kind returns KindPlain.
func (p *Plain[T]) Kind() Kind { return KindPlain }
