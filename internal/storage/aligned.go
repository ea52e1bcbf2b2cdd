package storage

import (
	"fmt"
	"unsafe"
)

// Aligned is a store whose first slot starts on an alignment boundary
// (normally CacheLineSize) and which owns at least one full boundary of
// padding after its last slot. Zero-size element types are the exception,
// see NewAligned.
//
// The slots are a window into one over-sized slice. Because the window and
// the padding are the same allocation, there is no separate free path to get
// wrong: the garbage collector releases the whole block once the window is
// unreachable. The Go heap does not move objects, so the alignment holds for
// the lifetime of the store.
type Aligned[T any] struct {
	slots []T
	align int
}

// NewAligned allocates length zero-valued slots starting on an align-byte
// boundary. align must be a power of two and at least the element's
// natural alignment.
//
// Zero-size element types occupy no memory and share the runtime's
// zero-size base address; their slots are not placed on a boundary.
func NewAligned[T any](length, align int) (*Aligned[T], error) {
	if length < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLength, length)
	}

	var zero T
	size := int(unsafe.Sizeof(zero))
	if align <= 0 || align&(align-1) != 0 || align < int(unsafe.Alignof(zero)) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAlignment, align)
	}

	// Zero-size elements occupy no memory, so there is nothing to share.
	if size == 0 {
		return &Aligned[T]{slots: make([]T, length), align: align}, nil
	}

	// Slot addresses step by size, so only offsets that are multiples of
	// gcd(size, align) are reachable and they repeat every align/gcd slots.
	period := align / gcd(size, align)
	lead := period - 1
	trail := (align + size - 1) / size

	n := lead + length + trail
	if s, ok := window(make([]T, n), length, size, align, period); ok {
		return &Aligned[T]{slots: s, align: align}, nil
	}

	// Small heap objects carrying pointers start a word past their size
	// class boundary, which can put every reachable offset off the line.
	// Blocks above the small-object limit are page aligned.
	if floor := (largeObjectBytes + size - 1) / size; n < floor {
		n = floor
	}
	if s, ok := window(make([]T, n), length, size, align, period); ok {
		return &Aligned[T]{slots: s, align: align}, nil
	}
	return nil, fmt.Errorf("%w: size %d, align %d", ErrUnalignable, size, align)
}

// largeObjectBytes is comfortably above the runtime's small-object size limit.
const largeObjectBytes = 64 << 10

// window returns the first length-slot window of raw that starts on an
// align boundary.
func window[T any](raw []T, length, size, align, period int) ([]T, bool) {
	base := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	mask := uintptr(align - 1)
	for k := 0; k < period; k++ {
		if (base+uintptr(k*size))&mask == 0 {
			return raw[k : k+length : k+length], true
		}
	}
	return nil, false
}

// Slots returns the aligned slot array.
func (a *Aligned[T]) Slots() []T { return a.slots }

// Len returns the number of slots.
func (a *Aligned[T]) Len() int { return len(a.slots) }

// Kind returns KindAligned.
func (a *Aligned[T]) Kind() Kind { return KindAligned }

// Align returns the boundary the first slot sits on.
func (a *Aligned[T]) Align() int { return a.align }

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
