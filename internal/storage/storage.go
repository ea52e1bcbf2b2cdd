// Package storage provides the fixed-length slot stores that back the SPSC
// queue.
//
// Two strategies implement the Storage interface:
//   - Plain: a regular Go slice with the platform's default alignment
//   - Aligned: a slice whose first slot starts on a cache-line boundary and
//     whose last cache line is not shared with any other allocation
//
// A store is sized once at construction and never grows. The slots and the
// memory they live in form a single Go allocation, so the store is released
// as one unit when it becomes unreachable.
package storage

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// CacheLineSize is the CPU cache line size for the target architecture
// (64 bytes on amd64, 128 on arm64), as padded by golang.org/x/sys/cpu.
const CacheLineSize = int(unsafe.Sizeof(cpu.CacheLinePad{}))

var (
	// ErrInvalidLength is returned when a store is requested with fewer than one slot.
	ErrInvalidLength = errors.New("storage: length must be at least 1")

	// ErrInvalidAlignment is returned when the alignment is not a power of two
	// or is smaller than the element's own alignment.
	ErrInvalidAlignment = errors.New("storage: alignment must be a power of two no smaller than the element alignment")

	// ErrUnalignable is returned when no slot offset inside the allocation
	// lands on the requested boundary. This only happens for element sizes
	// carrying a larger power-of-two factor than the allocation address.
	ErrUnalignable = errors.New("storage: allocation cannot be aligned for this element type")
)

// Kind selects a storage strategy.
type Kind uint8

const (
	// KindPlain allocates a regular slice.
	KindPlain Kind = iota
	// KindAligned allocates a cache-line aligned, padded slice.
	KindAligned
)

// String returns the config name of the kind.
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindAligned:
		return "aligned"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ParseKind parses "plain" or "aligned" (case-insensitive).
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "plain":
		return KindPlain, nil
	case "aligned":
		return KindAligned, nil
	}
	return 0, fmt.Errorf("storage: unknown kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so a Kind can be read
// straight from YAML or flags.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Storage is a fixed-length, contiguous run of slots.
//
// Slots returns the same slice for the lifetime of the store; callers may
// cache it. The slice's capacity equals its length so appends can never
// spill into padding.
type Storage[T any] interface {
	// Slots returns the slot array.
	Slots() []T

	// Len returns the number of slots.
	Len() int

	// Kind reports the strategy that allocated the store.
	Kind() Kind
}

// New allocates a store of the given kind. align is only consulted for
// KindAligned; pass 0 to use CacheLineSize.
func New[T any](kind Kind, length, align int) (Storage[T], error) {
	switch kind {
	case KindPlain:
		s, err := NewPlain[T](length)
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindAligned:
		if align == 0 {
			align = CacheLineSize
		}
		s, err := NewAligned[T](length, align)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("storage: unknown kind %v", kind)
	}
}
