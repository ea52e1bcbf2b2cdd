package storage_test

import (
	"errors"
	"testing"
	"unsafe"

	"golang.org/x/sys/cpu"

	"github.com/randomizedcoder/spscring/internal/storage"
)

type triple struct {
	a, b, c int32
}

func addr[T any](s []T) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(s)))
}

func TestCacheLineSize(t *testing.T) {
	if got, want := storage.CacheLineSize, int(unsafe.Sizeof(cpu.CacheLinePad{})); got != want {
		t.Errorf("CacheLineSize = %d, want %d", got, want)
	}
	if storage.CacheLineSize < 32 || storage.CacheLineSize&(storage.CacheLineSize-1) != 0 {
		t.Errorf("CacheLineSize = %d, expected a power of two >= 32", storage.CacheLineSize)
	}
}

func TestPlain(t *testing.T) {
	p, err := storage.NewPlain[int64](9)
	if err != nil {
		t.Fatalf("NewPlain: %v", err)
	}
	if p.Len() != 9 || len(p.Slots()) != 9 {
		t.Errorf("expected 9 slots, got Len()=%d len(Slots())=%d", p.Len(), len(p.Slots()))
	}
	if p.Kind() != storage.KindPlain {
		t.Errorf("expected KindPlain, got %v", p.Kind())
	}
	for i, v := range p.Slots() {
		if v != 0 {
			t.Errorf("slot %d not zero-initialized: %d", i, v)
		}
	}
}

func TestPlain_InvalidLength(t *testing.T) {
	for _, n := range []int{0, -1} {
		if _, err := storage.NewPlain[int](n); !errors.Is(err, storage.ErrInvalidLength) {
			t.Errorf("NewPlain(%d): expected ErrInvalidLength, got %v", n, err)
		}
	}
}

func testAligned[T any](t *testing.T, length, align int) {
	t.Helper()

	a, err := storage.NewAligned[T](length, align)
	if err != nil {
		t.Fatalf("NewAligned(%d, %d): %v", length, align, err)
	}
	s := a.Slots()
	if len(s) != length {
		t.Errorf("expected %d slots, got %d", length, len(s))
	}
	if cap(s) != length {
		t.Errorf("expected cap == len so appends cannot reach the padding, got cap %d", cap(s))
	}
	var zero T
	if unsafe.Sizeof(zero) == 0 {
		return
	}
	if p := addr(s); p%uintptr(align) != 0 {
		t.Errorf("slot 0 at %#x is not %d-byte aligned", p, align)
	}
	if a.Align() != align {
		t.Errorf("Align() = %d, want %d", a.Align(), align)
	}
}

// TestAligned_ZeroSize checks zero-size elements still get a usable,
// capped window even though no address is placed on a boundary.
func TestAligned_ZeroSize(t *testing.T) {
	a, err := storage.NewAligned[struct{}](8, storage.CacheLineSize)
	if err != nil {
		t.Fatalf("NewAligned: %v", err)
	}
	s := a.Slots()
	if len(s) != 8 || cap(s) != 8 {
		t.Errorf("expected len = cap = 8, got %d, %d", len(s), cap(s))
	}
	if a.Align() != storage.CacheLineSize {
		t.Errorf("Align() = %d, want %d", a.Align(), storage.CacheLineSize)
	}

	// Invalid alignments are still rejected.
	if _, err := storage.NewAligned[struct{}](8, 48); !errors.Is(err, storage.ErrInvalidAlignment) {
		t.Errorf("expected ErrInvalidAlignment, got %v", err)
	}
}

func TestAligned(t *testing.T) {
	line := storage.CacheLineSize

	t.Run("int64", func(t *testing.T) { testAligned[int64](t, 17, line) })
	t.Run("byte", func(t *testing.T) { testAligned[byte](t, 5, line) })
	t.Run("bytes3", func(t *testing.T) { testAligned[[3]byte](t, 11, line) })
	t.Run("triple", func(t *testing.T) { testAligned[triple](t, 4, line) })
	t.Run("pointer", func(t *testing.T) { testAligned[*int](t, 64, line) })
	t.Run("string", func(t *testing.T) { testAligned[string](t, 3, line) })
	t.Run("string_large", func(t *testing.T) { testAligned[string](t, 1000, line) })
	t.Run("empty", func(t *testing.T) { testAligned[struct{}](t, 8, line) })
	t.Run("single", func(t *testing.T) { testAligned[int64](t, 1, line) })
	t.Run("align256", func(t *testing.T) { testAligned[int64](t, 10, 256) })
}

func TestAligned_InvalidAlignment(t *testing.T) {
	for _, align := range []int{0, -64, 48, 100, 1, 2} {
		_, err := storage.NewAligned[int64](4, align)
		if !errors.Is(err, storage.ErrInvalidAlignment) {
			t.Errorf("NewAligned(4, %d): expected ErrInvalidAlignment, got %v", align, err)
		}
	}
}

func TestAligned_InvalidLength(t *testing.T) {
	if _, err := storage.NewAligned[int64](0, 64); !errors.Is(err, storage.ErrInvalidLength) {
		t.Errorf("expected ErrInvalidLength, got %v", err)
	}
}

func TestNew(t *testing.T) {
	testCases := []struct {
		kind  storage.Kind
		align int
	}{
		{storage.KindPlain, 0},
		{storage.KindAligned, 0},
		{storage.KindAligned, 128},
	}

	for _, tc := range testCases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			s, err := storage.New[uint64](tc.kind, 6, tc.align)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if s.Kind() != tc.kind {
				t.Errorf("expected %v, got %v", tc.kind, s.Kind())
			}
			if s.Len() != 6 {
				t.Errorf("expected Len() = 6, got %d", s.Len())
			}
			if tc.kind == storage.KindAligned {
				align := tc.align
				if align == 0 {
					align = storage.CacheLineSize
				}
				if addr(s.Slots())%uintptr(align) != 0 {
					t.Errorf("slots not %d-byte aligned", align)
				}
			}
		})
	}

	if _, err := storage.New[int](storage.Kind(9), 4, 0); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestParseKind(t *testing.T) {
	testCases := []struct {
		in      string
		want    storage.Kind
		wantErr bool
	}{
		{"plain", storage.KindPlain, false},
		{"Aligned", storage.KindAligned, false},
		{" aligned ", storage.KindAligned, false},
		{"padded", 0, true},
		{"", 0, true},
	}

	for _, tc := range testCases {
		got, err := storage.ParseKind(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseKind(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseKind(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
	}
}

func TestKind_Text(t *testing.T) {
	var k storage.Kind
	if err := k.UnmarshalText([]byte("aligned")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if k != storage.KindAligned {
		t.Errorf("expected KindAligned, got %v", k)
	}
	b, _ := k.MarshalText()
	if string(b) != "aligned" {
		t.Errorf("MarshalText = %q, want %q", b, "aligned")
	}
	if err := k.UnmarshalText([]byte("bogus")); err == nil {
		t.Error("expected error for unknown kind")
	}
}
