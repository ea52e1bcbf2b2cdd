package queue_test

import (
	"testing"

	"github.com/randomizedcoder/spscring/internal/queue"
	"github.com/randomizedcoder/spscring/internal/storage"
)

func testQueue[T comparable](t *testing.T, q queue.Queue[T], val T, name string) {
	t.Helper()

	// Empty queue returns false
	if _, ok := q.Pop(); ok {
		t.Errorf("%s: expected Pop() = false on empty queue", name)
	}

	// Push succeeds
	if !q.Push(val) {
		t.Errorf("%s: expected Push() = true", name)
	}

	// Pop returns pushed value
	got, ok := q.Pop()
	if !ok {
		t.Errorf("%s: expected Pop() = true after Push()", name)
	}
	if got != val {
		t.Errorf("%s: expected %v, got %v", name, val, got)
	}

	// Queue is empty again
	if _, ok := q.Pop(); ok {
		t.Errorf("%s: expected Pop() = false after draining", name)
	}
}

// bounded returns one instance of every Bounded implementation.
func bounded(t *testing.T, capacity int) []struct {
	name string
	q    queue.Bounded[int]
} {
	t.Helper()

	plain, err := queue.NewSPSC[int](capacity, queue.WithStorage(storage.KindPlain))
	if err != nil {
		t.Fatalf("NewSPSC(plain): %v", err)
	}
	aligned, err := queue.NewSPSC[int](capacity, queue.WithStorage(storage.KindAligned))
	if err != nil {
		t.Fatalf("NewSPSC(aligned): %v", err)
	}

	return []struct {
		name string
		q    queue.Bounded[int]
	}{
		{"Channel", queue.NewChannel[int](capacity)},
		{"SPSC/plain", plain},
		{"SPSC/aligned", aligned},
	}
}

func TestQueueInterface(t *testing.T) {
	for _, tc := range bounded(t, 8) {
		t.Run(tc.name, func(t *testing.T) {
			testQueue(t, tc.q, 42, tc.name)
		})
	}
}

func TestBounded_Full(t *testing.T) {
	for _, tc := range bounded(t, 2) {
		t.Run(tc.name, func(t *testing.T) {
			q := tc.q
			if !q.Push(1) {
				t.Error("expected Push(1) = true")
			}
			if !q.Push(2) {
				t.Error("expected Push(2) = true")
			}
			if !q.IsFull() {
				t.Error("expected IsFull() = true")
			}
			if q.Push(3) {
				t.Error("expected Push(3) = false on full queue")
			}
			if q.Len() != 2 {
				t.Errorf("expected Len() = 2 after rejected push, got %d", q.Len())
			}
		})
	}
}

func TestBounded_FIFO(t *testing.T) {
	for _, tc := range bounded(t, 8) {
		t.Run(tc.name, func(t *testing.T) {
			q := tc.q
			for i := 0; i < 5; i++ {
				if !q.Push(i) {
					t.Fatalf("expected Push(%d) = true", i)
				}
			}

			for i := 0; i < 5; i++ {
				got, ok := q.Pop()
				if !ok {
					t.Fatalf("expected Pop() = true for item %d", i)
				}
				if got != i {
					t.Errorf("FIFO violation: expected %d, got %d", i, got)
				}
			}
		})
	}
}

func TestBounded_LenCap(t *testing.T) {
	for _, tc := range bounded(t, 8) {
		t.Run(tc.name, func(t *testing.T) {
			q := tc.q
			if q.Len() != 0 {
				t.Errorf("expected Len() = 0, got %d", q.Len())
			}
			if q.Cap() != 8 {
				t.Errorf("expected Cap() = 8, got %d", q.Cap())
			}
			if !q.IsEmpty() {
				t.Error("expected IsEmpty() = true")
			}

			q.Push(1)
			q.Push(2)

			if q.Len() != 2 {
				t.Errorf("expected Len() = 2, got %d", q.Len())
			}
			if q.IsEmpty() || q.IsFull() {
				t.Errorf("expected neither empty nor full, got IsEmpty=%v IsFull=%v", q.IsEmpty(), q.IsFull())
			}
		})
	}
}
