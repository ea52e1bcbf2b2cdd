package poll_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/randomizedcoder/spscring/internal/poll"
	"github.com/randomizedcoder/spscring/internal/queue"
)

func TestPushWait_Immediate(t *testing.T) {
	q := queue.MustSPSC[int](2)
	if err := poll.PushWait[int](q, 1, nil, nil); err != nil {
		t.Fatalf("PushWait: %v", err)
	}
	if v, err := poll.PopWait[int](q, nil, nil); err != nil || v != 1 {
		t.Errorf("PopWait = %d, %v; want 1, nil", v, err)
	}
}

func TestPushWait_Canceled(t *testing.T) {
	q := queue.MustSPSC[int](1)
	q.Push(1)

	c := poll.NewAtomic()
	c.Cancel()

	err := poll.PushWait[int](q, 2, c, nil)
	if !errors.Is(err, poll.ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
	if q.Len() != 1 {
		t.Errorf("canceled push changed Len() to %d", q.Len())
	}
}

func TestPopWait_Deadline(t *testing.T) {
	q := queue.MustSPSC[int](1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	c := poll.NewContext(ctx)

	_, err := poll.PopWait[int](q, c, nil)
	if !errors.Is(err, poll.ErrCanceled) {
		t.Errorf("expected ErrCanceled, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected wrapped DeadlineExceeded, got %v", err)
	}
}

func TestPushWait_WaitsForConsumer(t *testing.T) {
	q := queue.MustSPSC[int](1)
	q.Push(1)

	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Pop()
	}()

	b := &poll.Backoff{Spins: 10, Yields: 10, MinSleep: time.Microsecond, MaxSleep: time.Millisecond}
	if err := poll.PushWait[int](q, 2, poll.NewAtomic(), b); err != nil {
		t.Fatalf("PushWait: %v", err)
	}
	if b.Stage() != 0 {
		t.Errorf("expected backoff reset after success, stage %d", b.Stage())
	}
}

// TestWait_Transfer moves a sequence through a small ring with both sides
// waiting on each other.
func TestWait_Transfer(t *testing.T) {
	q := queue.MustSPSC[int](4)
	const count = 20000
	c := poll.NewAtomic()

	errc := make(chan error, 1)
	go func() {
		b := poll.DefaultBackoff()
		for i := 0; i < count; i++ {
			if err := poll.PushWait[int](q, i, c, b); err != nil {
				errc <- err
				return
			}
		}
		errc <- nil
	}()

	b := poll.DefaultBackoff()
	for i := 0; i < count; i++ {
		v, err := poll.PopWait[int](q, nil, b)
		if err != nil {
			t.Fatalf("PopWait: %v", err)
		}
		if v != i {
			t.Fatalf("FIFO violation: expected %d, got %d", i, v)
		}
	}

	if err := <-errc; err != nil {
		t.Fatalf("producer: %v", err)
	}
}
