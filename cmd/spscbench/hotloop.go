package main

import (
	"context"
	"fmt"
	"time"

	"github.com/randomizedcoder/spscring/internal/poll"
	"github.com/randomizedcoder/spscring/internal/queue"
)

// hotloopInterval is long so the loop measures check overhead, not ticks.
const hotloopInterval = time.Hour

type hotloopVariant struct {
	name   string
	cancel func() poll.Canceler
	ticker func() poll.Ticker
}

var hotloopVariants = []hotloopVariant{
	{
		name:   "ctx+std",
		cancel: func() poll.Canceler { return poll.NewContext(context.Background()) },
		ticker: func() poll.Ticker { return poll.NewStdTicker(hotloopInterval) },
	},
	{
		name:   "ctx+atomic",
		cancel: func() poll.Canceler { return poll.NewContext(context.Background()) },
		ticker: func() poll.Ticker { return poll.NewAtomicTicker(hotloopInterval) },
	},
	{
		name:   "atomic+atomic",
		cancel: func() poll.Canceler { return poll.NewAtomic() },
		ticker: func() poll.Ticker { return poll.NewAtomicTicker(hotloopInterval) },
	},
	{
		name:   "atomic+batch",
		cancel: func() poll.Canceler { return poll.NewAtomic() },
		ticker: func() poll.Ticker { return poll.NewBatch(hotloopInterval, 1000) },
	},
}

// runHotloop times a consumer loop on one goroutine for each variant:
//
//	for {
//	    if cancel.Done() { return }
//	    if ticker.Tick() { sample() }
//	    v := q.Pop(); q.Push(v)
//	}
//
// The queue is half filled first so Pop and Push always succeed.
func runHotloop(name string, q queue.Bounded[int], sample func(), items int) []result {
	for i := 0; i < q.Cap()/2+1; i++ {
		q.Push(i)
	}

	out := make([]result, 0, len(hotloopVariants))
	for _, v := range hotloopVariants {
		c, t := v.cancel(), v.ticker()

		start := time.Now()
		for i := 0; i < items; i++ {
			if c.Done() {
				break
			}
			if t.Tick() {
				sample()
			}
			val, _ := q.Pop()
			q.Push(val)
		}
		dur := time.Since(start)

		if cc, ok := c.(*poll.ContextCanceler); ok {
			cc.Cancel()
		}
		t.Stop()
		out = append(out, result{name: fmt.Sprintf("%s/%s", name, v.name), dur: dur, items: items})
	}
	return out
}
