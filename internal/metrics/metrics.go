// Package metrics exports queue hand-off counters and occupancy to
// Prometheus.
//
// Counters are cheap but not free: the harness observes every push and pop,
// production consumers should observe in batches or only sample occupancy.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "spscring"

var (
	// ItemsTotal counts successful pushes and pops per queue.
	ItemsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "items_total",
		Help:      "Items successfully pushed or popped.",
	}, []string{"queue", "op"})

	// RejectsTotal counts pushes refused by a full queue and pops on an empty one.
	RejectsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rejects_total",
		Help:      "Push attempts on a full queue and pop attempts on an empty one.",
	}, []string{"queue", "op"})

	// Occupancy is the last sampled Len() per queue.
	Occupancy = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "occupancy",
		Help:      "Sampled number of queued items (best-effort snapshot).",
	}, []string{"queue"})

	// Capacity is the fixed Cap() per queue.
	Capacity = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "capacity",
		Help:      "Fixed queue capacity.",
	}, []string{"queue"})
)

// RegisterAll registers the collectors with reg.
func RegisterAll(reg prometheus.Registerer) {
	reg.MustRegister(ItemsTotal, RejectsTotal, Occupancy, Capacity)
}

// Sized is the occupancy surface of a bounded queue.
type Sized interface {
	Len() int
	Cap() int
}

// Queue holds the label-bound collectors for one named queue so the hot
// path skips the label lookup.
type Queue struct {
	q Sized

	pushed       prometheus.Counter
	popped       prometheus.Counter
	pushRejected prometheus.Counter
	popRejected  prometheus.Counter
	occupancy    prometheus.Gauge
}

// ForQueue binds the collectors to name and records q's capacity.
func ForQueue(name string, q Sized) *Queue {
	Capacity.WithLabelValues(name).Set(float64(q.Cap()))
	return &Queue{
		q:            q,
		pushed:       ItemsTotal.WithLabelValues(name, "push"),
		popped:       ItemsTotal.WithLabelValues(name, "pop"),
		pushRejected: RejectsTotal.WithLabelValues(name, "push"),
		popRejected:  RejectsTotal.WithLabelValues(name, "pop"),
		occupancy:    Occupancy.WithLabelValues(name),
	}
}

// ObservePush counts one push attempt.
func (m *Queue) ObservePush(ok bool) {
	if ok {
		m.pushed.Inc()
	} else {
		m.pushRejected.Inc()
	}
}

// ObservePop counts one pop attempt.
func (m *Queue) ObservePop(ok bool) {
	if ok {
		m.popped.Inc()
	} else {
		m.popRejected.Inc()
	}
}

// AddPushed counts n successful pushes at once.
func (m *Queue) AddPushed(n int) { m.pushed.Add(float64(n)) }

// AddPopped counts n successful pops at once.
func (m *Queue) AddPopped(n int) { m.popped.Add(float64(n)) }

// Sample records the queue's current Len(). Suitable as a poll.Consumer
// OnTick callback.
func (m *Queue) Sample() {
	m.occupancy.Set(float64(m.q.Len()))
}
