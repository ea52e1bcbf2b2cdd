// Command spscbench measures the SPSC ring against a buffered channel.
//
// Modes:
//   - loop: push then pop in one goroutine, the per-operation floor
//   - pipeline: a producer goroutine hands items to a poll.Consumer on a
//     locked (optionally pinned) thread; the consumer checks ordering
//   - hotloop: cancel check, tick check, pop and push per item, comparing
//     context and atomic cancellation and atomic and batch tickers
//
// Usage:
//
//	go run ./cmd/spscbench -n 10000000 --capacity 1024
//	go run ./cmd/spscbench --mode pipeline --queues plain,aligned --pin --cpu 2
//	go run ./cmd/spscbench --config spscbench.yaml --metrics-listen :9100
//
// Flags override values from the YAML file.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/randomizedcoder/spscring/internal/config"
	"github.com/randomizedcoder/spscring/internal/metrics"
	"github.com/randomizedcoder/spscring/internal/poll"
	"github.com/randomizedcoder/spscring/internal/queue"
)

type result struct {
	name       string
	dur        time.Duration
	items      int
	outOfOrder uint64
}

func (r result) perOp() float64 {
	return float64(r.dur.Nanoseconds()) / float64(r.items)
}

func main() {
	cfgPath := flag.String("config", "", "path to YAML configuration")
	mode := flag.String("mode", "", "loop, pipeline or hotloop")
	queues := flag.StringSlice("queues", nil, "queues to run: channel, plain, aligned")
	capacity := flag.Int("capacity", 0, "queue capacity")
	alignment := flag.Int("alignment", 0, "slot alignment in bytes for aligned storage (0 = cache line)")
	items := flag.IntP("items", "n", 0, "number of items")
	pin := flag.Bool("pin", false, "pin the pipeline consumer thread to --cpu")
	cpu := flag.Int("cpu", 0, "cpu for the pipeline consumer")
	sampleEvery := flag.Duration("sample-every", 0, "occupancy sampling interval in pipeline mode (0 disables)")
	logLevel := flag.String("log-level", "", "log level")
	logFormat := flag.String("log-format", "", "text or json")
	metricsListen := flag.String("metrics-listen", "", "serve Prometheus metrics on this address")
	flag.Parse()

	// ---- Config: file, then flags ----------------------------------------------
	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			logrus.Fatal(err)
		}
	}
	overlay := map[string]func(){
		"mode":           func() { cfg.Mode = *mode },
		"queues":         func() { cfg.Queues = *queues },
		"capacity":       func() { cfg.Capacity = *capacity },
		"alignment":      func() { cfg.Alignment = *alignment },
		"items":          func() { cfg.Items = *items },
		"pin":            func() { cfg.Consumer.Pin = *pin },
		"cpu":            func() { cfg.Consumer.CPU = *cpu },
		"sample-every":   func() { cfg.SampleEvery = *sampleEvery },
		"log-level":      func() { cfg.Logging.Level = *logLevel },
		"log-format":     func() { cfg.Logging.Format = *logFormat },
		"metrics-listen": func() { cfg.Metrics.Listen = *metricsListen },
	}
	flag.Visit(func(f *flag.Flag) {
		if set, ok := overlay[f.Name]; ok {
			set()
		}
	})
	if err := cfg.Validate(); err != nil {
		logrus.Fatal(err)
	}

	// ---- Logger ----------------------------------------------------------------
	log := newLogger(cfg.Logging)
	log.WithFields(logrus.Fields{
		"mode":     cfg.Mode,
		"queues":   strings.Join(cfg.Queues, ","),
		"capacity": cfg.Capacity,
		"items":    cfg.Items,
	}).Debug("configuration loaded")

	// ---- Metrics server --------------------------------------------------------
	if cfg.Metrics.Listen != "" {
		metrics.RegisterAll(prometheus.DefaultRegisterer)
		go serveMetrics(log, cfg.Metrics)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Benchmarking SPSC queue (%s, %d items, capacity=%d)\n", cfg.Mode, cfg.Items, cfg.Capacity)
	fmt.Println("─────────────────────────────────────────────────")

	var results []result
	for _, name := range cfg.Queues {
		q, err := newQueue(name, cfg)
		if err != nil {
			log.WithError(err).WithField("queue", name).Fatal("queue construction failed")
		}
		m := metrics.ForQueue(name, q)

		if cfg.Mode == config.ModeHotloop {
			results = append(results, runHotloop(name, q, m.Sample, cfg.Items)...)
			continue
		}

		var r result
		switch cfg.Mode {
		case config.ModeLoop:
			r = runLoop(name, q, m, cfg.Items)
		case config.ModePipeline:
			r, err = runPipeline(ctx, log, name, q, m, cfg)
		}
		if err != nil {
			if errors.Is(err, poll.ErrCanceled) {
				log.WithField("queue", name).Warn("interrupted")
				break
			}
			log.WithError(err).WithField("queue", name).Fatal("run failed")
		}
		if r.outOfOrder > 0 {
			log.WithFields(logrus.Fields{
				"queue":        name,
				"out_of_order": r.outOfOrder,
			}).Error("consumer saw items out of order")
		}
		results = append(results, r)
	}

	report(cfg.Mode, results)

	if cfg.Metrics.Listen != "" {
		log.WithField("listen", cfg.Metrics.Listen).Info("done; metrics still served until interrupted")
		<-ctx.Done()
	}
}

func newLogger(cfg config.LoggingCfg) *logrus.Logger {
	log := logrus.New()
	if strings.EqualFold(cfg.Format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if lvl, err := logrus.ParseLevel(cfg.Level); err == nil {
		log.SetLevel(lvl)
	} else if cfg.Level != "" {
		log.WithError(err).Warn("unknown log level, using info")
	}
	return log
}

func serveMetrics(log *logrus.Logger, cfg config.MetricsCfg) {
	path := cfg.Path
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.WithFields(logrus.Fields{"listen": cfg.Listen, "path": path}).Info("metrics server started")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Error("metrics server exited")
	}
}

func newQueue(name string, cfg config.Config) (queue.Bounded[int], error) {
	if name == config.QueueChannel {
		return queue.NewChannel[int](cfg.Capacity), nil
	}
	kind, ok := config.StorageKind(name)
	if !ok {
		return nil, fmt.Errorf("unknown queue %q", name)
	}
	q, err := queue.NewSPSC[int](cfg.Capacity, queue.WithStorage(kind), queue.WithAlignment(cfg.Alignment))
	if err != nil {
		return nil, err
	}
	return q, nil
}

// runLoop pushes and pops each item on the calling goroutine. Counters are
// added once at the end to keep them off the measured path.
func runLoop(name string, q queue.Queue[int], m *metrics.Queue, items int) result {
	start := time.Now()
	for i := 0; i < items; i++ {
		q.Push(i)
		q.Pop()
	}
	dur := time.Since(start)

	m.AddPushed(items)
	m.AddPopped(items)
	return result{name: name, dur: dur, items: items}
}

// runPipeline hands items 0..n-1 from this goroutine to a poll.Consumer.
func runPipeline(ctx context.Context, log *logrus.Logger, name string, q queue.Bounded[int], m *metrics.Queue, cfg config.Config) (result, error) {
	var next int
	var outOfOrder uint64
	done := poll.NewAtomic()

	c := &poll.Consumer[int]{
		Queue: q,
		Handle: func(v int) {
			if v != next {
				outOfOrder++
			}
			next = v + 1
		},
		Cancel: done,
		Pin:    cfg.Consumer.Pin,
		CPU:    cfg.Consumer.CPU,
		Log:    log.WithField("queue", name),
	}
	if cfg.SampleEvery > 0 {
		c.Ticker = poll.NewAtomicTicker(cfg.SampleEvery)
		c.OnTick = m.Sample
	}

	producerCancel := poll.NewContext(ctx)
	defer producerCancel.Cancel()
	b := poll.DefaultBackoff()

	consumed := c.Start()
	start := time.Now()
	var err error
	pushed := 0
	for ; pushed < cfg.Items; pushed++ {
		if err = poll.PushWait[int](q, pushed, producerCancel, b); err != nil {
			break
		}
	}
	done.Cancel()
	n := <-consumed
	dur := time.Since(start)

	m.AddPushed(pushed)
	m.AddPopped(int(n))
	if err != nil {
		return result{}, err
	}
	if int(n) != pushed {
		return result{}, fmt.Errorf("consumer handled %d of %d items", n, pushed)
	}
	return result{name: name, dur: dur, items: cfg.Items, outOfOrder: outOfOrder}, nil
}

func report(mode string, results []result) {
	if len(results) == 0 {
		return
	}
	switch mode {
	case config.ModeLoop:
		fmt.Printf("\nResults (push + pop per iteration):\n")
	case config.ModePipeline:
		fmt.Printf("\nResults (producer -> consumer hand-off per item):\n")
	case config.ModeHotloop:
		fmt.Printf("\nResults (cancel + tick + pop + push per iteration):\n")
	}
	for _, r := range results {
		fmt.Printf("  %-22s %v (%.2f ns/op)\n", r.name+":", r.dur, r.perOp())
	}

	base := results[0]
	for _, r := range results[1:] {
		if r.perOp() < base.perOp() {
			fmt.Printf("\n  %s vs %s:  %.2fx (%s faster)", r.name, base.name, base.perOp()/r.perOp(), r.name)
		} else {
			fmt.Printf("\n  %s vs %s:  %.2fx (%s faster)", r.name, base.name, r.perOp()/base.perOp(), base.name)
		}
	}
	if len(results) > 1 {
		fmt.Println()
	}

	fmt.Printf("\nThroughput:\n")
	for _, r := range results {
		fmt.Printf("  %-22s %.2f M ops/sec\n", r.name+":", 1000/r.perOp())
	}
}
