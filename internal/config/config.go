// Package config loads the spscbench harness configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/randomizedcoder/spscring/internal/storage"
)

// Modes understood by the harness.
const (
	ModeLoop     = "loop"
	ModePipeline = "pipeline"
	ModeHotloop  = "hotloop"
)

// Queue names understood by the harness.
const (
	QueueChannel = "channel"
	QueuePlain   = "plain"
	QueueAligned = "aligned"
)

// ErrInvalid is wrapped by every Validate error.
var ErrInvalid = errors.New("config: invalid")

// ConsumerCfg controls the pipeline consumer thread.
type ConsumerCfg struct {
	Pin bool `yaml:"pin"`
	CPU int  `yaml:"cpu"`
}

// LoggingCfg selects the logrus level and formatter.
type LoggingCfg struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text | json
}

// MetricsCfg enables the Prometheus endpoint when Listen is set.
type MetricsCfg struct {
	Listen string `yaml:"listen"`
	Path   string `yaml:"path"`
}

// Config is the spscbench configuration file.
type Config struct {
	Mode        string        `yaml:"mode"`
	Queues      []string      `yaml:"queues"`
	Capacity    int           `yaml:"capacity"`
	Alignment   int           `yaml:"alignment"` // bytes; 0 means one cache line
	Items       int           `yaml:"items"`
	SampleEvery time.Duration `yaml:"sample_every"`
	Consumer    ConsumerCfg   `yaml:"consumer"`
	Logging     LoggingCfg    `yaml:"logging"`
	Metrics     MetricsCfg    `yaml:"metrics"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Mode:        ModeLoop,
		Queues:      []string{QueueChannel, QueuePlain, QueueAligned},
		Capacity:    1024,
		Items:       10_000_000,
		SampleEvery: 100 * time.Millisecond,
		Logging:     LoggingCfg{Level: "info", Format: "text"},
		Metrics:     MetricsCfg{Path: "/metrics"},
	}
}

// Load reads path over Default. Keys missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first problem found in c.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeLoop, ModePipeline, ModeHotloop:
	default:
		return fmt.Errorf("%w: mode %q (want %s, %s or %s)", ErrInvalid, c.Mode, ModeLoop, ModePipeline, ModeHotloop)
	}
	if len(c.Queues) == 0 {
		return fmt.Errorf("%w: no queues selected", ErrInvalid)
	}
	for _, q := range c.Queues {
		switch q {
		case QueueChannel, QueuePlain, QueueAligned:
		default:
			return fmt.Errorf("%w: queue %q", ErrInvalid, q)
		}
	}
	if c.Capacity < 1 {
		return fmt.Errorf("%w: capacity %d", ErrInvalid, c.Capacity)
	}
	if c.Alignment != 0 && (c.Alignment < 0 || c.Alignment&(c.Alignment-1) != 0) {
		return fmt.Errorf("%w: alignment %d is not a power of two", ErrInvalid, c.Alignment)
	}
	if c.Items < 1 {
		return fmt.Errorf("%w: items %d", ErrInvalid, c.Items)
	}
	if c.SampleEvery < 0 {
		return fmt.Errorf("%w: sample_every %v", ErrInvalid, c.SampleEvery)
	}
	if c.Consumer.Pin && c.Consumer.CPU < 0 {
		return fmt.Errorf("%w: consumer cpu %d", ErrInvalid, c.Consumer.CPU)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: logging format %q", ErrInvalid, c.Logging.Format)
	}
	return nil
}

// StorageKind maps a ring queue name to its storage strategy. The channel
// baseline has none.
func StorageKind(queue string) (storage.Kind, bool) {
	switch queue {
	case QueuePlain:
		return storage.KindPlain, true
	case QueueAligned:
		return storage.KindAligned, true
	}
	return 0, false
}
