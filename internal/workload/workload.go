// internal/workload/workload.go
//
// Package workload describes and generates synthetic operation
// streams for exercising the concurrent set from the stress driver
// and the integration tests.
package workload

import (
	"math/rand"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config describes a stress workload. It can be populated from flags
// or decoded from a YAML file.
type Config struct {
	// Workers is the number of concurrent goroutines.
	Workers int `yaml:"workers"`

	// Ops is the number of operations each worker performs.
	Ops int `yaml:"ops"`

	// KeyRange bounds generated keys to [0, KeyRange).
	KeyRange int64 `yaml:"key_range"`

	// AddPercent and RemovePercent set the operation mix; the
	// remainder are membership queries.
	AddPercent    int `yaml:"add_percent"`
	RemovePercent int `yaml:"remove_percent"`

	// Seed makes runs reproducible. Zero picks a fixed default.
	Seed int64 `yaml:"seed"`
}

// Default returns a balanced mixed workload.
func Default() Config {
	return Config{
		Workers:       4,
		Ops:           100000,
		KeyRange:      1 << 16,
		AddPercent:    40,
		RemovePercent: 20,
		Seed:          1,
	}
}

// Load reads a YAML workload file. Missing fields keep their
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading workload file %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing workload file %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "invalid workload in %s", path)
	}
	return cfg, nil
}

// Validate checks the configuration for nonsensical values.
func (c Config) Validate() error {
	if c.Workers <= 0 {
		return errors.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.Ops <= 0 {
		return errors.Errorf("ops must be positive, got %d", c.Ops)
	}
	if c.KeyRange <= 0 {
		return errors.Errorf("key_range must be positive, got %d", c.KeyRange)
	}
	if c.AddPercent < 0 || c.RemovePercent < 0 || c.AddPercent+c.RemovePercent > 100 {
		return errors.Errorf("operation mix %d%%+%d%% is not a valid split",
			c.AddPercent, c.RemovePercent)
	}
	return nil
}

// OpKind is one generated operation type.
type OpKind int

const (
	OpContains OpKind = iota
	OpAdd
	OpRemove
)

// Generator produces a deterministic operation stream for one worker.
// Distinct workers derive distinct streams from the shared seed.
type Generator struct {
	cfg Config
	rng *rand.Rand
}

// NewGenerator creates the stream for the given worker index.
func NewGenerator(cfg Config, worker int) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = 1
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed + int64(worker)*7919)),
	}
}

// Next returns the next operation and its key.
func (g *Generator) Next() (OpKind, int64) {
	key := g.rng.Int63n(g.cfg.KeyRange)
	p := g.rng.Intn(100)
	switch {
	case p < g.cfg.AddPercent:
		return OpAdd, key
	case p < g.cfg.AddPercent+g.cfg.RemovePercent:
		return OpRemove, key
	default:
		return OpContains, key
	}
}
