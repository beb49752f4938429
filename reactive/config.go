package reactive

import (
	"os"

	"github.com/juju/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxFlushIterations = 100
)

// Config tunes the scheduler.
type Config struct {
	// MaxFlushSize caps how many effects one microtask runs. The remainder is deferred
	// to the next microtask. Zero disables the cap.
	MaxFlushSize int `yaml:"max_flush_size"`

	// MaxFlushIterations bounds how many consecutive batches a cascade of writes may
	// produce before the pending work is dropped.
	MaxFlushIterations int `yaml:"max_flush_iterations"`
}

func DefaultConfig() Config {
	return Config{
		MaxFlushIterations: DefaultMaxFlushIterations,
	}
}

func (c Config) Validate() error {
	if c.MaxFlushSize < 0 {
		return errors.Annotatef(ErrInvalidConfig, "max_flush_size must not be negative, got %d", c.MaxFlushSize)
	}
	if c.MaxFlushIterations < 1 {
		return errors.Annotatef(ErrInvalidConfig, "max_flush_iterations must be at least 1, got %d", c.MaxFlushIterations)
	}
	return nil
}

// ParseConfig reads YAML on top of DefaultConfig, so omitted fields keep their defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Annotate(err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Trace(err)
	}
	return cfg, nil
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Annotatef(err, "read config %q", path)
	}
	return ParseConfig(data)
}
