package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"chunkgen/internal/registry"
	"chunkgen/internal/storage"

	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the full pipeline configuration, usually read from YAML.
type Config struct {
	World       WorldGen              `yaml:"world"`
	Workers     Workers               `yaml:"workers"`
	Mesher      Mesher                `yaml:"mesher"`
	Diagnostics Diagnostics           `yaml:"diagnostics"`
	Tick        time.Duration         `yaml:"tick"`
	Blocks      []registry.Definition `yaml:"blocks"`
}

// Workers sizes the generation worker pool.
type Workers struct {
	Count     int `yaml:"count"`
	QueueSize int `yaml:"queue_size"`
}

// Mesher holds greedy mesher options.
type Mesher struct {
	// SealWorldEdges culls faces that border a chunk that is not loaded.
	SealWorldEdges bool `yaml:"seal_world_edges"`
}

// Diagnostics configures the timing sink and slow-update reporting.
type Diagnostics struct {
	Capacity   int           `yaml:"capacity"`
	SlowUpdate time.Duration `yaml:"slow_update"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		World: DefaultWorldGen(),
		Workers: Workers{
			Count:     max(runtime.NumCPU()-1, 1),
			QueueSize: 256,
		},
		Diagnostics: Diagnostics{
			Capacity:   256,
			SlowUpdate: 16 * time.Millisecond,
		},
		Tick:   50 * time.Millisecond,
		Blocks: registry.DefaultDefinitions(),
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and fills zero values that have a sensible default.
func (c *Config) Validate() error {
	if c.Workers.Count <= 0 {
		return fmt.Errorf("%w: workers.count must be positive", ErrInvalid)
	}
	if c.Workers.QueueSize <= 0 {
		c.Workers.QueueSize = 256
	}
	if c.Tick <= 0 {
		return fmt.Errorf("%w: tick must be positive", ErrInvalid)
	}
	if c.Diagnostics.Capacity <= 0 {
		c.Diagnostics.Capacity = 256
	}
	if err := c.World.Validate(); err != nil {
		return err
	}
	if len(c.Blocks) == 0 {
		return fmt.Errorf("%w: blocks cannot be empty", ErrInvalid)
	}
	for i, b := range c.Blocks {
		if b.Name == "" {
			return fmt.Errorf("%w: blocks[%d].name must be set", ErrInvalid, i)
		}
	}
	return nil
}

// StorageKind returns the parsed storage implementation name.
func (c *Config) StorageKind() storage.Kind {
	kind, err := storage.ParseKind(c.World.Storage)
	if err != nil {
		return storage.KindPalette
	}
	return kind
}
