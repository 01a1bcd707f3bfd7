// Package config loads the kartoffelsd process configuration: policy
// defaults, the data directory, and logging knobs. This is process
// configuration, not simulated-world state — a running world's Policy
// lives in world.Config and is set per-world, not here.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Woonters/kartoffels-for-pr/internal/world"
)

// Config is the top-level process configuration, loaded from YAML.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Store   StoreConfig   `yaml:"store"`
	Default PolicyDefault `yaml:"default_policy"`
}

// LogConfig controls the process-wide logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// StoreConfig controls where world files are resumed from and saved to.
type StoreConfig struct {
	DataDir      string        `yaml:"data_dir"`
	SaveInterval time.Duration `yaml:"save_interval"`
}

// PolicyDefault seeds world.Policy for newly created worlds that don't
// specify their own values.
type PolicyDefault struct {
	MaxAliveBots           int    `yaml:"max_alive_bots"`
	MaxQueuedBots          int    `yaml:"max_queued_bots"`
	MaxInstructionsPerTick int    `yaml:"max_instructions_per_tick"`
	RamSize                int    `yaml:"ram_size"`
	SerialRingCap          int    `yaml:"serial_ring_cap"`
	EventRingCap           int    `yaml:"event_ring_cap"`
	DeadRetentionTicks     int    `yaml:"dead_retention_ticks"`
	StuckBreakThreshold    uint32 `yaml:"stuck_break_threshold"`
}

// Default returns the built-in configuration used when no file is given
// or the file is absent.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Store: StoreConfig{
			DataDir:      "./data",
			SaveInterval: 30 * time.Second,
		},
		Default: PolicyDefault{
			MaxAliveBots:           16,
			MaxQueuedBots:          16,
			MaxInstructionsPerTick: 65536,
			RamSize:                1 << 16,
			SerialRingCap:          256,
			EventRingCap:           128,
			DeadRetentionTicks:     600,
			StuckBreakThreshold:    8,
		},
	}
}

// Load reads cfg from a YAML file at path, falling back to Default when
// path is empty or the file does not exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Policy converts the configured defaults into a world.Policy.
func (p PolicyDefault) Policy() world.Policy {
	return world.Policy{
		MaxAliveBots:           p.MaxAliveBots,
		MaxQueuedBots:          p.MaxQueuedBots,
		MaxInstructionsPerTick: p.MaxInstructionsPerTick,
		RamSize:                p.RamSize,
		SerialRingCap:          p.SerialRingCap,
		EventRingCap:           p.EventRingCap,
		DeadRetentionTicks:     p.DeadRetentionTicks,
		StuckBreakThreshold:    p.StuckBreakThreshold,
	}
}

// Validate checks the configuration for obviously unusable values.
func (c *Config) Validate() error {
	if c.Store.DataDir == "" {
		return fmt.Errorf("config: store.data_dir is required")
	}
	if c.Default.MaxAliveBots < 1 {
		return fmt.Errorf("config: default_policy.max_alive_bots must be at least 1")
	}
	if c.Default.RamSize < 1 {
		return fmt.Errorf("config: default_policy.ram_size must be at least 1")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is not one of debug/info/warn/error", c.Log.Level)
	}
	return nil
}
