// Package config loads the inspector's YAML settings and watches the file
// for edits.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by every command. Command-line flags
// override individual fields after Load.
type Config struct {
	Backend  string `yaml:"backend"`
	Fixture  string `yaml:"fixture,omitempty"`
	LogLevel string `yaml:"log_level"`

	// Cooldown is the repeating interval between capture triggers.
	Cooldown time.Duration `yaml:"cooldown"`
	// Tick is how often the interactive front end updates.
	Tick        time.Duration `yaml:"tick"`
	WorkerSleep time.Duration `yaml:"worker_sleep"`

	ThreadboundCapacity int `yaml:"threadbound_capacity"`
	GameboundCapacity   int `yaml:"gamebound_capacity"`
	// MaxDepth bounds full subtree gathers (0 = unlimited).
	MaxDepth int `yaml:"max_depth"`

	// CacheTTL is how long the MCP server reuses a capture for the same
	// point. 0 disables the cache.
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Backend:             "fixture",
		LogLevel:            "info",
		Cooldown:            500 * time.Millisecond,
		Tick:                50 * time.Millisecond,
		WorkerSleep:         50 * time.Millisecond,
		ThreadboundCapacity: 10,
		GameboundCapacity:   10,
		CacheTTL:            2 * time.Second,
	}
}

// Load reads path over the defaults. A missing file is not an error when
// optional is set.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q (expected debug, info, warn, or error)", c.LogLevel)
	}
	if c.Backend == "" {
		return errors.New("backend must be set")
	}
	if c.Cooldown <= 0 {
		return fmt.Errorf("cooldown must be positive, got %s", c.Cooldown)
	}
	if c.Tick <= 0 {
		return fmt.Errorf("tick must be positive, got %s", c.Tick)
	}
	if c.WorkerSleep < 0 {
		return fmt.Errorf("worker_sleep must not be negative, got %s", c.WorkerSleep)
	}
	if c.ThreadboundCapacity < 1 || c.GameboundCapacity < 1 {
		return fmt.Errorf("channel capacities must be at least 1, got %d and %d", c.ThreadboundCapacity, c.GameboundCapacity)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must not be negative, got %s", c.CacheTTL)
	}
	return nil
}
