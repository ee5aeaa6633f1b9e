// Package config loads the supportmesh runtime configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level runtime configuration.
type Config struct {
	Store StoreConfig `yaml:"store"`
	Model ModelConfig `yaml:"model"`
	Tools ToolsConfig `yaml:"tools"`
	Log   LogConfig   `yaml:"log"`
}

// StoreConfig selects the conversation store backend.
type StoreConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string `yaml:"backend"`
	// Path is the sqlite database file; ":memory:" for ephemeral.
	Path string `yaml:"path"`
}

// ModelConfig selects the generation/classification collaborator.
type ModelConfig struct {
	// Provider is "mock", "openai" or "anthropic".
	Provider string        `yaml:"provider"`
	Name     string        `yaml:"name"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ToolsConfig bounds external action calls.
type ToolsConfig struct {
	// BaseURL of the commerce action endpoints; empty selects the built-in
	// in-memory backend (demo and tests).
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // json|text
}

// Default returns the configuration used when no file is provided.
func Default() Config {
	return Config{
		Store: StoreConfig{Backend: "memory", Path: ":memory:"},
		Model: ModelConfig{Provider: "mock", Timeout: 30 * time.Second},
		Tools: ToolsConfig{Timeout: 20 * time.Second},
		Log:   LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads and validates a YAML config file, filling unset fields with
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Store.Backend == "" {
		c.Store.Backend = d.Store.Backend
	}
	if c.Store.Path == "" {
		c.Store.Path = d.Store.Path
	}
	if c.Model.Provider == "" {
		c.Model.Provider = d.Model.Provider
	}
	if c.Model.Timeout <= 0 {
		c.Model.Timeout = d.Model.Timeout
	}
	if c.Tools.Timeout <= 0 {
		c.Tools.Timeout = d.Tools.Timeout
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	switch c.Model.Provider {
	case "mock", "openai", "anthropic":
	default:
		return fmt.Errorf("unknown model provider %q", c.Model.Provider)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}
