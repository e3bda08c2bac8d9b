package chat

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/interview/account"
	"github.com/tailored-agentic-units/interview/memory"
	"github.com/tailored-agentic-units/interview/relay"
)

const defaultStreamTimeout = 30 * time.Second

// Config holds initialization parameters for every subsystem a chat needs.
// Each section delegates to that subsystem's own config.
type Config struct {
	Relay         relay.Config      `json:"relay" yaml:"relay"`
	Memory        memory.Config     `json:"memory" yaml:"memory"`
	Accounts      []account.Account `json:"accounts,omitempty" yaml:"accounts,omitempty"`
	Mode          string            `json:"mode,omitempty" yaml:"mode,omitempty"`
	StreamTimeout time.Duration     `json:"stream_timeout,omitempty" yaml:"stream_timeout,omitempty"`
	Observer      string            `json:"observer,omitempty" yaml:"observer,omitempty"`
}

// DefaultConfig returns a Config with defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Relay:         relay.DefaultConfig(),
		Memory:        memory.DefaultConfig(),
		Mode:          "agent",
		StreamTimeout: defaultStreamTimeout,
		Observer:      "slog",
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	c.Relay.Merge(&source.Relay)
	c.Memory.Merge(&source.Memory)

	if source.Mode != "" {
		c.Mode = source.Mode
	}
	if source.StreamTimeout > 0 {
		c.StreamTimeout = source.StreamTimeout
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
	if len(source.Accounts) > 0 {
		c.Accounts = source.Accounts
	}
}

// LoadConfig reads a config file, merges it with defaults, and returns the
// result. Files ending in .yaml or .yml are parsed as YAML, anything else as
// JSON. Durations are Go duration strings in YAML and nanoseconds in JSON.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &loaded)
	default:
		err = json.Unmarshal(data, &loaded)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
