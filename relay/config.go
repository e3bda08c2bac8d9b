package relay

import (
	"os"
	"time"
)

// EnvBaseURL overrides Config.BaseURL when set.
const EnvBaseURL = "INTERVIEW_API_URL"

const (
	defaultBaseURL = "http://localhost:8000"
	defaultTimeout = 30 * time.Second
)

// Config holds relay client parameters.
type Config struct {
	BaseURL string            `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Timeout time.Duration     `json:"timeout,omitempty" yaml:"timeout,omitempty"` // unary request timeout; streams are bounded by the caller's context
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// DefaultConfig returns the relay defaults, honoring EnvBaseURL.
func DefaultConfig() Config {
	cfg := Config{
		BaseURL: defaultBaseURL,
		Timeout: defaultTimeout,
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	return cfg
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.Timeout > 0 {
		c.Timeout = source.Timeout
	}
	if len(source.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string, len(source.Headers))
		}
		for k, v := range source.Headers {
			c.Headers[k] = v
		}
	}
}
