// Package config holds all redline configuration: provider settings, rule
// toggles, proxy server limits, and store paths. Configuration is YAML with
// environment-variable overrides for API keys.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration document.
type Config struct {
	// LLM configures the generation-service client.
	LLM LLMConfig `yaml:"llm"`

	// Rules selects the editorial rule set.
	Rules RulesConfig `yaml:"rules"`

	// Server configures the optional proxy endpoint.
	Server ServerConfig `yaml:"server"`

	// Store configures per-message state persistence.
	Store StoreConfig `yaml:"store"`

	// Pov configures point-of-view handling.
	Pov PovConfig `yaml:"pov"`
}

// LLMConfig configures the generation-service client.
type LLMConfig struct {
	Provider  string `yaml:"provider"` // openai, anthropic, gemini
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	Timeout   string `yaml:"timeout"`
	MaxTokens int    `yaml:"max_tokens"`
}

// TimeoutDuration parses the timeout string, falling back to the default on
// absence or garbage.
func (c LLMConfig) TimeoutDuration() time.Duration {
	if c.Timeout == "" {
		return 45 * time.Second
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 45 * time.Second
	}
	return d
}

// CustomRule is one caller-defined rule line.
type CustomRule struct {
	Text    string `yaml:"text"`
	Enabled bool   `yaml:"enabled"`
}

// RulesConfig selects built-in rules by key and carries the ordered custom
// list.
type RulesConfig struct {
	Builtin map[string]bool `yaml:"builtin"`
	Custom  []CustomRule    `yaml:"custom"`
}

// ServerConfig configures the proxy endpoint.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
	Timeout      string `yaml:"timeout"`
}

// TimeoutDuration parses the upstream timeout for proxied refine calls.
func (c ServerConfig) TimeoutDuration() time.Duration {
	if c.Timeout == "" {
		return 60 * time.Second
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// StoreConfig configures per-message persistence.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// PovConfig configures point-of-view handling. Declared forces a voice
// ("first", "second", "third", "first_and_second"); empty or "auto" runs the
// detector. The thresholds mirror pov.Detector.
type PovConfig struct {
	Declared    string  `yaml:"declared"`
	MinPronouns int     `yaml:"min_pronouns"`
	MixedShare  float64 `yaml:"mixed_share"`
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Timeout:   "45s",
			MaxTokens: 4096,
		},
		Server: ServerConfig{
			Addr:         ":8390",
			MaxBodyBytes: 1 << 20, // 1 MiB
			Timeout:      "60s",
		},
		Store: StoreConfig{
			Path: "redline.db",
		},
		Pov: PovConfig{
			Declared:    "auto",
			MinPronouns: 2,
			MixedShare:  0.20,
		},
	}
}

// Load reads a YAML config file, layers it over the defaults, and applies
// environment overrides. A missing file yields defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides layers API keys from the environment. An explicitly
// configured provider only takes its own key; otherwise the provider is
// inferred, with OPENAI_API_KEY outranking ANTHROPIC_API_KEY outranking
// GEMINI_API_KEY.
func (c *Config) applyEnvOverrides() {
	keys := map[string]string{
		"openai":    os.Getenv("OPENAI_API_KEY"),
		"anthropic": os.Getenv("ANTHROPIC_API_KEY"),
		"gemini":    os.Getenv("GEMINI_API_KEY"),
	}

	if c.LLM.Provider != "" {
		if key := keys[c.LLM.Provider]; key != "" {
			c.LLM.APIKey = key
		}
	} else {
		for _, p := range []string{"gemini", "anthropic", "openai"} {
			if key := keys[p]; key != "" {
				c.LLM.APIKey = key
				c.LLM.Provider = p
			}
		}
	}

	if base := os.Getenv("REDLINE_BASE_URL"); base != "" {
		c.LLM.BaseURL = base
	}
	if model := os.Getenv("REDLINE_MODEL"); model != "" {
		c.LLM.Model = model
	}
}
