// Package config defines chainforge configuration. Config is an explicit
// struct passed into constructors; core packages never read the
// environment or the filesystem to configure themselves.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all chainforge configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	LLM        LLMConfig        `yaml:"llm"`
	Generation GenerationConfig `yaml:"generation"`
	Templates  TemplatesConfig  `yaml:"templates"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LLMConfig configures the text-generation provider.
type LLMConfig struct {
	Provider string `yaml:"provider"` // gemini, openai-compat
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
}

// GenerationConfig configures dispatch defaults.
type GenerationConfig struct {
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	MaxRetries  int     `yaml:"max_retries"`
	RetryDelay  string  `yaml:"retry_delay"`

	// Frameworks lists optional integrations available to generated
	// projects, injected here instead of probed from the filesystem.
	Frameworks []string `yaml:"frameworks"`
}

// TemplatesConfig configures the fragment store.
type TemplatesConfig struct {
	Root      string `yaml:"root"`
	Watch     bool   `yaml:"watch"`
	CacheSize int    `yaml:"cache_size"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Name:    "chainforge",
		Version: "0.1.0",
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-2.5-flash",
			Timeout:  "120s",
		},
		Generation: GenerationConfig{
			MaxTokens:   8192,
			Temperature: 0.2,
			MaxRetries:  3,
			RetryDelay:  "1s",
		},
		Templates: TemplatesConfig{
			Root:      "templates",
			Watch:     false,
			CacheSize: 256,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config file over the defaults. A missing file is not
// an error; defaults are returned unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// RetryDelayDuration parses the configured retry delay, falling back to
// one second when unset or invalid.
func (g GenerationConfig) RetryDelayDuration() time.Duration {
	d, err := time.ParseDuration(g.RetryDelay)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

// TimeoutDuration parses the configured LLM timeout, falling back to two
// minutes.
func (l LLMConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(l.Timeout)
	if err != nil || d <= 0 {
		return 2 * time.Minute
	}
	return d
}
