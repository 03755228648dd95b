package deepcrawl

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all crawl configuration.
type Config struct {
	// Traversal strategy: bfs, dfs, or best-first
	Strategy Strategy `json:"strategy" yaml:"strategy"`

	// Maximum link distance from the seed (inclusive; 0 = seed only)
	MaxDepth int `json:"max_depth" yaml:"max_depth"`

	// Maximum number of pages admitted per run (seed counts as 1)
	MaxPages int `json:"max_pages" yaml:"max_pages"`

	// Maximum simultaneous fetches
	MaxConcurrent int `json:"max_concurrent" yaml:"max_concurrent"`

	// Minimum spacing between requests on the same worker slot
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`

	// Per-request timeout
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// Substring filters; exclude wins over include
	IncludePatterns []string `json:"include_patterns" yaml:"include_patterns"`
	ExcludePatterns []string `json:"exclude_patterns" yaml:"exclude_patterns"`

	// Host must contain one of these when non-empty
	AllowedDomains []string `json:"allowed_domains" yaml:"allowed_domains"`

	// Fetch collaborator configuration
	Fetch FetchConfig `json:"fetch" yaml:"fetch"`

	// Archive file path; empty disables archiving
	ArchivePath string `json:"archive_path" yaml:"archive_path"`

	// Verbose logging
	Verbose bool `json:"verbose" yaml:"verbose"`

	// Debug mode
	Debug bool `json:"debug" yaml:"debug"`
}

// FetchConfig configures the built-in fetch collaborators.
type FetchConfig struct {
	// UseBrowser selects the headless-browser collaborator instead of
	// the plain HTTP client
	UseBrowser bool `json:"use_browser" yaml:"use_browser"`

	// FollowRedirects controls whether 3xx responses are chased
	FollowRedirects bool `json:"follow_redirects" yaml:"follow_redirects"`

	// RespectRobots is passed through to the collaborator
	RespectRobots bool `json:"respect_robots" yaml:"respect_robots"`

	// UserAgent overrides the default request user agent
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Strategy:      StrategyBFS,
		MaxDepth:      3,
		MaxPages:      100,
		MaxConcurrent: 10,
		RequestDelay:  0,
		Timeout:       30 * time.Second,
		Fetch: FetchConfig{
			FollowRedirects: true,
		},
	}
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, config); err != nil {
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return config, nil
}

// SaveToFile saves configuration to a file.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !c.Strategy.Valid() {
		return fmt.Errorf("unknown strategy %q", c.Strategy)
	}

	if c.MaxDepth < 0 {
		return fmt.Errorf("max depth must not be negative")
	}

	if c.MaxPages < 1 {
		return fmt.Errorf("max pages must be at least 1")
	}

	if c.MaxConcurrent < 1 {
		return fmt.Errorf("max concurrent must be at least 1")
	}

	if c.RequestDelay < 0 {
		return fmt.Errorf("request delay must not be negative")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	return nil
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	data, _ := json.Marshal(c)
	clone := &Config{}
	json.Unmarshal(data, clone)
	return clone
}
