// Package config manages eagledup configuration and the .eagledup
// directory structure. It handles loading, saving, and initializing
// the per-library configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/kilupskalvis/eagledup/internal/match"
	"github.com/kilupskalvis/eagledup/internal/score"
)

const (
	Dir          = ".eagledup"
	ConfigFile   = "config"
	DatabaseFile = "eagledup.db"
	LockFile     = "run.lock"
)

// MatchSettings configures the duplicate matching strategies.
type MatchSettings struct {
	Fingerprint    bool    `toml:"fingerprint"`
	Fuzzy          bool    `toml:"fuzzy"`
	Ngram          bool    `toml:"ngram"`
	FuzzyThreshold float64 `toml:"fuzzy_threshold"`
	GroupFloor     float64 `toml:"group_floor"`
	NgramThreshold float64 `toml:"ngram_threshold"`
	NgramFloor     float64 `toml:"ngram_floor"`
	NgramSize      int     `toml:"ngram_size"`
}

// RetrySettings configures the store retry policy.
type RetrySettings struct {
	MaxRetries       int `toml:"max_retries"`
	InitialBackoffMS int `toml:"initial_backoff_ms"`
	MaxBackoffMS     int `toml:"max_backoff_ms"`
}

// Config represents the eagledup configuration
type Config struct {
	StoreURL        string        `toml:"store_url"`
	Token           string        `toml:"token"`
	TimeoutSeconds  int           `toml:"timeout_seconds"`
	RateLimit       float64       `toml:"rate_limit"` // store requests per second, 0 = unlimited
	Workers         int           `toml:"workers"`
	ScoringPriority []string      `toml:"scoring_priority"`
	Match           MatchSettings `toml:"match"`
	Retry           RetrySettings `toml:"retry"`

	path string // path to .eagledup directory
}

// Default returns a config with all defaults applied.
func Default(storeURL string) *Config {
	mc := match.DefaultConfig()
	return &Config{
		StoreURL:       storeURL,
		TimeoutSeconds: 30,
		RateLimit:      10,
		Workers:        4,
		Match: MatchSettings{
			Fingerprint:    mc.EnableFingerprint,
			Fuzzy:          mc.EnableFuzzy,
			Ngram:          mc.EnableNgram,
			FuzzyThreshold: mc.FuzzyThreshold,
			GroupFloor:     mc.GroupFloor,
			NgramThreshold: mc.NgramThreshold,
			NgramFloor:     mc.NgramFloor,
			NgramSize:      mc.NgramSize,
		},
		Retry: RetrySettings{
			MaxRetries:       3,
			InitialBackoffMS: 500,
			MaxBackoffMS:     30000,
		},
	}
}

// FindRoot finds the .eagledup directory by walking up from the
// current directory
func FindRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		path := filepath.Join(dir, Dir)
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not an eagledup library (or any parent up to root)")
		}
		dir = parent
	}
}

// Load loads the configuration from the .eagledup directory
func Load() (*Config, error) {
	path, err := FindRoot()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(path, ConfigFile)
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.path = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration before any store I/O happens.
func (c *Config) Validate() error {
	if c.StoreURL == "" {
		return fmt.Errorf("invalid config: store_url is required")
	}
	if err := validThreshold("match.fuzzy_threshold", c.Match.FuzzyThreshold); err != nil {
		return err
	}
	if err := validThreshold("match.group_floor", c.Match.GroupFloor); err != nil {
		return err
	}
	if err := validThreshold("match.ngram_threshold", c.Match.NgramThreshold); err != nil {
		return err
	}
	if err := validThreshold("match.ngram_floor", c.Match.NgramFloor); err != nil {
		return err
	}
	if c.Match.GroupFloor > c.Match.FuzzyThreshold {
		return fmt.Errorf("invalid config: match.group_floor must not exceed match.fuzzy_threshold")
	}
	if c.Match.NgramFloor > c.Match.NgramThreshold {
		return fmt.Errorf("invalid config: match.ngram_floor must not exceed match.ngram_threshold")
	}
	if c.Match.NgramSize < 1 {
		return fmt.Errorf("invalid config: match.ngram_size must be >= 1")
	}
	if c.Workers < 1 {
		return fmt.Errorf("invalid config: workers must be >= 1")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("invalid config: rate_limit must not be negative")
	}
	if _, err := score.ParsePriority(c.ScoringPriority); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func validThreshold(name string, v float64) error {
	if v <= 0 || v > 1 {
		return fmt.Errorf("invalid config: %s must be in (0, 1], got %v", name, v)
	}
	return nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	configPath := filepath.Join(c.path, ConfigFile)
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// Path returns the path to the .eagledup directory
func (c *Config) Path() string {
	return c.path
}

// DatabasePath returns the path to the SQLite database
func (c *Config) DatabasePath() string {
	return filepath.Join(c.path, DatabaseFile)
}

// LockPath returns the path to the run lock file
func (c *Config) LockPath() string {
	return filepath.Join(c.path, LockFile)
}

// Timeout returns the per-call store timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MatchConfig converts the settings into the engine's configuration.
func (c *Config) MatchConfig() match.Config {
	mc := match.DefaultConfig()
	mc.EnableFingerprint = c.Match.Fingerprint
	mc.EnableFuzzy = c.Match.Fuzzy
	mc.EnableNgram = c.Match.Ngram
	mc.FuzzyThreshold = c.Match.FuzzyThreshold
	mc.GroupFloor = c.Match.GroupFloor
	mc.NgramThreshold = c.Match.NgramThreshold
	mc.NgramFloor = c.Match.NgramFloor
	mc.NgramSize = c.Match.NgramSize
	mc.Workers = c.Workers
	return mc
}

// Priority returns the validated scoring criterion order.
func (c *Config) Priority() []score.Criterion {
	p, err := score.ParsePriority(c.ScoringPriority)
	if err != nil {
		return score.DefaultPriority()
	}
	return p
}

// Initialize creates a new .eagledup directory with initial configuration
func Initialize(storeURL, token string) (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	path := filepath.Join(cwd, Dir)

	// Check if already initialized
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("eagledup library already exists")
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", Dir, err)
	}

	cfg := Default(storeURL)
	cfg.Token = token
	cfg.path = path

	if err := cfg.Save(); err != nil {
		// Cleanup on failure
		os.RemoveAll(path)
		return nil, err
	}

	return cfg, nil
}
