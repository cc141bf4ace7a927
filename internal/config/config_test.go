package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilupskalvis/eagledup/internal/score"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default("http://localhost:41595")
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 30, cfg.TimeoutSeconds)
	assert.Equal(t, 4, cfg.Workers)
	assert.True(t, cfg.Match.Fingerprint)
	assert.Equal(t, 0.75, cfg.Match.FuzzyThreshold)
	assert.Equal(t, 0.65, cfg.Match.GroupFloor)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing url", func(c *Config) { c.StoreURL = "" }, "store_url is required"},
		{"threshold too high", func(c *Config) { c.Match.FuzzyThreshold = 1.5 }, "fuzzy_threshold"},
		{"threshold zero", func(c *Config) { c.Match.NgramThreshold = 0 }, "ngram_threshold"},
		{"floor above threshold", func(c *Config) { c.Match.GroupFloor = 0.9 }, "group_floor must not exceed"},
		{"ngram floor above threshold", func(c *Config) { c.Match.NgramFloor = 0.9 }, "ngram_floor must not exceed"},
		{"bad ngram size", func(c *Config) { c.Match.NgramSize = 0 }, "ngram_size"},
		{"bad workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"negative rate", func(c *Config) { c.RateLimit = -1 }, "rate_limit"},
		{"bad priority", func(c *Config) { c.ScoringPriority = []string{"vibes"} }, "unknown scoring criterion"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("http://localhost:41595")
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInitializeAndLoad(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Initialize("http://localhost:41595", "tok123")
	require.NoError(t, err)
	assert.Equal(t, "tok123", cfg.Token)

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:41595", loaded.StoreURL)
	assert.Equal(t, "tok123", loaded.Token)
	assert.Equal(t, cfg.Match, loaded.Match)
	assert.Equal(t, cfg.Retry, loaded.Retry)

	assert.Equal(t, filepath.Join(loaded.Path(), DatabaseFile), loaded.DatabasePath())
	assert.Equal(t, filepath.Join(loaded.Path(), LockFile), loaded.LockPath())
}

func TestInitializeRefusesExisting(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Initialize("http://localhost:41595", "")
	require.NoError(t, err)

	_, err = Initialize("http://localhost:41595", "")
	assert.ErrorContains(t, err, "already exists")
}

func TestFindRootWalksUp(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, Dir), 0755))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	t.Chdir(nested)
	found, err := FindRoot()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, Dir), found)
}

func TestFindRootMissing(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := FindRoot()
	assert.ErrorContains(t, err, "not an eagledup library")
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, Dir), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, Dir, ConfigFile), []byte("store_url = ''\n"), 0644))

	t.Chdir(dir)
	_, err := Load()
	assert.ErrorContains(t, err, "store_url is required")
}

func TestMatchConfigAndPriority(t *testing.T) {
	cfg := Default("http://localhost:41595")
	cfg.Workers = 8
	cfg.Match.FuzzyThreshold = 0.8
	cfg.ScoringPriority = []string{"recency", "quality"}

	mc := cfg.MatchConfig()
	assert.Equal(t, 8, mc.Workers)
	assert.Equal(t, 0.8, mc.FuzzyThreshold)
	assert.True(t, mc.EnableNgram)

	assert.Equal(t, []score.Criterion{score.CriterionRecency, score.CriterionQuality}, cfg.Priority())
}
