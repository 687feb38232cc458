package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
corpus:
  snapshot_path: corpus.gips
  semantic_offset: 128
  lambda: 0.5
queries:
  snapshot_path: queries.gips
retrieval:
  strategy: theta
  top_k: 20
  theta: 0.05
  rerank: true
  shortlist_k: 200
shard:
  index: 1
  total: 4
output:
  run_tag: myrun
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "theta", cfg.Retrieval.Strategy)
	assert.Equal(t, 20, cfg.Retrieval.TopK)
	assert.Equal(t, float32(0.05), cfg.Retrieval.Theta)
	assert.True(t, cfg.Retrieval.Rerank)
	assert.Equal(t, 200, cfg.Retrieval.ShortlistK)
	assert.Equal(t, 1, cfg.Shard.Index)
	assert.Equal(t, 4, cfg.Shard.Total)
	assert.Equal(t, "myrun", cfg.Output.RunTag)
	assert.Equal(t, 128, cfg.Corpus.SemanticOffset)
	assert.Equal(t, float32(0.5), cfg.Corpus.Lambda)

	// Relative snapshot paths are resolved against the config directory.
	dir := filepath.Dir(path)
	assert.Equal(t, filepath.Join(dir, "corpus.gips"), cfg.Corpus.SnapshotPath)
	assert.Equal(t, filepath.Join(dir, "queries.gips"), cfg.Queries.SnapshotPath)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
corpus:
  snapshot_path: corpus.gips
queries:
  snapshot_path: queries.gips
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "theta", cfg.Retrieval.Strategy)
	assert.Equal(t, 10, cfg.Retrieval.TopK)
	assert.Equal(t, 100, cfg.Retrieval.ShortlistK)
	assert.Equal(t, 32, cfg.Retrieval.BatchSize)
	assert.Equal(t, "flat", cfg.Index.Kind)
	assert.Equal(t, 1, cfg.Shard.Total)
	assert.Equal(t, "gip", cfg.Output.RunTag)
	assert.Equal(t, float32(1), cfg.Corpus.Lambda)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "corpus: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.Corpus.SnapshotPath = "c.gips"
		cfg.Queries.SnapshotPath = "q.gips"
		ApplyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "unknown strategy",
			mutate: func(c *Config) { c.Retrieval.Strategy = "magic" },
		},
		{
			name:   "missing corpus path",
			mutate: func(c *Config) { c.Corpus.SnapshotPath = "" },
		},
		{
			name:   "missing queries path",
			mutate: func(c *Config) { c.Queries.SnapshotPath = "" },
		},
		{
			name:   "non-positive top_k",
			mutate: func(c *Config) { c.Retrieval.TopK = -1 },
		},
		{
			name:   "negative theta",
			mutate: func(c *Config) { c.Retrieval.Theta = -0.1 },
		},
		{
			name:   "rerank without shortlist",
			mutate: func(c *Config) { c.Retrieval.Rerank = true; c.Retrieval.ShortlistK = -1 },
		},
		{
			name:   "index strategy without path",
			mutate: func(c *Config) { c.Retrieval.Strategy = "index" },
		},
		{
			name:   "unknown index kind",
			mutate: func(c *Config) { c.Retrieval.Strategy = "index"; c.Index.Path = "x"; c.Index.Kind = "hnsw" },
		},
		{
			name:   "shard index out of range",
			mutate: func(c *Config) { c.Shard.Index = 2; c.Shard.Total = 2 },
		},
		{
			name:   "negative semantic offset",
			mutate: func(c *Config) { c.Corpus.SemanticOffset = -1 },
		},
	}

	require.NoError(t, Validate(valid()))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}
