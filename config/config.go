// Package config provides configuration loading for retrieval runs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for a retrieval run.
type Config struct {
	Corpus    CorpusConfig    `yaml:"corpus"`
	Queries   QueriesConfig   `yaml:"queries"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Index     IndexConfig     `yaml:"index"`
	Shard     ShardConfig     `yaml:"shard"`
	Output    OutputConfig    `yaml:"output"`
	Resources ResourcesConfig `yaml:"resources"`
	Debug     bool            `yaml:"debug"`
}

// CorpusConfig locates the document snapshot.
type CorpusConfig struct {
	// SnapshotPath is the corpus snapshot file, local path or s3 key
	// depending on the configured blob store.
	SnapshotPath string `yaml:"snapshot_path"`
	// S3Bucket, when set, loads snapshots from S3 instead of local disk.
	S3Bucket string `yaml:"s3_bucket"`
	S3Prefix string `yaml:"s3_prefix"`
	// SemanticOffset is the dimension where the appended semantic block
	// starts; 0 means the vectors carry no semantic block.
	SemanticOffset int `yaml:"semantic_offset"`
	// Lambda scales the semantic block's contribution. It is applied to
	// the query vectors at load time and ignored when SemanticOffset is 0.
	Lambda float32 `yaml:"lambda"`
}

// QueriesConfig locates the query snapshot.
type QueriesConfig struct {
	SnapshotPath string `yaml:"snapshot_path"`
}

// RetrievalConfig holds pipeline parameters.
type RetrievalConfig struct {
	// Strategy selects candidate generation: "brute", "theta" or "index".
	Strategy string `yaml:"strategy"`
	// TopK is the number of documents returned per query.
	TopK int `yaml:"top_k"`
	// Theta is the importance threshold for the theta strategy.
	Theta float32 `yaml:"theta"`
	// IPOnly makes the theta strategy score a plain inner product over
	// all dimensions, skipping the argument gate.
	IPOnly bool `yaml:"ip_only"`
	// Rerank enables exact rescoring of the shortlist.
	Rerank bool `yaml:"rerank"`
	// ShortlistK is the shortlist size fed to the rerank stage.
	ShortlistK int `yaml:"shortlist_k"`
	// Workers bounds query-level concurrency; 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`
	// BatchSize is the query batch size for index-backed search.
	BatchSize int `yaml:"batch_size"`
}

// IndexConfig locates and shapes the ANN backend for the "index" strategy.
type IndexConfig struct {
	// Path is the serialized index file.
	Path string `yaml:"path"`
	// Kind selects the backend: "flat" or "pq".
	Kind string `yaml:"kind"`
	// NumSubvectors and NumCentroids configure PQ training when the
	// index is built rather than loaded.
	NumSubvectors int `yaml:"num_subvectors"`
	NumCentroids  int `yaml:"num_centroids"`
}

// ShardConfig partitions the corpus across processes.
type ShardConfig struct {
	Index int `yaml:"index"`
	Total int `yaml:"total"`
}

// OutputConfig shapes the TREC run output.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	RunTag string `yaml:"run_tag"`
}

// ResourcesConfig bounds scratch memory and output IO.
type ResourcesConfig struct {
	MemoryLimitBytes   int64 `yaml:"memory_limit_bytes"`
	IOLimitBytesPerSec int64 `yaml:"io_limit_bytes_per_sec"`
}

// Load reads and parses the config file at path, expands local paths,
// applies defaults and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	if cfg.Corpus.S3Bucket == "" {
		configDir := filepath.Dir(path)
		cfg.Corpus.SnapshotPath = expandPath(cfg.Corpus.SnapshotPath, configDir)
		cfg.Queries.SnapshotPath = expandPath(cfg.Queries.SnapshotPath, configDir)
		if cfg.Index.Path != "" {
			cfg.Index.Path = expandPath(cfg.Index.Path, configDir)
		}
		cfg.Output.Dir = expandPath(cfg.Output.Dir, configDir)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyDefaults fills unset fields with run defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Retrieval.Strategy == "" {
		cfg.Retrieval.Strategy = "theta"
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 10
	}
	if cfg.Retrieval.ShortlistK == 0 {
		cfg.Retrieval.ShortlistK = 100
	}
	if cfg.Retrieval.BatchSize == 0 {
		cfg.Retrieval.BatchSize = 32
	}
	if cfg.Index.Kind == "" {
		cfg.Index.Kind = "flat"
	}
	if cfg.Index.NumSubvectors == 0 {
		cfg.Index.NumSubvectors = 8
	}
	if cfg.Index.NumCentroids == 0 {
		cfg.Index.NumCentroids = 256
	}
	if cfg.Shard.Total == 0 {
		cfg.Shard.Total = 1
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "."
	}
	if cfg.Output.RunTag == "" {
		cfg.Output.RunTag = "gip"
	}
	if cfg.Corpus.Lambda == 0 {
		cfg.Corpus.Lambda = 1
	}
}

// Validate rejects configurations the pipeline cannot run.
func Validate(cfg *Config) error {
	switch cfg.Retrieval.Strategy {
	case "brute", "theta", "index":
	default:
		return fmt.Errorf("unknown retrieval strategy %q", cfg.Retrieval.Strategy)
	}
	if cfg.Corpus.SnapshotPath == "" {
		return fmt.Errorf("corpus.snapshot_path is required")
	}
	if cfg.Queries.SnapshotPath == "" {
		return fmt.Errorf("queries.snapshot_path is required")
	}
	if cfg.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Retrieval.Theta < 0 {
		return fmt.Errorf("retrieval.theta must be non-negative, got %g", cfg.Retrieval.Theta)
	}
	if cfg.Retrieval.Rerank && cfg.Retrieval.ShortlistK <= 0 {
		return fmt.Errorf("retrieval.shortlist_k must be positive when rerank is enabled")
	}
	if cfg.Retrieval.Strategy == "index" {
		if cfg.Index.Path == "" {
			return fmt.Errorf("index.path is required for the index strategy")
		}
		switch cfg.Index.Kind {
		case "flat", "pq":
		default:
			return fmt.Errorf("unknown index kind %q", cfg.Index.Kind)
		}
	}
	if cfg.Shard.Total < 1 {
		return fmt.Errorf("shard.total must be at least 1, got %d", cfg.Shard.Total)
	}
	if cfg.Shard.Index < 0 || cfg.Shard.Index >= cfg.Shard.Total {
		return fmt.Errorf("shard.index %d out of range for %d shards", cfg.Shard.Index, cfg.Shard.Total)
	}
	if cfg.Corpus.SemanticOffset < 0 {
		return fmt.Errorf("corpus.semantic_offset must be non-negative, got %d", cfg.Corpus.SemanticOffset)
	}
	return nil
}

// expandPath converts a path to absolute. Relative paths are resolved
// against the config file's directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return filepath.Join(configDir, path)
}
