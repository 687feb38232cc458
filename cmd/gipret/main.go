// Package main is the gipret CLI entry point: batch top-K retrieval
// under the generalized inner product, plus offline index building.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/hqsearch/gip"
	"github.com/hqsearch/gip/blobstore"
	s3store "github.com/hqsearch/gip/blobstore/s3"
	"github.com/hqsearch/gip/config"
	"github.com/hqsearch/gip/index"
	"github.com/hqsearch/gip/index/flat"
	"github.com/hqsearch/gip/index/pq"
	"github.com/hqsearch/gip/model"
	"github.com/hqsearch/gip/persistence"
	"github.com/hqsearch/gip/resource"
	"github.com/hqsearch/gip/selector"
	"github.com/hqsearch/gip/trec"
	"github.com/hqsearch/gip/vectorstore"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "run":
		runRetrieval()
	case "build-index":
		runBuildIndex()
	case "version", "--version", "-v":
		fmt.Printf("gipret version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runRetrieval() {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug || *debug {
		level = slog.LevelDebug
	}
	logger := gip.NewTextLogger(level).WithShard(cfg.Shard.Index, cfg.Shard.Total)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	bs, err := openBlobStore(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open blob store: %v\n", err)
		os.Exit(1)
	}

	corpus, err := loadStore(ctx, bs, cfg.Corpus.SnapshotPath, logger)
	if err != nil {
		os.Exit(1)
	}
	queries, err := loadStore(ctx, bs, cfg.Queries.SnapshotPath, logger)
	if err != nil {
		os.Exit(1)
	}

	if cfg.Corpus.SemanticOffset > 0 {
		if err := queries.ScaleBlock(cfg.Corpus.SemanticOffset, cfg.Corpus.Lambda); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to scale semantic block: %v\n", err)
			os.Exit(1)
		}
	}

	shard, err := corpus.Shard(cfg.Shard.Index, cfg.Shard.Total)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to shard corpus: %v\n", err)
		os.Exit(1)
	}

	ctrl := newController(cfg)

	sel, err := buildSelector(ctx, cfg, shard, ctrl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build selector: %v\n", err)
		os.Exit(1)
	}

	opts := []gip.Option{
		gip.WithLogger(logger),
		gip.WithWorkers(cfg.Retrieval.Workers),
		gip.WithResourceController(ctrl),
	}
	if cfg.Retrieval.Rerank {
		opts = append(opts, gip.WithRerank(cfg.Retrieval.ShortlistK))
	}

	eng, err := gip.New(shard, sel, cfg.Retrieval.TopK, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create engine: %v\n", err)
		os.Exit(1)
	}

	qs := make([]model.Query, queries.Len())
	for i := range qs {
		qs[i] = queries.Query(uint32(i))
	}

	results, stats, err := eng.Run(ctx, qs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Retrieval failed: %v\n", err)
		os.Exit(1)
	}

	outPath := filepath.Join(cfg.Output.Dir, trec.ShardFileName(cfg.Shard.Index, cfg.Shard.Total))
	if err := writeRun(ctx, outPath, cfg.Output.RunTag, ctrl, results); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write results: %v\n", err)
		os.Exit(1)
	}

	logger.InfoContext(ctx, "run written",
		"path", outPath,
		"queries", stats.Queries,
		"wall_seconds", stats.WallSeconds,
	)
}

func runBuildIndex() {
	fs := flag.NewFlagSet("build-index", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Index.Path == "" {
		fmt.Fprintln(os.Stderr, "index.path is required for build-index")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := gip.NewTextLogger(slog.LevelInfo)

	bs, err := openBlobStore(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open blob store: %v\n", err)
		os.Exit(1)
	}

	corpus, err := loadStore(ctx, bs, cfg.Corpus.SnapshotPath, logger)
	if err != nil {
		os.Exit(1)
	}
	shard, err := corpus.Shard(cfg.Shard.Index, cfg.Shard.Total)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to shard corpus: %v\n", err)
		os.Exit(1)
	}

	vectors := make([][]float32, shard.Len())
	for i := range vectors {
		vectors[i] = shard.Vector(uint32(i))
	}

	f, err := os.Create(cfg.Index.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create index file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	switch cfg.Index.Kind {
	case "flat":
		ix, err := flat.New(shard.Dimension())
		if err == nil {
			err = ix.Add(vectors)
		}
		if err == nil {
			err = ix.Save(f)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Flat index build failed: %v\n", err)
			os.Exit(1)
		}
	case "pq":
		q, err := pq.NewQuantizer(shard.Dimension(), cfg.Index.NumSubvectors, cfg.Index.NumCentroids)
		if err == nil {
			err = q.Train(vectors)
		}
		var ix *pq.Index
		if err == nil {
			ix = pq.New(q)
			err = ix.Add(vectors)
		}
		if err == nil {
			err = ix.Save(f)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "PQ index build failed: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown index kind %q\n", cfg.Index.Kind)
		os.Exit(1)
	}

	logger.InfoContext(ctx, "index built",
		"kind", cfg.Index.Kind,
		"path", cfg.Index.Path,
		"rows", shard.Len(),
	)
}

func openBlobStore(ctx context.Context, cfg *config.Config) (blobstore.BlobStore, error) {
	if cfg.Corpus.S3Bucket != "" {
		return s3store.NewStoreFromDefaultConfig(ctx, cfg.Corpus.S3Bucket, cfg.Corpus.S3Prefix)
	}
	return blobstore.NewLocalStore(""), nil
}

func loadStore(ctx context.Context, bs blobstore.BlobStore, name string, logger *gip.Logger) (*vectorstore.Store, error) {
	blob, err := bs.Open(ctx, name)
	if err != nil {
		logger.LogSnapshotLoad(ctx, name, 0, 0, err)
		return nil, err
	}
	defer blob.Close()

	snap, err := persistence.Read(blobstore.NewReader(blob))
	if err != nil {
		logger.LogSnapshotLoad(ctx, name, 0, 0, err)
		return nil, err
	}

	store, err := vectorstore.New(snap.Dimension, snap.Vectors, snap.Args, snap.IDs)
	logger.LogSnapshotLoad(ctx, name, snap.Rows(), snap.Dimension, err)
	return store, err
}

func newController(cfg *config.Config) *resource.Controller {
	if cfg.Resources.MemoryLimitBytes == 0 && cfg.Resources.IOLimitBytesPerSec == 0 {
		return nil
	}
	return resource.NewController(resource.Config{
		MemoryLimitBytes:   cfg.Resources.MemoryLimitBytes,
		IOLimitBytesPerSec: cfg.Resources.IOLimitBytesPerSec,
	})
}

func buildSelector(ctx context.Context, cfg *config.Config, shard *vectorstore.Store, ctrl *resource.Controller) (selector.Selector, error) {
	switch cfg.Retrieval.Strategy {
	case "brute":
		return selector.NewBruteForce(shard, ctrl), nil
	case "theta":
		return selector.NewThetaPruned(shard, ctrl, cfg.Retrieval.Theta, cfg.Retrieval.IPOnly), nil
	case "index":
		ix, err := loadIndex(cfg)
		if err != nil {
			return nil, err
		}
		return selector.NewIndexed(ix, cfg.Retrieval.BatchSize), nil
	default:
		return nil, fmt.Errorf("unknown retrieval strategy %q", cfg.Retrieval.Strategy)
	}
}

func loadIndex(cfg *config.Config) (index.Index, error) {
	f, err := os.Open(cfg.Index.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", index.ErrIndexNotFound, cfg.Index.Path)
		}
		return nil, err
	}
	defer f.Close()

	switch cfg.Index.Kind {
	case "flat":
		ix, err := flat.Load(f)
		if err != nil {
			return nil, err
		}
		return ix, nil
	case "pq":
		ix, err := pq.Load(f)
		if err != nil {
			return nil, err
		}
		return ix, nil
	default:
		return nil, fmt.Errorf("unknown index kind %q", cfg.Index.Kind)
	}
}

func writeRun(ctx context.Context, path, runTag string, ctrl *resource.Controller, results []model.Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := trec.NewWriter(f, runTag, ctrl)
	if err := w.WriteAll(ctx, results); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func printUsage() {
	fmt.Println(`gipret - top-K retrieval under the generalized inner product

Usage:
  gipret run [flags]          Run retrieval and write a TREC file
  gipret build-index [flags]  Build and save the ANN index for a shard
  gipret version              Show version
  gipret help                 Show this help

Flags:
  --config string    Config file path (default: config.yaml)
  --debug            Enable debug logging (run only)

Examples:
  gipret run --config runs/msmarco.yaml
  gipret build-index --config runs/msmarco.yaml`)
}
