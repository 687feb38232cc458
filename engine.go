package gip

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hqsearch/gip/model"
	"github.com/hqsearch/gip/rerank"
	"github.com/hqsearch/gip/selector"
	"github.com/hqsearch/gip/vectorstore"
)

// Engine runs the retrieval pipeline: candidate selection, optional
// exact rerank, and resolution of row offsets into document IDs with
// 1-based ranks. The pipeline shape is fixed at construction.
type Engine struct {
	store    *vectorstore.Store
	selector selector.Selector
	reranker *rerank.Reranker
	topK     int
	opts     options
}

// RunStats summarizes a completed run.
type RunStats struct {
	// Queries is the number of queries processed.
	Queries int
	// WallSeconds is the end-to-end retrieval wall time.
	WallSeconds float64
	// PerQuerySeconds is WallSeconds / Queries.
	PerQuerySeconds float64
	// AvgImportantDims is the mean number of scored dimensions per query
	// when the selector prunes dimensions, 0 otherwise.
	AvgImportantDims float64
}

// New creates an engine returning the top k documents per query.
func New(store *vectorstore.Store, sel selector.Selector, k int, optFns ...Option) (*Engine, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if sel == nil {
		return nil, ErrNilSelector
	}
	if k <= 0 {
		return nil, ErrInvalidK
	}

	opts := applyOptions(optFns)

	if opts.ctrl != nil {
		if ra, ok := sel.(selector.ResourceAware); ok {
			ra.SetResourceController(opts.ctrl)
		}
	}

	e := &Engine{
		store:    store,
		selector: sel,
		topK:     k,
		opts:     opts,
	}
	if opts.rerankFrom > 0 {
		e.reranker = rerank.New(store)
	}

	return e, nil
}

// Search runs the pipeline for a single query.
func (e *Engine) Search(ctx context.Context, q model.Query) (model.Result, error) {
	candidates, err := e.selector.Select(ctx, q, e.selectK())
	if err != nil {
		e.opts.logger.LogQuery(ctx, q.ID, e.topK, 0, err)
		return model.Result{}, translateError(err)
	}

	res, err := e.finish(ctx, q, candidates)
	e.opts.logger.LogQuery(ctx, q.ID, e.topK, len(res.Docs), err)
	return res, translateError(err)
}

// Run processes all queries across the worker pool and returns results
// in query order. A failing query aborts the run; partial output is
// discarded.
func (e *Engine) Run(ctx context.Context, queries []model.Query) ([]model.Result, RunStats, error) {
	start := time.Now()

	var (
		results []model.Result
		err     error
	)
	if bs, ok := e.selector.(selector.BatchSelector); ok {
		results, err = e.runBatched(ctx, bs, queries)
	} else {
		results, err = e.runParallel(ctx, queries)
	}
	if err != nil {
		return nil, RunStats{}, translateError(err)
	}

	stats := RunStats{
		Queries:     len(queries),
		WallSeconds: time.Since(start).Seconds(),
	}
	if stats.Queries > 0 {
		stats.PerQuerySeconds = stats.WallSeconds / float64(stats.Queries)
	}
	if ds, ok := e.selector.(selector.DimensionStats); ok {
		stats.AvgImportantDims = ds.AvgImportantDims()
	}

	e.opts.logger.LogRun(ctx, stats)

	return results, stats, nil
}

func (e *Engine) runParallel(ctx context.Context, queries []model.Query) ([]model.Result, error) {
	results := make([]model.Result, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.workers)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			candidates, err := e.selector.Select(gctx, q, e.selectK())
			if err != nil {
				return err
			}
			res, err := e.finish(gctx, q, candidates)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// runBatched drives batch-capable selectors (ANN backends) with one
// batched selection pass, then finishes queries concurrently.
func (e *Engine) runBatched(ctx context.Context, bs selector.BatchSelector, queries []model.Query) ([]model.Result, error) {
	shortlists, err := bs.SelectBatch(ctx, queries, e.selectK())
	if err != nil {
		return nil, err
	}

	results := make([]model.Result, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.workers)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			res, err := e.finish(gctx, q, shortlists[i])
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// selectK is the shortlist size requested from the selector: the rerank
// pool size when reranking, the final K otherwise.
func (e *Engine) selectK() int {
	if e.reranker != nil {
		return e.opts.rerankFrom
	}
	return e.topK
}

// finish applies the optional rerank stage, cuts the final top K and
// resolves row offsets to document IDs with 1-based ranks.
func (e *Engine) finish(ctx context.Context, q model.Query, candidates []model.ScoredCandidate) (model.Result, error) {
	if e.reranker != nil {
		reranked, err := e.reranker.Rerank(ctx, q, candidates, e.topK)
		if err != nil {
			return model.Result{}, err
		}
		candidates = reranked
	}
	if len(candidates) > e.topK {
		candidates = candidates[:e.topK]
	}

	docs := make([]model.ScoredDoc, len(candidates))
	for i, c := range candidates {
		docs[i] = model.ScoredDoc{
			DocID: e.store.DocID(c.Local),
			Score: c.Score,
			Rank:  i + 1,
		}
	}

	return model.Result{QueryID: q.ID, Docs: docs}, nil
}
