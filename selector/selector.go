// Package selector provides the candidate-selection strategies of the
// retrieval engine. A selector narrows the corpus to a scored candidate
// set for one query; the strategy is chosen once at engine construction:
//
//   - BruteForce: exact generalized inner product against every row.
//   - ThetaPruned: approximate scoring restricted to the query's
//     important dimensions (theta threshold), optionally degraded
//     further to a plain inner product.
//   - Indexed: delegation to a prebuilt ANN backend (flat or product
//     quantization).
package selector

import (
	"context"

	"github.com/hqsearch/gip/internal/queue"
	"github.com/hqsearch/gip/model"
	"github.com/hqsearch/gip/resource"
)

// Selector narrows the corpus to a scored candidate set for one query.
type Selector interface {
	// Select returns up to k candidates for the query, ordered by
	// descending (possibly partial) score.
	Select(ctx context.Context, q model.Query, k int) ([]model.ScoredCandidate, error)
}

// BatchSelector is an optional capability for selectors that score
// queries in batches (ANN backends with batched search).
type BatchSelector interface {
	Selector

	// SelectBatch returns candidates for each query in order.
	SelectBatch(ctx context.Context, queries []model.Query, k int) ([][]model.ScoredCandidate, error)
}

// ResourceAware is implemented by selectors that account their per-query
// scratch allocations against a resource controller. The engine uses it
// to hand its controller to the selector at construction.
type ResourceAware interface {
	// SetResourceController replaces the selector's controller. A nil
	// controller disables accounting.
	SetResourceController(ctrl *resource.Controller)
}

// DimensionStats is implemented by selectors that prune scoring to a
// subset of dimensions and track how many they used.
type DimensionStats interface {
	// AvgImportantDims returns the mean number of dimensions used per
	// query since construction.
	AvgImportantDims() float64
}

// drainTopK converts a filled accumulator into a candidate slice.
func drainTopK(top *queue.TopK) []model.ScoredCandidate {
	items := top.Drain()
	out := make([]model.ScoredCandidate, len(items))
	for i, item := range items {
		out[i] = model.ScoredCandidate{Local: item.Local, Score: item.Score}
	}

	return out
}

// importantDims returns the indices of query dimensions with mass above
// theta. An empty result means the caller must fall back to scoring all
// dimensions.
func importantDims(q []float32, theta float32) []int {
	var dims []int
	for j, v := range q {
		if v > theta {
			dims = append(dims, j)
		}
	}

	return dims
}
