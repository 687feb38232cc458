package selector

import (
	"context"

	"github.com/hqsearch/gip/index"
	"github.com/hqsearch/gip/model"
)

// Compile-time checks for Indexed capabilities.
var (
	_ Selector      = (*Indexed)(nil)
	_ BatchSelector = (*Indexed)(nil)
)

// Indexed delegates candidate selection to a prebuilt ANN backend.
// Queries are submitted in batches of the configured size; the final
// partial batch carries the remainder. Scores are whatever approximation
// the backend produces (doubled-space inner product for the flat index,
// ADC inner product for product quantization).
type Indexed struct {
	idx   index.Index
	batch int
}

// NewIndexed creates a selector over a loaded ANN backend.
// batchSize <= 0 defaults to 1.
func NewIndexed(idx index.Index, batchSize int) *Indexed {
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Indexed{
		idx:   idx,
		batch: batchSize,
	}
}

// Select runs a single-query batch.
func (s *Indexed) Select(ctx context.Context, q model.Query, k int) ([]model.ScoredCandidate, error) {
	out, err := s.SelectBatch(ctx, []model.Query{q}, k)
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// SelectBatch searches the backend in batches and returns candidates per
// query, in query order.
func (s *Indexed) SelectBatch(ctx context.Context, queries []model.Query, k int) ([][]model.ScoredCandidate, error) {
	if k <= 0 {
		return nil, index.ErrInvalidK
	}

	out := make([][]model.ScoredCandidate, len(queries))
	for start := 0; start < len(queries); start += s.batch {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start + s.batch
		if end > len(queries) {
			end = len(queries)
		}

		vectors := make([][]float32, end-start)
		for i, q := range queries[start:end] {
			vectors[i] = q.Vector
		}

		scores, ids, err := s.idx.Search(vectors, k)
		if err != nil {
			return nil, err
		}

		for i := range vectors {
			candidates := make([]model.ScoredCandidate, len(ids[i]))
			for j, id := range ids[i] {
				candidates[j] = model.ScoredCandidate{Local: id, Score: scores[i][j]}
			}
			out[start+i] = candidates
		}
	}

	return out, nil
}
