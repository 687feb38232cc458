// Package pq provides a product-quantization inner-product index.
// The index is built offline over corpus vectors and returns an
// approximate top-k candidate set per query at reduced precision;
// callers typically feed that shortlist to an exact reranking stage.
package pq

import (
	"github.com/hqsearch/gip/index"
	"github.com/hqsearch/gip/internal/queue"
)

// Compile-time check to ensure Index satisfies the backend interface.
var _ index.Index = (*Index)(nil)

// Index is a product-quantization ANN backend. Immutable after the
// offline build; Search is safe for concurrent use.
type Index struct {
	quantizer *Quantizer
	codes     []byte // rows * M codes, row-major
	rows      int
}

// New creates an empty PQ index over a trained (or to-be-trained)
// quantizer.
func New(q *Quantizer) *Index {
	return &Index{quantizer: q}
}

// Quantizer returns the underlying quantizer.
func (ix *Index) Quantizer() *Quantizer { return ix.quantizer }

// Dimension returns the expected query dimensionality.
func (ix *Index) Dimension() int { return ix.quantizer.dimension }

// Len returns the number of stored vectors.
func (ix *Index) Len() int { return ix.rows }

// Add encodes and appends vectors in order.
func (ix *Index) Add(vectors [][]float32) error {
	if !ix.quantizer.trained {
		return index.ErrNotTrained
	}
	for _, v := range vectors {
		if len(v) != ix.quantizer.dimension {
			return &index.ErrDimensionMismatch{Expected: ix.quantizer.dimension, Actual: len(v)}
		}
		ix.codes = append(ix.codes, ix.quantizer.Encode(v)...)
		ix.rows++
	}

	return nil
}

// Search returns the approximate top k stored vectors per query by ADC
// inner-product score, descending.
func (ix *Index) Search(queries [][]float32, k int) ([][]float32, [][]uint32, error) {
	if k <= 0 {
		return nil, nil, index.ErrInvalidK
	}
	if !ix.quantizer.trained {
		return nil, nil, index.ErrNotTrained
	}
	if ix.rows == 0 {
		return nil, nil, index.ErrEmptyIndex
	}

	m := ix.quantizer.numSubvectors
	scores := make([][]float32, len(queries))
	ids := make([][]uint32, len(queries))

	top := queue.NewTopK(k)
	for qi, q := range queries {
		if len(q) != ix.quantizer.dimension {
			return nil, nil, &index.ErrDimensionMismatch{Expected: ix.quantizer.dimension, Actual: len(q)}
		}

		table := ix.quantizer.BuildScoreTable(q)

		top.Reset()
		for i := 0; i < ix.rows; i++ {
			codes := ix.codes[i*m : (i+1)*m]
			top.Push(queue.Item{Local: uint32(i), Score: ix.quantizer.AdcScore(table, codes)})
		}

		items := top.Drain()
		scores[qi] = make([]float32, len(items))
		ids[qi] = make([]uint32, len(items))
		for i, item := range items {
			scores[qi][i] = item.Score
			ids[qi][i] = item.Local
		}
	}

	return scores, ids, nil
}
