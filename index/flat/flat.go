// Package flat provides an exhaustive inner-product index over a
// dimension-doubled vector representation.
//
// Both corpus and query vectors are stored/searched as v' = concat(v, v).
// Native inner-product search over the doubled representation preserves
// the target ranking when argument-index masking is applied in a separate
// downstream stage; the transformation is kept exactly as the offline
// index builder defines it, so scores from this index are inner products
// in the doubled space (twice the plain inner product).
package flat

import (
	"github.com/hqsearch/gip/index"
	"github.com/hqsearch/gip/internal/math32"
	"github.com/hqsearch/gip/internal/queue"
)

// Compile-time check to ensure Flat satisfies the backend interface.
var _ index.Index = (*Flat)(nil)

// Flat is an exhaustive (non-approximate) inner-product backend.
// It is immutable after the offline build; Search is safe for
// concurrent use.
type Flat struct {
	dim  int       // accepted (pre-doubling) dimension
	rows int       // number of stored vectors
	data []float32 // rows * 2*dim doubled vectors, row-major
}

// New creates an empty flat index accepting vectors of the given
// dimension.
func New(dimension int) (*Flat, error) {
	if dimension <= 0 {
		return nil, &index.ErrDimensionMismatch{Expected: 1, Actual: dimension}
	}
	return &Flat{dim: dimension}, nil
}

// Dimension returns the accepted (pre-doubling) dimension.
func (f *Flat) Dimension() int { return f.dim }

// Len returns the number of stored vectors.
func (f *Flat) Len() int { return f.rows }

// Add appends vectors in order, storing each as concat(v, v).
func (f *Flat) Add(vectors [][]float32) error {
	for _, v := range vectors {
		if len(v) != f.dim {
			return &index.ErrDimensionMismatch{Expected: f.dim, Actual: len(v)}
		}
		f.data = append(f.data, v...)
		f.data = append(f.data, v...)
		f.rows++
	}

	return nil
}

// Search scores every stored vector against each query and returns the
// top k per query, descending. Scores are inner products in the doubled
// representation.
func (f *Flat) Search(queries [][]float32, k int) ([][]float32, [][]uint32, error) {
	if k <= 0 {
		return nil, nil, index.ErrInvalidK
	}
	if f.rows == 0 {
		return nil, nil, index.ErrEmptyIndex
	}

	width := 2 * f.dim
	scores := make([][]float32, len(queries))
	ids := make([][]uint32, len(queries))

	doubled := make([]float32, width)
	top := queue.NewTopK(k)
	for qi, q := range queries {
		if len(q) != f.dim {
			return nil, nil, &index.ErrDimensionMismatch{Expected: f.dim, Actual: len(q)}
		}
		copy(doubled[:f.dim], q)
		copy(doubled[f.dim:], q)

		top.Reset()
		for i := 0; i < f.rows; i++ {
			row := f.data[i*width : (i+1)*width]
			top.Push(queue.Item{Local: uint32(i), Score: math32.Dot(doubled, row)})
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
