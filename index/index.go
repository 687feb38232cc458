// Package index defines the contract for pluggable approximate
// nearest-neighbor backends. An index is built once, offline, over the
// corpus; the engine only loads and queries it.
package index

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")
	// ErrEmptyIndex is returned when searching an index with no vectors.
	ErrEmptyIndex = errors.New("index contains no vectors")
	// ErrNotTrained is returned when a quantized index is used before
	// its codebooks were trained or loaded.
	ErrNotTrained = errors.New("index not trained")
	// ErrIndexNotFound is returned when a configured index artifact does
	// not exist. A missing index is a fatal configuration error, never a
	// fallback to another strategy.
	ErrIndexNotFound = errors.New("index artifact not found")
)

// ErrDimensionMismatch is a named error type for dimension mismatch.
type ErrDimensionMismatch struct {
	Expected int // Expected dimensions
	Actual   int // Actual dimensions
}

// Error returns the error message for dimension mismatch.
func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Index is an approximate nearest-neighbor backend over inner-product
// similarity. Scores are backend-specific approximations of the inner
// product; descending score order is the only guarantee.
type Index interface {
	// Add appends vectors to the index in order; the i-th added vector
	// gets local id equal to its insertion position.
	Add(vectors [][]float32) error

	// Search returns, for each query in the batch, up to k candidate ids
	// and their approximate scores in descending score order.
	Search(queries [][]float32, k int) (scores [][]float32, ids [][]uint32, err error)

	// Dimension returns the expected query dimensionality.
	Dimension() int
}
