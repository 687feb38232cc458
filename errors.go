package gip

import (
	"errors"
	"fmt"

	"github.com/hqsearch/gip/index"
)

var (
	// ErrInvalidK is returned when the requested top-K is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrNilStore is returned when an engine is constructed without a store.
	ErrNilStore = errors.New("vector store must not be nil")

	// ErrNilSelector is returned when an engine is constructed without a
	// candidate selector.
	ErrNilSelector = errors.New("selector must not be nil")
)

// ErrDimensionMismatch indicates a vector/query dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var dm *index.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}
	if errors.Is(err, index.ErrInvalidK) {
		return fmt.Errorf("%w: %w", ErrInvalidK, err)
	}

	return err
}
