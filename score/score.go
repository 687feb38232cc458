// Package score provides the public API for generalized inner-product
// scoring. A score is a plain dot product when no argument index is
// present; with argument indices, each dimension contributes only when
// the candidate's argument id agrees with the query's.
package score

import (
	"github.com/hqsearch/gip/internal/math32"
)

// Dot calculates the plain inner product of query and candidate.
// Assumes vectors are the same length (caller's responsibility).
// Accumulation is float32; no normalization is applied.
func Dot(q, v []float32) float32 {
	return math32.Dot(q, v)
}

// DotAt calculates the plain inner product restricted to the given
// dimension subset.
func DotAt(dims []int, q, v []float32) float32 {
	return math32.DotAt(dims, q, v)
}

// Gated calculates the generalized inner product: dimension j contributes
// q[j]*v[j] only when vArg[j] == qArg[j].
func Gated(q []float32, qArg []int32, v []float32, vArg []int32) float32 {
	return math32.GatedDot(q, qArg, v, vArg)
}

// GatedAt calculates the generalized inner product restricted to the
// given dimension subset. Both the gate and the dot product consider only
// the listed dimensions.
func GatedAt(dims []int, q []float32, qArg []int32, v []float32, vArg []int32) float32 {
	return math32.GatedDotAt(dims, q, qArg, v, vArg)
}

// Func scores a single candidate against a fixed query.
type Func func(v []float32, vArg []int32) float32

// ForQuery returns a scoring closure for the given query. When qArg is
// nil the closure computes a plain inner product and ignores candidate
// argument indices.
func ForQuery(q []float32, qArg []int32) Func {
	if qArg == nil {
		return func(v []float32, _ []int32) float32 {
			return math32.Dot(q, v)
		}
	}
	return func(v []float32, vArg []int32) float32 {
		return math32.GatedDot(q, qArg, v, vArg)
	}
}

// ForQueryAt returns a scoring closure restricted to the given dimension
// subset.
func ForQueryAt(dims []int, q []float32, qArg []int32) Func {
	if qArg == nil {
		return func(v []float32, _ []int32) float32 {
			return math32.DotAt(dims, q, v)
		}
	}
	return func(v []float32, vArg []int32) float32 {
		return math32.GatedDotAt(dims, q, qArg, v, vArg)
	}
}
