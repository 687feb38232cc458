// Package testutil provides testing utilities for the retrieval engine.
//
// This package is intended for use in tests and benchmarks only. It
// provides helpers for generating random vectors, argument indexes and
// synthetic corpora, plus an exact ground-truth scorer.
package testutil

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float32 in a loop).
func (r *RNG) FillUniform(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float32()
	}
}

// FillSparse fills dst with zeros except for nonzero entries drawn
// uniformly from [0, 1). Sparse vectors exercise the importance
// threshold paths.
func (r *RNG) FillSparse(dst []float32, nonzero int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = 0
	}
	for i := 0; i < nonzero; i++ {
		dst[r.rand.Intn(len(dst))] = r.rand.Float32()
	}
}

// FillArgs fills dst with argument indexes drawn from [0, maxArg).
func (r *RNG) FillArgs(dst []int32, maxArg int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Int31n(maxArg)
	}
}

// UniformVectors returns n vectors of the given dimension with entries
// in [0, 1).
func (r *RNG) UniformVectors(n, dimension int) [][]float32 {
	out := make([][]float32, n)
	for i := range out {
		out[i] = make([]float32, dimension)
		r.FillUniform(out[i])
	}
	return out
}

// Corpus bundles a synthetic corpus in the flat layout the store expects.
type Corpus struct {
	Dimension int
	Vectors   []float32
	Args      []int32
	IDs       []string
}

// MakeCorpus generates rows random vectors with argument indexes from
// [0, maxArg) and document IDs "doc0".."docN".
func (r *RNG) MakeCorpus(rows, dimension int, maxArg int32) Corpus {
	c := Corpus{
		Dimension: dimension,
		Vectors:   make([]float32, rows*dimension),
		Args:      make([]int32, rows*dimension),
		IDs:       make([]string, rows),
	}
	r.FillUniform(c.Vectors)
	r.FillArgs(c.Args, maxArg)
	for i := range c.IDs {
		c.IDs[i] = fmt.Sprintf("doc%d", i)
	}
	return c
}

// ScoredRow is a ground-truth scored corpus row.
type ScoredRow struct {
	Row   int
	Score float32
}

// ExactTopK computes the exact gated top k over a flat corpus, ranked by
// descending score with ties broken by ascending row. qArg or args may
// be nil, in which case the gate is open on every dimension.
func ExactTopK(q []float32, qArg []int32, vectors []float32, args []int32, k int) []ScoredRow {
	dim := len(q)
	rows := len(vectors) / dim

	scored := make([]ScoredRow, rows)
	for i := 0; i < rows; i++ {
		var sum float32
		for j := 0; j < dim; j++ {
			if qArg != nil && args != nil && qArg[j] != args[i*dim+j] {
				continue
			}
			sum += q[j] * vectors[i*dim+j]
		}
		scored[i] = ScoredRow{Row: i, Score: sum}
	}

	sort.SliceStable(scored, func(a, b int) bool {
		if scored[a].Score != scored[b].Score {
			return scored[a].Score > scored[b].Score
		}
		return scored[a].Row < scored[b].Row
	})

	if k < len(scored) {
		scored = scored[:k]
	}
	return scored
}
