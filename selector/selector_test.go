package selector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hqsearch/gip/index"
	"github.com/hqsearch/gip/index/flat"
	"github.com/hqsearch/gip/model"
	"github.com/hqsearch/gip/testutil"
	"github.com/hqsearch/gip/vectorstore"
)

func newTestStore(t *testing.T, c testutil.Corpus) *vectorstore.Store {
	t.Helper()
	store, err := vectorstore.New(c.Dimension, c.Vectors, c.Args, c.IDs)
	require.NoError(t, err)
	return store
}

func TestBruteForceMatchesGroundTruth(t *testing.T) {
	rng := testutil.NewRNG(42)
	c := rng.MakeCorpus(100, 8, 3)
	store := newTestStore(t, c)

	q := model.Query{ID: "q", Vector: make([]float32, 8), Arg: make([]int32, 8)}
	rng.FillUniform(q.Vector)
	rng.FillArgs(q.Arg, 3)

	sel := NewBruteForce(store, nil)
	got, err := sel.Select(context.Background(), q, 10)
	require.NoError(t, err)
	require.Len(t, got, 10)

	want := testutil.ExactTopK(q.Vector, q.Arg, c.Vectors, c.Args, 10)
	for i, w := range want {
		assert.Equal(t, uint32(w.Row), got[i].Local)
		assert.InDelta(t, w.Score, got[i].Score, 1e-5)
	}
}

func TestBruteForceWithoutArgs(t *testing.T) {
	store, err := vectorstore.New(2,
		[]float32{1, 0, 0, 1, 1, 1},
		nil,
		[]string{"a", "b", "c"},
	)
	require.NoError(t, err)

	// Query args are present but the store has none; scoring falls back
	// to the plain inner product.
	q := model.Query{ID: "q", Vector: []float32{2, 1}, Arg: []int32{1, 1}}
	sel := NewBruteForce(store, nil)

	got, err := sel.Select(context.Background(), q, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, uint32(2), got[0].Local)
	assert.Equal(t, float32(3), got[0].Score)
}

func TestBruteForceErrors(t *testing.T) {
	rng := testutil.NewRNG(1)
	c := rng.MakeCorpus(10, 4, 2)
	sel := NewBruteForce(newTestStore(t, c), nil)

	q := model.Query{Vector: make([]float32, 4)}
	_, err := sel.Select(context.Background(), q, 0)
	assert.ErrorIs(t, err, index.ErrInvalidK)

	_, err = sel.Select(context.Background(), model.Query{Vector: []float32{1}}, 5)
	var dm *index.ErrDimensionMismatch
	assert.ErrorAs(t, err, &dm)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sel.Select(ctx, q, 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSelectRejectsShortQueryArgs(t *testing.T) {
	rng := testutil.NewRNG(3)
	c := rng.MakeCorpus(10, 4, 2)
	store := newTestStore(t, c)

	// Args shorter than the dimension must surface as a typed error, not
	// an out-of-range panic during scoring.
	q := model.Query{ID: "q", Vector: make([]float32, 4), Arg: []int32{1}}

	var dm *index.ErrDimensionMismatch
	_, err := NewBruteForce(store, nil).Select(context.Background(), q, 3)
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 4, dm.Expected)
	assert.Equal(t, 1, dm.Actual)

	_, err = NewThetaPruned(store, nil, 0.5, false).Select(context.Background(), q, 3)
	assert.ErrorAs(t, err, &dm)
}

func TestThetaZeroEqualsBruteForce(t *testing.T) {
	rng := testutil.NewRNG(7)
	c := rng.MakeCorpus(80, 6, 4)
	store := newTestStore(t, c)

	q := model.Query{ID: "q", Vector: make([]float32, 6), Arg: make([]int32, 6)}
	rng.FillUniform(q.Vector)
	rng.FillArgs(q.Arg, 4)

	brute, err := NewBruteForce(store, nil).Select(context.Background(), q, 10)
	require.NoError(t, err)
	// Uniform [0,1) vectors have every dimension above theta=0.
	pruned, err := NewThetaPruned(store, nil, 0, false).Select(context.Background(), q, 10)
	require.NoError(t, err)

	assert.Equal(t, brute, pruned)
}

func TestThetaMonotonicDims(t *testing.T) {
	// Raising theta can only shrink the scored dimension set.
	q := []float32{0.9, 0.5, 0.1, 0.01}

	prev := len(importantDims(q, 0))
	for _, theta := range []float32{0.05, 0.3, 0.6} {
		cur := len(importantDims(q, theta))
		assert.LessOrEqual(t, cur, prev)
		prev = cur
	}
	assert.Equal(t, 4, len(importantDims(q, 0)))
	assert.Equal(t, 1, len(importantDims(q, 0.6)))
}

func TestThetaDegenerateFallsBackToAllDims(t *testing.T) {
	rng := testutil.NewRNG(9)
	c := rng.MakeCorpus(40, 4, 2)
	store := newTestStore(t, c)

	q := model.Query{ID: "q", Vector: []float32{0.1, 0.2, 0.1, 0.05}, Arg: []int32{0, 1, 0, 1}}

	// theta above every query value: no important dimensions, so the
	// selector must score all of them, matching brute force.
	brute, err := NewBruteForce(store, nil).Select(context.Background(), q, 5)
	require.NoError(t, err)
	pruned, err := NewThetaPruned(store, nil, 0.9, false).Select(context.Background(), q, 5)
	require.NoError(t, err)

	assert.Equal(t, brute, pruned)
}

func TestThetaPrunesScoring(t *testing.T) {
	// Corpus where only dimension 0 is important to the query. The pruned
	// selector must ignore contributions from other dimensions entirely.
	store, err := vectorstore.New(2,
		[]float32{1, 100, 2, 0},
		[]int32{1, 1, 1, 1},
		[]string{"a", "b"},
	)
	require.NoError(t, err)

	q := model.Query{ID: "q", Vector: []float32{1, 0.001}, Arg: []int32{1, 1}}
	sel := NewThetaPruned(store, nil, 0.5, false)

	got, err := sel.Select(context.Background(), q, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Partial scores: row 0 -> 1*1 = 1, row 1 -> 1*2 = 2. The huge mass
	// in dimension 1 of row 0 is invisible below theta.
	assert.Equal(t, uint32(1), got[0].Local)
	assert.Equal(t, float32(2), got[0].Score)
	assert.Equal(t, float32(1), got[1].Score)
}

func TestThetaIPOnlyIgnoresGate(t *testing.T) {
	store, err := vectorstore.New(2,
		[]float32{3, 4, 1, 1},
		[]int32{9, 9, 1, 1},
		[]string{"a", "b"},
	)
	require.NoError(t, err)

	// Row 0's args never match the query, but ipOnly scores it anyway.
	q := model.Query{ID: "q", Vector: []float32{1, 1}, Arg: []int32{1, 1}}
	sel := NewThetaPruned(store, nil, 0.5, true)

	got, err := sel.Select(context.Background(), q, 2)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), got[0].Local)
	assert.Equal(t, float32(7), got[0].Score)
}

func TestThetaAvgImportantDims(t *testing.T) {
	rng := testutil.NewRNG(13)
	c := rng.MakeCorpus(20, 4, 2)
	store := newTestStore(t, c)
	sel := NewThetaPruned(store, nil, 0.5, false)

	assert.Equal(t, float64(0), sel.AvgImportantDims())

	q := model.Query{Vector: []float32{0.9, 0.9, 0.1, 0.1}, Arg: []int32{0, 0, 0, 0}}
	_, err := sel.Select(context.Background(), q, 3)
	require.NoError(t, err)

	assert.Equal(t, float64(2), sel.AvgImportantDims())
}

func TestIndexedSelect(t *testing.T) {
	ix, err := flat.New(2)
	require.NoError(t, err)
	require.NoError(t, ix.Add([][]float32{{1, 0}, {0, 1}, {1, 1}}))

	sel := NewIndexed(ix, 2)
	got, err := sel.Select(context.Background(), model.Query{ID: "q", Vector: []float32{2, 1}}, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint32(2), got[0].Local)
	assert.Equal(t, float32(6), got[0].Score)
}

func TestIndexedSelectBatchWithRemainder(t *testing.T) {
	ix, err := flat.New(1)
	require.NoError(t, err)
	require.NoError(t, ix.Add([][]float32{{1}, {2}, {3}}))

	queries := []model.Query{
		{ID: "a", Vector: []float32{1}},
		{ID: "b", Vector: []float32{1}},
		{ID: "c", Vector: []float32{1}},
	}

	// Batch size 2 forces a full batch plus a remainder batch.
	sel := NewIndexed(ix, 2)
	out, err := sel.SelectBatch(context.Background(), queries, 1)
	require.NoError(t, err)
	require.Len(t, out, 3)
	for _, candidates := range out {
		require.Len(t, candidates, 1)
		assert.Equal(t, uint32(2), candidates[0].Local)
	}
}

func TestIndexedInvalidK(t *testing.T) {
	ix, err := flat.New(1)
	require.NoError(t, err)
	require.NoError(t, ix.Add([][]float32{{1}}))

	sel := NewIndexed(ix, 4)
	_, err = sel.SelectBatch(context.Background(), nil, 0)
	assert.ErrorIs(t, err, index.ErrInvalidK)
}
