package selector

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/hqsearch/gip/index"
	"github.com/hqsearch/gip/internal/queue"
	"github.com/hqsearch/gip/model"
	"github.com/hqsearch/gip/resource"
	"github.com/hqsearch/gip/score"
	"github.com/hqsearch/gip/vectorstore"
)

// Compile-time checks for ThetaPruned capabilities.
var (
	_ Selector       = (*ThetaPruned)(nil)
	_ DimensionStats = (*ThetaPruned)(nil)
	_ ResourceAware  = (*ThetaPruned)(nil)
)

// ThetaPruned approximates the generalized inner product by scoring only
// the query's important dimensions: those with mass above theta. Both
// the gate and the dot product are restricted to that subset, so
// excluded dimensions contribute no score in either direction. The
// ranking may diverge from the exact one; that divergence is the
// configured accuracy/speed tradeoff, not a defect.
//
// With ipOnly set, gating is skipped entirely and the partial score is a
// plain inner product over all dimensions: a cheaper, looser pre-filter.
//
// A query with no dimension above theta falls back to scoring all
// dimensions, which is equivalent to brute force at theta=0.
type ThetaPruned struct {
	store  *vectorstore.Store
	ctrl   *resource.Controller
	theta  float32
	ipOnly bool

	totalDims atomic.Int64
	queries   atomic.Int64

	bufs sync.Pool
}

// NewThetaPruned creates a theta-pruned selector. ctrl may be nil.
func NewThetaPruned(store *vectorstore.Store, ctrl *resource.Controller, theta float32, ipOnly bool) *ThetaPruned {
	return &ThetaPruned{
		store:  store,
		ctrl:   ctrl,
		theta:  theta,
		ipOnly: ipOnly,
	}
}

// SetResourceController replaces the selector's controller.
func (s *ThetaPruned) SetResourceController(ctrl *resource.Controller) {
	s.ctrl = ctrl
}

// AvgImportantDims returns the mean number of scored dimensions per
// query since construction. Diagnostic only.
func (s *ThetaPruned) AvgImportantDims() float64 {
	n := s.queries.Load()
	if n == 0 {
		return 0
	}
	return float64(s.totalDims.Load()) / float64(n)
}

// Select computes partial scores over the important dimensions and
// returns the top k rows by partial score.
func (s *ThetaPruned) Select(ctx context.Context, q model.Query, k int) ([]model.ScoredCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, index.ErrInvalidK
	}
	if len(q.Vector) != s.store.Dimension() {
		return nil, &index.ErrDimensionMismatch{Expected: s.store.Dimension(), Actual: len(q.Vector)}
	}
	if s.store.HasArgs() && q.Arg != nil && len(q.Arg) != s.store.Dimension() {
		return nil, &index.ErrDimensionMismatch{Expected: s.store.Dimension(), Actual: len(q.Arg)}
	}

	n := s.store.Len()
	if n == 0 {
		return nil, nil
	}

	if err := s.ctrl.AcquireMemory(ctx, int64(n)*4); err != nil {
		return nil, err
	}
	defer s.ctrl.ReleaseMemory(int64(n) * 4)

	scores := s.getBuf(n)
	defer s.bufs.Put(scores) //nolint:staticcheck // slice reuse, not pointer

	fn, used := s.scoreFunc(q)
	s.totalDims.Add(int64(used))
	s.queries.Add(1)

	for i := 0; i < n; i++ {
		scores[i] = fn(s.store.Vector(uint32(i)), s.store.Arg(uint32(i)))
	}

	top := queue.NewTopK(k)
	for i, sc := range scores[:n] {
		top.Push(queue.Item{Local: uint32(i), Score: sc})
	}

	return drainTopK(top), nil
}

// scoreFunc picks the partial scoring closure for one query and reports
// how many dimensions it will touch.
func (s *ThetaPruned) scoreFunc(q model.Query) (score.Func, int) {
	dim := s.store.Dimension()

	if s.ipOnly {
		// Plain inner product over all dimensions, argument index ignored.
		return score.ForQuery(q.Vector, nil), dim
	}

	qArg := q.Arg
	if !s.store.HasArgs() {
		qArg = nil
	}

	dims := importantDims(q.Vector, s.theta)
	if len(dims) == 0 {
		// Degenerate important-dimension set: score all dimensions.
		return score.ForQuery(q.Vector, qArg), dim
	}

	return score.ForQueryAt(dims, q.Vector, qArg), len(dims)
}

func (s *ThetaPruned) getBuf(n int) []float32 {
	if v := s.bufs.Get(); v != nil {
		buf := v.([]float32)
		if cap(buf) >= n {
			return buf[:n]
		}
	}
	return make([]float32, n)
}
