package selector

import (
	"context"
	"sync"

	"github.com/hqsearch/gip/index"
	"github.com/hqsearch/gip/internal/queue"
	"github.com/hqsearch/gip/model"
	"github.com/hqsearch/gip/resource"
	"github.com/hqsearch/gip/score"
	"github.com/hqsearch/gip/vectorstore"
)

// Compile-time checks for BruteForce capabilities.
var (
	_ Selector      = (*BruteForce)(nil)
	_ ResourceAware = (*BruteForce)(nil)
)

// BruteForce scores every row of the store with the exact generalized
// inner product. Cost is O(rows * dimension) per query; it is the
// correctness baseline and the theta=0 operating point.
//
// The full-corpus score buffer is the peak allocation of this path. It
// is acquired from the resource controller per query and released when
// the query completes, so memory stays flat across the run.
type BruteForce struct {
	store *vectorstore.Store
	ctrl  *resource.Controller
	bufs  sync.Pool
}

// NewBruteForce creates a brute-force selector over the store.
// ctrl may be nil (no scratch accounting).
func NewBruteForce(store *vectorstore.Store, ctrl *resource.Controller) *BruteForce {
	return &BruteForce{
		store: store,
		ctrl:  ctrl,
	}
}

// SetResourceController replaces the selector's controller.
func (s *BruteForce) SetResourceController(ctrl *resource.Controller) {
	s.ctrl = ctrl
}

// Select scores the whole store and returns the top k rows.
func (s *BruteForce) Select(ctx context.Context, q model.Query, k int) ([]model.ScoredCandidate, error) {
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

	qArg := q.Arg
	if !s.store.HasArgs() {
		qArg = nil
	}
	fn := score.ForQuery(q.Vector, qArg)
	for i := 0; i < n; i++ {
		scores[i] = fn(s.store.Vector(uint32(i)), s.store.Arg(uint32(i)))
	}

	top := queue.NewTopK(k)
	for i, sc := range scores[:n] {
		top.Push(queue.Item{Local: uint32(i), Score: sc})
	}

	return drainTopK(top), nil
}

func (s *BruteForce) getBuf(n int) []float32 {
	if v := s.bufs.Get(); v != nil {
		buf := v.([]float32)
		if cap(buf) >= n {
			return buf[:n]
		}
	}
	return make([]float32, n)
}
