// Package rerank recomputes exact generalized inner-product scores over
// a shortlist chosen by an approximate stage. The output ranking is
// exact within the shortlist even when the shortlist itself was chosen
// approximately; candidates the approximate stage never surfaced stay
// invisible.
package rerank

import (
	"context"

	"github.com/hqsearch/gip/internal/queue"
	"github.com/hqsearch/gip/model"
	"github.com/hqsearch/gip/score"
	"github.com/hqsearch/gip/vectorstore"
)

// Reranker rescoring is stateless; the struct only carries the store the
// shortlist offsets refer to.
type Reranker struct {
	store *vectorstore.Store
}

// New creates a reranker over the given store.
func New(store *vectorstore.Store) *Reranker {
	return &Reranker{store: store}
}

// Rerank recomputes full-gating, all-dimension scores for the shortlist
// and returns its top k, descending. A shortlist smaller than k yields a
// correspondingly smaller result; that is expected when the approximate
// stage was configured with a shortlist size below k.
func (r *Reranker) Rerank(ctx context.Context, q model.Query, shortlist []model.ScoredCandidate, k int) ([]model.ScoredCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	qArg := q.Arg
	if !r.store.HasArgs() {
		qArg = nil
	}
	fn := score.ForQuery(q.Vector, qArg)

	top := queue.NewTopK(k)
	for _, c := range shortlist {
		exact := fn(r.store.Vector(c.Local), r.store.Arg(c.Local))
		top.Push(queue.Item{Local: c.Local, Score: exact})
	}

	items := top.Drain()
	out := make([]model.ScoredCandidate, len(items))
	for i, item := range items {
		out[i] = model.ScoredCandidate{Local: item.Local, Score: item.Score}
	}

	return out, nil
}
