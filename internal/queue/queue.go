// Package queue provides a bounded top-k accumulator for scored candidates.
package queue

// Item represents a scored candidate in the queue.
// Value-based (no pointers) for cache locality and zero allocations.
type Item struct {
	Local uint32  // Local is the candidate's local corpus offset.
	Score float32 // Score is the (possibly partial) retrieval score.
}

// TopK keeps the k best items by score, descending. Ties are broken by
// ascending local offset so results are deterministic regardless of
// insertion order. Internally it is a min-heap whose root is the weakest
// kept item.
type TopK struct {
	k     int
	items []Item
}

// NewTopK initializes a top-k accumulator with capacity k.
func NewTopK(k int) *TopK {
	return &TopK{
		k:     k,
		items: make([]Item, 0, k),
	}
}

// Len returns the number of items currently kept.
func (q *TopK) Len() int { return len(q.items) }

// Push offers an item to the accumulator. If the accumulator is full and
// the item is not better than the current weakest item, it is dropped.
func (q *TopK) Push(item Item) {
	if q.k <= 0 {
		return
	}

	if len(q.items) < q.k {
		q.items = append(q.items, item)
		q.siftUp(len(q.items) - 1)
		return
	}

	if !better(item, q.items[0]) {
		return
	}

	q.items[0] = item
	q.siftDown(0)
}

// PopWeakest removes and returns the weakest kept item.
func (q *TopK) PopWeakest() (Item, bool) {
	n := len(q.items)
	if n == 0 {
		return Item{}, false
	}

	root := q.items[0]
	last := q.items[n-1]
	q.items[n-1] = Item{}
	q.items = q.items[:n-1]
	if n-1 > 0 {
		q.items[0] = last
		q.siftDown(0)
	}

	return root, true
}

// Drain returns all kept items ordered by descending score (ascending
// local offset among ties). The accumulator is empty afterwards.
func (q *TopK) Drain() []Item {
	out := make([]Item, len(q.items))
	for i := len(q.items) - 1; i >= 0; i-- {
		item, _ := q.PopWeakest()
		out[i] = item
	}

	return out
}

// Reset clears the accumulator for reuse.
func (q *TopK) Reset() {
	q.items = q.items[:0]
}

// better reports whether a outranks b: higher score wins, equal scores
// prefer the smaller local offset.
func better(a, b Item) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Local < b.Local
}

// less orders the backing min-heap: the root is the weakest item.
func (q *TopK) less(i, j int) bool {
	return better(q.items[j], q.items[i])
}

func (q *TopK) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !q.less(i, p) {
			return
		}
		q.items[i], q.items[p] = q.items[p], q.items[i]
		i = p
	}
}

func (q *TopK) siftDown(i int) {
	n := len(q.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		if r := l + 1; r < n && q.less(r, l) {
			best = r
		}
		if !q.less(best, i) {
			return
		}
		q.items[i], q.items[best] = q.items[best], q.items[i]
		i = best
	}
}
