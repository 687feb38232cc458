package vectorstore

import (
	"fmt"

	"github.com/hqsearch/gip/model"
)

// Store holds an ordered, immutable sequence of (vector, argument index,
// doc id) triples in row-major columnar layout. All vectors share one
// dimension. A Store is loaded once at process start and never mutated;
// Shard returns contiguous read-only views for scale-out.
type Store struct {
	dim  int
	rows int
	data []float32 // rows*dim vector values
	args []int32   // rows*dim argument ids, nil when absent
	ids  []string  // rows doc ids
}

// New creates a Store over the given row-major vector data.
//
// args may be nil (plain inner-product semantics). When args rows are
// narrower than dim (an appended semantic/CLS block has no argument ids),
// each row is padded to dim with model.PadArgID so padded dimensions
// always pass the gate.
func New(dim int, data []float32, args []int32, ids []string) (*Store, error) {
	if dim <= 0 {
		return nil, &ErrInvalidDimension{Dimension: dim}
	}
	if len(data)%dim != 0 {
		return nil, fmt.Errorf("vectorstore: data length %d not divisible by dimension %d", len(data), dim)
	}

	rows := len(data) / dim
	if len(ids) != rows {
		return nil, fmt.Errorf("vectorstore: got %d ids for %d rows", len(ids), rows)
	}

	if args != nil {
		if rows == 0 || len(args)%rows != 0 {
			return nil, fmt.Errorf("vectorstore: args length %d not divisible by %d rows", len(args), rows)
		}
		argDim := len(args) / rows
		if argDim > dim {
			return nil, fmt.Errorf("vectorstore: arg dimension %d exceeds vector dimension %d", argDim, dim)
		}
		if argDim < dim {
			args = padArgs(args, rows, argDim, dim)
		}
	}

	return &Store{
		dim:  dim,
		rows: rows,
		data: data,
		args: args,
		ids:  ids,
	}, nil
}

// padArgs widens each argument row from argDim to dim, filling the new
// trailing dimensions with the padding sentinel.
func padArgs(args []int32, rows, argDim, dim int) []int32 {
	padded := make([]int32, rows*dim)
	for i := 0; i < rows; i++ {
		row := padded[i*dim : (i+1)*dim]
		copy(row, args[i*argDim:(i+1)*argDim])
		for j := argDim; j < dim; j++ {
			row[j] = model.PadArgID
		}
	}

	return padded
}

// Len returns the number of rows in the store.
func (s *Store) Len() int { return s.rows }

// Dimension returns the shared vector dimension.
func (s *Store) Dimension() int { return s.dim }

// HasArgs reports whether the store carries argument indices.
func (s *Store) HasArgs() bool { return s.args != nil }

// Vector returns the vector at local offset i.
// The returned slice aliases store memory and must be treated as read-only.
func (s *Store) Vector(i uint32) []float32 {
	return s.data[int(i)*s.dim : (int(i)+1)*s.dim]
}

// Arg returns the argument index row at local offset i, or nil when the
// store has no argument indices. Read-only, like Vector.
func (s *Store) Arg(i uint32) []int32 {
	if s.args == nil {
		return nil
	}
	return s.args[int(i)*s.dim : (int(i)+1)*s.dim]
}

// DocID returns the doc id at local offset i.
func (s *Store) DocID(i uint32) model.DocID {
	return s.ids[i]
}

// Query materializes row i as a model.Query, for stores holding the
// query side of a retrieval run.
func (s *Store) Query(i uint32) model.Query {
	return model.Query{
		ID:     s.ids[i],
		Vector: s.Vector(i),
		Arg:    s.Arg(i),
	}
}

// ScaleBlock multiplies dimensions [start, dim) of every row by lambda.
// It is applied once at load time (before any search) to weight an
// appended semantic block against the lexical block; calling it later
// would violate the store's immutability contract.
func (s *Store) ScaleBlock(start int, lambda float32) error {
	if start < 0 || start > s.dim {
		return fmt.Errorf("vectorstore: block start %d out of range [0,%d]", start, s.dim)
	}
	if lambda == 1 || start == s.dim {
		return nil
	}
	for i := 0; i < s.rows; i++ {
		row := s.data[i*s.dim : (i+1)*s.dim]
		for j := start; j < s.dim; j++ {
			row[j] *= lambda
		}
	}

	return nil
}

// Shard returns the contiguous slice of the store owned by shardIdx out
// of totalShards. Rows are split as [n/total*idx, n/total*(idx+1)); the
// last shard absorbs the remainder. Concatenating all shards in order
// reconstructs the full store.
func (s *Store) Shard(shardIdx, totalShards int) (*Store, error) {
	if totalShards < 1 {
		return nil, fmt.Errorf("vectorstore: totalShards must be >= 1, got %d", totalShards)
	}
	if shardIdx < 0 || shardIdx >= totalShards {
		return nil, fmt.Errorf("vectorstore: invalid shard %d for %d shards", shardIdx, totalShards)
	}

	per := s.rows / totalShards
	lo := per * shardIdx
	hi := per * (shardIdx + 1)
	if shardIdx == totalShards-1 {
		hi = s.rows
	}

	shard := &Store{
		dim:  s.dim,
		rows: hi - lo,
		data: s.data[lo*s.dim : hi*s.dim],
		ids:  s.ids[lo:hi],
	}
	if s.args != nil {
		shard.args = s.args[lo*s.dim : hi*s.dim]
	}

	return shard, nil
}

// ErrInvalidDimension indicates an invalid configured dimension.
type ErrInvalidDimension struct {
	Dimension int
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension: %d", e.Dimension)
}
