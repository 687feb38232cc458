package model

// PadArgID is the sentinel argument id assigned to padding dimensions
// (e.g. an appended semantic/CLS block). Padded dimensions on both sides
// carry the same sentinel, so they always pass the gate and contribute
// their plain inner-product mass.
const PadArgID int32 = 1

// DocID is the opaque, externally assigned identifier of a corpus item.
// It is unique within one shard but not necessarily across shards.
type DocID = string

// QueryID identifies a query. Queries and corpus items share an ID
// namespace in self-retrieval settings; a candidate whose DocID equals
// the QueryID is excluded from written output.
type QueryID = string

// Query is a single retrieval request: a vector, an optional parallel
// argument index, and the query identifier.
type Query struct {
	ID     QueryID
	Vector []float32
	// Arg holds one argument id per dimension. Nil means plain
	// inner-product semantics (no gating).
	Arg []int32
}

// ScoredCandidate pairs a local corpus offset with a (possibly partial)
// score. The local offset is relative to the store slice the selector
// ran against; it is resolved to a DocID only at output time.
type ScoredCandidate struct {
	Local uint32
	Score float32
}

// ScoredDoc is one ranked entry of a retrieval result.
type ScoredDoc struct {
	DocID DocID
	Score float32
	// Rank is 1-based and assigned before self-hit filtering, so written
	// output may skip a rank number.
	Rank int
}

// Result holds the ranked candidates for one query, in descending score
// order. Ties keep ascending local-index order.
type Result struct {
	QueryID QueryID
	Docs    []ScoredDoc
}
