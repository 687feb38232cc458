// Package vectorstore holds the immutable in-memory corpus: vectors,
// optional per-dimension argument indices, and doc identifiers, with
// contiguous shard slicing.
package vectorstore
