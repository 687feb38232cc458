// Package gip implements top-K retrieval under the generalized inner
// product: an inner product where each dimension contributes only when
// the document's and the query's argument index agree on it.
//
// Retrieval is a two-stage pipeline over an immutable corpus. A
// candidate selector produces a shortlist per query, either exactly
// (brute force), by scoring only the query's high-mass dimensions
// (theta pruning), or through a prebuilt ANN backend. An optional
// rerank stage then rescores the shortlist with the exact generalized
// inner product before the final top K is cut.
//
// The Engine in this package wires the stages together and runs queries
// across a worker pool:
//
//	store, _ := vectorstore.New(dim, vectors, args, ids)
//	sel := selector.NewThetaPruned(store, nil, 0.05, false)
//	eng, _ := gip.New(store, sel, 10, gip.WithRerank(100))
//	results, stats, _ := eng.Run(ctx, queries)
package gip
