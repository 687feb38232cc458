// Package model defines the shared data types of the retrieval engine:
// queries, scored candidates, and ranked results.
package model
