// Package blobstore abstracts read access to immutable data blobs:
// corpus/query snapshots and prebuilt index artifacts. Implementations
// cover the local file system (memory-mapped), process memory (tests),
// and S3-compatible object storage.
package blobstore
