// Package s3 provides a read-only BlobStore backed by S3-compatible
// object storage, for corpora and index artifacts that live in a bucket.
package s3
