package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/edsrzf/mmap-go"
)

// LocalStore implements BlobStore using the local file system.
// Blobs are memory-mapped: snapshot loading reads large contiguous
// sections, and mmap keeps the resident cost to what is actually touched.
type LocalStore struct {
	root string
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// Open opens a blob for reading.
func (s *LocalStore) Open(_ context.Context, name string) (Blob, error) {
	path := name
	if !filepath.IsAbs(name) {
		path = filepath.Join(s.root, name)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.Size() == 0 {
		// Cannot mmap an empty file.
		return &localBlob{f: f}, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return &localBlob{f: f, m: m}, nil
}

type localBlob struct {
	f *os.File
	m mmap.MMap
}

func (b *localBlob) ReadAt(p []byte, off int64) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 || off >= int64(len(b.m)) {
		return 0, io.EOF
	}
	n = copy(p, b.m[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *localBlob) Close() error {
	var err error
	if b.m != nil {
		err = b.m.Unmap()
		b.m = nil
	}
	if cerr := b.f.Close(); err == nil {
		err = cerr
	}
	return err
}

func (b *localBlob) Size() int64 {
	return int64(len(b.m))
}

func (b *localBlob) Bytes() ([]byte, error) {
	return b.m, nil
}
