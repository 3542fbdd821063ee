package storage

import (
	"io"
)

// StorageAPI stores blobs under slash separated paths relative to the storage root
type StorageAPI interface {
	Save(path string, reader io.Reader) (int64, error)
	Load(path string, writer io.Writer) (int64, error)
	Delete(path string) error
	// DeleteDir removes an empty directory. Fails if there is still something inside.
	DeleteDir(dir string) error
	// GetFreeSpace returns the available bytes, 0 if unknown
	GetFreeSpace() uint64
	Describe() string
}

// countingReader is used where the backend does not report the written size
type countingReader struct {
	io.Reader
	n int64
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.Reader.Read(p)
	r.n += int64(n)
	return n, err
}
