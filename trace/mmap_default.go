//go:build !linux

package trace

import (
	"io"
	"os"
)

// mapFile reads the whole file; platforms without the mmap fast path still
// get a working binary reader.
func mapFile(path string) ([]byte, io.Closer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return data, nopCloser{}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
