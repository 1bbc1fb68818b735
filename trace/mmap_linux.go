//go:build linux

package trace

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// mapFile maps the file at path read-only. Large binary traces are read
// through the page cache instead of being copied onto the heap.
func mapFile(path string) ([]byte, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if fi.Size() == 0 {
		// mmap rejects empty files.
		return nil, f, nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(fi.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return data, &mmapCloser{f: f, data: data}, nil
}

type mmapCloser struct {
	f    *os.File
	data []byte
}

func (c *mmapCloser) Close() error {
	err := unix.Munmap(c.data)
	if cerr := c.f.Close(); err == nil {
		err = cerr
	}
	return err
}
