// Package trace encapsulates the generation and parsing of key streams for
// driving cache policy simulations.
package trace

import (
	"bufio"
	"compress/gzip"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/dgryski/go-farm"
	"github.com/pkg/errors"
)

var (
	// ErrDone is returned when a stream has no more keys.
	ErrDone = errors.New("no more keys in the stream")
	// ErrBadLine is returned for lines that don't match the trace format.
	ErrBadLine = errors.New("bad line for trace format")
)

// A Stream produces one key per call, returning ErrDone when exhausted.
type Stream func() (uint64, error)

// NewZipfian returns a stream of Zipfian-distributed keys over [0, n). The
// seed makes runs reproducible.
func NewZipfian(s, v float64, n uint64, seed int64) Stream {
	u := &sync.Mutex{}
	z := rand.NewZipf(rand.New(rand.NewSource(seed)), s, v, n-1)
	return func() (uint64, error) {
		u.Lock()
		defer u.Unlock()
		return z.Uint64(), nil
	}
}

// NewUniform returns a stream of uniformly distributed keys over [0, n).
func NewUniform(n uint64, seed int64) Stream {
	u := &sync.Mutex{}
	m := int64(n)
	r := rand.New(rand.NewSource(seed))
	return func() (uint64, error) {
		u.Lock()
		defer u.Unlock()
		return uint64(r.Int63n(m)), nil
	}
}

// A Parser turns one trace line into a sequence of keys.
type Parser func(string, error) ([]uint64, error)

// NewReader streams keys out of a line-oriented trace file.
func NewReader(parser Parser, file io.Reader) Stream {
	u := &sync.Mutex{}
	b := bufio.NewReader(file)
	s := make([]uint64, 0)
	i := -1
	var err error
	return func() (uint64, error) {
		u.Lock()
		defer u.Unlock()
		// only parse a new line when we've run out of keys; empty sequences
		// (blank lines, zero-length runs) just advance to the next line
		for {
			if i++; i < len(s) {
				return s[i], nil
			}
			if s, err = parser(b.ReadString('\n')); err != nil {
				return 0, err
			}
			i = -1
		}
	}
}

// ParseLIRS parses a LIRS-format line: one decimal key per line.
func ParseLIRS(line string, err error) ([]uint64, error) {
	if line != "" {
		// example: "1\r\n"
		key, err := strconv.ParseUint(strings.TrimSpace(line), 10, 64)
		return []uint64{key}, err
	}
	return nil, ErrDone
}

// ParseARC parses an ARC-format line into its run of sequential keys.
func ParseARC(line string, err error) ([]uint64, error) {
	if line != "" {
		// example: "0 5 0 0\r\n"
		//
		// -  first block: starting number in sequence
		// - second block: number of items in sequence
		// -  third block: ignore
		// - fourth block: global line number (not used)
		cols := strings.Fields(line)
		if len(cols) != 4 {
			return nil, ErrBadLine
		}
		start, err := strconv.ParseUint(cols[0], 10, 64)
		if err != nil {
			return nil, err
		}
		count, err := strconv.ParseUint(cols[1], 10, 64)
		if err != nil {
			return nil, err
		}
		seq := make([]uint64, count)
		for i := range seq {
			seq[i] = start + uint64(i)
		}
		return seq, nil
	}
	return nil, ErrDone
}

// ParsePlain parses the first whitespace-separated field of a line as the
// key: decimal if it looks numeric, otherwise a farm fingerprint of the raw
// token, so object-name traces work unchanged.
func ParsePlain(line string, err error) ([]uint64, error) {
	if line == "" {
		return nil, ErrDone
	}
	cols := strings.Fields(line)
	if len(cols) == 0 {
		// Blank interior line; skip it by returning an empty sequence.
		return []uint64{}, nil
	}
	if key, err := strconv.ParseUint(cols[0], 10, 64); err == nil {
		return []uint64{key}, nil
	}
	return []uint64{farm.Fingerprint64([]byte(cols[0]))}, nil
}

// Collection eagerly drains up to size keys from a stream. Replaying the
// same collection through a matrix of policies keeps their inputs identical.
func Collection(stream Stream, size uint64) []uint64 {
	collection := make([]uint64, 0, size)
	for uint64(len(collection)) < size {
		key, err := stream()
		if err != nil {
			break
		}
		collection = append(collection, key)
	}
	return collection
}

// Open returns a key stream for the trace file at path, picking the format
// by extension: .lirs (one key per line), .arc (sequence runs), .txt/.trace
// (plain first-field), .bin (packed 8-byte little-endian keys). A trailing
// .gz on line-oriented formats is transparently decompressed.
func Open(path string) (Stream, io.Closer, error) {
	name := path
	compressed := false
	if strings.HasSuffix(name, ".gz") {
		compressed = true
		name = strings.TrimSuffix(name, ".gz")
	}

	ext := filepath.Ext(name)
	if ext == ".bin" {
		if compressed {
			return nil, nil, errors.Errorf("trace: compressed binary traces are not supported: %s", path)
		}
		data, closer, err := mapFile(path)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "trace: opening %s", path)
		}
		return NewBinary(data), closer, nil
	}

	var parser Parser
	switch ext {
	case ".lirs":
		parser = ParseLIRS
	case ".arc":
		parser = ParseARC
	case ".txt", ".trace":
		parser = ParsePlain
	default:
		return nil, nil, errors.Errorf("trace: unknown trace format: %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "trace: opening %s", path)
	}
	var r io.Reader = f
	if compressed {
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, errors.Wrapf(err, "trace: decompressing %s", path)
		}
		r = zr
	}
	return NewReader(parser, r), f, nil
}
