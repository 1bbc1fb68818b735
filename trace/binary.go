package trace

import (
	"encoding/binary"
	"sync"
)

// NewBinary streams packed 8-byte little-endian keys out of a byte slice,
// typically a memory-mapped trace file. A trailing partial record is
// ignored.
func NewBinary(data []byte) Stream {
	u := &sync.Mutex{}
	off := 0
	return func() (uint64, error) {
		u.Lock()
		defer u.Unlock()
		if off+8 > len(data) {
			return 0, ErrDone
		}
		key := binary.LittleEndian.Uint64(data[off:])
		off += 8
		return key, nil
	}
}
