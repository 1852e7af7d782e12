package intern

import (
	"math"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/rerrors"
)

// keyToStr is the shared backing store for every interner variant: an
// insertion-ordered list of offsets into a single contiguous character
// buffer. offsets[k] is the start of string k; its end is offsets[k+1], or
// len(buf) for the last entry (the "implicit sentinel end" from the design).
type keyToStr struct {
	offsets []uint32
	buf     []byte
}

func newKeyToStr(capCount, capBytes int) *keyToStr {
	return &keyToStr{
		offsets: make([]uint32, 0, capCount),
		buf:     make([]byte, 0, capBytes),
	}
}

func (k *keyToStr) len() int { return len(k.offsets) }

func (k *keyToStr) strLen() int { return len(k.buf) }

// get returns the substring for index idx (0-based, dense).
func (k *keyToStr) get(idx int) (string, error) {
	if idx < 0 || idx >= len(k.offsets) {
		return "", rerrors.New(rerrors.KindKeyNotFound, "interner handle %d out of range (len=%d)", idx, len(k.offsets))
	}
	start := int(k.offsets[idx])
	end := len(k.buf)
	if idx != len(k.offsets)-1 {
		end = int(k.offsets[idx+1])
	}
	return string(k.buf[start:end]), nil
}

// push appends s unconditionally and returns its new dense index, or an
// error if the new byte offset cannot be represented as a uint32.
func (k *keyToStr) push(s string) (int, error) {
	start := len(k.buf)
	if start > math.MaxUint32 {
		return 0, rerrors.New(rerrors.KindStringIndexOutOfBounds, "interner buffer offset %d exceeds uint32 range", start)
	}
	idx := len(k.offsets)
	k.offsets = append(k.offsets, uint32(start))
	k.buf = append(k.buf, s...)
	return idx, nil
}
