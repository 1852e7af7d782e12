// Package intern implements rebuild's deduplicated string interners: a
// single contiguous character buffer plus an insertion-ordered offset list,
// and a separate dedup map keyed by a content hash (github.com/cespare/xxhash/v2)
// rather than the string itself, so each unique string is stored exactly
// once. A "frozen" variant drops the dedup map to shrink memory once no new
// strings are expected; a "loose" variant skips dedup entirely for content
// (like literals) that is unlikely to repeat.
package intern

import (
	"github.com/cespare/xxhash/v2"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/rerrors"
)

// Key is the constraint satisfied by every typed handle in package ident.
type Key interface {
	~uint32
}

// Interner is a deduplicating string interner keyed by a typed handle K.
// Bits bounds the number of distinct strings it may hold (max_expected_count
// <= 2^bits per the design's per-namespace bit-width parameter); Intern
// fails with KindOutOfKeySpace once that bound would be exceeded.
type Interner[K Key] struct {
	kts   *keyToStr
	dedup map[uint64][]K
	bits  uint
}

// New creates an empty Interner for handle type K, sized for roughly capCount
// strings of avgLen bytes each, and refusing to grow past 2^bits entries.
func New[K Key](bits uint, capCount, avgLen int) *Interner[K] {
	return &Interner[K]{
		kts:   newKeyToStr(capCount, capCount*avgLen),
		dedup: make(map[uint64][]K, capCount),
		bits:  bits,
	}
}

func (in *Interner[K]) maxCount() uint64 {
	if in.bits >= 64 {
		return ^uint64(0)
	}
	return uint64(1) << in.bits
}

func outOfKeySpace(max uint64, bits uint) error {
	return rerrors.New(rerrors.KindOutOfKeySpace, "interner cannot represent more than %d entries (%d bits)", max, bits)
}

// Intern returns s's handle, interning it if this is the first time s has
// been seen. Hash collisions are resolved by comparing the candidate against
// the string already stored at each colliding handle.
func (in *Interner[K]) Intern(s string) (K, error) {
	hash := xxhash.Sum64String(s)
	for _, candidate := range in.dedup[hash] {
		existing, err := in.kts.get(int(candidate))
		if err != nil {
			return 0, err
		}
		if existing == s {
			return candidate, nil
		}
	}

	if uint64(in.kts.len()) >= in.maxCount() {
		var zero K
		return zero, outOfKeySpace(in.maxCount(), in.bits)
	}
	idx, err := in.kts.push(s)
	if err != nil {
		return 0, err
	}
	k := K(idx)
	in.dedup[hash] = append(in.dedup[hash], k)
	return k, nil
}

// Get returns the string stored at handle k.
func (in *Interner[K]) Get(k K) (string, error) {
	return in.kts.get(int(k))
}

// Len returns the number of distinct strings interned so far.
func (in *Interner[K]) Len() int { return in.kts.len() }

// StrLen returns the total number of bytes stored in the backing buffer.
func (in *Interner[K]) StrLen() int { return in.kts.strLen() }

// Freeze drops the dedup map, returning a read-only view with identical Get
// semantics. The Interner itself should not be used after Freeze.
func (in *Interner[K]) Freeze() *Frozen[K] {
	return &Frozen[K]{kts: in.kts}
}

// Frozen is a read-only interner view: Get only, no further Intern calls,
// and no dedup map kept in memory.
type Frozen[K Key] struct {
	kts *keyToStr
}

// Get returns the string stored at handle k.
func (f *Frozen[K]) Get(k K) (string, error) {
	return f.kts.get(int(k))
}

// Len returns the number of distinct strings interned.
func (f *Frozen[K]) Len() int { return f.kts.len() }
