// Package branch implements the branch algebra described in the design:
// BranchSpec (a sparse-by-convention vector of branchpoint -> ident
// assignments), BaselineBranches (the first-seen value per branchpoint), the
// full/compact branch string codecs, and the branchpoints.txt persistence
// format.
package branch

import (
	"github.com/AbdelazizMoustafa10m/rebuild/internal/bitmask"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/ident"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/idvec"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rerrors"
)

// BranchSpec maps branchpoints to the ident value they're pinned to. A
// branchpoint with ident.NullIdent (or one past the end of the underlying
// vector) is unspecified/baseline.
type BranchSpec struct {
	branches *idvec.IdVec[ident.BranchpointId, ident.IdentId]
}

// NewBranchSpec creates an empty BranchSpec.
func NewBranchSpec() *BranchSpec {
	return &BranchSpec{branches: idvec.New[ident.BranchpointId, ident.IdentId](0)}
}

// Simple creates a BranchSpec pinning a single branchpoint.
func Simple(k ident.BranchpointId, v ident.IdentId) *BranchSpec {
	b := NewBranchSpec()
	b.Insert(k, v)
	return b
}

// Insert pins branchpoint k to v, padding with NullIdent as needed.
func (b *BranchSpec) Insert(k ident.BranchpointId, v ident.IdentId) {
	b.branches.GrowTo(k)
	b.branches.Set(k, v)
}

// GetSpecified returns (v, true) if k is pinned to a non-baseline value.
func (b *BranchSpec) GetSpecified(k ident.BranchpointId) (ident.IdentId, bool) {
	v, ok := b.branches.Get(k)
	if !ok || v == ident.NullIdent {
		return 0, false
	}
	return v, true
}

// IsUnspecified reports whether k is baseline (absent or NullIdent).
func (b *BranchSpec) IsUnspecified(k ident.BranchpointId) bool {
	v, ok := b.branches.Get(k)
	return !ok || v == ident.NullIdent
}

// IsSpecified reports whether k is pinned to a non-baseline value.
func (b *BranchSpec) IsSpecified(k ident.BranchpointId) bool {
	v, ok := b.branches.Get(k)
	return ok && v != ident.NullIdent
}

// Unset clears k back to baseline/unspecified, if it is in range.
func (b *BranchSpec) Unset(k ident.BranchpointId) {
	if _, ok := b.branches.Get(k); ok {
		b.branches.Set(k, ident.NullIdent)
	}
}

// Len returns the length of the underlying vector (not the count of
// specified branchpoints -- a BranchSpec may have trailing baseline entries).
func (b *BranchSpec) Len() int { return b.branches.Len() }

// IsEmpty reports whether Len() == 0.
func (b *BranchSpec) IsEmpty() bool { return b.Len() == 0 }

// Raw exposes the underlying dense vector for iteration by callers that need
// every slot, including baseline ones (e.g. InsertAll, string codecs).
func (b *BranchSpec) Raw() []ident.IdentId { return b.branches.Slice() }

// IsCompatible reports whether every branchpoint this BranchSpec pins either
// agrees with other's pin for that branchpoint, or other leaves it
// unspecified. Branchpoints this BranchSpec leaves unspecified never block
// compatibility.
func (b *BranchSpec) IsCompatible(other *BranchSpec) bool {
	for i, v := range b.Raw() {
		if v == ident.NullIdent {
			continue
		}
		if otherV, ok := other.GetSpecified(ident.BranchpointId(i)); ok && otherV != v {
			return false
		}
	}
	return true
}

// IsExactMatch reports whether every branchpoint this BranchSpec pins is
// also pinned by other to the identical value.
func (b *BranchSpec) IsExactMatch(other *BranchSpec) bool {
	for i, v := range b.Raw() {
		if v == ident.NullIdent {
			continue
		}
		otherV, ok := other.GetSpecified(ident.BranchpointId(i))
		if !ok || otherV != v {
			return false
		}
	}
	return true
}

// InsertAll copies every non-baseline pin from other into b, overwriting
// whatever b previously had pinned for those branchpoints.
func (b *BranchSpec) InsertAll(other *BranchSpec) {
	for i, v := range other.Raw() {
		if v != ident.NullIdent {
			b.Insert(ident.BranchpointId(i), v)
		}
	}
}

// Clone returns an independent copy of b.
func (b *BranchSpec) Clone() *BranchSpec {
	c := NewBranchSpec()
	c.InsertAll(b)
	return c
}

// Key renders b's raw branchpoint vector into a comparable Go string, for use
// as (part of) a map key. Unlike Rust's derived Hash/Eq, a BranchSpec here is
// backed by a pointer (*idvec.IdVec), so two BranchSpecs with identical pins
// are never == to each other; Key gives dedup passes (internal/prep's
// Deduper) a content-based stand-in.
func (b *BranchSpec) Key() string {
	raw := b.Raw()
	buf := make([]byte, 4*len(raw))
	for i, v := range raw {
		off := i * 4
		buf[off] = byte(v)
		buf[off+1] = byte(v >> 8)
		buf[off+2] = byte(v >> 16)
		buf[off+3] = byte(v >> 24)
	}
	return string(buf)
}

// AsMask projects the specified/unspecified bits of b onto a bitmask.Mask of
// width w, failing if b's branchpoint vector is longer than w's bit count.
func (b *BranchSpec) AsMask(w bitmask.Width) (bitmask.Mask, error) {
	if b.Len() > w.Bits() {
		return nil, rerrors.New(rerrors.KindBranchOutOfBounds, "branch spec of length %d does not fit in a %d-bit mask", b.Len(), w.Bits())
	}
	m := bitmask.New(w)
	for i := 0; i < b.Len(); i++ {
		if b.IsSpecified(ident.BranchpointId(i)) {
			m.Set(i, true)
		}
	}
	return m, nil
}
