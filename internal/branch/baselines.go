package branch

import "github.com/AbdelazizMoustafa10m/rebuild/internal/ident"

// BaselineBranches records, for each branchpoint, the ident value that was
// first seen for it -- the value treated as "baseline" for compact branch
// strings and for branchpoints.txt persistence.
type BaselineBranches struct {
	vec []ident.IdentId
}

// NewBaselineBranches creates an empty BaselineBranches with the given
// initial capacity.
func NewBaselineBranches(cap int) *BaselineBranches {
	return &BaselineBranches{vec: make([]ident.IdentId, 0, cap)}
}

// Add records v as the baseline for branchpoint k, but only if k has no
// baseline recorded yet; later calls for the same k are no-ops.
func (b *BaselineBranches) Add(k ident.BranchpointId, v ident.IdentId) {
	idx := int(k)
	for len(b.vec) <= idx {
		b.vec = append(b.vec, ident.NullIdent)
	}
	if b.vec[idx] == ident.NullIdent {
		b.vec[idx] = v
	}
}

// Get returns the baseline ident for branchpoint k. k must be in range.
func (b *BaselineBranches) Get(k ident.BranchpointId) ident.IdentId {
	return b.vec[int(k)]
}

// Len returns the number of branchpoints with a recorded baseline slot.
func (b *BaselineBranches) Len() int { return len(b.vec) }

// BaselineEntry pairs a branchpoint index with its baseline ident value.
type BaselineEntry struct {
	Branchpoint ident.BranchpointId
	Value       ident.IdentId
}

// All returns every recorded (branchpoint, baseline-value) pair in
// branchpoint order.
func (b *BaselineBranches) All() []BaselineEntry {
	out := make([]BaselineEntry, len(b.vec))
	for i, v := range b.vec {
		out[i] = BaselineEntry{Branchpoint: ident.BranchpointId(i), Value: v}
	}
	return out
}
