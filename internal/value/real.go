package value

import (
	"github.com/AbdelazizMoustafa10m/rebuild/internal/bitmask"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/branch"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/ident"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rerrors"
)

// RealValue is the common surface the resolver needs from whatever concrete
// type it is producing (PartialRealInput's variants, or
// RealOutputOrParam's): a way to fold in branch information discovered
// while resolving a Branched value, and a way to pull out a literal id when
// this value is itself used as an interpolation variable.
type RealValue interface {
	// UpdateBranch folds additional branch pins into this value, if it
	// carries a branch (only a task-output value does).
	UpdateBranch(b *branch.BranchSpec)
	// LiteralID returns this value's literal id, or ExpectedLiteral if this
	// value isn't a plain literal.
	LiteralID() (ident.LiteralId, error)
}

// InterpVar pairs an interpolation variable's config ident with the literal
// it resolved to.
type InterpVar struct {
	Ident ident.IdentId
	Lit   ident.LiteralId
}

// BranchMasks accumulates the branchpoints added (via a branched
// alternative) and removed (via a graft) while resolving one value, so a
// traversal node can fold them into its running branch mask.
type BranchMasks struct {
	Add bitmask.Mask
	Rm  bitmask.Mask
}

// NewBranchMasks creates a zeroed BranchMasks of the given width.
func NewBranchMasks(w bitmask.Width) BranchMasks {
	return BranchMasks{Add: bitmask.New(w), Rm: bitmask.New(w)}
}

// MergeFrom unions other's add/rm bits into m in place.
func (m *BranchMasks) MergeFrom(other BranchMasks) {
	m.Add.Union(other.Add)
	m.Rm.Union(other.Rm)
}

// PartialInputLiteral is a literally-specified input value.
type PartialInputLiteral struct{ Lit ident.LiteralId }

// PartialInputTask is an input value taken from another task's output,
// still carrying the abstract task id and the branch it was resolved under;
// the traversal builder later converts this to a RealInput once the
// antecedent task has been visited and assigned a RealTaskId.
type PartialInputTask struct {
	Task   ident.TaskId
	Output ident.IdentId
	Branch *branch.BranchSpec
}

func (PartialInputLiteral) UpdateBranch(*branch.BranchSpec) {}
func (v PartialInputLiteral) LiteralID() (ident.LiteralId, error) { return v.Lit, nil }

func (v *PartialInputTask) UpdateBranch(b *branch.BranchSpec) { v.Branch.InsertAll(b) }
func (*PartialInputTask) LiteralID() (ident.LiteralId, error) {
	return 0, rerrors.New(rerrors.KindExpectedLiteral, "expected a literal value, got a task-output reference")
}

// RealOutputOrParam is a fully-realized output or param value: either a
// plain literal, or a literal template with interpolation variables already
// resolved down to literals themselves.
type RealOutputOrParam interface{ RealValue }

// OutputLiteral is a literally-specified output or param value.
type OutputLiteral struct{ Lit ident.LiteralId }

// OutputInterp is an output or param value built by interpolating resolved
// variables into a literal template.
type OutputInterp struct {
	Template ident.LiteralId
	Vars     []InterpVar
}

func (OutputLiteral) UpdateBranch(*branch.BranchSpec) {}
func (v OutputLiteral) LiteralID() (ident.LiteralId, error) { return v.Lit, nil }

func (OutputInterp) UpdateBranch(*branch.BranchSpec) {}
func (OutputInterp) LiteralID() (ident.LiteralId, error) {
	return 0, rerrors.New(rerrors.KindExpectedLiteral, "expected a literal value, got an interpolated template")
}

// RealInput is a fully-realized input value, with any task-output reference
// already rewritten to the concrete RealTaskId a traversal assigned to its
// antecedent node.
type RealInput interface{ isRealInput() }

// RealInputLiteral is a literally-specified, fully-realized input.
type RealInputLiteral struct{ Lit ident.LiteralId }

// RealInputTask is a fully-realized input taken from a specific node's
// output in the traversal.
type RealInputTask struct {
	Task   ident.RealTaskId
	Output ident.IdentId
}

func (RealInputLiteral) isRealInput() {}
func (RealInputTask) isRealInput()    {}
