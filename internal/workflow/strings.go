// Package workflow implements the data model a parsed workflow file is
// loaded into: the interned string tables (WorkflowStrings), the abstract
// value tree entries each task/config assignment creates, and the
// Task/Plan/Subplan arenas a traversal walks. It is the load-time half of
// the pipeline; internal/traverse and internal/prep consume what this
// package builds.
package workflow

import (
	"github.com/AbdelazizMoustafa10m/rebuild/internal/branch"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/ident"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/intern"
)

const (
	branchpointCap = 8
	branchpointLen = 32
	taskCap        = 16
	taskLen        = 256
	identCap       = 64
	identLen       = 1024
	moduleCap      = 8
	moduleLen      = 16
	literalCap     = 64
	literalLen     = 4096
	runCap         = 64
	runLen         = 4096

	branchpointBits = 8
	taskBits        = 16
	identBits       = 16
	moduleBits      = 8
	literalBits     = 16
	runBits         = 32
)

// WorkflowStrings owns every string interned while loading and running one
// workflow: branchpoint/task/ident/module names, task code and literal
// values, and the baseline value recorded for each branchpoint.
//
// Rendered branch and real-task display strings are not cached: at the
// scale this package targets (~128 branchpoints, a few hundred tasks),
// MakeFullString/MakeCompactString are cheap enough to call directly
// wherever a display string is needed, and a mutex-guarded cache would add
// contention without a measurable win.
type WorkflowStrings struct {
	Branchpoints *intern.Interner[ident.BranchpointId]
	Tasks        *intern.Interner[ident.TaskId]
	Idents       *intern.Interner[ident.IdentId]
	Modules      *intern.Interner[ident.ModuleId]
	Literals     *intern.Loose[ident.LiteralId]
	Baselines    *branch.BaselineBranches

	// Run is allocated lazily by AllocForRun, once loading is complete and
	// the workflow is about to execute: no run-time strings (composed file
	// paths, debug labels) are needed before then.
	Run *intern.Interner[ident.RunStrId]
}

// NewWorkflowStrings creates an empty WorkflowStrings, seeding the ident
// table with an empty string at handle 0 so ident.NullIdent can be used as a
// sentinel "unspecified" value without colliding with a real ident name.
func NewWorkflowStrings() (*WorkflowStrings, error) {
	idents := intern.New[ident.IdentId](identBits, identCap, identLen)
	if _, err := idents.Intern(""); err != nil {
		return nil, err
	}
	return &WorkflowStrings{
		Branchpoints: intern.New[ident.BranchpointId](branchpointBits, branchpointCap, branchpointLen),
		Tasks:        intern.New[ident.TaskId](taskBits, taskCap, taskLen),
		Idents:       idents,
		Modules:      intern.New[ident.ModuleId](moduleBits, moduleCap, moduleLen),
		Literals:     intern.NewLoose[ident.LiteralId](literalBits, literalCap, literalLen),
		Baselines:    branch.NewBaselineBranches(branchpointCap),
	}, nil
}

// AllocForRun allocates the run-string interner, once loading is finished
// and the workflow is about to execute.
func (s *WorkflowStrings) AllocForRun() {
	s.Run = intern.New[ident.RunStrId](runBits, runCap, runLen)
}

// BranchpointName implements branch.Namer.
func (s *WorkflowStrings) BranchpointName(id ident.BranchpointId) (string, error) {
	return s.Branchpoints.Get(id)
}

// IdentName implements branch.Namer.
func (s *WorkflowStrings) IdentName(id ident.IdentId) (string, error) {
	return s.Idents.Get(id)
}

// InternBranchpoint implements branch.Interner.
func (s *WorkflowStrings) InternBranchpoint(name string) (ident.BranchpointId, error) {
	return s.Branchpoints.Intern(name)
}

// InternIdent implements branch.Interner.
func (s *WorkflowStrings) InternIdent(name string) (ident.IdentId, error) {
	return s.Idents.Intern(name)
}

// GetFullBranchString renders b with every branchpoint named explicitly.
func (s *WorkflowStrings) GetFullBranchString(b *branch.BranchSpec) (string, error) {
	return branch.MakeFullString(b, s.Baselines, s)
}

// GetCompactBranchString renders b using "Baseline.baseline" for any
// branchpoint pinned to its own baseline value, suitable for filenames that
// must stay stable as new branchpoints are added.
func (s *WorkflowStrings) GetCompactBranchString(b *branch.BranchSpec) (string, error) {
	return branch.MakeCompactString(b, s.Baselines, s)
}

// ParseCompactBranchString parses a string produced by Get*BranchString
// back into a BranchSpec.
func (s *WorkflowStrings) ParseCompactBranchString(str string) (*branch.BranchSpec, error) {
	return branch.ParseCompactBranchString(str, s, s.Baselines)
}

// GetRealTaskString renders a user-facing "task_name[branch_str]" label.
func (s *WorkflowStrings) GetRealTaskString(task ident.TaskId, b *branch.BranchSpec) (string, error) {
	name, err := s.Tasks.Get(task)
	if err != nil {
		return "", err
	}
	branchStr, err := s.GetFullBranchString(b)
	if err != nil {
		return "", err
	}
	return name + "[" + branchStr + "]", nil
}

// PreLoadBaseline records a (branchpoint, value) pair read from
// branchpoints.txt as that branchpoint's baseline, interning both names if
// they're new. Used before the rest of a workflow is loaded, so baseline
// ordering (and thus compact branch strings) stays stable between runs.
func (s *WorkflowStrings) PreLoadBaseline(branchpointName, branchValName string) error {
	k, err := s.Branchpoints.Intern(branchpointName)
	if err != nil {
		return err
	}
	v, err := s.Idents.Intern(branchValName)
	if err != nil {
		return err
	}
	s.Baselines.Add(k, v)
	return nil
}

// AddBranchpoint interns a branchpoint name, recording it the first time
// it's seen in source order.
func (s *WorkflowStrings) AddBranchpoint(name string) (ident.BranchpointId, error) {
	return s.Branchpoints.Intern(name)
}

// AddBranch interns a branch value name for the given branchpoint. The
// branchpoint itself is unused here (branch values live in the flat ident
// table, not per-branchpoint) but is taken for symmetry with AddBranchpoint
// and to mirror the call sites that read naturally as "add this branch to
// that branchpoint".
func (s *WorkflowStrings) AddBranch(_ ident.BranchpointId, name string) (ident.IdentId, error) {
	return s.Idents.Intern(name)
}
