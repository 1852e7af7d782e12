// Package ident defines the small typed-handle identifiers used throughout
// rebuild. Every name space a workflow can intern (modules, tasks, values,
// branchpoints, branch idents, literals, real tasks, real values, run
// strings) has its own handle type so the compiler catches accidental
// cross-namespace mixing.
package ident

// NullIdent is the reserved handle-0 of the ident (branch value) name space.
// It means "baseline/unspecified" in a BranchSpec and must never be produced
// for a real user-facing branch value.
const NullIdent IdentId = 0

// IdentId identifies an interned branch-value or branchpoint-name string
// (e.g. "debug", "release", "Profile").
type IdentId uint32

// BranchpointId identifies a branchpoint (e.g. "Profile").
type BranchpointId uint32

// TaskId identifies an abstract task declared in a workflow.
type TaskId uint32

// ValueId identifies an abstract value (the right-hand side of an input,
// output, or param, or a GlobalConfig entry).
type ValueId uint32

// LiteralId identifies an interned literal string (task code, literal
// values, interpolation templates).
type LiteralId uint32

// ModuleId identifies an interned module declaration.
type ModuleId uint32

// RealTaskId identifies a node in the BFS/traversal output: one per
// (task, branch) pair visited, before deduplication.
type RealTaskId uint32

// ActualTaskId identifies a deduplicated realization: the dense id assigned
// the first time a given RealTaskKey is seen during traversal resolution.
type ActualTaskId uint32

// RealValueId identifies an entry in the real-input, real-output, or
// real-param arenas built during BFS traversal.
type RealValueId uint32

// RunStrId identifies a string interned during the run phase (composed
// paths, display labels) in the run-string interner.
type RunStrId uint32
