// Package astshim is a small recursive-descent lexer/parser for the ".hr"
// workflow file format, producing the Item/Rhs AST shape the workflow
// builder consumes. It exists to drive the rest of the pipeline end to end
// from real text, not to be a complete reimplementation of every corner of
// the grammar.
package astshim

// Ident is a workflow-file identifier, kept as a plain string: Go has no
// borrowed-&str equivalent worth introducing a lifetime-shaped abstraction
// for here.
type Ident = string

// BranchPair is one (branchpoint name, branch value name) pair, as written
// inside "[Branchpoint.value]" graft syntax or a plan's cross-product list.
type BranchPair struct {
	Branchpoint string
	Value       string
}

// RhsKind tags which alternative of Rhs is populated.
type RhsKind int

const (
	RhsUnbound RhsKind = iota
	RhsLiteral
	RhsVariable
	RhsShorthandVariable
	RhsGraftedVariable
	RhsTaskOutput
	RhsShorthandTaskOutput
	RhsGraftedTaskOutput
	RhsShorthandGraftedTaskOutput
	RhsBranchpoint
	RhsInterp
)

// BranchpointAlt is one named alternative inside a "(Branchpoint: name=rhs
// ...)" branchpoint expression.
type BranchpointAlt struct {
	Name string
	Val  Rhs
}

// Rhs is the right-hand side of a task spec or config assignment. Exactly
// one field group is meaningful, selected by Kind: a flat struct with a
// kind tag, rather than a Go type-switch hierarchy, for such a small,
// closed set of alternatives.
type Rhs struct {
	Kind RhsKind

	Literal string // RhsLiteral
	Name    string // RhsVariable, RhsGraftedVariable (variable name)

	Branch BranchSpecLit // RhsGraftedVariable, RhsGraftedTaskOutput, RhsShorthandGraftedTaskOutput

	Task   string // RhsTaskOutput, RhsShorthandTaskOutput, RhsGraftedTaskOutput, RhsShorthandGraftedTaskOutput
	Output string // RhsTaskOutput, RhsGraftedTaskOutput

	BranchpointName string           // RhsBranchpoint
	Alts            []BranchpointAlt // RhsBranchpoint

	InterpText string   // RhsInterp
	InterpVars []string // RhsInterp, in forward textual order
}

// BranchSpecLit is a literal "[Bp1.v1][Bp2.v2]"-style graft specification as
// written in source, before being interned into a branch.BranchSpec.
type BranchSpecLit []BranchPair

// BlockSpecKind tags which alternative of BlockSpec is populated.
type BlockSpecKind int

const (
	SpecInput BlockSpecKind = iota
	SpecOutput
	SpecParam
	SpecModule
)

// BlockSpec is one header line of a task block.
type BlockSpec struct {
	Kind BlockSpecKind
	Lhs  string
	Rhs  Rhs
	Dot  bool // SpecParam only: a ".var" style dotted parameter (unsupported; rejected by workflow.CreateTask)
	Name string // SpecModule only
}

// BashCode is a task's body: the literal bash text, plus every $var
// reference astshim found in it (used for validation against declared
// inputs/outputs/params).
type BashCode struct {
	Text string
	Vars []string
}

// TasklikeBlock is a single "task name <specs> :: { code }" declaration.
type TasklikeBlock struct {
	Name  string
	Specs []BlockSpec
	Code  BashCode
}

// Branches is the branch-value list for one branchpoint within a plan's
// cross product: either an explicit list, or the glob form (parsed but
// rejected downstream -- plan-level branch globbing is out of scope).
type Branches struct {
	Glob   bool
	Values []string
}

// CrossProduct is one line of a plan: the tasks to reach, crossed with the
// branch alternatives named for each branchpoint.
type CrossProduct struct {
	Goals    []string
	Branches []CrossProductBranch
}

// CrossProductBranch pairs a branchpoint name with the branch values a plan
// line wants realized for it.
type CrossProductBranch struct {
	Branchpoint string
	Branches    Branches
}

// Plan is a named block of cross products describing a traversal.
type Plan struct {
	Name          string
	CrossProducts []CrossProduct
}

// ConfigAssignment is one "name = rhs" line inside a GlobalConfig block.
type ConfigAssignment struct {
	Name string
	Rhs  Rhs
}

// ItemKind tags which alternative of Item is populated.
type ItemKind int

const (
	ItemTask ItemKind = iota
	ItemImport
	ItemGlobalConfig
	ItemPlan
	ItemModule
)

// Item is one top-level declaration parsed from a workflow file.
type Item struct {
	Kind ItemKind

	Task TasklikeBlock // ItemTask

	ImportPath string // ItemImport

	Config []ConfigAssignment // ItemGlobalConfig

	PlanVal Plan // ItemPlan

	ModuleName string // ItemModule
	ModulePath Rhs    // ItemModule
}
