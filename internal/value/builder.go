package value

import (
	"github.com/AbdelazizMoustafa10m/rebuild/internal/branch"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/ident"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rerrors"
)

// Builder constructs one concrete RealValue flavor from a resolved
// BaseValue. Resolver.Resolve is generic over which Builder it's given;
// each method that a particular flavor doesn't support returns an
// Unsupported* error, mirroring the default trait methods the two
// realized-value kinds selectively override.
type Builder interface {
	Literal(lit ident.LiteralId) (RealValue, error)
	Interp(template ident.LiteralId, vars []InterpVar) (RealValue, error)
	Task(task ident.TaskId, output ident.IdentId, br *branch.BranchSpec) (RealValue, error)
}

// PartialInputBuilder builds PartialRealInput values: literals and
// task-output references are supported, interpolation is not (an input
// can't itself be an interpolated template -- only outputs/params can).
type PartialInputBuilder struct{}

func (PartialInputBuilder) Literal(lit ident.LiteralId) (RealValue, error) {
	return PartialInputLiteral{Lit: lit}, nil
}

func (PartialInputBuilder) Interp(ident.LiteralId, []InterpVar) (RealValue, error) {
	return nil, rerrors.New(rerrors.KindUnsupportedInterp, "inputs cannot be interpolated templates")
}

func (PartialInputBuilder) Task(task ident.TaskId, output ident.IdentId, br *branch.BranchSpec) (RealValue, error) {
	return &PartialInputTask{Task: task, Output: output, Branch: br.Clone()}, nil
}

// OutputParamBuilder builds RealOutputOrParam values: literals and
// interpolated templates are supported, task-output references are not (an
// output/param can't itself point at another task's output).
type OutputParamBuilder struct{}

func (OutputParamBuilder) Literal(lit ident.LiteralId) (RealValue, error) {
	return OutputLiteral{Lit: lit}, nil
}

func (OutputParamBuilder) Interp(template ident.LiteralId, vars []InterpVar) (RealValue, error) {
	return OutputInterp{Template: template, Vars: vars}, nil
}

func (OutputParamBuilder) Task(ident.TaskId, ident.IdentId, *branch.BranchSpec) (RealValue, error) {
	return nil, rerrors.New(rerrors.KindUnsupportedTaskOutput, "outputs and params cannot reference another task's output")
}
