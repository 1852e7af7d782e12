package workflow

import (
	"github.com/AbdelazizMoustafa10m/rebuild/internal/astshim"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/ident"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/idvec"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rerrors"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/value"
)

// defaultVarsLen bounds the capacity hint used when preallocating a newly
// created task's TaskVars slices, so a task with few specs doesn't force an
// oversized allocation.
const defaultVarsLen = 8

// TaskVars groups a task's inputs, outputs, and params, all using the same
// element type T -- (name, abstract value) pairs while loading, (name,
// resolved value) pairs once a traversal has realized them for one branch.
type TaskVars[T any] struct {
	Inputs []T
	Outputs []T
	Params  []T
}

// NewTaskVarsWithSizes creates a TaskVars[T] preallocated to match the
// element counts of an existing TaskVars[U], for building a parallel
// collection of a different element type.
func NewTaskVarsWithSizes[T, U any](other TaskVars[U]) TaskVars[T] {
	return TaskVars[T]{
		Inputs:  make([]T, 0, len(other.Inputs)),
		Outputs: make([]T, 0, len(other.Outputs)),
		Params:  make([]T, 0, len(other.Params)),
	}
}

// TaskVar is one (variable name, abstract value) pair defined on a task.
type TaskVar struct {
	Name  ident.IdentId
	Value ident.ValueId
}

// Task is a task declared in a workflow file: its named inputs, outputs, and
// params (each an abstract Value to be resolved per-branch later), the
// literal id of its bash code, the var names its code actually references
// (for validating against what was declared), and the module it should run
// in, if any.
type Task struct {
	Vars          TaskVars[TaskVar]
	Code          ident.LiteralId
	ReferencedVars []ident.IdentId
	Module        *ident.ModuleId
	// Exists distinguishes a task genuinely declared in source from the
	// zero-value placeholder IdVec.GrowTo leaves behind when some other
	// task references it as an output producer before (or without) it ever
	// being declared.
	Exists bool
}

// CreateTask builds a Task from its parsed TasklikeBlock, interning its
// names and pushing each spec's abstract value into values.
func CreateTask(block astshim.TasklikeBlock, strings *WorkflowStrings, values *idvec.IdVec[ident.ValueId, value.Value]) (Task, error) {
	capHint := len(block.Specs)
	if capHint > defaultVarsLen {
		capHint = defaultVarsLen
	}
	vars := newVarsAccumulator(capHint)
	var module *ident.ModuleId

	for _, spec := range block.Specs {
		switch spec.Kind {
		case astshim.SpecInput:
			tv, err := addSpec(spec.Lhs, spec.Rhs, strings, values)
			if err != nil {
				return Task{}, err
			}
			vars.inputs = append(vars.inputs, tv)
		case astshim.SpecOutput:
			tv, err := addSpec(spec.Lhs, spec.Rhs, strings, values)
			if err != nil {
				return Task{}, err
			}
			vars.outputs = append(vars.outputs, tv)
		case astshim.SpecParam:
			if spec.Dot {
				return Task{}, rerrors.New(rerrors.KindUnsupportedFeature, "dot parameters (\".var\") are not supported")
			}
			tv, err := addSpec(spec.Lhs, spec.Rhs, strings, values)
			if err != nil {
				return Task{}, err
			}
			vars.params = append(vars.params, tv)
		case astshim.SpecModule:
			if module != nil {
				return Task{}, rerrors.New(rerrors.KindUnsupportedFeature, "task defines multiple modules with '@'; only one module is allowed")
			}
			id, err := strings.Modules.Intern(spec.Name)
			if err != nil {
				return Task{}, err
			}
			module = &id
		}
	}

	code, err := strings.Literals.Intern(block.Code.Text)
	if err != nil {
		return Task{}, err
	}
	referencedVars := make([]ident.IdentId, 0, len(block.Code.Vars))
	for _, v := range block.Code.Vars {
		id, err := strings.Idents.Intern(v)
		if err != nil {
			return Task{}, err
		}
		referencedVars = append(referencedVars, id)
	}

	return Task{
		Vars: TaskVars[TaskVar]{
			Inputs:  vars.inputs,
			Outputs: vars.outputs,
			Params:  vars.params,
		},
		Code:           code,
		ReferencedVars: referencedVars,
		Module:         module,
		Exists:         true,
	}, nil
}

type varsAccumulator struct {
	inputs, outputs, params []TaskVar
}

func newVarsAccumulator(cap int) varsAccumulator {
	return varsAccumulator{
		inputs:  make([]TaskVar, 0, cap),
		outputs: make([]TaskVar, 0, cap),
		params:  make([]TaskVar, 0, cap),
	}
}

func addSpec(lhs string, rhs astshim.Rhs, strings *WorkflowStrings, values *idvec.IdVec[ident.ValueId, value.Value]) (TaskVar, error) {
	name, err := strings.Idents.Intern(lhs)
	if err != nil {
		return TaskVar{}, err
	}
	val, err := strings.CreateValue(lhs, rhs)
	if err != nil {
		return TaskVar{}, err
	}
	valID := values.Push(val)
	return TaskVar{Name: name, Value: valID}, nil
}
