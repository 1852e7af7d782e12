package prep

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/ident"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rerrors"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rfs"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/traverse"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/value"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/workflow"
)

var cyanStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))

// TraversalResolver turns a traversal's nodes into filesystem Actions:
// delete-and-rebuild for stale realizations, skip for already-complete ones,
// and a fully-resolved TaskRunnerBuilder for everything that must run. It
// deduplicates nodes that resolved to the same (task, branch) pair, checks
// the filesystem for existing, complete realizations, and resolves every
// input/output/param down to a concrete run-string.
type TraversalResolver struct {
	varChecker    *TaskVarChecker
	moduleChecker *ModuleChecker
	// shouldRun and outputsMetadata are both indexed by ActualTaskId, appended to
	// exactly once per distinct (task, branch) pair, in the order the
	// deduper first assigns that pair an ActualTaskId.
	shouldRun []bool
	// outputsMetadata holds, per ActualTaskId, the realization-dir run-string
	// for each output -- what a dependent task's $out@task input resolves
	// to. For a module task this is deliberately not the same as its
	// TaskRunnerBuilder.Vars.Outputs (which holds the module-dir path
	// task.sh copies its build artifacts out of); keeping the two separate
	// is what lets a dependent task see the branch-specific realization dir
	// a module output was copied back into, instead of the module dir
	// shared across every realization.
	outputsMetadata [][]RunVar
	deduper         *Deduper
	fs              *rfs.Fs
	wf              *workflow.Workflow
	buf             strings.Builder
}

// NewTraversalResolver creates a TraversalResolver sized for roughly
// lenHint nodes.
func NewTraversalResolver(lenHint int, fs *rfs.Fs, wf *workflow.Workflow) *TraversalResolver {
	return &TraversalResolver{
		varChecker:      NewTaskVarChecker(wf.Sizes().MaxVars),
		moduleChecker:   NewModuleChecker(wf.Strings.Modules.Len()),
		shouldRun:       make([]bool, 0, lenHint),
		outputsMetadata: make([][]RunVar, 0, lenHint),
		deduper:         NewDeduper(lenHint),
		fs:              fs,
		wf:              wf,
	}
}

// ResolveToActions walks trav's nodes once, deduplicating and resolving each
// into an Actions entry. Must be called at most once per resolver.
func (r *TraversalResolver) ResolveToActions(trav *traverse.Traversal) (*Actions, error) {
	paths := NewTaskDirPaths()
	actions := NewActions(len(trav.Nodes))

	for _, task := range trav.Nodes {
		if r.deduper.IsDupe(task.Key) {
			continue
		}

		shouldRun, err := r.resolveToAction(task, trav, actions, paths)
		if err != nil {
			taskName, nameErr := r.wf.Strings.Tasks.Get(task.Key.Task)
			if nameErr != nil {
				taskName = "<unknown>"
			}
			return nil, wrapContext(err, "preparing task %q", taskName)
		}

		r.shouldRun = append(r.shouldRun, shouldRun)
	}
	return actions, nil
}

// resolveToAction resolves one node, returning true if it must run.
func (r *TraversalResolver) resolveToAction(task traverse.Node, trav *traverse.Traversal, actions *Actions, paths *TaskDirPaths) (bool, error) {
	r.varChecker.Reset()
	if err := paths.MakePaths(task, r.wf, r.fs); err != nil {
		return false, err
	}
	vars := workflow.NewTaskVarsWithSizes[RunVar](task.Vars)

	invalidated, err := r.handleInputs(task, &vars.Inputs, trav.Inputs)
	if err != nil {
		return false, err
	}
	copyOutputsTo, outputsMetadata, err := r.handleOutputs(task, &vars.Outputs, trav.OutputsParams, paths)
	if err != nil {
		return false, err
	}
	// Record outputs before any further resolution can fail, so a
	// dependent task that already reached ActualTaskId t can still look up
	// t's outputs regardless of how the rest of this node resolves.
	r.outputsMetadata = append(r.outputsMetadata, outputsMetadata)

	printID, err := r.makePrintID(task.Key)
	if err != nil {
		return false, err
	}
	realizationID, err := r.internPath(paths.Realization())
	if err != nil {
		return false, err
	}

	if r.fs.Exists(paths.Realization()) {
		success, err := paths.ExitCodeSuccess(r.fs)
		if err != nil {
			return false, err
		}
		if !invalidated && success {
			actions.AddCompleted(printID)
			return false, nil
		}
		actions.AddDelete(printID, realizationID)
	}

	if err := r.handleParams(task, &vars.Params, trav.OutputsParams); err != nil {
		return false, err
	}
	r.varChecker.Check(task, r.wf)
	if err := r.moduleChecker.Check(task, paths, r.fs, &actions.Modules); err != nil {
		return false, err
	}

	var moduleID *ident.RunStrId
	if task.Module != nil {
		id, err := r.internPath(paths.Module())
		if err != nil {
			return false, err
		}
		moduleID = &id
	}

	symlinkID, err := r.internPath(paths.LinkSrc())
	if err != nil {
		return false, err
	}
	linkTargetID, err := r.internPath(paths.RealizationRelative())
	if err != nil {
		return false, err
	}

	actions.AddRun(&TaskRunnerBuilder{
		PrintID:       printID,
		RealizationID: realizationID,
		Vars:          vars,
		CopyOutputsTo: copyOutputsTo,
		ModuleID:      moduleID,
		SymlinkID:     symlinkID,
		LinkTargetID:  linkTargetID,
		Code:          task.Code,
	})

	return true, nil
}

func (r *TraversalResolver) internPath(path string) (ident.RunStrId, error) {
	return r.wf.Strings.Run.Intern(path)
}

// handleInputs resolves every one of task's declared inputs, returning true
// if any of them is not yet satisfied (and so the task must run).
func (r *TraversalResolver) handleInputs(task traverse.Node, inputs *[]RunVar, values []value.RealInput) (bool, error) {
	shouldRun := false
	for _, v := range task.Vars.Inputs {
		r.varChecker.Insert(v.Name)
		fileID, thisShouldRun, err := r.handleInput(values[v.Value])
		if err != nil {
			name, _ := r.wf.Strings.Idents.Get(v.Name)
			return false, wrapContext(err, "preparing task input %q", name)
		}
		*inputs = append(*inputs, RunVar{Name: v.Name, Value: fileID})
		shouldRun = shouldRun || thisShouldRun
	}
	return shouldRun, nil
}

func (r *TraversalResolver) handleInput(v value.RealInput) (ident.RunStrId, bool, error) {
	switch in := v.(type) {
	case value.RealInputLiteral:
		litVal, err := r.wf.Strings.Literals.Get(in.Lit)
		if err != nil {
			return 0, false, err
		}
		fileID, err := r.internPath(litVal)
		return fileID, false, err
	case value.RealInputTask:
		actualID := r.deduper.GetActualTaskId(in.Task)
		fileID, err := r.getTaskOutputString(actualID, in.Output)
		if err != nil {
			return 0, false, err
		}
		return fileID, r.shouldRun[actualID], nil
	default:
		return 0, false, rerrors.New(rerrors.KindUnsupportedTaskOutput, "unrecognized real input value %T", v)
	}
}

func (r *TraversalResolver) getTaskOutputString(t ident.ActualTaskId, o ident.IdentId) (ident.RunStrId, error) {
	for _, rv := range r.outputsMetadata[t] {
		if rv.Name == o {
			return rv.Value, nil
		}
	}
	outputName, _ := r.wf.Strings.Idents.Get(o)
	return 0, rerrors.New(rerrors.KindTaskOutputNotFound, "output %q not found on antecedent task", outputName)
}

// handleOutputs resolves every one of task's declared outputs. For a module
// task, outputs run in the module directory and must be copied back to the
// realization directory afterward; *outputs (what task.sh copies from) is
// set to the module-dir path, while the separately-returned outputsMetadata
// (what a dependent task's input resolves to) carries the realization-dir
// path instead, since that's the branch-specific copy-back destination a
// dependent task actually needs to read from.
func (r *TraversalResolver) handleOutputs(task traverse.Node, outputs *[]RunVar, values []value.RealOutputOrParam, paths *TaskDirPaths) (copyOutputsTo []ident.RunStrId, outputsMetadata []RunVar, err error) {
	if task.Module != nil {
		copyOutputsTo = make([]ident.RunStrId, 0, len(task.Vars.Outputs))
		outputsMetadata = make([]RunVar, 0, len(task.Vars.Outputs))
		for _, v := range task.Vars.Outputs {
			r.varChecker.Insert(v.Name)
			taskID, moduleID, err := r.handleModuleOutput(values[v.Value], paths)
			if err != nil {
				name, _ := r.wf.Strings.Idents.Get(v.Name)
				return nil, nil, wrapContext(err, "preparing task output %q", name)
			}
			*outputs = append(*outputs, RunVar{Name: v.Name, Value: moduleID})
			copyOutputsTo = append(copyOutputsTo, taskID)
			outputsMetadata = append(outputsMetadata, RunVar{Name: v.Name, Value: taskID})
		}
		return copyOutputsTo, outputsMetadata, nil
	}

	outputsMetadata = make([]RunVar, 0, len(task.Vars.Outputs))
	for _, v := range task.Vars.Outputs {
		r.varChecker.Insert(v.Name)
		taskID, err := r.handleNormalOutput(values[v.Value], paths)
		if err != nil {
			name, _ := r.wf.Strings.Idents.Get(v.Name)
			return nil, nil, wrapContext(err, "preparing task output %q", name)
		}
		rv := RunVar{Name: v.Name, Value: taskID}
		*outputs = append(*outputs, rv)
		outputsMetadata = append(outputsMetadata, rv)
	}
	return nil, outputsMetadata, nil
}

func (r *TraversalResolver) handleModuleOutput(val value.RealOutputOrParam, paths *TaskDirPaths) (taskID, moduleID ident.RunStrId, err error) {
	file, err := r.litStr(val)
	if err != nil {
		return 0, 0, err
	}
	taskID, err = r.internPath(paths.NormalOutput(file))
	if err != nil {
		return 0, 0, err
	}
	moduleID, err = r.internPath(paths.ModuleOutput(file))
	return taskID, moduleID, err
}

func (r *TraversalResolver) handleNormalOutput(val value.RealOutputOrParam, paths *TaskDirPaths) (ident.RunStrId, error) {
	file, err := r.litStr(val)
	if err != nil {
		return 0, err
	}
	return r.internPath(paths.NormalOutput(file))
}

// handleParams resolves every one of task's declared params, adding an
// assignment for each straight into vars -- nothing else needs to track
// them afterward.
func (r *TraversalResolver) handleParams(task traverse.Node, params *[]RunVar, values []value.RealOutputOrParam) error {
	for _, v := range task.Vars.Params {
		r.varChecker.Insert(v.Name)
		valStr, err := r.litStr(values[v.Value])
		if err != nil {
			name, _ := r.wf.Strings.Idents.Get(v.Name)
			return wrapContext(err, "preparing task param %q", name)
		}
		valID, err := r.wf.Strings.Run.Intern(valStr)
		if err != nil {
			return err
		}
		*params = append(*params, RunVar{Name: v.Name, Value: valID})
	}
	return nil
}

// makePrintID renders a user-facing "task_name[branch]" label, coloring the
// task name, and interns it.
func (r *TraversalResolver) makePrintID(key workflow.RealTaskKey) (ident.RunStrId, error) {
	name, err := r.wf.Strings.Tasks.Get(key.Task)
	if err != nil {
		return 0, err
	}
	branchStr, err := r.wf.Strings.GetFullBranchString(key.Branch)
	if err != nil {
		return 0, err
	}
	r.buf.Reset()
	r.buf.WriteString(cyanStyle.Render(name))
	r.buf.WriteByte('[')
	r.buf.WriteString(branchStr)
	r.buf.WriteByte(']')
	return r.wf.Strings.Run.Intern(r.buf.String())
}

// litStr resolves val (an output or param value) to its underlying string,
// interpolating template variables if val is an OutputInterp.
func (r *TraversalResolver) litStr(val value.RealOutputOrParam) (string, error) {
	switch v := val.(type) {
	case value.OutputLiteral:
		return r.wf.Strings.Literals.Get(v.Lit)
	case value.OutputInterp:
		r.buf.Reset()
		if err := r.wf.Strings.MakeInterpolated(v.Template, v.Vars, &r.buf); err != nil {
			return "", err
		}
		return r.buf.String(), nil
	default:
		return "", rerrors.New(rerrors.KindUnsupportedLiteral, "unrecognized real output/param value %T", val)
	}
}

// wrapContext attaches additional context to err, preserving its Kind when
// it's already one of ours.
func wrapContext(err error, format string, args ...any) error {
	if e, ok := err.(*rerrors.Error); ok {
		return rerrors.Wrap(e.Kind, err, format, args...)
	}
	return rerrors.Wrap(rerrors.KindFilesystemIO, err, format, args...)
}
