package prep

import (
	"path/filepath"
	"strings"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/rfs"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/traverse"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/workflow"
)

// TaskDirPaths is a reusable container for the paths one task realization
// touches: recomputed in place for each node so resolving a traversal
// doesn't allocate a fresh set of path strings per task.
type TaskDirPaths struct {
	realization         string
	realizationRelative string
	linkSrc             string
	module              string
}

// NewTaskDirPaths creates an empty TaskDirPaths.
func NewTaskDirPaths() *TaskDirPaths { return &TaskDirPaths{} }

// MakePaths recomputes every path for task.
func (p *TaskDirPaths) MakePaths(task traverse.Node, wf *workflow.Workflow, fs *rfs.Fs) error {
	compact, err := wf.Strings.GetCompactBranchString(task.Key.Branch)
	if err != nil {
		return err
	}
	p.realizationRelative = fs.RealizationRelative(compact)

	taskName, err := wf.Strings.Tasks.Get(task.Key.Task)
	if err != nil {
		return err
	}
	base := fs.TaskBase(taskName)
	p.realization = fs.Realization(base, p.realizationRelative)

	fullBranch, err := wf.Strings.GetFullBranchString(task.Key.Branch)
	if err != nil {
		return err
	}
	p.linkSrc = fs.LinkSrc(base, fullBranch)

	p.module = ""
	if task.Module != nil {
		modPath, err := wf.GetModulePath(*task.Module)
		if err != nil {
			return err
		}
		p.module = modPath
	}
	return nil
}

func (p *TaskDirPaths) Realization() string         { return p.realization }
func (p *TaskDirPaths) RealizationRelative() string  { return p.realizationRelative }
func (p *TaskDirPaths) LinkSrc() string              { return p.linkSrc }
func (p *TaskDirPaths) Module() string               { return p.module }

// NormalOutput returns the path to fileRelative inside this task's
// realization directory.
func (p *TaskDirPaths) NormalOutput(fileRelative string) string {
	return filepath.Join(p.realization, fileRelative)
}

// ModuleOutput returns the path to fileRelative inside this task's module
// directory.
func (p *TaskDirPaths) ModuleOutput(fileRelative string) string {
	return filepath.Join(p.module, fileRelative)
}

// ExitCodeSuccess reports whether this realization's exit_code file exists
// and its contents, with surrounding whitespace trimmed, are "0".
func (p *TaskDirPaths) ExitCodeSuccess(fs *rfs.Fs) (bool, error) {
	exitCodeFile := fs.ExitCode(p.realization)
	if !fs.Exists(exitCodeFile) {
		return false, nil
	}
	contents, err := fs.ReadToBuf(exitCodeFile)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(contents) == "0", nil
}
