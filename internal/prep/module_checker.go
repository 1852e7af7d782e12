package prep

import (
	"github.com/AbdelazizMoustafa10m/rebuild/internal/ident"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rerrors"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rfs"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/traverse"
)

// ModuleChecker confirms, at most once per module, that a task's module
// directory actually exists on disk.
type ModuleChecker struct {
	checked []bool
}

// NewModuleChecker creates a ModuleChecker sized for cap modules -- the
// number of distinct modules declared in the workflow.
func NewModuleChecker(cap int) *ModuleChecker {
	return &ModuleChecker{checked: make([]bool, cap)}
}

func (c *ModuleChecker) isChecked(id ident.ModuleId) bool {
	i := int(id)
	return i < len(c.checked) && c.checked[i]
}

func (c *ModuleChecker) markChecked(id ident.ModuleId) {
	i := int(id)
	for i >= len(c.checked) {
		c.checked = append(c.checked, false)
	}
	c.checked[i] = true
}

// Check confirms task's module directory exists, if it has one and hasn't
// already been checked. The first time a module is seen, its id is appended
// to moduleIDsToPrint so the caller can report it once rather than once per
// realization.
func (c *ModuleChecker) Check(task traverse.Node, paths *TaskDirPaths, fs *rfs.Fs, moduleIDsToPrint *[]ident.ModuleId) error {
	if task.Module == nil {
		return nil
	}
	moduleID := *task.Module
	if c.isChecked(moduleID) {
		return nil
	}
	isDir, err := fs.IsDir(paths.Module())
	if err != nil {
		return err
	}
	if !isDir {
		return rerrors.New(rerrors.KindModuleNotFound, "module %d (task %d) missing directory %q", moduleID, task.Key.Task, paths.Module())
	}
	c.markChecked(moduleID)
	*moduleIDsToPrint = append(*moduleIDsToPrint, moduleID)
	return nil
}
