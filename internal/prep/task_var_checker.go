package prep

import (
	"github.com/AbdelazizMoustafa10m/rebuild/internal/ident"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rlog"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/traverse"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/workflow"
)

var taskVarCheckerLog = rlog.New("prep")

// TaskVarChecker checks that the variables a task's bash code references are
// actually defined somewhere in that task's resolved vars. Reused across
// tasks via Reset to avoid a fresh hashset allocation per node.
type TaskVarChecker struct {
	vars map[ident.IdentId]struct{}
}

// NewTaskVarChecker creates a TaskVarChecker with capacity for roughly cap
// vars -- the largest var count expected from a single task.
func NewTaskVarChecker(cap int) *TaskVarChecker {
	return &TaskVarChecker{vars: make(map[ident.IdentId]struct{}, cap)}
}

// Reset clears the checker for the next task.
func (c *TaskVarChecker) Reset() {
	for k := range c.vars {
		delete(c.vars, k)
	}
}

// Insert records that k is a defined var name for the task currently being
// checked.
func (c *TaskVarChecker) Insert(k ident.IdentId) {
	c.vars[k] = struct{}{}
}

// Check logs a debug message for every name node's bash code references
// that isn't among the vars inserted since the last Reset. This is advisory
// only -- a missing var might still be defined directly in the code -- so it
// never returns an error.
func (c *TaskVarChecker) Check(node traverse.Node, wf *workflow.Workflow) {
	for _, k := range node.CodeVars {
		if _, ok := c.vars[k]; ok {
			continue
		}
		name, err := wf.Strings.Idents.Get(k)
		if err != nil {
			name = "<unknown>"
		}
		taskVarCheckerLog.Debug("missing var, hoping it's defined in the code", "id", k, "name", name)
	}
}
