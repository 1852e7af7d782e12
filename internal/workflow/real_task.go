package workflow

import (
	"github.com/AbdelazizMoustafa10m/rebuild/internal/branch"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/ident"
)

// RealTaskKey identifies one realization of an abstract task: the task plus
// the branch it is being resolved under. A traversal assigns one RealTaskId
// per RealTaskKey it visits, before any deduplication pass collapses
// identical realizations reached by different paths.
type RealTaskKey struct {
	Task   ident.TaskId
	Branch *branch.BranchSpec
}

// RealTaskKeyString renders a user-facing "task_name[branch_str]" label for k.
func (s *WorkflowStrings) RealTaskKeyString(k RealTaskKey) (string, error) {
	return s.GetRealTaskString(k.Task, k.Branch)
}
