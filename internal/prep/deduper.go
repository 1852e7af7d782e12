package prep

import (
	"github.com/AbdelazizMoustafa10m/rebuild/internal/ident"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/workflow"
)

// dedupeKey is a comparable stand-in for a workflow.RealTaskKey: Go cannot
// hash or compare a *branch.BranchSpec directly (it's backed by a pointer),
// so BranchSpec.Key renders its pins into a comparable string.
type dedupeKey struct {
	task   ident.TaskId
	branch string
}

// Deduper collapses traversal nodes that realize the same (task, branch)
// pair -- reached via different input chains during the BFS -- onto a
// single ActualTaskId, the dense id every downstream artifact (realization
// directory, task.sh, environment variables) is keyed by from here on.
type Deduper struct {
	idMap       []ident.ActualTaskId // one entry per RealTaskId, in traversal order
	seenTasks   map[dedupeKey]ident.ActualTaskId
	dedupeCount int
}

// NewDeduper creates a Deduper sized for roughly cap distinct RealTaskIds.
func NewDeduper(cap int) *Deduper {
	return &Deduper{
		idMap:     make([]ident.ActualTaskId, 0, cap),
		seenTasks: make(map[dedupeKey]ident.ActualTaskId, cap),
	}
}

// IsDupe records key's realization and reports whether an earlier node in
// this traversal already claimed the same (task, branch) pair. Must be
// called exactly once per node, in traversal order, so RealTaskId i's entry
// lands at idMap[i].
func (d *Deduper) IsDupe(key workflow.RealTaskKey) bool {
	k := dedupeKey{task: key.Task, branch: key.Branch.Key()}
	if actual, ok := d.seenTasks[k]; ok {
		d.idMap = append(d.idMap, actual)
		d.dedupeCount++
		return true
	}
	actual := ident.ActualTaskId(len(d.seenTasks))
	d.seenTasks[k] = actual
	d.idMap = append(d.idMap, actual)
	return false
}

// GetActualTaskId returns the ActualTaskId assigned to the node visited at
// RealTaskId id.
func (d *Deduper) GetActualTaskId(id ident.RealTaskId) ident.ActualTaskId {
	return d.idMap[int(id)]
}

// DedupeCount reports how many nodes were recognized as duplicates.
func (d *Deduper) DedupeCount() int { return d.dedupeCount }
