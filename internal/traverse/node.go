// Package traverse walks a loaded workflow breadth-first from each plan
// goal, resolving every abstract value it touches down to one concrete
// realization per (task, branch) pair, then prunes and reverses the result
// into dependency order for the prep/run stages to consume.
package traverse

import (
	"github.com/AbdelazizMoustafa10m/rebuild/internal/ident"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/value"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/workflow"
)

// NodeIdx indexes a node within a traversal, in the order the BFS processed
// it (before the final reversal into dependency order).
type NodeIdx uint32

// RealTaskVar pairs a declared var name with the resolved real value id it
// was bound to for one specific node.
type RealTaskVar struct {
	Name  ident.IdentId
	Value ident.RealValueId
}

// NodeBuilder is a partially-resolved task, accumulated while the BFS walks
// its inputs, outputs, and params.
type NodeBuilder struct {
	// Key uniquely identifies the task and branch this node realizes.
	Key workflow.RealTaskKey
	// NextIdx is the traversal index of the task downstream of this one that
	// pulled it in. Equal to this node's own index when the node is terminal
	// (a goal node with nothing depending on it).
	NextIdx NodeIdx
	// IsRoot is true as long as no input handled so far came from another
	// task's output; handleInput flips it false the first time one does.
	IsRoot bool
	Vars   workflow.TaskVars[RealTaskVar]
	Code   ident.LiteralId
	// CodeVars is the set of var names the task's bash code actually
	// references, carried along so prep can validate them later.
	CodeVars []ident.IdentId
	Module   *ident.ModuleId
	// Masks accumulates the branchpoints added (via a branched alternative)
	// and removed (via a graft) while resolving this node's own vars.
	Masks value.BranchMasks
}

// NewNodeBuilder creates a NodeBuilder for key, copying task's code and
// module, and preallocating Vars to task's var counts.
func NewNodeBuilder(key workflow.RealTaskKey, nextIdx NodeIdx, task workflow.Task, masks value.BranchMasks) *NodeBuilder {
	return &NodeBuilder{
		Key:      key,
		NextIdx:  nextIdx,
		Code:     task.Code,
		CodeVars: append([]ident.IdentId(nil), task.ReferencedVars...),
		Module:   task.Module,
		Vars:     workflow.NewTaskVarsWithSizes[RealTaskVar](task.Vars),
		Masks:    masks,
		// We flip this to false in handleInput the first time we find an
		// antecedent task.
		IsRoot: true,
	}
}

// Node is a fully-resolved task, ready for the prep/run stages.
type Node struct {
	Key      workflow.RealTaskKey
	Vars     workflow.TaskVars[RealTaskVar]
	Code     ident.LiteralId
	CodeVars []ident.IdentId
	Module   *ident.ModuleId
}

// NewNode converts a completed NodeBuilder into its exported Node form,
// dropping the fields (NextIdx, IsRoot, Masks) only the BFS/cleanup passes
// need.
func NewNode(nb *NodeBuilder) Node {
	return Node{
		Key:      nb.Key,
		Vars:     nb.Vars,
		Code:     nb.Code,
		CodeVars: nb.CodeVars,
		Module:   nb.Module,
	}
}
