package traverse

import (
	"github.com/AbdelazizMoustafa10m/rebuild/internal/bitmask"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/ident"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rerrors"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/value"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/workflow"
)

// Traversal is a specific, fully-resolved walk through a workflow's tasks:
// possibly containing duplicate (task, branch) realizations, but guaranteed
// to be ordered so every node appears before anything that depends on it,
// and to carry only the branchpoints still relevant to each node's chain.
type Traversal struct {
	Nodes         []Node
	Inputs        []value.RealInput
	OutputsParams []value.RealOutputOrParam
}

// Create runs a full BFS traversal of every goal named by plan's subplans,
// crossed with every branch each subplan's cross product denotes, then
// prunes and reverses the result into dependency order.
func Create(wf *workflow.Workflow, plan workflow.Plan, width bitmask.Width, rec rerrors.Recapper) (*Traversal, error) {
	traverser := NewBfsTraverser(wf, width, rec)

	for _, sp := range plan.Subplans {
		for _, goal := range sp.Goals {
			for _, br := range sp.Branches {
				key := workflow.RealTaskKey{Task: goal, Branch: br}
				if err := traverser.Traverse(key); err != nil {
					return nil, err
				}
			}
		}
	}

	tb := traverser.IntoTraversal()

	if err := CleanBranchesReversed(tb, wf, width); err != nil {
		return nil, err
	}

	if err := tb.Errors.Finish("building traversal"); err != nil {
		return nil, err
	}

	return ReverseAndStrip(tb), nil
}

// ReverseAndStrip reverses tb's BFS-processing order into dependency order
// (antecedents before dependents) and converts each NodeBuilder into its
// exported Node form, remapping every RealInputTask index to match the
// reversed order.
func ReverseAndStrip(tb *TraversalBuilder) *Traversal {
	n := len(tb.Nodes)
	nodes := make([]Node, n)
	for i, nb := range tb.Nodes {
		nodes[n-1-i] = NewNode(nb)
	}

	finalIdx := n - 1
	for i, in := range tb.Inputs {
		if rt, ok := in.(value.RealInputTask); ok {
			rt.Task = ident.RealTaskId(finalIdx - int(rt.Task))
			tb.Inputs[i] = rt
		}
	}

	return &Traversal{
		Nodes:         nodes,
		Inputs:        tb.Inputs,
		OutputsParams: tb.OutputsParams,
	}
}
