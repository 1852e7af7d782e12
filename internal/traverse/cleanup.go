package traverse

import (
	"github.com/AbdelazizMoustafa10m/rebuild/internal/bitmask"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/branch"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/ident"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/workflow"
)

// CleanBranchesReversed walks every root-to-terminal chain in traversal (a
// root has no antecedents; a terminal node's NextIdx points at itself),
// accumulating a running branch mask node by node and trimming each node's
// branch down to the branchpoints that running mask carries when the walk
// reaches that node. A branchpoint a node's graft removed is dropped from
// that node and later ones even if an earlier node pinned it; one a node's
// branched alternative added is kept even if it wasn't pinned yet.
func CleanBranchesReversed(traversal *TraversalBuilder, wf *workflow.Workflow, width bitmask.Width) error {
	for _, rootIdx := range traversal.Roots {
		idx := rootIdx
		traversalMask := bitmask.New(width)
		for {
			node := traversal.Nodes[int(idx)]

			// Filter first, then add: a node can prune a branchpoint and
			// reintroduce it via its own branched value in the same step.
			traversalMask.AndNotThenOr(node.Masks.Rm, node.Masks.Add)

			if err := rmFilteredBranchpoints(node.Key.Branch, traversalMask, wf); err != nil {
				return err
			}

			if node.NextIdx == idx {
				break
			}
			idx = node.NextIdx
		}
	}
	return nil
}

// rmFilteredBranchpoints replaces any branchpoint br pins that mask no
// longer carries with baseline/unspecified, and fills in the baseline value
// for any branchpoint mask carries that br doesn't yet pin.
func rmFilteredBranchpoints(br *branch.BranchSpec, mask bitmask.Mask, wf *workflow.Workflow) error {
	numBranchpoints := wf.Strings.Branchpoints.Len()
	numBaselines := wf.Strings.Baselines.Len()
	for i := 0; i < numBranchpoints; i++ {
		bp := ident.BranchpointId(i)
		if !mask.Get(i) {
			br.Unset(bp)
			continue
		}
		if !br.IsUnspecified(bp) {
			continue
		}
		// This branchpoint survived pruning but was never pinned on this
		// node; pin it to baseline so downstream branch strings stay
		// explicit. A branchpoint named only in a plan's cross product (and
		// never in any branched value) has no recorded baseline; leave it
		// unspecified rather than indexing out of range.
		if i < numBaselines {
			br.Insert(bp, wf.Strings.Baselines.Get(bp))
		}
	}
	return nil
}
