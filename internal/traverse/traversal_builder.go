package traverse

import (
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rerrors"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/value"
)

// TraversalBuilder accumulates the nodes and value arenas a BfsTraverser
// produces for one or more goals, before cleanup prunes and reverses them
// into a final Traversal.
type TraversalBuilder struct {
	// Nodes holds every node visited, in BFS-processing order (antecedents
	// after the tasks that pulled them in).
	Nodes []*NodeBuilder
	// Inputs is the arena of resolved input values every node's Vars.Inputs
	// indexes into.
	Inputs []value.RealInput
	// OutputsParams is the arena of resolved output and param values every
	// node's Vars.Outputs/Vars.Params indexes into.
	OutputsParams []value.RealOutputOrParam
	// Roots holds the indices of every node with no antecedents.
	Roots []NodeIdx
	// Errors collects per-var resolution failures across the whole pass,
	// so one bad var doesn't abort the rest of the traversal.
	Errors *rerrors.Aggregator
}
