package traverse

import (
	"fmt"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/bitmask"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/ident"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rerrors"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/value"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/workflow"
)

const (
	queueCapacityHint = 32
	rootsCapacityHint = 8
)

type queueNode struct {
	key     workflow.RealTaskKey
	nextIdx NodeIdx
}

// BfsTraverser walks a Workflow breadth-first, starting from one or more
// goal (task, branch) pairs, resolving every value a visited task's inputs,
// outputs, and params touch and enqueueing any antecedent task an input
// pulls in.
type BfsTraverser struct {
	wf    *workflow.Workflow
	width bitmask.Width

	queue     []queueNode
	traversal *TraversalBuilder
	resolver  *value.Resolver
}

// NewBfsTraverser creates a BfsTraverser over wf, sizing its traversal's
// arenas against the task count it's told to expect and recapping collected
// errors through rec (which may be nil).
func NewBfsTraverser(wf *workflow.Workflow, width bitmask.Width, rec rerrors.Recapper) *BfsTraverser {
	numTasks := wf.Strings.Tasks.Len()
	lenX2 := numTasks * 2
	lenX8 := lenX2 * 4
	return &BfsTraverser{
		wf:    wf,
		width: width,
		queue: make([]queueNode, 0, queueCapacityHint),
		traversal: &TraversalBuilder{
			Nodes:         make([]*NodeBuilder, 0, lenX2),
			Inputs:        make([]value.RealInput, 0, lenX2),
			OutputsParams: make([]value.RealOutputOrParam, 0, lenX8),
			Roots:         make([]NodeIdx, 0, rootsCapacityHint),
			Errors:        rerrors.NewAggregator(rec),
		},
		resolver: &value.Resolver{Width: width},
	}
}

// IntoTraversal consumes this BfsTraverser and returns the TraversalBuilder
// it has accumulated. Call after every goal has been passed to Traverse.
func (t *BfsTraverser) IntoTraversal() *TraversalBuilder {
	return t.traversal
}

// Traverse walks every task reachable from key, adding its nodes to this
// BfsTraverser's running TraversalBuilder.
func (t *BfsTraverser) Traverse(key workflow.RealTaskKey) error {
	idx, err := downcast(len(t.traversal.Nodes))
	if err != nil {
		return err
	}
	if err := t.enqueue(key, idx); err != nil {
		return err
	}
	for len(t.queue) > 0 {
		node := t.queue[0]
		t.queue = t.queue[1:]
		if err := t.handle(node); err != nil {
			return err
		}
	}
	return nil
}

func (t *BfsTraverser) handle(qn queueNode) error {
	taskID := qn.key.Task
	task, err := t.wf.GetTask(taskID)
	if err != nil {
		return err
	}

	thisNodeID, err := downcast(len(t.traversal.Nodes))
	if err != nil {
		return err
	}
	node := NewNodeBuilder(qn.key, qn.nextIdx, task, value.NewBranchMasks(t.width))

	for _, iv := range task.Vars.Inputs {
		valID, err := t.handleInput(iv.Value, node, thisNodeID)
		if err != nil {
			if hErr := t.handleErr(node.Key, iv.Name, "input", err); hErr != nil {
				return hErr
			}
			continue
		}
		node.Vars.Inputs = append(node.Vars.Inputs, RealTaskVar{Name: iv.Name, Value: valID})
	}

	// If still a root after every input was handled (none came from another
	// task's output), this node has no antecedents.
	if node.IsRoot {
		t.traversal.Roots = append(t.traversal.Roots, thisNodeID)
	}

	for _, pv := range task.Vars.Params {
		valID, err := t.handleOutputOrParam(pv.Value, node)
		if err != nil {
			if hErr := t.handleErr(node.Key, pv.Name, "param", err); hErr != nil {
				return hErr
			}
			continue
		}
		node.Vars.Params = append(node.Vars.Params, RealTaskVar{Name: pv.Name, Value: valID})
	}

	for _, ov := range task.Vars.Outputs {
		valID, err := t.handleOutputOrParam(ov.Value, node)
		if err != nil {
			if hErr := t.handleErr(node.Key, ov.Name, "output", err); hErr != nil {
				return hErr
			}
			continue
		}
		node.Vars.Outputs = append(node.Vars.Outputs, RealTaskVar{Name: ov.Name, Value: valID})
	}

	t.traversal.Nodes = append(t.traversal.Nodes, node)
	return nil
}

func (t *BfsTraverser) enqueue(key workflow.RealTaskKey, nextIdx NodeIdx) error {
	t.queue = append(t.queue, queueNode{key: key, nextIdx: nextIdx})
	return nil
}

func (t *BfsTraverser) handleInput(valID ident.ValueId, node *NodeBuilder, thisNodeID NodeIdx) (ident.RealValueId, error) {
	val, err := t.wf.GetValue(valID)
	if err != nil {
		return 0, err
	}
	realVal, masks, err := t.resolver.Resolve(val, node.Key.Branch, t.wf, value.PartialInputBuilder{})
	if err != nil {
		return 0, err
	}

	var real value.RealInput
	switch rv := realVal.(type) {
	case *value.PartialInputTask:
		node.IsRoot = false
		if rv.Task == node.Key.Task {
			return 0, rerrors.New(rerrors.KindReflexiveTask, "task %d cannot take one of its own outputs as an input", rv.Task)
		}

		key := workflow.RealTaskKey{Task: rv.Task, Branch: rv.Branch}
		if err := t.enqueue(key, thisNodeID); err != nil {
			return 0, err
		}

		// This antecedent task was just pushed onto the back of the queue.
		// It will be dequeued and assigned a node index of its own once
		// every node ahead of it (everything already queued, plus this one
		// being handled right now) has been processed -- i.e. after
		// thisNodeID's node and every node already in the queue, which is
		// exactly thisNodeID + len(queue) now that the antecedent has been
		// appended.
		realTaskID, err := downcast(int(thisNodeID) + len(t.queue))
		if err != nil {
			return 0, err
		}

		// We don't check here whether the antecedent task actually declares
		// an output with this ident, because it may not have been processed
		// yet; that check happens during prep.
		real = value.RealInputTask{Task: ident.RealTaskId(realTaskID), Output: rv.Output}
	case value.PartialInputLiteral:
		real = value.RealInputLiteral{Lit: rv.Lit}
	default:
		return 0, rerrors.New(rerrors.KindUnsupportedFeature, "unrecognized resolved input kind %T", realVal)
	}

	valOutID := ident.RealValueId(len(t.traversal.Inputs))
	t.traversal.Inputs = append(t.traversal.Inputs, real)
	node.Masks.MergeFrom(masks)
	return valOutID, nil
}

func (t *BfsTraverser) handleOutputOrParam(valID ident.ValueId, node *NodeBuilder) (ident.RealValueId, error) {
	val, err := t.wf.GetValue(valID)
	if err != nil {
		return 0, err
	}
	realVal, masks, err := t.resolver.Resolve(val, node.Key.Branch, t.wf, value.OutputParamBuilder{})
	if err != nil {
		return 0, err
	}
	valOutID := ident.RealValueId(len(t.traversal.OutputsParams))
	t.traversal.OutputsParams = append(t.traversal.OutputsParams, realVal)
	node.Masks.MergeFrom(masks)
	return valOutID, nil
}

func (t *BfsTraverser) handleErr(key workflow.RealTaskKey, k ident.IdentId, ty string, e error) error {
	t.traversal.Errors.Add(t.addErrContext(ty, key, k, e))
	return nil
}

func (t *BfsTraverser) addErrContext(ty string, task workflow.RealTaskKey, varIdent ident.IdentId, e error) error {
	name, nameErr := t.wf.Strings.IdentName(varIdent)
	if nameErr != nil {
		name = "?"
	}
	taskStr, taskErr := t.wf.Strings.RealTaskKeyString(task)
	if taskErr != nil {
		taskStr = "?"
	}
	return fmt.Errorf("invalid %s %q in task %s: %w", ty, name, taskStr, e)
}

// downcast converts a non-negative int into a NodeIdx, failing with
// KindOutOfIndices if it would overflow uint32.
func downcast(v int) (NodeIdx, error) {
	if v < 0 || uint64(v) > uint64(^uint32(0)) {
		return 0, rerrors.New(rerrors.KindOutOfIndices, "traversal index %d is out of range", v)
	}
	return NodeIdx(v), nil
}
