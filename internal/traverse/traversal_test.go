package traverse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/astshim"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/bitmask"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/ident"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/traverse"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/value"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/workflow"
)

func mustLoadWithPlan(t *testing.T, src string, plan astshim.Plan) *workflow.Workflow {
	t.Helper()
	items, err := astshim.Parse(src)
	require.NoError(t, err)
	items = append(items, astshim.Item{Kind: astshim.ItemPlan, PlanVal: plan})
	wf, err := workflow.New()
	require.NoError(t, err)
	require.NoError(t, wf.Load(items, "/configs"))
	return wf
}

func createTraversal(t *testing.T, wf *workflow.Workflow, planName string) *traverse.Traversal {
	t.Helper()
	planID, err := wf.Strings.Idents.Intern(planName)
	require.NoError(t, err)
	plan, err := wf.GetPlan(planID)
	require.NoError(t, err)

	width, err := bitmask.ChooseWidth(wf.Strings.Branchpoints.Len())
	require.NoError(t, err)

	trav, err := traverse.Create(wf, plan, width, nil)
	require.NoError(t, err)
	return trav
}

func TestCreate_LinearDependencyOrderedAndRemapped(t *testing.T) {
	wf := mustLoadWithPlan(t, `
task producer <
> out :: {
  echo hi > $out
}

task consumer <
  in = $out@producer
> result :: {
  cp $in $result
}
`, astshim.Plan{Name: "all", CrossProducts: []astshim.CrossProduct{{Goals: []string{"consumer"}}}})

	trav := createTraversal(t, wf, "all")
	require.Len(t, trav.Nodes, 2)

	producerID, err := wf.Strings.Tasks.Intern("producer")
	require.NoError(t, err)
	consumerID, err := wf.Strings.Tasks.Intern("consumer")
	require.NoError(t, err)

	// Antecedents come before their dependents once reversed into
	// dependency order.
	assert.Equal(t, producerID, trav.Nodes[0].Key.Task)
	assert.Equal(t, consumerID, trav.Nodes[1].Key.Task)

	require.Len(t, trav.Nodes[1].Vars.Inputs, 1)
	inputRef := trav.Nodes[1].Vars.Inputs[0]
	resolved := trav.Inputs[inputRef.Value]
	taskInput, ok := resolved.(value.RealInputTask)
	require.True(t, ok)
	assert.Equal(t, ident.RealTaskId(0), taskInput.Task)
}

func TestCreate_ReflexiveTaskErrors(t *testing.T) {
	wf := mustLoadWithPlan(t, `
task selfref <
  in = $out@selfref
> out :: {
  noop
}
`, astshim.Plan{Name: "all", CrossProducts: []astshim.CrossProduct{{Goals: []string{"selfref"}}}})

	planID, err := wf.Strings.Idents.Intern("all")
	require.NoError(t, err)
	plan, err := wf.GetPlan(planID)
	require.NoError(t, err)
	width, err := bitmask.ChooseWidth(wf.Strings.Branchpoints.Len())
	require.NoError(t, err)

	_, err = traverse.Create(wf, plan, width, nil)
	require.Error(t, err)
}

func TestCreate_BranchedConfigPropagatesIntoOutput(t *testing.T) {
	wf := mustLoadWithPlan(t, `
config {
  flag = (Profile: debug="-O0" release="-O2")
}

task build <
  opt = $flag
> out :: {
  noop
}
`, astshim.Plan{
		Name: "release",
		CrossProducts: []astshim.CrossProduct{{
			Goals: []string{"build"},
			Branches: []astshim.CrossProductBranch{{
				Branchpoint: "Profile",
				Branches:    astshim.Branches{Values: []string{"debug", "release"}},
			}},
		}},
	})

	trav := createTraversal(t, wf, "release")
	require.Len(t, trav.Nodes, 2)

	profileBp, err := wf.Strings.Branchpoints.Intern("Profile")
	require.NoError(t, err)
	for _, n := range trav.Nodes {
		_, ok := n.Key.Branch.GetSpecified(profileBp)
		assert.True(t, ok, "Profile should remain pinned after pruning since build's own param adds it back")
	}
}
