package astshim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/astshim"
)

func TestParse_ConfigModuleImport(t *testing.T) {
	src := `
import "shared.hr"

config {
  profile = "debug"
  name = $profile
}

module wasm_build = "build/wasm"
`
	items, err := astshim.Parse(src)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, astshim.ItemImport, items[0].Kind)
	assert.Equal(t, "shared.hr", items[0].ImportPath)

	assert.Equal(t, astshim.ItemGlobalConfig, items[1].Kind)
	require.Len(t, items[1].Config, 2)
	assert.Equal(t, "profile", items[1].Config[0].Name)
	assert.Equal(t, astshim.RhsLiteral, items[1].Config[0].Rhs.Kind)
	assert.Equal(t, "debug", items[1].Config[0].Rhs.Literal)
	assert.Equal(t, astshim.RhsVariable, items[1].Config[1].Rhs.Kind)
	assert.Equal(t, "profile", items[1].Config[1].Rhs.Name)

	assert.Equal(t, astshim.ItemModule, items[2].Kind)
	assert.Equal(t, "wasm_build", items[2].ModuleName)
	assert.Equal(t, astshim.RhsLiteral, items[2].ModulePath.Kind)
	assert.Equal(t, "build/wasm", items[2].ModulePath.Literal)
}

func TestParse_TaskWithInputsOutputsParamsModule(t *testing.T) {
	src := `
task compile <
  src = "main.c"
  shared = @other_task
> binary
  -p opt_level = $profile
  @build_dir
:: {
  gcc -O$opt_level -o $binary $src
}
`
	items, err := astshim.Parse(src)
	require.NoError(t, err)
	require.Len(t, items, 1)

	task := items[0].Task
	assert.Equal(t, "compile", task.Name)
	require.Len(t, task.Specs, 5)

	assert.Equal(t, astshim.SpecInput, task.Specs[0].Kind)
	assert.Equal(t, "src", task.Specs[0].Lhs)
	assert.Equal(t, astshim.RhsLiteral, task.Specs[0].Rhs.Kind)

	assert.Equal(t, astshim.SpecInput, task.Specs[1].Kind)
	assert.Equal(t, "shared", task.Specs[1].Lhs)
	assert.Equal(t, astshim.RhsShorthandTaskOutput, task.Specs[1].Rhs.Kind)
	assert.Equal(t, "other_task", task.Specs[1].Rhs.Task)

	assert.Equal(t, astshim.SpecOutput, task.Specs[2].Kind)
	assert.Equal(t, "binary", task.Specs[2].Lhs)
	assert.Equal(t, astshim.RhsUnbound, task.Specs[2].Rhs.Kind)

	assert.Equal(t, astshim.SpecParam, task.Specs[3].Kind)
	assert.Equal(t, "opt_level", task.Specs[3].Lhs)
	assert.Equal(t, astshim.RhsVariable, task.Specs[3].Rhs.Kind)

	assert.Equal(t, astshim.SpecModule, task.Specs[4].Kind)
	assert.Equal(t, "build_dir", task.Specs[4].Name)

	assert.Contains(t, task.Code.Vars, "opt_level")
	assert.Contains(t, task.Code.Vars, "binary")
	assert.Contains(t, task.Code.Vars, "src")
}

func TestParse_GraftedAndBranchedValues(t *testing.T) {
	src := `
task t <
  a = $cfgvar[Profile.release]
  b = $other@producer[Os.linux]
  c = @producer2[Target.wasm]
  d = (Profile: debug=$dbg_val release=$rel_val)
> out :: {
  noop
}
`
	items, err := astshim.Parse(src)
	require.NoError(t, err)
	task := items[0].Task

	a := task.Specs[0].Rhs
	assert.Equal(t, astshim.RhsGraftedVariable, a.Kind)
	assert.Equal(t, "cfgvar", a.Name)
	require.Len(t, a.Branch, 1)
	assert.Equal(t, "Profile", a.Branch[0].Branchpoint)
	assert.Equal(t, "release", a.Branch[0].Value)

	b := task.Specs[1].Rhs
	assert.Equal(t, astshim.RhsGraftedTaskOutput, b.Kind)
	assert.Equal(t, "producer", b.Task)
	assert.Equal(t, "other", b.Output)

	c := task.Specs[2].Rhs
	assert.Equal(t, astshim.RhsShorthandGraftedTaskOutput, c.Kind)
	assert.Equal(t, "producer2", c.Task)

	d := task.Specs[3].Rhs
	assert.Equal(t, astshim.RhsBranchpoint, d.Kind)
	assert.Equal(t, "Profile", d.BranchpointName)
	require.Len(t, d.Alts, 2)
	assert.Equal(t, "debug", d.Alts[0].Name)
	assert.Equal(t, astshim.RhsVariable, d.Alts[0].Val.Kind)
}

func TestParse_Plan(t *testing.T) {
	src := `
plan release_plan {
  reach compile, link via (Profile: debug release) * (Os: linux)
  reach test via (Profile: *)
}
`
	items, err := astshim.Parse(src)
	require.NoError(t, err)
	plan := items[0].PlanVal
	assert.Equal(t, "release_plan", plan.Name)
	require.Len(t, plan.CrossProducts, 2)

	cp0 := plan.CrossProducts[0]
	assert.Equal(t, []string{"compile", "link"}, cp0.Goals)
	require.Len(t, cp0.Branches, 2)
	assert.Equal(t, "Profile", cp0.Branches[0].Branchpoint)
	assert.Equal(t, []string{"debug", "release"}, cp0.Branches[0].Branches.Values)
	assert.Equal(t, "Os", cp0.Branches[1].Branchpoint)

	cp1 := plan.CrossProducts[1]
	assert.True(t, cp1.Branches[0].Branches.Glob)
}

func TestParse_InterpolatedLiteral(t *testing.T) {
	src := `
config {
  path = "build/$profile/output"
}
`
	items, err := astshim.Parse(src)
	require.NoError(t, err)
	rhs := items[0].Config[0].Rhs
	assert.Equal(t, astshim.RhsInterp, rhs.Kind)
	assert.Equal(t, []string{"profile"}, rhs.InterpVars)
}

func TestParse_CommentsAreSkipped(t *testing.T) {
	src := `
# a leading comment
config { # trailing comment
  a = "b" # another
}
`
	items, err := astshim.Parse(src)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].Config[0].Rhs.Literal)
}

func TestParse_UnterminatedStringErrors(t *testing.T) {
	_, err := astshim.Parse(`config { a = "unterminated }`)
	require.Error(t, err)
}
