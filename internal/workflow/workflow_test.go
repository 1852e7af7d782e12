package workflow_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/astshim"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/value"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/workflow"
)

func mustLoad(t *testing.T, src string) *workflow.Workflow {
	t.Helper()
	items, err := astshim.Parse(src)
	require.NoError(t, err)
	wf, err := workflow.New()
	require.NoError(t, err)
	require.NoError(t, wf.Load(items, "/configs"))
	return wf
}

func TestLoad_ConfigAndTask(t *testing.T) {
	wf := mustLoad(t, `
config {
  profile = "debug"
}

task compile <
  src = "main.c"
> binary :: {
  gcc -o $binary $src
}
`)
	taskID, err := wf.Strings.Tasks.Intern("compile")
	require.NoError(t, err)
	task, err := wf.GetTask(taskID)
	require.NoError(t, err)
	assert.True(t, task.Exists)
	require.Len(t, task.Vars.Inputs, 1)
	require.Len(t, task.Vars.Outputs, 1)

	profileID, err := wf.Strings.Idents.Intern("profile")
	require.NoError(t, err)
	v, err := wf.GetConfigValue(profileID)
	require.NoError(t, err)
	direct, ok := v.(value.Direct)
	require.True(t, ok)
	simple, ok := direct.Val.(value.Simple)
	require.True(t, ok)
	lit, ok := simple.Base.(value.Literal)
	require.True(t, ok)
	litStr, err := wf.Strings.Literals.Get(lit.Lit)
	require.NoError(t, err)
	assert.Equal(t, "debug", litStr)
}

func TestLoad_UndeclaredTaskReference(t *testing.T) {
	wf := mustLoad(t, `
task consumer <
  shared = @producer
> out :: {
  noop
}
`)
	producerID, err := wf.Strings.Tasks.Intern("producer")
	require.NoError(t, err)
	_, err = wf.GetTask(producerID)
	require.Error(t, err)
}

func TestLoad_BranchedConfigValue(t *testing.T) {
	wf := mustLoad(t, `
config {
  opt = (Profile: debug=$dbg_flag release=$rel_flag)
}
`)
	optID, err := wf.Strings.Idents.Intern("opt")
	require.NoError(t, err)
	v, err := wf.GetConfigValue(optID)
	require.NoError(t, err)
	branched, ok := v.(value.Branched)
	require.True(t, ok)
	require.Len(t, branched.Alts, 2)

	profileBp, err := wf.Strings.Branchpoints.Intern("Profile")
	require.NoError(t, err)
	debugVal, err := wf.Strings.Idents.Intern("debug")
	require.NoError(t, err)

	found := false
	for _, alt := range branched.Alts {
		if v, ok := alt.Branch.GetSpecified(profileBp); ok && v == debugVal {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLoad_PlanCrossProduct(t *testing.T) {
	wf := mustLoad(t, `
task build <
> out :: { noop }

plan release {
  reach build via (Profile: debug release) * (Os: linux mac)
}
`)
	planID, err := wf.Strings.Idents.Intern("release")
	require.NoError(t, err)
	plan, err := wf.GetPlan(planID)
	require.NoError(t, err)
	require.Len(t, plan.Subplans, 1)
	assert.Len(t, plan.Subplans[0].Branches, 4)
}

func TestLoad_EmptyPlanErrors(t *testing.T) {
	items := []astshim.Item{{Kind: astshim.ItemPlan, PlanVal: astshim.Plan{Name: "empty"}}}
	wf, err := workflow.New()
	require.NoError(t, err)
	err = wf.Load(items, "/configs")
	require.Error(t, err)
}

func TestLoad_GlobBranchInPlanErrors(t *testing.T) {
	wf, err := workflow.New()
	require.NoError(t, err)
	items := []astshim.Item{{
		Kind: astshim.ItemPlan,
		PlanVal: astshim.Plan{
			Name: "globby",
			CrossProducts: []astshim.CrossProduct{{
				Goals: []string{"build"},
				Branches: []astshim.CrossProductBranch{{
					Branchpoint: "Profile",
					Branches:    astshim.Branches{Glob: true},
				}},
			}},
		},
	}}
	err = wf.Load(items, "/configs")
	require.Error(t, err)
}

func TestMakeInterpolated(t *testing.T) {
	wf, err := workflow.New()
	require.NoError(t, err)
	orig, err := wf.Strings.Literals.Intern("$v1 and $v2 $v1-$v2")
	require.NoError(t, err)
	v1, err := wf.Strings.Idents.Intern("v1")
	require.NoError(t, err)
	v2, err := wf.Strings.Idents.Intern("v2")
	require.NoError(t, err)
	v1Val, err := wf.Strings.Literals.Intern("one")
	require.NoError(t, err)
	v2Val, err := wf.Strings.Literals.Intern("two")
	require.NoError(t, err)

	var buf strings.Builder
	vars := []value.InterpVar{
		{Ident: v1, Lit: v1Val},
		{Ident: v2, Lit: v2Val},
		{Ident: v1, Lit: v1Val},
		{Ident: v2, Lit: v2Val},
	}
	require.NoError(t, wf.Strings.MakeInterpolated(orig, vars, &buf))
	assert.Equal(t, "one and two one-two", buf.String())
}

func TestMakeInterpolated_MissingVarErrors(t *testing.T) {
	wf, err := workflow.New()
	require.NoError(t, err)
	orig, err := wf.Strings.Literals.Intern("$v1")
	require.NoError(t, err)
	v3, err := wf.Strings.Idents.Intern("v3_not_present")
	require.NoError(t, err)
	v1Val, err := wf.Strings.Literals.Intern("one")
	require.NoError(t, err)

	var buf strings.Builder
	err = wf.Strings.MakeInterpolated(orig, []value.InterpVar{{Ident: v3, Lit: v1Val}}, &buf)
	require.Error(t, err)
}

func TestModulePathResolution(t *testing.T) {
	wf := mustLoad(t, `
module build_dir = "relative/path"
`)
	modID, err := wf.Strings.Modules.Intern("build_dir")
	require.NoError(t, err)
	path, err := wf.GetModulePath(modID)
	require.NoError(t, err)
	assert.Contains(t, path, "relative/path")
}

func TestBranchStringRoundTrip(t *testing.T) {
	wf := mustLoad(t, `
config {
  opt = (Profile: debug=$dbg_flag release=$rel_flag)
}
`)
	profileBp, err := wf.Strings.Branchpoints.Intern("Profile")
	require.NoError(t, err)
	releaseVal, err := wf.Strings.Idents.Intern("release")
	require.NoError(t, err)

	spec, err := wf.Strings.ParseCompactBranchString("Profile.release")
	require.NoError(t, err)
	v, ok := spec.GetSpecified(profileBp)
	require.True(t, ok)
	assert.Equal(t, releaseVal, v)

	compact, err := wf.Strings.GetCompactBranchString(spec)
	require.NoError(t, err)
	assert.Equal(t, "Profile.release", compact)
}
