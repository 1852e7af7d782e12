package rrun_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/astshim"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/bitmask"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/prep"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rfs"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rrun"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/traverse"
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

func resolveAndPrepare(t *testing.T, wf *workflow.Workflow, planName string, fs *rfs.Fs) []*prep.TaskRunner {
	t.Helper()
	planID, err := wf.Strings.Idents.Intern(planName)
	require.NoError(t, err)
	plan, err := wf.GetPlan(planID)
	require.NoError(t, err)

	width, err := bitmask.ChooseWidth(wf.Strings.Branchpoints.Len())
	require.NoError(t, err)
	trav, err := traverse.Create(wf, plan, width, nil)
	require.NoError(t, err)
	wf.Strings.AllocForRun()

	resolver := prep.NewTraversalResolver(len(trav.Nodes), fs, wf)
	actions, err := resolver.ResolveToActions(trav)
	require.NoError(t, err)

	runner := prep.NewPreRunner(fs, wf, false)
	runners, err := runner.DoPreRunActions(actions)
	require.NoError(t, err)
	return runners
}

const producerConsumerSrc = `
task producer <
> out :: {
  echo hi > $out
}

task consumer <
  in = $out@producer
> result :: {
  cp $in $result
}
`

func TestRunner_Run_ExecutesTasksAndWritesExitCodes(t *testing.T) {
	wf := mustLoadWithPlan(t, producerConsumerSrc,
		astshim.Plan{Name: "all", CrossProducts: []astshim.CrossProduct{{Goals: []string{"consumer"}}}})

	root := t.TempDir()
	fs := rfs.New(root, false)
	require.NoError(t, fs.EnsureOutputDirExists(false))

	runners := resolveAndPrepare(t, wf, "all", fs)
	require.Len(t, runners, 2)

	runner := rrun.New(fs, wf, false, true)
	require.NoError(t, runner.Run(runners))

	for _, r := range runners {
		realization, err := wf.Strings.Run.Get(r.RealizationDir)
		require.NoError(t, err)

		exitCode, err := os.ReadFile(filepath.Join(realization, "exit_code"))
		require.NoError(t, err)
		assert.Equal(t, "0", string(exitCode))

		assert.FileExists(t, filepath.Join(realization, "meta.yaml"))
	}

	consumerOut, err := wf.Strings.Run.Get(runners[1].Outputs[0])
	require.NoError(t, err)
	contents, err := os.ReadFile(consumerOut)
	require.NoError(t, err)
	assert.Equal(t, "hi\n", string(contents))
}

func TestRunner_Run_StopsAtFirstFailure(t *testing.T) {
	src := `
task failing <
> out :: {
  exit 1
}

task never_runs <
  in = $out@failing
> result :: {
  cp $in $result
}
`
	wf := mustLoadWithPlan(t, src,
		astshim.Plan{Name: "all", CrossProducts: []astshim.CrossProduct{{Goals: []string{"never_runs"}}}})

	root := t.TempDir()
	fs := rfs.New(root, false)
	require.NoError(t, fs.EnsureOutputDirExists(false))

	runners := resolveAndPrepare(t, wf, "all", fs)
	require.Len(t, runners, 2)

	runner := rrun.New(fs, wf, false, false)
	err := runner.Run(runners)
	require.Error(t, err)

	failingDir, err2 := wf.Strings.Run.Get(runners[0].RealizationDir)
	require.NoError(t, err2)
	assert.NoFileExists(t, filepath.Join(failingDir, "exit_code"))
}
