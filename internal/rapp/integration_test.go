package rapp_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/invalidate"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rapp"
)

// writeConfig writes src to a fresh "rebuild.hr" file inside dir and returns
// its path.
func writeConfig(t *testing.T, dir, src string) string {
	t.Helper()
	path := filepath.Join(dir, "rebuild.hr")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

// captureStderr runs fn with os.Stderr redirected to a pipe and returns
// everything fn wrote there alongside fn's own return value.
func captureStderr(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stderr
	os.Stderr = w
	runErr := fn()
	os.Stderr = orig
	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out), runErr
}

func mustParseBranch(t *testing.T, baseline bool, flags []string) invalidate.BranchArg {
	t.Helper()
	arg, err := invalidate.ParseBranchArg(baseline, flags)
	require.NoError(t, err)
	return arg
}

// Scenario 1: a single literal-input task, one realization on first run,
// "No tasks to run" printed on an unchanged rerun.
func TestIntegration_LiteralTaskSingleRealizationThenNoOp(t *testing.T) {
	dir := t.TempDir()
	inputFile := filepath.Join(dir, "input.txt")
	require.NoError(t, os.WriteFile(inputFile, []byte("source\n"), 0o644))

	config := writeConfig(t, dir, `
task goal <
  in = "`+inputFile+`"
> result :: {
  cp $in $result
}
`)
	output := filepath.Join(dir, "output")

	require.NoError(t, rapp.Run(rapp.RunOpts{
		Config: config,
		Output: output,
		Tasks:  []string{"goal"},
		Branch: mustParseBranch(t, false, nil),
		Yes:    true,
	}))

	realization := filepath.Join(output, "goal", "realizations", "Baseline.baseline")
	assert.DirExists(t, realization)
	assert.FileExists(t, filepath.Join(realization, "exit_code"))
	assert.FileExists(t, filepath.Join(realization, "result"))

	stderr, err := captureStderr(t, func() error {
		return rapp.Run(rapp.RunOpts{
			Config: config,
			Output: output,
			Tasks:  []string{"goal"},
			Branch: mustParseBranch(t, false, nil),
			Yes:    true,
		})
	})
	require.NoError(t, err)
	assert.Contains(t, stderr, "No tasks to run")
}

// Scenario 2: a single branchpoint restricted via -b produces exactly one
// realization directory and symlink named after the pinned value.
func TestIntegration_BranchRestrictedRunProducesOneRealization(t *testing.T) {
	dir := t.TempDir()
	config := writeConfig(t, dir, `
task compile <
> out
  -p profile = (Profile: debug="dbg" release="rel")
:: {
  echo $profile > $out
}
`)
	output := filepath.Join(dir, "output")

	require.NoError(t, rapp.Run(rapp.RunOpts{
		Config: config,
		Output: output,
		Tasks:  []string{"compile"},
		Branch: mustParseBranch(t, false, []string{"Profile.release"}),
		Yes:    true,
	}))

	entries, err := os.ReadDir(filepath.Join(output, "compile", "realizations"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Profile.release", entries[0].Name())

	assert.FileExists(t, filepath.Join(output, "compile", "Profile.release"))
}

// Scenario 3: two goals sharing a dependency pinned to the same compound
// branch produce exactly one realization of that dependency, not two.
func TestIntegration_SharedDependencyDedupesToOneRealization(t *testing.T) {
	dir := t.TempDir()
	config := writeConfig(t, dir, `
task build <
> out
  -p profile = (Profile: release="rel" debug="dbg")
  -p arch = (Arch: arm64="arm" x64="x64")
:: {
  echo "$profile $arch" > $out
}

task g1 <
  in = $out@build[Profile.debug][Arch.x64]
> result :: {
  cp $in $result
}

task g2 <
  in = $out@build[Profile.debug][Arch.x64]
> result :: {
  cp $in $result
}
`)
	output := filepath.Join(dir, "output")

	require.NoError(t, rapp.Run(rapp.RunOpts{
		Config: config,
		Output: output,
		Tasks:  []string{"g1", "g2"},
		Branch: mustParseBranch(t, false, nil),
		Yes:    true,
	}))

	entries, err := os.ReadDir(filepath.Join(output, "build", "realizations"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "g1 and g2 must share the single build realization they both graft to")
	assert.Equal(t, "Profile.debug+Arch.x64", entries[0].Name())
}

// Scenario 4: a branchpoint value grafted straight into a param collapses
// to its literal value and never surfaces as a branchpoint the traversal
// must enumerate for the task that uses it.
func TestIntegration_GraftedParamResolvesToLiteralValue(t *testing.T) {
	dir := t.TempDir()
	config := writeConfig(t, dir, `
config {
  v = (Grafted: a="one" b="two")
}

task consumer <
> out
  -p p = $v[Grafted.a]
:: {
  echo $p > $out
}
`)
	output := filepath.Join(dir, "output")

	require.NoError(t, rapp.Run(rapp.RunOpts{
		Config: config,
		Output: output,
		Tasks:  []string{"consumer"},
		Branch: mustParseBranch(t, false, nil),
		Yes:    true,
	}))

	entries, err := os.ReadDir(filepath.Join(output, "consumer", "realizations"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "a fully-grafted branchpoint must not be enumerated for the consuming task")
	assert.Equal(t, "Baseline.baseline", entries[0].Name())

	out, err := os.ReadFile(filepath.Join(output, "consumer", "realizations", "Baseline.baseline", "out"))
	require.NoError(t, err)
	assert.Equal(t, "one\n", string(out))
}

// Scenario 5: invalidating one pinned branch of a task removes only that
// realization's exit_code, leaving the baseline realization untouched, and
// a subsequent run recreates just the invalidated one.
func TestIntegration_InvalidateOneBranchPreservesBaseline(t *testing.T) {
	dir := t.TempDir()
	config := writeConfig(t, dir, `
task pkgbuild <
> out
  -p variant = (Framework: au="au" vst="vst")
:: {
  echo $variant > $out
}

plan all {
  reach pkgbuild via (Framework: au vst)
}
`)
	output := filepath.Join(dir, "output")

	require.NoError(t, rapp.Run(rapp.RunOpts{
		Config: config,
		Output: output,
		Plan:   "all",
		Yes:    true,
	}))

	baselineExit := filepath.Join(output, "pkgbuild", "realizations", "Baseline.baseline", "exit_code")
	vstExit := filepath.Join(output, "pkgbuild", "realizations", "Framework.vst", "exit_code")
	assert.FileExists(t, baselineExit)
	assert.FileExists(t, vstExit)

	require.NoError(t, rapp.Run(rapp.RunOpts{
		Config:     config,
		Output:     output,
		Tasks:      []string{"pkgbuild"},
		Branch:     mustParseBranch(t, false, []string{"Framework.vst"}),
		Invalidate: true,
		Yes:        true,
	}))

	assert.FileExists(t, baselineExit, "invalidating one branch must not touch the baseline realization")
	assert.NoFileExists(t, vstExit, "invalidating Framework.vst must remove only its exit_code")
	assert.DirExists(t, filepath.Join(output, "pkgbuild", "realizations", "Framework.vst"), "invalidation deletes the exit_code file, not the whole realization directory")

	require.NoError(t, rapp.Run(rapp.RunOpts{
		Config: config,
		Output: output,
		Plan:   "all",
		Yes:    true,
	}))

	assert.FileExists(t, vstExit, "rerunning after invalidation recreates the Framework.vst realization")
}
