package main_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// projectRoot returns the absolute path to the project root directory.
func projectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err, "failed to get working directory")

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (no go.mod found in any parent directory)")
		}
		dir = parent
	}
}

func buildRebuild(t *testing.T) string {
	t.Helper()
	root := projectRoot(t)
	binPath := filepath.Join(t.TempDir(), "rebuild")

	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/rebuild/")
	cmd.Dir = root
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "go build failed: %s", string(output))

	info, err := os.Stat(binPath)
	require.NoError(t, err, "binary was not created at %s", binPath)
	assert.Greater(t, info.Size(), int64(0), "binary must not be empty")

	return binPath
}

func TestBuild_Compiles(t *testing.T) {
	buildRebuild(t)
}

func TestBuild_NoArgsShowsHelp(t *testing.T) {
	binPath := buildRebuild(t)

	runCmd := exec.Command(binPath)
	output, err := runCmd.CombinedOutput()
	require.NoError(t, err, "binary execution failed with output: %s", string(output))

	outputStr := string(output)
	assert.Contains(t, outputStr, "branching build engine", "help text must describe rebuild")
	assert.Contains(t, outputStr, "Usage:", "no-args invocation must print full help, not just the Long description")
}

func TestBuild_VersionSubcommand(t *testing.T) {
	binPath := buildRebuild(t)

	runCmd := exec.Command(binPath, "version")
	output, err := runCmd.CombinedOutput()
	require.NoError(t, err, "rebuild version failed: %s", string(output))

	outputStr := strings.TrimSpace(string(output))
	assert.NotEmpty(t, outputStr, "rebuild version must print something")
}

func TestBuild_RunWithMissingConfigFails(t *testing.T) {
	binPath := buildRebuild(t)
	dir := t.TempDir()

	runCmd := exec.Command(binPath, "run", "-o", filepath.Join(dir, "output"), "-c", filepath.Join(dir, "missing.hr"))
	output, err := runCmd.CombinedOutput()
	require.Error(t, err, "rebuild run against a nonexistent config must fail")
	assert.NotEmpty(t, string(output))
}

func TestGoVet_Passes(t *testing.T) {
	root := projectRoot(t)

	cmd := exec.Command("go", "vet", "./...")
	cmd.Dir = root

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "go vet failed with output: %s", string(output))
}

func TestGoModTidy_NoChanges(t *testing.T) {
	root := projectRoot(t)

	goModBefore, err := os.ReadFile(filepath.Join(root, "go.mod"))
	require.NoError(t, err, "failed to read go.mod before tidy")

	goSumBefore, err := os.ReadFile(filepath.Join(root, "go.sum"))
	require.NoError(t, err, "failed to read go.sum before tidy")

	cmd := exec.Command("go", "mod", "tidy")
	cmd.Dir = root

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "go mod tidy failed: %s", string(output))

	goModAfter, err := os.ReadFile(filepath.Join(root, "go.mod"))
	require.NoError(t, err, "failed to read go.mod after tidy")

	goSumAfter, err := os.ReadFile(filepath.Join(root, "go.sum"))
	require.NoError(t, err, "failed to read go.sum after tidy")

	assert.Equal(t, string(goModBefore), string(goModAfter), "go.mod must already be tidy")
	assert.Equal(t, string(goSumBefore), string(goSumAfter), "go.sum must already be tidy")
}
