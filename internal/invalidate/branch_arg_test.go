package invalidate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/invalidate"
)

func TestParseBranchArgEmpty(t *testing.T) {
	arg, err := invalidate.ParseBranchArg(false, nil)
	require.NoError(t, err)
	assert.Equal(t, invalidate.BranchArgEmpty, arg.Kind)
}

func TestParseBranchArgBaselineFlag(t *testing.T) {
	arg, err := invalidate.ParseBranchArg(true, nil)
	require.NoError(t, err)
	assert.Equal(t, invalidate.BranchArgBaseline, arg.Kind)
}

func TestParseBranchArgBaselineShorthand(t *testing.T) {
	arg, err := invalidate.ParseBranchArg(false, []string{"Baseline.baseline"})
	require.NoError(t, err)
	assert.Equal(t, invalidate.BranchArgBaseline, arg.Kind)
}

func TestParseBranchArgSpecifiedSingle(t *testing.T) {
	arg, err := invalidate.ParseBranchArg(false, []string{"Framework.vst"})
	require.NoError(t, err)
	assert.Equal(t, invalidate.BranchArgSpecified, arg.Kind)
	assert.Equal(t, []invalidate.BranchPair{{Key: "Framework", Value: "vst"}}, arg.Pairs)
}

func TestParseBranchArgSpecifiedCompound(t *testing.T) {
	arg, err := invalidate.ParseBranchArg(false, []string{"Profile.debug+Arch.x64"})
	require.NoError(t, err)
	assert.Equal(t, invalidate.BranchArgSpecified, arg.Kind)
	assert.Equal(t, []invalidate.BranchPair{
		{Key: "Profile", Value: "debug"},
		{Key: "Arch", Value: "x64"},
	}, arg.Pairs)
}

func TestParseBranchArgSpecifiedMultipleFlags(t *testing.T) {
	arg, err := invalidate.ParseBranchArg(false, []string{"Profile.debug", "Arch.x64"})
	require.NoError(t, err)
	assert.Equal(t, invalidate.BranchArgSpecified, arg.Kind)
	assert.Equal(t, []invalidate.BranchPair{
		{Key: "Profile", Value: "debug"},
		{Key: "Arch", Value: "x64"},
	}, arg.Pairs)
}

func TestParseBranchArgInvalid(t *testing.T) {
	_, err := invalidate.ParseBranchArg(false, []string{"NoDelimiter"})
	assert.Error(t, err)
}
