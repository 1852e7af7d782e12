package branch_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/bitmask"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/branch"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/ident"
)

// fakeTables is a minimal Namer+Interner backed by plain maps, standing in
// for the workflow's real string tables.
type fakeTables struct {
	bpNames  map[ident.BranchpointId]string
	bpByName map[string]ident.BranchpointId
	idNames  map[ident.IdentId]string
	idByName map[string]ident.IdentId
}

func newFakeTables() *fakeTables {
	return &fakeTables{
		bpNames:  map[ident.BranchpointId]string{},
		bpByName: map[string]ident.BranchpointId{},
		idNames:  map[ident.IdentId]string{},
		idByName: map[string]ident.IdentId{},
	}
}

func (f *fakeTables) BranchpointName(id ident.BranchpointId) (string, error) {
	return f.bpNames[id], nil
}
func (f *fakeTables) IdentName(id ident.IdentId) (string, error) {
	return f.idNames[id], nil
}
func (f *fakeTables) InternBranchpoint(name string) (ident.BranchpointId, error) {
	if k, ok := f.bpByName[name]; ok {
		return k, nil
	}
	k := ident.BranchpointId(len(f.bpByName) + 1)
	f.bpByName[name] = k
	f.bpNames[k] = name
	return k, nil
}
func (f *fakeTables) InternIdent(name string) (ident.IdentId, error) {
	if v, ok := f.idByName[name]; ok {
		return v, nil
	}
	v := ident.IdentId(len(f.idByName) + 1)
	f.idByName[name] = v
	f.idNames[v] = name
	return v, nil
}

func TestBranchSpec_SpecifiedUnspecified(t *testing.T) {
	b := branch.NewBranchSpec()
	assert.True(t, b.IsUnspecified(0))
	b.Insert(0, 5)
	assert.True(t, b.IsSpecified(0))
	v, ok := b.GetSpecified(0)
	require.True(t, ok)
	assert.Equal(t, ident.IdentId(5), v)

	b.Unset(0)
	assert.True(t, b.IsUnspecified(0))
}

func TestBranchSpec_Compatibility(t *testing.T) {
	a := branch.Simple(0, 1)
	b := branch.Simple(0, 1)
	assert.True(t, a.IsCompatible(b))
	assert.True(t, a.IsExactMatch(b))

	c := branch.Simple(0, 2)
	assert.False(t, a.IsCompatible(c))

	unspecified := branch.NewBranchSpec()
	assert.True(t, a.IsCompatible(unspecified), "unspecified branchpoints never block compatibility")
	assert.False(t, a.IsExactMatch(unspecified), "exact match requires the other side to also specify it")
}

func TestBranchSpec_InsertAll(t *testing.T) {
	a := branch.Simple(0, 1)
	b := branch.Simple(1, 2)
	a.InsertAll(b)
	v0, _ := a.GetSpecified(0)
	v1, _ := a.GetSpecified(1)
	assert.Equal(t, ident.IdentId(1), v0)
	assert.Equal(t, ident.IdentId(2), v1)
}

func TestBranchSpec_AsMask(t *testing.T) {
	b := branch.Simple(0, 1)
	b.Insert(2, 3)
	m, err := b.AsMask(bitmask.W8)
	require.NoError(t, err)
	assert.True(t, m.Get(0))
	assert.False(t, m.Get(1))
	assert.True(t, m.Get(2))
}

func TestBranchSpec_AsMask_OutOfBounds(t *testing.T) {
	b := branch.NewBranchSpec()
	b.Insert(10, 1)
	_, err := b.AsMask(bitmask.W8)
	require.Error(t, err)
}

func TestBranchStrings_FullAndCompactRoundTrip(t *testing.T) {
	tbl := newFakeTables()
	profile, _ := tbl.InternBranchpoint("Profile")
	_ = profile
	debugVal, _ := tbl.InternIdent("debug")
	releaseVal, _ := tbl.InternIdent("release")

	baselines := branch.NewBaselineBranches(1)
	baselines.Add(profile, debugVal) // debug is baseline for Profile

	// A branch pinned to its own baseline value compacts to "Baseline.baseline".
	atBaseline := branch.Simple(profile, debugVal)
	compact, err := branch.MakeCompactString(atBaseline, baselines, tbl)
	require.NoError(t, err)
	assert.Equal(t, "Baseline.baseline", compact)

	full, err := branch.MakeFullString(atBaseline, baselines, tbl)
	require.NoError(t, err)
	assert.Equal(t, "Profile.debug", full)

	// A branch pinned away from baseline compacts to just that pin.
	pinned := branch.Simple(profile, releaseVal)
	compact2, err := branch.MakeCompactString(pinned, baselines, tbl)
	require.NoError(t, err)
	assert.Equal(t, "Profile.release", compact2)

	// Round trip through the parser recovers the same pin.
	parsed, err := branch.ParseCompactBranchString(compact2, tbl, baselines)
	require.NoError(t, err)
	assert.True(t, pinned.IsExactMatch(parsed))

	// An empty/baseline string round-trips to the recorded baseline.
	parsedBaseline, err := branch.ParseCompactBranchString("Baseline.baseline", tbl, baselines)
	require.NoError(t, err)
	v, ok := parsedBaseline.GetSpecified(profile)
	require.True(t, ok)
	assert.Equal(t, debugVal, v)
}

func TestBranchStrings_NeedsBaselinePrefix(t *testing.T) {
	tbl := newFakeTables()
	profile, _ := tbl.InternBranchpoint("Profile")
	target, _ := tbl.InternBranchpoint("Target")
	debugVal, _ := tbl.InternIdent("debug")
	wasmVal, _ := tbl.InternIdent("wasm")

	baselines := branch.NewBaselineBranches(2)
	baselines.Add(profile, debugVal)
	baselines.Add(target, wasmVal)

	b := branch.NewBranchSpec()
	b.Insert(profile, debugVal) // matches baseline
	nativeVal, _ := tbl.InternIdent("native")
	b.Insert(target, nativeVal) // pinned away from baseline

	compact, err := branch.MakeCompactString(b, baselines, tbl)
	require.NoError(t, err)
	assert.Equal(t, "Baseline.baseline+Target.native", compact)

	parsed, err := branch.ParseCompactBranchString(compact, tbl, baselines)
	require.NoError(t, err)
	assert.True(t, b.IsExactMatch(parsed))
}

func TestBranchpointsFile_RoundTrip(t *testing.T) {
	tbl := newFakeTables()
	profile, _ := tbl.InternBranchpoint("Profile")
	target, _ := tbl.InternBranchpoint("Target")
	debugVal, _ := tbl.InternIdent("debug")
	wasmVal, _ := tbl.InternIdent("wasm")

	baselines := branch.NewBaselineBranches(2)
	baselines.Add(profile, debugVal)
	baselines.Add(target, wasmVal)

	var buf strings.Builder
	require.NoError(t, branch.WriteBranchpointsFile(&buf, tbl, baselines))

	tbl2 := newFakeTables()
	loaded := branch.NewBaselineBranches(0)
	require.NoError(t, branch.LoadBranchpointsFile(strings.NewReader(buf.String()), tbl2, loaded))

	p2, err := tbl2.InternBranchpoint("Profile")
	require.NoError(t, err)
	assert.Equal(t, "debug", tbl2.idNames[loaded.Get(p2)])
}

func TestBranchpointsFile_Malformed(t *testing.T) {
	tbl := newFakeTables()
	loaded := branch.NewBaselineBranches(0)
	err := branch.LoadBranchpointsFile(strings.NewReader("not-a-valid-pair"), tbl, loaded)
	require.Error(t, err)
}
