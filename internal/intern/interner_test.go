package intern_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/intern"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rerrors"
)

type testKey uint32

func TestInterner_RoundTrip(t *testing.T) {
	in := intern.New[testKey](16, 8, 8)

	inputs := []string{"alpha", "beta", "gamma", "alpha", "delta", "beta"}
	handles := make([]testKey, len(inputs))
	for i, s := range inputs {
		k, err := in.Intern(s)
		require.NoError(t, err)
		handles[i] = k
	}

	// Dedup idempotence: interning the same string twice returns the same handle.
	assert.Equal(t, handles[0], handles[3], "alpha should dedup")
	assert.Equal(t, handles[1], handles[5], "beta should dedup")
	assert.Equal(t, 4, in.Len(), "4 distinct strings")

	for i, s := range inputs {
		got, err := in.Get(handles[i])
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestInterner_IdenticalInsertsReturnSameHandle(t *testing.T) {
	in := intern.New[testKey](16, 4, 4)
	a, err := in.Intern("same")
	require.NoError(t, err)
	b, err := in.Intern("same")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestInterner_OutOfKeySpace(t *testing.T) {
	in := intern.New[testKey](1, 2, 4) // only 2 slots representable
	_, err := in.Intern("a")
	require.NoError(t, err)
	_, err = in.Intern("b")
	require.NoError(t, err)
	_, err = in.Intern("c")
	require.Error(t, err)
	assert.True(t, rerrors.Is(err, rerrors.KindOutOfKeySpace))
}

func TestInterner_GetOutOfRange(t *testing.T) {
	in := intern.New[testKey](16, 4, 4)
	_, err := in.Get(testKey(99))
	require.Error(t, err)
	assert.True(t, rerrors.Is(err, rerrors.KindKeyNotFound))
}

func TestInterner_Freeze(t *testing.T) {
	in := intern.New[testKey](16, 4, 4)
	a, err := in.Intern("frozen-value")
	require.NoError(t, err)

	frozen := in.Freeze()
	got, err := frozen.Get(a)
	require.NoError(t, err)
	assert.Equal(t, "frozen-value", got)
	assert.Equal(t, 1, frozen.Len())
}

func TestLoose_NeverDedups(t *testing.T) {
	l := intern.NewLoose[testKey](16, 4, 4)
	a, err := l.Intern("repeat")
	require.NoError(t, err)
	b, err := l.Intern("repeat")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "loose interner must not dedup")
	assert.Equal(t, 2, l.Len())

	got, err := l.Get(a)
	require.NoError(t, err)
	assert.Equal(t, "repeat", got)
}

func TestLoose_OutOfKeySpace(t *testing.T) {
	l := intern.NewLoose[testKey](1, 2, 4)
	_, err := l.Intern("a")
	require.NoError(t, err)
	_, err = l.Intern("b")
	require.NoError(t, err)
	_, err = l.Intern("c")
	require.Error(t, err)
	assert.True(t, rerrors.Is(err, rerrors.KindOutOfKeySpace))
}
