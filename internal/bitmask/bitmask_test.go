package bitmask_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/bitmask"
	"github.com/AbdelazizMoustafa10m/rebuild/internal/rerrors"
)

func TestChooseWidth(t *testing.T) {
	cases := []struct {
		n    int
		want bitmask.Width
	}{
		{0, bitmask.W8},
		{8, bitmask.W8},
		{9, bitmask.W16},
		{16, bitmask.W16},
		{17, bitmask.W32},
		{32, bitmask.W32},
		{33, bitmask.W64},
		{64, bitmask.W64},
		{65, bitmask.W128},
		{128, bitmask.W128},
	}
	for _, c := range cases {
		got, err := bitmask.ChooseWidth(c.n)
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}
}

func TestChooseWidth_TooMany(t *testing.T) {
	_, err := bitmask.ChooseWidth(129)
	require.Error(t, err)
	assert.True(t, rerrors.Is(err, rerrors.KindTooManyBranchpoints))
}

func TestMask_GetSet(t *testing.T) {
	for _, w := range []bitmask.Width{bitmask.W8, bitmask.W16, bitmask.W32, bitmask.W64, bitmask.W128} {
		t.Run(bitsLabel(w), func(t *testing.T) {
			m := bitmask.New(w)
			for i := 0; i < w.Bits(); i++ {
				assert.False(t, m.Get(i), "bit %d should start clear", i)
			}
			m.Set(3, true)
			m.Set(w.Bits()-1, true)
			assert.True(t, m.Get(3))
			assert.True(t, m.Get(w.Bits()-1))
			assert.False(t, m.Get(4))

			m.Set(3, false)
			assert.False(t, m.Get(3))
			assert.True(t, m.Get(w.Bits()-1), "clearing one bit must not disturb others")
		})
	}
}

func TestMask_Union(t *testing.T) {
	a := bitmask.New(bitmask.W64)
	b := bitmask.New(bitmask.W64)
	a.Set(1, true)
	b.Set(2, true)
	a.Union(b)
	assert.True(t, a.Get(1))
	assert.True(t, a.Get(2))
}

func TestMask_AndNotThenOr(t *testing.T) {
	base := bitmask.New(bitmask.W32)
	base.Set(0, true)
	base.Set(1, true)
	base.Set(2, true)

	rm := bitmask.New(bitmask.W32)
	rm.Set(1, true)

	add := bitmask.New(bitmask.W32)
	add.Set(5, true)

	base.AndNotThenOr(rm, add)

	assert.True(t, base.Get(0))
	assert.False(t, base.Get(1), "removed bit must clear")
	assert.True(t, base.Get(2))
	assert.True(t, base.Get(5), "added bit must set")
}

func TestMask128_CrossWordBoundary(t *testing.T) {
	m := bitmask.New(bitmask.W128)
	m.Set(63, true)
	m.Set(64, true)
	assert.True(t, m.Get(63))
	assert.True(t, m.Get(64))
	assert.False(t, m.Get(62))
	assert.False(t, m.Get(65))
}

func TestMask_Clone(t *testing.T) {
	a := bitmask.New(bitmask.W16)
	a.Set(4, true)
	b := a.Clone()
	b.Set(4, false)
	assert.True(t, a.Get(4), "clone must not alias the original")
	assert.False(t, b.Get(4))
}

func bitsLabel(w bitmask.Width) string {
	switch w {
	case bitmask.W8:
		return "w8"
	case bitmask.W16:
		return "w16"
	case bitmask.W32:
		return "w32"
	case bitmask.W64:
		return "w64"
	default:
		return "w128"
	}
}
