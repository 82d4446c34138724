package buf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/bymlkit/pkg/types"
)

func TestAddOverflowSafe(t *testing.T) {
	sum, ok := AddOverflowSafe(10, 5)
	require.True(t, ok)
	assert.Equal(t, 15, sum)

	_, ok = AddOverflowSafe(math.MaxInt, 1)
	assert.False(t, ok, "expected overflow when adding to MaxInt")
	_, ok = AddOverflowSafe(math.MinInt, -1)
	assert.False(t, ok, "expected underflow when subtracting from MinInt")
}

func TestMulOverflowSafe(t *testing.T) {
	p, ok := MulOverflowSafe(1<<20, 8)
	require.True(t, ok)
	assert.Equal(t, 8<<20, p)

	_, ok = MulOverflowSafe(math.MaxInt/2+1, 2)
	assert.False(t, ok)
	_, ok = MulOverflowSafe(-1, 4)
	assert.False(t, ok)
	p, ok = MulOverflowSafe(0, math.MaxInt)
	require.True(t, ok)
	assert.Zero(t, p)
}

func TestCheckListBounds(t *testing.T) {
	end, err := CheckListBounds(32, 4, 3, 8, "entries")
	require.NoError(t, err)
	assert.Equal(t, 28, end)

	end, err = CheckListBounds(32, 32, 0, 8, "entries")
	require.NoError(t, err, "an empty list at the end of the buffer fits")
	assert.Equal(t, 32, end)

	_, err = CheckListBounds(32, 28, 1, 8, "entries")
	require.ErrorIs(t, err, types.ErrOutOfBounds)
	assert.Contains(t, err.Error(), "entries")

	_, err = CheckListBounds(32, 0, math.MaxInt, 8, "entries")
	require.ErrorIs(t, err, types.ErrOverflow)

	_, err = CheckListBounds(32, math.MaxInt-2, 1, 4, "entries")
	require.ErrorIs(t, err, types.ErrOverflow)

	_, err = CheckListBounds(32, -4, 1, 4, "entries")
	require.ErrorIs(t, err, types.ErrOutOfBounds)
}

func TestSliceAndHas(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}
	got, ok := Slice(data, 1, 3)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, got)

	_, ok = Slice(data, 4, 2)
	assert.False(t, ok, "Slice should fail when extending beyond len")
	assert.False(t, Has(data, 2, 4))
	assert.True(t, Has(data, 2, 1))
	assert.True(t, Has(data, 5, 0))

	_, ok = Slice(data, -1, 1)
	assert.False(t, ok, "Slice should reject negative offset")
	_, ok = Slice(data, 1, -1)
	assert.False(t, ok, "Slice should reject negative length")
}

func TestU32Arithmetic(t *testing.T) {
	s, ok := AddU32(math.MaxUint32-1, 1)
	require.True(t, ok)
	assert.Equal(t, uint32(math.MaxUint32), s)
	_, ok = AddU32(math.MaxUint32, 1)
	assert.False(t, ok)

	_, ok = MulU32(1<<16, 1<<16)
	assert.False(t, ok)
	p, ok := MulU32(1<<16, 1<<15)
	require.True(t, ok)
	assert.Equal(t, uint32(1<<31), p)

	a, ok := AlignU32(13, 4)
	require.True(t, ok)
	assert.Equal(t, uint32(16), a)
	a, ok = AlignU32(16, 4)
	require.True(t, ok)
	assert.Equal(t, uint32(16), a)
	_, ok = AlignU32(math.MaxUint32-1, 4)
	assert.False(t, ok)
}
