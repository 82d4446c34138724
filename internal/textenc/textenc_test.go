package textenc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeShiftJIS(t *testing.T) {
	// "マリオ" in Shift-JIS.
	raw := []byte{0x83, 0x7D, 0x83, 0x8A, 0x83, 0x49}
	got, err := Decode(raw, ShiftJIS)
	require.NoError(t, err)
	assert.Equal(t, "マリオ", got)

	back, err := Encode(got, ShiftJIS)
	require.NoError(t, err)
	assert.Equal(t, raw, back)
}

func TestDecodeASCIIFastPath(t *testing.T) {
	got, err := Decode([]byte("FldObj_Tree"), ShiftJIS)
	require.NoError(t, err)
	assert.Equal(t, "FldObj_Tree", got)
}

func TestDecodeUTF8(t *testing.T) {
	got, err := Decode([]byte("ゼルダ"), UTF8)
	require.NoError(t, err)
	assert.Equal(t, "ゼルダ", got)

	got, err = Decode([]byte{'a', 0xFF, 'b'}, UTF8)
	require.NoError(t, err)
	assert.Equal(t, "a�b", got)
}

func TestEncodeUnmappable(t *testing.T) {
	_, err := Encode("emoji 😀", ShiftJIS)
	require.Error(t, err)
}

func TestEncodingString(t *testing.T) {
	assert.Equal(t, "utf-8", UTF8.String())
	assert.Equal(t, "shift-jis", ShiftJIS.String())
}
