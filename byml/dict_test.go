package byml

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/bymlkit/internal/buf"
	"github.com/joshuapare/bymlkit/internal/format"
	"github.com/joshuapare/bymlkit/pkg/types"
)

var sortedKeys = []string{"A", "Actor", "Z", "a", "ab", "b", "name", "\xc3\xa9"}

func manyKeysDoc(t *testing.T, order buf.Order) *Document {
	t.Helper()
	a := newAsm(order)
	keys := a.stringTable(sortedKeys...)
	entries := make([]format.DictEntry, len(sortedKeys))
	for i := range sortedKeys {
		entries[i] = format.DictEntry{KeyIndex: uint32(i), Type: types.TypeI32, Value: uint32(i * 10)}
	}
	root := a.dict(entries...)
	doc, err := Open(a.header(2, keys, 0, root), order.Endian())
	require.NoError(t, err)
	return doc
}

func TestDict_BinarySearch(t *testing.T) {
	for _, order := range []buf.Order{buf.LE, buf.BE} {
		t.Run(order.Endian().String(), func(t *testing.T) {
			d, err := manyKeysDoc(t, order).Dict()
			require.NoError(t, err)
			require.Equal(t, len(sortedKeys), d.Len())

			for i, k := range sortedKeys {
				v, ok, err := d.GetI32(k)
				require.NoError(t, err)
				require.True(t, ok, "key %q", k)
				assert.Equal(t, int32(i*10), v)
			}
			for _, k := range []string{"", "0", "Act", "Actors", "aa", "c", "zzz", "\xff"} {
				_, ok, err := d.Get(k)
				require.NoError(t, err)
				assert.False(t, ok, "key %q", k)
			}
			has, err := d.Has("ab")
			require.NoError(t, err)
			assert.True(t, has)
		})
	}
}

func TestDict_EmptyLookup(t *testing.T) {
	a := newAsm(buf.LE)
	keys := a.stringTable()
	root := a.dict()
	doc, err := Open(a.header(2, keys, 0, root), types.LittleEndian)
	require.NoError(t, err)

	d, err := doc.Dict()
	require.NoError(t, err)
	assert.Equal(t, 0, d.Len())
	for _, k := range []string{"", "k", "anything"} {
		_, ok, err := d.Get(k)
		require.NoError(t, err)
		assert.False(t, ok)
	}
	keysOut, err := d.Keys()
	require.NoError(t, err)
	assert.Empty(t, keysOut)

	_, err = d.Iter().Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDict_IteratorAndKeys(t *testing.T) {
	d, err := manyKeysDoc(t, buf.LE).Dict()
	require.NoError(t, err)

	keys, err := d.Keys()
	require.NoError(t, err)
	assert.Equal(t, sortedKeys, keys)

	it := d.Iter()
	n := 0
	for {
		e, err := it.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, sortedKeys[n], string(e.Key))
		v, err := e.Value.AsI32()
		require.NoError(t, err)
		assert.Equal(t, int32(n*10), v)
		n++
	}
	assert.Equal(t, len(sortedKeys), n)

	_, err = d.EntryAt(len(sortedKeys))
	require.ErrorIs(t, err, types.ErrOutOfBounds)
}

func TestDict_TypeMismatch(t *testing.T) {
	d, err := manyKeysDoc(t, buf.LE).Dict()
	require.NoError(t, err)
	_, _, err = d.GetString("name")
	require.ErrorIs(t, err, types.ErrTypeMismatch)
	assert.Contains(t, err.Error(), `"name"`)

	typ, ok, err := d.Type("nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, typ)
}

func TestDict_BadKeyIndex(t *testing.T) {
	a := newAsm(buf.LE)
	keys := a.stringTable("k")
	root := a.dict(format.DictEntry{KeyIndex: 5, Type: types.TypeNull})
	doc, err := Open(a.header(2, keys, 0, root), types.LittleEndian)
	require.NoError(t, err)
	d, _ := doc.Dict()
	_, _, err = d.Get("k")
	require.ErrorIs(t, err, types.ErrStringIndex)
	assert.Contains(t, err.Error(), "hash key")
}

func TestVerify(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, Verify(manyKeysDoc(t, buf.BE)))
		require.NoError(t, Verify(scalarDoc(t, buf.LE)))
	})
	t.Run("unsorted dictionary", func(t *testing.T) {
		a := newAsm(buf.LE)
		keys := a.stringTable("a", "b")
		root := a.dict(
			format.DictEntry{KeyIndex: 1, Type: types.TypeNull},
			format.DictEntry{KeyIndex: 0, Type: types.TypeNull},
		)
		doc, err := Open(a.header(2, keys, 0, root), types.LittleEndian)
		require.NoError(t, err, "open trusts sortedness")
		require.ErrorIs(t, Verify(doc), types.ErrUnsorted)
	})
	t.Run("unsorted string table", func(t *testing.T) {
		a := newAsm(buf.LE)
		strs := a.stringTable("b", "a")
		root := a.array(nil, nil)
		doc, err := Open(a.header(2, 0, strs, root), types.LittleEndian)
		require.NoError(t, err)
		require.ErrorIs(t, Verify(doc), types.ErrUnsorted)
	})
	t.Run("duplicate key", func(t *testing.T) {
		a := newAsm(buf.LE)
		keys := a.stringTable("a", "a")
		root := a.dict()
		doc, err := Open(a.header(2, keys, 0, root), types.LittleEndian)
		require.NoError(t, err)
		require.ErrorIs(t, Verify(doc), types.ErrUnsorted)
	})
	t.Run("broken reference", func(t *testing.T) {
		a := newAsm(buf.LE)
		root := a.array([]types.DataType{types.TypeArray}, []uint32{0x400})
		doc, err := Open(a.header(2, 0, 0, root), types.LittleEndian)
		require.NoError(t, err)
		err = Verify(doc)
		require.ErrorIs(t, err, types.ErrOutOfBounds)
		assert.Contains(t, err.Error(), "$")
	})
	t.Run("self reference", func(t *testing.T) {
		a := newAsm(buf.LE)
		root := a.pos()
		a.array([]types.DataType{types.TypeArray}, []uint32{root})
		doc, err := Open(a.header(2, 0, 0, root), types.LittleEndian)
		require.NoError(t, err)
		err = Verify(doc)
		require.ErrorIs(t, err, types.ErrCorrupt)
		kind, _ := types.KindOf(err)
		assert.Equal(t, types.ErrKindCorrupt, kind)

		r, _ := doc.Root()
		_, err = r.Decode()
		require.ErrorIs(t, err, types.ErrCorrupt)
	})
	t.Run("shared subtree", func(t *testing.T) {
		a := newAsm(buf.LE)
		leaf := a.array([]types.DataType{types.TypeI32}, []uint32{7})
		root := a.array([]types.DataType{types.TypeArray, types.TypeArray}, []uint32{leaf, leaf})
		doc, err := Open(a.header(2, 0, 0, root), types.LittleEndian)
		require.NoError(t, err)
		require.NoError(t, Verify(doc))
	})
}

func FuzzOpen(f *testing.F) {
	f.Add(dictU32LE)
	f.Add(dictU32BE)
	f.Add([]byte("YB\x02\x00"))
	f.Fuzz(func(t *testing.T, data []byte) {
		doc, err := OpenAuto(data)
		if err != nil {
			return
		}
		_ = Verify(doc)
		if root, ok := doc.Root(); ok {
			_, _ = root.Decode()
		}
	})
}
