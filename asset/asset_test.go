package asset

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/bymlkit/byml/builder"
	"github.com/joshuapare/bymlkit/internal/testutil"
	"github.com/joshuapare/bymlkit/pkg/types"
)

func zstdFrame(t *testing.T, data []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll(data, nil)
}

func sampleDoc(t *testing.T) []byte {
	t.Helper()
	d := builder.NewDict().
		SetString("Name", "Kokiri").
		SetI32("Count", 3)
	b, err := builder.Marshal(builder.DictNode(d), builder.DefaultOptions())
	require.NoError(t, err)
	return b
}

func openStore(t *testing.T, opts Options) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(dir, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, dir
}

func TestDetectCompression(t *testing.T) {
	assert.Equal(t, Yaz0, DetectCompression(testutil.Yaz0Stored([]byte("x"))))
	assert.Equal(t, Zstd, DetectCompression(zstdFrame(t, []byte("x"))))
	assert.Equal(t, None, DetectCompression([]byte("YB\x02\x00")))
	assert.Equal(t, None, DetectCompression(nil))
	assert.Equal(t, "yaz0", Yaz0.String())
	assert.Equal(t, "zstd", Zstd.String())
	assert.Equal(t, "none", None.String())
}

func TestDecode(t *testing.T) {
	want := []byte("ActorParam/Enemy_Bokoblin")

	got, err := Decode(testutil.Yaz0Stored(want), nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = Decode(zstdFrame(t, want), nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = Decode(want, nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodeCorruptZstd(t *testing.T) {
	frame := zstdFrame(t, bytes.Repeat([]byte("abc"), 100))
	_, err := Decode(frame[:len(frame)/2], nil)
	require.ErrorIs(t, err, types.ErrCorrupt)
}

func TestOpenRejectsFile(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "file.bin", []byte{1})
	_, err := Open(path, DefaultOptions())
	require.ErrorIs(t, err, types.ErrNotFound)

	_, err = Open(filepath.Join(t.TempDir(), "missing"), DefaultOptions())
	kind, ok := types.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrKindIO, kind)
}

func TestStoreDocumentAllCompressions(t *testing.T) {
	s, dir := openStore(t, DefaultOptions())
	doc := sampleDoc(t)
	testutil.WriteFile(t, dir, "Raw/Actor.byml", doc)
	testutil.WriteFile(t, dir, "Yaz/Actor.byml.szs", testutil.Yaz0Stored(doc))
	testutil.WriteFile(t, dir, "Zs/Actor.byml.zs", zstdFrame(t, doc))

	for _, rel := range []string{"Raw/Actor.byml", "Yaz/Actor.byml.szs", "Zs/Actor.byml.zs"} {
		t.Run(rel, func(t *testing.T) {
			d, err := s.Document(rel)
			require.NoError(t, err)
			root, err := d.Dict()
			require.NoError(t, err)
			name, ok, err := root.GetString("Name")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "Kokiri", name)
		})
	}
}

func TestStoreLoadCaches(t *testing.T) {
	s, dir := openStore(t, DefaultOptions())
	path := testutil.WriteFile(t, dir, "a.bin", []byte("first"))

	got, err := s.Load("a.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), got)

	require.NoError(t, os.Remove(path))
	got, err = s.Load("./a.bin")
	require.NoError(t, err, "served from cache")
	assert.Equal(t, []byte("first"), got)

	s.Purge()
	_, err = s.Load("a.bin")
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestStoreCacheEviction(t *testing.T) {
	s, dir := openStore(t, Options{CacheEntries: 1})
	pa := testutil.WriteFile(t, dir, "a.bin", []byte("a"))
	testutil.WriteFile(t, dir, "b.bin", []byte("b"))

	_, err := s.Load("a.bin")
	require.NoError(t, err)
	_, err = s.Load("b.bin")
	require.NoError(t, err)

	require.NoError(t, os.Remove(pa))
	_, err = s.Load("a.bin")
	require.ErrorIs(t, err, types.ErrNotFound, "a was evicted")
}

func TestStoreConcurrentLoad(t *testing.T) {
	s, dir := openStore(t, Options{CacheEntries: 2})
	doc := sampleDoc(t)
	for i, name := range []string{"a.byml.zs", "b.byml.szs", "c.byml"} {
		data := doc
		switch i {
		case 0:
			data = zstdFrame(t, doc)
		case 1:
			data = testutil.Yaz0Stored(doc)
		}
		testutil.WriteFile(t, dir, name, data)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 30)
	for i := range 30 {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			got, err := s.Load(name)
			if err == nil && !bytes.Equal(got, doc) {
				err = assert.AnError
			}
			errs <- err
		}([]string{"a.byml.zs", "b.byml.szs", "c.byml"}[i%3])
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}

func TestStoreRejectsEscapingPaths(t *testing.T) {
	s, _ := openStore(t, DefaultOptions())
	for _, rel := range []string{"../secret", "", ".", "a/../../b"} {
		_, err := s.Load(rel)
		require.ErrorIs(t, err, types.ErrNotFound, rel)
	}
}

func TestStoreMember(t *testing.T) {
	s, dir := openStore(t, DefaultOptions())
	doc := sampleDoc(t)
	pack := testutil.SARC(t, types.LittleEndian,
		testutil.File{Name: "Actor/Link.bgyml", Data: doc},
		testutil.File{Name: "Actor/Zelda.bgyml.zs", Data: zstdFrame(t, doc)},
		testutil.File{Name: "readme.txt", Data: []byte("hi")},
	)
	testutil.WriteFile(t, dir, "Pack/Actor.pack.szs", testutil.Yaz0Stored(pack))

	got, err := s.Member("Pack/Actor.pack.szs", "readme.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), got)

	for _, name := range []string{"Actor/Link.bgyml", "Actor/Zelda.bgyml.zs"} {
		d, err := s.MemberDocument("Pack/Actor.pack.szs", name)
		require.NoError(t, err, name)
		root, err := d.Dict()
		require.NoError(t, err)
		n, ok, err := root.GetI32("Count")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, int32(3), n)
	}

	_, err = s.Member("Pack/Actor.pack.szs", "nope")
	require.ErrorIs(t, err, types.ErrNotFound)

	arc, err := s.Archive("Pack/Actor.pack.szs")
	require.NoError(t, err)
	assert.Equal(t, 3, arc.Len())
}

func TestStoreMaxDecodedSize(t *testing.T) {
	s, dir := openStore(t, Options{MaxDecodedSize: 4})
	testutil.WriteFile(t, dir, "big.szs", testutil.Yaz0Stored([]byte("too large")))
	_, err := s.Load("big.szs")
	require.ErrorIs(t, err, types.ErrOverflow)
}

func TestLoadDictionaries(t *testing.T) {
	var logs strings.Builder
	s, dir := openStore(t, Options{Logger: slog.New(slog.NewTextHandler(&logs, nil))})

	empty := testutil.SARC(t, types.LittleEndian, testutil.File{Name: "other.bin", Data: []byte{0}})
	testutil.WriteFile(t, dir, "Pack/Empty.pack", empty)
	n, err := s.LoadDictionaries("Pack/Empty.pack")
	require.NoError(t, err)
	assert.Zero(t, n)

	bad := testutil.SARC(t, types.LittleEndian, testutil.File{Name: "zs.zsdic", Data: []byte("not a dictionary")})
	testutil.WriteFile(t, dir, "Pack/ZsDic.pack.zs", zstdFrame(t, bad))
	_, err = s.LoadDictionaries("Pack/ZsDic.pack.zs")
	require.ErrorIs(t, err, types.ErrCorrupt)

	// The previous decoder stays usable after a failed load.
	testutil.WriteFile(t, dir, "x.zs", zstdFrame(t, []byte("still works")))
	got, err := s.Load("x.zs")
	require.NoError(t, err)
	assert.Equal(t, []byte("still works"), got)
}

func TestStoreClosed(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "x.zs", zstdFrame(t, []byte("z")))
	s, err := Open(dir, DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.Load("x.zs")
	require.Error(t, err)
}
