package asset

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/joshuapare/bymlkit/byml"
	"github.com/joshuapare/bymlkit/internal/mmfile"
	"github.com/joshuapare/bymlkit/pkg/types"
	"github.com/joshuapare/bymlkit/sarc"
)

// DictionaryExt is the suffix of Zstandard dictionaries inside a dictionary pack.
const DictionaryExt = ".zsdic"

// Options configures a Store.
type Options struct {
	// CacheEntries bounds the number of decoded buffers kept in memory.
	CacheEntries int
	// MaxDecodedSize rejects compressed inputs declaring a larger output.
	// 0 means no limit.
	MaxDecodedSize uint32
	// Logger receives debug events. nil discards.
	Logger *slog.Logger
}

// DefaultOptions returns the options used by Open when none are customized.
func DefaultOptions() Options {
	return Options{CacheEntries: 64}
}

// Store reads assets relative to a root directory.
type Store struct {
	root  string
	opts  Options
	log   *slog.Logger
	cache *lru.Cache[string, []byte]

	mu  sync.RWMutex
	dec *zstd.Decoder
}

// Open returns a store rooted at dir.
func Open(dir string, opts Options) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, types.IOError("open asset root", err)
	}
	if !info.IsDir() {
		return nil, types.Wrap(types.ErrNotFound, "asset root %s is not a directory", dir)
	}
	if opts.CacheEntries <= 0 {
		opts.CacheEntries = DefaultOptions().CacheEntries
	}
	cache, err := lru.New[string, []byte](opts.CacheEntries)
	if err != nil {
		return nil, fmt.Errorf("asset: cache: %w", err)
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	dec, err := newDecoder(opts.MaxDecodedSize)
	if err != nil {
		return nil, err
	}
	return &Store{root: dir, opts: opts, log: log, cache: cache, dec: dec}, nil
}

// Root returns the directory the store reads from.
func (s *Store) Root() string { return s.root }

// Load returns the decoded contents of the file at rel, a slash-separated
// path below the root.
func (s *Store) Load(rel string) ([]byte, error) {
	key, err := clean(rel)
	if err != nil {
		return nil, err
	}
	if b, ok := s.cache.Get(key); ok {
		s.log.Debug("asset cache hit", "path", key)
		return b, nil
	}

	data, release, err := mmfile.Map(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, types.Wrap(types.ErrNotFound, "asset %s", key)
		}
		return nil, types.IOError("read "+key, err)
	}
	defer func() {
		if err := release(); err != nil {
			s.log.Warn("asset unmap failed", "path", key, "error", err)
		}
	}()

	out, err := s.decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	if DetectCompression(data) == None {
		// The mapping goes away on return.
		out = append([]byte(nil), data...)
	}
	s.log.Debug("asset loaded", "path", key, "compression", DetectCompression(data).String(),
		"stored", len(data), "decoded", len(out))
	s.cache.Add(key, out)
	return out, nil
}

// Member returns the decoded contents of name inside the archive at
// archiveRel. Both the archive and the member may be compressed.
func (s *Store) Member(archiveRel, name string) ([]byte, error) {
	key, err := clean(archiveRel)
	if err != nil {
		return nil, err
	}
	memberKey := key + "//" + name
	if b, ok := s.cache.Get(memberKey); ok {
		return b, nil
	}
	data, err := s.Load(key)
	if err != nil {
		return nil, err
	}
	arc, err := sarc.Open(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	raw, ok := arc.Get(name)
	if !ok {
		return nil, types.Wrap(types.ErrNotFound, "%s has no member %s", key, name)
	}
	out, err := s.decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", memberKey, err)
	}
	s.cache.Add(memberKey, out)
	return out, nil
}

// Archive opens the archive at rel.
func (s *Store) Archive(rel string) (*sarc.Archive, error) {
	data, err := s.Load(rel)
	if err != nil {
		return nil, err
	}
	return sarc.Open(data)
}

// Document opens the BYML document at rel, detecting its byte order.
func (s *Store) Document(rel string) (*byml.Document, error) {
	data, err := s.Load(rel)
	if err != nil {
		return nil, err
	}
	return byml.OpenAuto(data)
}

// MemberDocument opens the BYML document stored as name inside an archive.
func (s *Store) MemberDocument(archiveRel, name string) (*byml.Document, error) {
	data, err := s.Member(archiveRel, name)
	if err != nil {
		return nil, err
	}
	return byml.OpenAuto(data)
}

// LoadDictionaries installs the Zstandard dictionaries found in the archive
// at packRel (every member ending in .zsdic) and returns how many were
// loaded. Buffers cached before the call stay cached.
func (s *Store) LoadDictionaries(packRel string) (int, error) {
	arc, err := s.Archive(packRel)
	if err != nil {
		return 0, err
	}
	var dicts [][]byte
	for _, f := range arc.Files() {
		if strings.HasSuffix(f.Name, DictionaryExt) {
			dicts = append(dicts, f.Data)
		}
	}
	if len(dicts) == 0 {
		return 0, nil
	}
	dec, err := newDecoder(s.opts.MaxDecodedSize, dicts...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", packRel, err)
	}

	s.mu.Lock()
	old := s.dec
	s.dec = dec
	s.mu.Unlock()
	if old != nil {
		old.Close()
	}

	s.log.Info("zstd dictionaries loaded", "pack", packRel, "count", len(dicts))
	return len(dicts), nil
}

// Purge drops every cached buffer.
func (s *Store) Purge() { s.cache.Purge() }

// Close releases the decoder and the cache.
func (s *Store) Close() error {
	s.cache.Purge()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dec != nil {
		s.dec.Close()
		s.dec = nil
	}
	return nil
}

func (s *Store) decode(b []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dec == nil {
		return nil, types.IOError("decode", fs.ErrClosed)
	}
	return decode(b, s.dec, s.opts.MaxDecodedSize)
}

// clean normalizes rel and rejects paths leaving the root.
func clean(rel string) (string, error) {
	p := path.Clean(strings.ReplaceAll(rel, "\\", "/"))
	p = strings.TrimPrefix(p, "/")
	if !fs.ValidPath(p) || p == "." {
		return "", types.Wrap(types.ErrNotFound, "invalid asset path %q", rel)
	}
	return p, nil
}
