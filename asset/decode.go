// Package asset loads game asset files from a directory tree, undoing the
// compression layers they ship with (Yaz0, Zstandard) and reaching into SARC
// archives. Decoded buffers are cached.
package asset

import (
	"bytes"

	"github.com/klauspost/compress/zstd"

	"github.com/joshuapare/bymlkit/internal/format"
	"github.com/joshuapare/bymlkit/pkg/types"
	"github.com/joshuapare/bymlkit/yaz0"
)

// Compression identifies the outer compression of an asset.
type Compression int

const (
	None Compression = iota
	Yaz0
	Zstd
)

func (c Compression) String() string {
	switch c {
	case Yaz0:
		return "yaz0"
	case Zstd:
		return "zstd"
	default:
		return "none"
	}
}

// DetectCompression sniffs the magic at the start of b.
func DetectCompression(b []byte) Compression {
	switch {
	case bytes.HasPrefix(b, format.Yaz0Magic):
		return Yaz0
	case bytes.HasPrefix(b, format.ZstdMagic):
		return Zstd
	default:
		return None
	}
}

// Decode strips the compression layer from b. Zstandard frames use dec, which
// carries any dictionaries; a nil dec decodes without dictionaries.
// Uncompressed input is returned as is.
func Decode(b []byte, dec *zstd.Decoder) ([]byte, error) {
	return decode(b, dec, 0)
}

func decode(b []byte, dec *zstd.Decoder, maxSize uint32) ([]byte, error) {
	switch DetectCompression(b) {
	case Yaz0:
		return yaz0.DecompressWithOptions(bytes.NewReader(b), yaz0.Options{MaxSize: maxSize})
	case Zstd:
		if dec == nil {
			d, err := newDecoder(maxSize)
			if err != nil {
				return nil, err
			}
			defer d.Close()
			dec = d
		}
		out, err := dec.DecodeAll(b, nil)
		if err != nil {
			return nil, types.Wrap(types.ErrCorrupt, "zstd: %v", err)
		}
		return out, nil
	default:
		return b, nil
	}
}

func newDecoder(maxSize uint32, dicts ...[]byte) (*zstd.Decoder, error) {
	opts := []zstd.DOption{zstd.WithDecoderConcurrency(0)}
	if maxSize > 0 {
		opts = append(opts, zstd.WithDecoderMaxMemory(uint64(maxSize)))
	}
	if len(dicts) > 0 {
		opts = append(opts, zstd.WithDecoderDicts(dicts...))
	}
	d, err := zstd.NewReader(nil, opts...)
	if err != nil {
		return nil, types.Wrap(types.ErrCorrupt, "zstd decoder: %v", err)
	}
	return d, nil
}
