package builder

import "github.com/joshuapare/bymlkit/pkg/types"

// Options controls document emission.
type Options struct {
	// Endian selects the byte order of every multi-byte field.
	Endian types.Endian

	// Version is written into the header. Versions 2 and 3 are supported;
	// both share the node layout produced here.
	Version uint16
}

// DefaultOptions returns little-endian version 2, the layout of most Switch titles.
func DefaultOptions() Options {
	return Options{
		Endian:  types.LittleEndian,
		Version: 2,
	}
}

func (o Options) validate() error {
	if o.Version < 2 || o.Version > 3 {
		return types.Wrap(types.ErrUnsupportedVersion, "cannot write version %d", o.Version)
	}
	if o.Endian != types.LittleEndian && o.Endian != types.BigEndian {
		return types.Wrap(types.ErrEndianness, "unknown byte order %d", o.Endian)
	}
	return nil
}
