// Package format houses low-level decoders and encoders for the fixed-size
// structures of the BYML, Yaz0 and SARC formats. Higher-level packages own the
// graph semantics; this package only knows offsets, sizes and magics.
package format

var (
	// BYMLMagicLE is the signature of a little-endian BYML document.
	//   0x00  'Y' 'B'
	BYMLMagicLE = []byte{'Y', 'B'}

	// BYMLMagicBE is the signature of a big-endian BYML document.
	//   0x00  'B' 'Y'
	BYMLMagicBE = []byte{'B', 'Y'}

	// Yaz0Magic is the signature of a Yaz0 stream. The header is always big-endian.
	Yaz0Magic = []byte{'Y', 'a', 'z', '0'}

	// ZstdMagic is the little-endian frame magic of a Zstandard stream (0xFD2FB528).
	ZstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

	// SARCMagic, SFATMagic and SFNTMagic identify the archive header, its file
	// allocation table and its file name table.
	SARCMagic = []byte{'S', 'A', 'R', 'C'}
	SFATMagic = []byte{'S', 'F', 'A', 'T'}
	SFNTMagic = []byte{'S', 'F', 'N', 'T'}
)

// BYML document header layout.
//
//	Offset  Size  Description
//	------  ----  ------------------------------------------
//	 0x00    2    magic ("YB" little-endian, "BY" big-endian)
//	 0x02    2    version
//	 0x04    4    hash key table offset (0 = absent)
//	 0x08    4    string table offset (0 = absent)
//	 0x0C    4    root node offset (0 = empty document)
const (
	BYMLHeaderSize         = 0x10
	BYMLVersionOffset      = 0x02
	BYMLHashKeyTableOffset = 0x04
	BYMLStringTableOffset  = 0x08
	BYMLRootOffset         = 0x0C

	// BYMLMinVersion and BYMLMaxVersion bound the versions the reader accepts.
	BYMLMinVersion = 1
	BYMLMaxVersion = 3
)

// Node layout sizes.
const (
	// ContainerHeaderSize is the tag byte plus the 24-bit entry count.
	ContainerHeaderSize = 4
	// ValueSize is the size of an inline value slot.
	ValueSize = 4
	// LongValueSize is the size of an out-of-line 64-bit value.
	LongValueSize = 8
	// DictEntrySize is key index (3) + type (1) + value (4).
	DictEntrySize = 8
	// MaxEntries is the exclusive upper bound of a 24-bit count or index.
	MaxEntries = 1 << 24
	// NodeAlignment is the alignment of every node and table.
	NodeAlignment = 4
)

// Yaz0 header layout (big-endian).
//
//	Offset  Size  Description
//	------  ----  ------------------------------------------
//	 0x00    4    'Y' 'a' 'z' '0'
//	 0x04    4    decompressed size
//	 0x08    8    reserved (0x0C..0x10 holds the data alignment on newer titles)
const (
	Yaz0HeaderSize     = 0x10
	Yaz0SizeOffset     = 0x04
	Yaz0ReservedOffset = 0x08
)

// SARC archive layout.
//
//	SARC header (0x14)
//	 0x00  4  'S' 'A' 'R' 'C'
//	 0x04  2  header size (0x14)
//	 0x06  2  byte order mark (0xFEFF in file order)
//	 0x08  4  file size
//	 0x0C  4  data start offset
//	 0x10  2  version (0x0100)
//	 0x12  2  reserved
//
//	SFAT header (0x0C), followed by node count * SFAT node (0x10)
//	 0x00  4  'S' 'F' 'A' 'T'
//	 0x04  2  header size (0x0C)
//	 0x06  2  node count
//	 0x08  4  name hash multiplier
//
//	SFAT node
//	 0x00  4  name hash
//	 0x04  4  attributes (0x01xxxxxx = has name, low 16 bits = name offset / 4)
//	 0x08  4  data start (relative to data start offset)
//	 0x0C  4  data end (relative to data start offset)
//
//	SFNT header (0x08), followed by 4-aligned NUL-terminated names
//	 0x00  4  'S' 'F' 'N' 'T'
//	 0x04  2  header size (0x08)
//	 0x06  2  reserved
const (
	SARCHeaderSize     = 0x14
	SARCBOMOffset      = 0x06
	SARCFileSizeOffset = 0x08
	SARCDataOffset     = 0x0C
	SARCVersionOffset  = 0x10

	SFATHeaderSize = 0x0C
	SFATNodeSize   = 0x10
	SFNTHeaderSize = 0x08

	// SARCDefaultHashKey is the multiplier used by every shipped archive.
	SARCDefaultHashKey = 0x65
	// SFATNameFlag marks an SFAT node whose name is stored in the SFNT table.
	SFATNameFlag = 0x01000000
)
