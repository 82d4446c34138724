package types

import (
	"errors"
	"fmt"
)

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindFormat      ErrKind = iota // bad magic, wrong byte order, misaligned offset, bad tag
	ErrKindUnsupported                // recognized but unsupported variant (e.g., version)
	ErrKindBounds                     // a reference points outside the buffer
	ErrKindSemantic                   // well-formed bytes used in an invalid way (type mismatch, missing table)
	ErrKindCorrupt                    // structural inconsistency (unterminated string, bad back-reference)
	ErrKindOverflow                   // a size or offset does not fit the format's integer width
	ErrKindIO                         // the underlying reader or sink failed
)

// String returns a short lowercase name for the kind.
func (k ErrKind) String() string {
	switch k {
	case ErrKindFormat:
		return "format"
	case ErrKindUnsupported:
		return "unsupported"
	case ErrKindBounds:
		return "bounds"
	case ErrKindSemantic:
		return "semantic"
	case ErrKindCorrupt:
		return "corrupt"
	case ErrKindOverflow:
		return "overflow"
	case ErrKindIO:
		return "io"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Sentinels commonly returned by implementations. Detailed errors wrap one of
// these, so errors.Is(err, types.ErrOutOfBounds) works through any context.
var (
	// ErrBadMagic indicates the input does not start with the expected signature.
	ErrBadMagic = &Error{Kind: ErrKindFormat, Msg: "bad magic"}
	// ErrEndianness indicates a valid signature for the other byte order.
	ErrEndianness = &Error{Kind: ErrKindFormat, Msg: "byte order mismatch"}
	// ErrMisaligned indicates an offset that must be 4-aligned is not.
	ErrMisaligned = &Error{Kind: ErrKindFormat, Msg: "misaligned offset"}
	// ErrInvalidType indicates an unknown node type tag.
	ErrInvalidType = &Error{Kind: ErrKindFormat, Msg: "invalid node type"}
	// ErrNonContainerRoot indicates the root node is a scalar.
	ErrNonContainerRoot = &Error{Kind: ErrKindFormat, Msg: "root node is not a container"}
	// ErrUnsupportedVersion indicates a document version outside the supported range.
	ErrUnsupportedVersion = &Error{Kind: ErrKindUnsupported, Msg: "unsupported version"}

	// ErrOutOfBounds indicates a reference outside the buffer.
	ErrOutOfBounds = &Error{Kind: ErrKindBounds, Msg: "out of bounds"}
	// ErrStringIndex indicates a string index beyond the table's entry count.
	ErrStringIndex = &Error{Kind: ErrKindBounds, Msg: "string index out of range"}

	// ErrNoStringTable indicates a string value in a document without a value string table.
	ErrNoStringTable = &Error{Kind: ErrKindSemantic, Msg: "document has no string table"}
	// ErrNoKeyTable indicates a dictionary in a document without a hash-key table.
	ErrNoKeyTable = &Error{Kind: ErrKindSemantic, Msg: "document has no hash key table"}
	// ErrTypeMismatch indicates the stored type differs from the requested one.
	ErrTypeMismatch = &Error{Kind: ErrKindSemantic, Msg: "unexpected data type"}
	// ErrNonUTF8 indicates a string requested as text is not valid UTF-8.
	ErrNonUTF8 = &Error{Kind: ErrKindSemantic, Msg: "string is not valid UTF-8"}
	// ErrStringTableElement indicates a string table tag used as a container element.
	ErrStringTableElement = &Error{Kind: ErrKindSemantic, Msg: "string table used as element"}
	// ErrEmptyDocument indicates a root access on a document with no root node.
	ErrEmptyDocument = &Error{Kind: ErrKindSemantic, Msg: "document is empty"}
	// ErrNotFound indicates a named file or archive member that does not exist.
	ErrNotFound = &Error{Kind: ErrKindSemantic, Msg: "not found"}
	// ErrInvalidString indicates a string that cannot be encoded (embedded NUL).
	ErrInvalidString = &Error{Kind: ErrKindSemantic, Msg: "string contains NUL byte"}
	// ErrInvalidText indicates text-form input that does not describe a document.
	ErrInvalidText = &Error{Kind: ErrKindSemantic, Msg: "invalid text form"}

	// ErrUnterminated indicates a string with no NUL before the end of the buffer.
	ErrUnterminated = &Error{Kind: ErrKindCorrupt, Msg: "unterminated string"}
	// ErrUnsorted indicates a table or dictionary whose keys are not strictly ascending.
	ErrUnsorted = &Error{Kind: ErrKindCorrupt, Msg: "entries not sorted"}
	// ErrCopyPastEnd indicates a back-reference writing past the declared size.
	ErrCopyPastEnd = &Error{Kind: ErrKindCorrupt, Msg: "copy past end of output"}
	// ErrCopyBeforeStart indicates a back-reference reaching before the first output byte.
	ErrCopyBeforeStart = &Error{Kind: ErrKindCorrupt, Msg: "copy from before start of output"}
	// ErrCorrupt indicates any other structural inconsistency.
	ErrCorrupt = &Error{Kind: ErrKindCorrupt, Msg: "corrupt structure"}

	// ErrOverflow indicates a size or offset exceeding the format's limits.
	ErrOverflow = &Error{Kind: ErrKindOverflow, Msg: "size overflow"}
)

// Wrap returns an error of sentinel's kind that carries msg and still matches
// sentinel under errors.Is.
func Wrap(sentinel *Error, format string, args ...any) error {
	return &Error{Kind: sentinel.Kind, Msg: fmt.Sprintf(format, args...), Err: sentinel}
}

// IOError wraps a failure of the underlying reader or sink.
func IOError(op string, err error) error {
	return &Error{Kind: ErrKindIO, Msg: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrKind, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return 0, false
}

// -----------------------------------------------------------------------------
// Byte Order
// -----------------------------------------------------------------------------

// Endian selects the byte order of a document. It is chosen once per document
// and applies to every multi-byte field in it.
type Endian uint8

const (
	LittleEndian Endian = iota // "YB" documents (Switch)
	BigEndian                  // "BY" documents (Wii U, 3DS)
)

func (e Endian) String() string {
	switch e {
	case LittleEndian:
		return "little"
	case BigEndian:
		return "big"
	default:
		return fmt.Sprintf("Endian(%d)", uint8(e))
	}
}

// ParseEndian accepts "little"/"le" and "big"/"be".
func ParseEndian(s string) (Endian, error) {
	switch s {
	case "little", "le", "LE":
		return LittleEndian, nil
	case "big", "be", "BE":
		return BigEndian, nil
	}
	return 0, fmt.Errorf("unknown byte order %q", s)
}
