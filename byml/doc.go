// Package byml reads BYML documents: a binary node graph of arrays,
// dictionaries and typed scalars used by Nintendo game assets.
//
// A Document is a read-only view over the caller's buffer. Opening validates
// the header, both string tables and the root container; every further access
// (Array.Get, Dict.Get, typed getters) resolves references lazily with full
// bounds checking. Strings returned as []byte borrow the buffer and must not
// outlive it. Views are immutable and safe for concurrent readers.
//
// Writing is handled by the byml/builder package.
package byml
