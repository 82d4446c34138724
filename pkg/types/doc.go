// Package types defines the shared vocabulary of bymlkit: BYML data type tags,
// document byte order, and the typed error model used by every codec package.
//
// Design goals:
//   - Zero-copy views where safe; explicit copying where requested.
//   - Paranoid bounds checking; never panic on malformed input.
//   - Typed errors with stable categories (format/bounds/semantic/...).
//   - Absence is not an error: lookups report found=false instead.
//
// This package has no dependencies beyond the standard library.
package types
