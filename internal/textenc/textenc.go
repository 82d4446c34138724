// Package textenc decodes the string encodings found in BYML string tables.
// Most documents store UTF-8; older titles store Shift-JIS.
package textenc

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
)

// Encoding names a string table encoding.
type Encoding int

const (
	UTF8 Encoding = iota
	ShiftJIS
)

func (e Encoding) String() string {
	if e == ShiftJIS {
		return "shift-jis"
	}
	return "utf-8"
}

// Decode converts raw string bytes to Go text. UTF-8 input is returned as
// is when valid; invalid sequences become U+FFFD.
func Decode(b []byte, enc Encoding) (string, error) {
	if enc == UTF8 {
		if utf8.Valid(b) {
			return string(b), nil
		}
		return strings.ToValidUTF8(string(b), "�"), nil
	}
	if isASCII(b) {
		return string(b), nil
	}
	out, err := japanese.ShiftJIS.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", enc, err)
	}
	return string(out), nil
}

// Encode converts Go text to raw string bytes in enc.
func Encode(s string, enc Encoding) ([]byte, error) {
	if enc == UTF8 {
		return []byte(s), nil
	}
	out, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", enc, err)
	}
	return out, nil
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
