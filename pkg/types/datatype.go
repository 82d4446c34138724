package types

import "fmt"

// DataType is the one-byte tag identifying a BYML node's type.
type DataType uint8

const (
	TypeString      DataType = 0xA0
	TypeArray       DataType = 0xC0
	TypeDict        DataType = 0xC1
	TypeStringTable DataType = 0xC2
	TypeBool        DataType = 0xD0
	TypeI32         DataType = 0xD1
	TypeF32         DataType = 0xD2
	TypeU32         DataType = 0xD3
	TypeI64         DataType = 0xD4
	TypeU64         DataType = 0xD5
	TypeF64         DataType = 0xD6
	TypeNull        DataType = 0xFF
)

// Valid reports whether t is one of the known tags.
func (t DataType) Valid() bool {
	switch t {
	case TypeString, TypeArray, TypeDict, TypeStringTable,
		TypeBool, TypeI32, TypeF32, TypeU32, TypeI64, TypeU64, TypeF64, TypeNull:
		return true
	}
	return false
}

// IsContainer reports whether t is an array or dictionary.
func (t DataType) IsContainer() bool {
	return t == TypeArray || t == TypeDict
}

// IsLong reports whether values of t are stored out of line (8 bytes).
func (t DataType) IsLong() bool {
	return t == TypeI64 || t == TypeU64 || t == TypeF64
}

// String implements the Stringer interface for DataType.
func (t DataType) String() string {
	switch t {
	case TypeString:
		return "String"
	case TypeArray:
		return "Array"
	case TypeDict:
		return "Dictionary"
	case TypeStringTable:
		return "StringTable"
	case TypeBool:
		return "Bool"
	case TypeI32:
		return "I32"
	case TypeF32:
		return "F32"
	case TypeU32:
		return "U32"
	case TypeI64:
		return "I64"
	case TypeU64:
		return "U64"
	case TypeF64:
		return "F64"
	case TypeNull:
		return "Null"
	default:
		return fmt.Sprintf("UNKNOWN_TYPE_0x%02X", uint8(t))
	}
}

// TypeMismatch builds an ErrTypeMismatch naming the expected and actual types.
func TypeMismatch(want, got DataType) error {
	return Wrap(ErrTypeMismatch, "expected %s, found %s", want, got)
}
