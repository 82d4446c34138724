package format

// Align4 returns n aligned up to the next 4-byte boundary.
// Every BYML node, table and long value starts on such a boundary.
//
// Example:
//
//	Align4(1) = 4
//	Align4(4) = 4
//	Align4(5) = 8
func Align4(n int) int {
	return (n + NodeAlignment - 1) &^ (NodeAlignment - 1)
}

// IsAligned4 reports whether off is a multiple of 4.
func IsAligned4(off uint32) bool {
	return off&(NodeAlignment-1) == 0
}
