package render

import "strconv"

const (
	cellPrefix = "\x1b[48;2;"
	cellSuffix = "m "
	// RowTerminator resets attributes and ends one output row.
	RowTerminator = "\x1b[0m\n"

	// alphaShift is the fixed-point precision used to normalize alpha.
	alphaShift = 23
	alphaHalf  = 1 << (alphaShift - 1)
)

// maxCellBytes is the longest possible escape-coded cell: prefix, three
// three-digit channels, two separators and the suffix.
const maxCellBytes = len(cellPrefix) + 3*3 + 2 + len(cellSuffix)

// normalizeAlpha maps an 8-bit alpha to a 0..1 fixed-point scale with
// alphaShift fractional bits, rounding to nearest.
func normalizeAlpha(a uint8) uint32 {
	return (uint32(a)<<alphaShift + 127) / 255
}

// Composite blends channel c with opacity a over a black background. The
// result equals round(c*a/255) within one unit; a=255 is exact identity and
// a=0 always yields 0.
func Composite(c, a uint8) uint8 {
	return compositeScaled(c, normalizeAlpha(a))
}

func compositeScaled(c uint8, alpha uint32) uint8 {
	return uint8((uint64(c)*uint64(alpha) + alphaHalf) >> alphaShift)
}

// AppendCell appends one background-colored blank cell to dst.
func AppendCell(dst []byte, r, g, b uint8) []byte {
	dst = append(dst, cellPrefix...)
	dst = strconv.AppendUint(dst, uint64(r), 10)
	dst = append(dst, ';')
	dst = strconv.AppendUint(dst, uint64(g), 10)
	dst = append(dst, ';')
	dst = strconv.AppendUint(dst, uint64(b), 10)
	return append(dst, cellSuffix...)
}

// FrameCapacity estimates the buffer size for one full frame of size s.
func FrameCapacity(s Size) int {
	return (maxCellBytes*s.Width + len(RowTerminator)) * s.Height
}
