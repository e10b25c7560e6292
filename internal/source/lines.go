package source

import (
	"sort"

	"fortio.org/safecast"
)

// newlines returns the byte offsets of every '\n' in content.
func newlines(content []byte) []uint32 {
	out := make([]uint32, 0, len(content)/48)
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i)) // #nosec G115 -- content length checked by caller
		}
	}
	return out
}

// Size returns the content length in bytes.
func (f *File) Size() uint32 {
	n, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(err)
	}
	return n
}

// LineCount returns the number of lines; text after the last '\n' counts
// as a line even when empty.
func (f *File) LineCount() uint32 {
	return uint32(len(f.LineIdx)) + 1 // #nosec G115 -- bounded by Size
}

// LineBounds returns the byte range of line n (1-based) without its '\n'.
// A trailing '\r' stays in the range.
func (f *File) LineBounds(n uint32) (start, end uint32, ok bool) {
	if n == 0 || n > f.LineCount() {
		return 0, 0, false
	}
	if n > 1 {
		start = f.LineIdx[n-2] + 1
	}
	end = f.Size()
	if int(n-1) < len(f.LineIdx) {
		end = f.LineIdx[n-1]
	}
	return start, end, true
}

// GetLine returns line n (1-based) without "\r\n", or "" when there is no
// such line.
func (f *File) GetLine(n uint32) string {
	start, end, ok := f.LineBounds(n)
	if !ok {
		return ""
	}
	if end > start && f.Content[end-1] == '\r' {
		end--
	}
	return string(f.Content[start:end])
}

// Position converts a byte offset into a line and a code-point column.
func (f *File) Position(off uint32) LineCol {
	// число переводов строки строго до off
	line := sort.Search(len(f.LineIdx), func(i int) bool { return f.LineIdx[i] >= off })
	var lineStart uint32
	if line > 0 {
		lineStart = f.LineIdx[line-1] + 1
	}
	col := f.Offsets.RuneOffset(off) - f.Offsets.RuneOffset(lineStart)
	return LineCol{Line: uint32(line + 1), Col: col + 1} // #nosec G115 -- bounded by Size
}
