package source

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"fortio.org/safecast"
)

// OffsetTable converts byte offsets of a document into code point offsets.
// Public match positions are counted in Unicode code points; for pure ASCII
// input the table is empty and both conventions coincide.
type OffsetTable struct {
	marks []offsetMark
	size  uint32
	runes uint32
}

// offsetMark is recorded right after every multi-byte rune.
type offsetMark struct {
	byteEnd uint32 // байтовое смещение сразу после руны
	extra   uint32 // накопленное число "лишних" байтов до byteEnd
}

// NewOffsetTable scans content once and records every multi-byte rune.
func NewOffsetTable(content []byte) *OffsetTable {
	size, err := safecast.Conv[uint32](len(content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	t := &OffsetTable{size: size}
	var extra uint32
	for i := 0; i < len(content); {
		if content[i] < utf8.RuneSelf {
			i++
			continue
		}
		_, n := utf8.DecodeRune(content[i:])
		i += n
		if n > 1 {
			extra += uint32(n - 1) // #nosec G115 -- n is at most utf8.UTFMax
			t.marks = append(t.marks, offsetMark{byteEnd: uint32(i), extra: extra}) // #nosec G115 -- bounded by size
		}
	}
	t.runes = size - extra
	return t
}

// RuneOffset maps a byte offset to the number of code points before it.
func (t *OffsetTable) RuneOffset(off uint32) uint32 {
	if t == nil || len(t.marks) == 0 {
		return off
	}
	if off > t.size {
		off = t.size
	}
	i := sort.Search(len(t.marks), func(i int) bool { return t.marks[i].byteEnd > off })
	if i == 0 {
		return off
	}
	return off - t.marks[i-1].extra
}

// ByteOffset is the inverse of RuneOffset.
func (t *OffsetTable) ByteOffset(runeOff uint32) uint32 {
	if t == nil || len(t.marks) == 0 {
		return runeOff
	}
	if runeOff > t.runes {
		runeOff = t.runes
	}
	i := sort.Search(len(t.marks), func(i int) bool {
		m := t.marks[i]
		return m.byteEnd-m.extra > runeOff
	})
	if i == 0 {
		return runeOff
	}
	return runeOff + t.marks[i-1].extra
}

// Runes returns the total number of code points.
func (t *OffsetTable) Runes() uint32 {
	if t == nil {
		return 0
	}
	return t.runes
}
