package token

import (
	"fmt"
)

// VerifyCover checks that toks cover text exactly, starting at byte offset base.
func VerifyCover(toks []Token, text string, base uint32) error {
	pos := base
	var rebuilt int
	for i, t := range toks {
		if t.Span.Start != pos {
			return fmt.Errorf("token %d %q starts at %d, expected %d", i, t.Text, t.Span.Start, pos)
		}
		if t.Span.End < t.Span.Start {
			return fmt.Errorf("token %d %q has inverted span %v", i, t.Text, t.Span)
		}
		if int(t.Span.Len()) != len(t.Text) {
			return fmt.Errorf("token %d %q: span length %d does not match text length %d", i, t.Text, t.Span.Len(), len(t.Text))
		}
		off := int(t.Span.Start - base)
		if off+len(t.Text) > len(text) || text[off:off+len(t.Text)] != t.Text {
			return fmt.Errorf("token %d %q does not match sentence text at %d", i, t.Text, off)
		}
		pos = t.Span.End
		rebuilt += len(t.Text)
	}
	if rebuilt != len(text) {
		return fmt.Errorf("tokens cover %d of %d bytes", rebuilt, len(text))
	}
	return nil
}
