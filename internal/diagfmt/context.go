package diagfmt

import (
	"strings"
	"unicode/utf8"

	"gramlint/internal/source"
)

const defaultContextChars = 40

type matchContext struct {
	text   string
	offset int // в кодовых точках
	length int
}

// contextOf cuts up to chars code points on each side of span. Line breaks
// become spaces so that the context stays on one line.
func contextOf(f *source.File, span source.Span, chars int) matchContext {
	content := f.Content
	start := min(int(span.Start), len(content))
	end := min(max(int(span.End), start), len(content))

	from := start
	for n := 0; n < chars && from > 0; n++ {
		_, size := utf8.DecodeLastRune(content[:from])
		from -= size
	}
	to := end
	for n := 0; n < chars && to < len(content); n++ {
		_, size := utf8.DecodeRune(content[to:])
		to += size
	}
	flat := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")
	before := flat.Replace(string(content[from:start]))
	marked := flat.Replace(string(content[start:end]))
	after := flat.Replace(string(content[end:to]))
	return matchContext{
		text:   before + marked + after,
		offset: utf8.RuneCountInString(before),
		length: utf8.RuneCountInString(marked),
	}
}
