// Package segment splits documents into sentences.
//
// Spans returned by Split are contiguous: whitespace after a sentence belongs
// to that sentence, so concatenating all spans reproduces the input.
package segment

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Range is a half-open byte range [Start, End) of the input text.
type Range struct {
	Start int
	End   int
}

type Options struct {
	// Abbreviations lists lowercase words (without the final period) after
	// which a period never ends a sentence, e.g. "mr", "e.g", "z.b".
	Abbreviations []string
	// NoParagraphBreak disables the forced break on blank lines.
	NoParagraphBreak bool
}

// Segmenter is immutable after New and safe for concurrent use.
type Segmenter struct {
	abbrev    map[string]struct{}
	paragraph bool
}

func New(opts Options) *Segmenter {
	s := &Segmenter{
		abbrev:    make(map[string]struct{}, len(opts.Abbreviations)),
		paragraph: !opts.NoParagraphBreak,
	}
	for _, a := range opts.Abbreviations {
		a = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(a)), ".")
		if a != "" {
			s.abbrev[a] = struct{}{}
		}
	}
	return s
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '…'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', '»', '”', '’', '“', ')', ']':
		return true
	}
	return false
}

func isOpener(r rune) bool {
	switch r {
	case '"', '\'', '«', '„', '“', '‘', '(', '[', '¿', '¡':
		return true
	}
	return false
}

// Split returns the sentence ranges of text. Empty text yields no ranges;
// text without any boundary yields a single range.
func (s *Segmenter) Split(text string) []Range {
	if text == "" {
		return nil
	}
	out := make([]Range, 0, len(text)/60+1)
	start := 0
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])

		if r == '\n' && s.paragraph {
			if end, ok := paragraphEnd(text, i); ok {
				out = append(out, Range{Start: start, End: end})
				start, i = end, end
				continue
			}
		}

		if !isTerminal(r) {
			i += size
			continue
		}

		// весь кластер: "?!", "...", "…"
		j := i
		single := true
		for j < len(text) {
			nr, ns := utf8.DecodeRuneInString(text[j:])
			if !isTerminal(nr) {
				break
			}
			if j > i {
				single = false
			}
			j += ns
		}
		if single && r == '.' && s.suppressed(text, i) {
			i = j
			continue
		}
		for j < len(text) {
			nr, ns := utf8.DecodeRuneInString(text[j:])
			if !isCloser(nr) {
				break
			}
			j += ns
		}
		if end, ok := s.boundaryAfter(text, j); ok {
			out = append(out, Range{Start: start, End: end})
			start = end
			i = end
			continue
		}
		i = j
	}
	if start < len(text) {
		out = append(out, Range{Start: start, End: len(text)})
	}
	return out
}

// boundaryAfter decides whether a sentence ends at pos (right after the
// terminal cluster) and returns the end of its trailing whitespace.
func (s *Segmenter) boundaryAfter(text string, pos int) (int, bool) {
	k := pos
	newlines := 0
	for k < len(text) {
		r, size := utf8.DecodeRuneInString(text[k:])
		if !unicode.IsSpace(r) {
			break
		}
		if r == '\n' {
			newlines++
		}
		k += size
	}
	if k == pos {
		return 0, false // "3.14", "e.g.x"
	}
	if k == len(text) || newlines >= 2 {
		return k, true
	}
	r, _ := utf8.DecodeRuneInString(text[k:])
	if unicode.IsUpper(r) || unicode.IsDigit(r) || isOpener(r) || unicode.IsTitle(r) {
		return k, true
	}
	return 0, false
}

// suppressed reports whether the period at dot belongs to an abbreviation or an initial.
func (s *Segmenter) suppressed(text string, dot int) bool {
	w := dot
	for w > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:w])
		if unicode.IsSpace(r) || isOpener(r) {
			break
		}
		w -= size
	}
	word := text[w:dot]
	if word == "" {
		return false
	}
	if _, ok := s.abbrev[strings.ToLower(word)]; ok {
		return true
	}
	// инициал: одна заглавная буква
	r, size := utf8.DecodeRuneInString(word)
	return size == len(word) && unicode.IsUpper(r)
}

// paragraphEnd reports whether a blank line starts at i and returns the
// offset right after the whitespace run.
func paragraphEnd(text string, i int) (int, bool) {
	k := i
	newlines := 0
	for k < len(text) {
		r, size := utf8.DecodeRuneInString(text[k:])
		if !unicode.IsSpace(r) {
			break
		}
		if r == '\n' {
			newlines++
		}
		k += size
	}
	if newlines < 2 || k == len(text) {
		return 0, false
	}
	return k, true
}
