package token

import (
	"fmt"
	"strings"

	"gramlint/internal/source"
)

// Sentence is the analyzed form of one sentence.
type Sentence struct {
	Span    source.Span
	Text    string // исходный текст предложения
	Tokens  []AnalyzedToken
	content []int // индексы не-пробельных токенов; content[0] == 0 (маркер)
}

// NewSentence wraps raw tokens of one sentence together with their readings.
// readings[i] belongs to toks[i]; the start marker is prepended automatically.
func NewSentence(span source.Span, text string, toks []Token, readings [][]Reading) *Sentence {
	out := make([]AnalyzedToken, 0, len(toks)+1)
	out = append(out, AnalyzedToken{
		Token: Token{
			Kind: SentStart,
			Span: source.Span{File: span.File, Start: span.Start, End: span.Start},
		},
		Readings: []Reading{{Tag: SentStartTag}},
	})
	for i, tok := range toks {
		rs := readings[i]
		if len(rs) == 0 {
			rs = []Reading{UnknownReading(tok)}
		}
		out = append(out, AnalyzedToken{Token: tok, Readings: rs})
	}
	s := &Sentence{Span: span, Text: text, Tokens: out}
	s.index()
	return s
}

func (s *Sentence) index() {
	s.content = s.content[:0]
	space := false
	first := true
	for i := range s.Tokens {
		t := &s.Tokens[i]
		t.Index = i
		if t.IsSpace() {
			space = true
			continue
		}
		t.SpaceBefore = space
		space = false
		t.First = false
		if t.Kind != SentStart && first {
			t.First = true
			first = false
		}
		s.content = append(s.content, i)
	}
}

// ContentLen returns the number of non-whitespace tokens, the marker included.
func (s *Sentence) ContentLen() int { return len(s.content) }

// Content returns the i-th non-whitespace token.
func (s *Sentence) Content(i int) *AnalyzedToken { return &s.Tokens[s.content[i]] }

// ContentIndex maps a content position to its index in Tokens.
func (s *Sentence) ContentIndex(i int) int { return s.content[i] }

// RangeSpan returns the document span of content positions [start, end).
func (s *Sentence) RangeSpan(start, end int) source.Span {
	if start >= end || start >= len(s.content) {
		at := s.Span.End
		if start < len(s.content) {
			at = s.Content(start).Span.Start
		}
		return source.Span{File: s.Span.File, Start: at, End: at}
	}
	end = min(end, len(s.content))
	return s.Content(start).Span.Cover(s.Content(end - 1).Span)
}

// Slice returns the original text between two document byte offsets.
func (s *Sentence) Slice(start, end uint32) string {
	if start < s.Span.Start || end > s.Span.End || start > end {
		return ""
	}
	return s.Text[start-s.Span.Start : end-s.Span.Start]
}

// WithReadings returns a copy of s in which the tokens listed in changes
// (keyed by Tokens index) carry new reading sets. s itself is not modified.
func (s *Sentence) WithReadings(changes map[int][]Reading) *Sentence {
	if len(changes) == 0 {
		return s
	}
	toks := make([]AnalyzedToken, len(s.Tokens))
	copy(toks, s.Tokens)
	for idx, rs := range changes {
		if idx <= 0 || idx >= len(toks) || len(rs) == 0 {
			continue
		}
		toks[idx].Readings = rs
	}
	return &Sentence{Span: s.Span, Text: s.Text, Tokens: toks, content: s.content}
}

// String renders the sentence as "word/lemma:TAG" groups, for debugging and token dumps.
func (s *Sentence) String() string {
	var b strings.Builder
	for i := range s.Tokens {
		t := &s.Tokens[i]
		if t.IsSpace() {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		if t.IsSentStart() {
			b.WriteString("<S>")
			continue
		}
		b.WriteString(t.Text)
		b.WriteByte('[')
		for j, r := range t.Readings {
			if j > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%s/%s", r.Lemma, r.Tag)
		}
		b.WriteByte(']')
	}
	return b.String()
}
