package testkit

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"fortio.org/safecast"

	"gramlint/internal/diag"
	"gramlint/internal/source"
	"gramlint/internal/token"
)

// CheckReconstruction verifies the tokenizer contract on one sentence:
// 1) every token is non-empty
// 2) tokens are contiguous starting at base
// 3) concatenated texts equal text
func CheckReconstruction(toks []token.Token, text string, base uint32) error {
	var b strings.Builder
	for i, t := range toks {
		if t.Text == "" {
			return fmt.Errorf("token %d is empty", i)
		}
		b.WriteString(t.Text)
	}
	if b.String() != text {
		return fmt.Errorf("tokens rebuild %q, want %q", b.String(), text)
	}
	return token.VerifyCover(toks, text, base)
}

// CheckSentenceCover verifies that sentence spans are contiguous and cover
// text completely.
func CheckSentenceCover(spans []source.Span, text string) error {
	var pos uint32
	for i, sp := range spans {
		if sp.Start != pos {
			return fmt.Errorf("sentence %d starts at %d, expected %d", i, sp.Start, pos)
		}
		if sp.End <= sp.Start {
			return fmt.Errorf("sentence %d is empty: %v", i, sp)
		}
		pos = sp.End
	}
	n, err := safecast.Conv[uint32](len(text))
	if err != nil {
		return fmt.Errorf("text length overflow: %w", err)
	}
	if pos != n {
		return fmt.Errorf("sentences cover %d of %d bytes", pos, n)
	}
	return nil
}

// CheckContainment verifies that every match lies inside the sentence it
// reports.
func CheckContainment(matches []diag.RuleMatch, sentences []source.Span) error {
	for i, m := range matches {
		if m.Sentence < 0 || m.Sentence >= len(sentences) {
			return fmt.Errorf("match %d (%s) names sentence %d of %d", i, m.RuleID, m.Sentence, len(sentences))
		}
		sent := sentences[m.Sentence]
		if m.Span.Start < sent.Start || m.Span.End > sent.End {
			return fmt.Errorf("match %d (%s) %v escapes sentence %v", i, m.RuleID, m.Span, sent)
		}
		if m.Span.End < m.Span.Start {
			return fmt.Errorf("match %d (%s) has inverted span %v", i, m.RuleID, m.Span)
		}
	}
	return nil
}

// CheckNonOverlap verifies that matches of one rule never overlap.
func CheckNonOverlap(matches []diag.RuleMatch) error {
	last := make(map[string]source.Span)
	for i, m := range matches {
		prev, ok := last[m.RuleID]
		if ok && m.Span.Start < prev.End && prev.Start < m.Span.End {
			return fmt.Errorf("match %d (%s) %v overlaps %v", i, m.RuleID, m.Span, prev)
		}
		if !ok || m.Span.End > prev.End {
			last[m.RuleID] = m.Span
		}
	}
	return nil
}

// CheckOffsets verifies FromPos/ToPos against code point positions in text.
func CheckOffsets(matches []diag.RuleMatch, text string) error {
	for i, m := range matches {
		if int(m.Span.End) > len(text) {
			return fmt.Errorf("match %d (%s) %v beyond text", i, m.RuleID, m.Span)
		}
		from := utf8.RuneCountInString(text[:m.Span.Start])
		to := utf8.RuneCountInString(text[:m.Span.End])
		if int(m.FromPos) != from || int(m.ToPos) != to {
			return fmt.Errorf("match %d (%s) positions %d..%d, want %d..%d", i, m.RuleID, m.FromPos, m.ToPos, from, to)
		}
	}
	return nil
}
