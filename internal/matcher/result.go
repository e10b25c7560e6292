package matcher

import (
	"slices"

	"gramlint/internal/pattern"
	"gramlint/internal/source"
	"gramlint/internal/token"
)

// Result is one match of a rule in a sentence. Positions are content
// positions of the sentence; spans are document byte offsets.
type Result struct {
	Rule     *pattern.Rule
	Sentence *token.Sentence
	Bindings []Binding
	// Start..End is the full match, MarkStart..MarkEnd the reported part.
	Start, End         int
	MarkStart, MarkEnd int
	Span               source.Span // marked span
	Full               source.Span
}

func newResult(r *pattern.Rule, s *token.Sentence, binds []Binding) Result {
	res := Result{
		Rule:     r,
		Sentence: s,
		Bindings: slices.Clone(binds),
	}
	res.Start, res.End = covered(res.Bindings, 0, len(binds)-1)
	from, to := r.MarkBounds()
	res.MarkStart, res.MarkEnd = covered(res.Bindings, from, to)
	if res.MarkStart < 0 {
		res.MarkStart, res.MarkEnd = res.Start, res.End
	}
	res.Full = s.RangeSpan(res.Start, res.End)
	res.Span = s.RangeSpan(res.MarkStart, res.MarkEnd)
	return res
}

// covered returns the union of present bindings in [from, to], ignoring the
// start marker. It returns -1, -1 if none is present.
func covered(binds []Binding, from, to int) (int, int) {
	start, end := -1, -1
	for i := from; i <= to && i < len(binds); i++ {
		b := binds[i]
		b.Start = max(b.Start, 1)
		if b.End <= b.Start {
			continue
		}
		if start < 0 {
			start = b.Start
		}
		end = b.End
	}
	return start, end
}

// Group returns the document text bound to element n (1-based).
func (r *Result) Group(n int) (string, bool) {
	if n < 1 || n > len(r.Bindings) {
		return "", false
	}
	b := r.Bindings[n-1]
	b.Start = max(b.Start, 1)
	if b.End <= b.Start {
		return "", false
	}
	sp := r.Sentence.RangeSpan(b.Start, b.End)
	return r.Sentence.Slice(sp.Start, sp.End), true
}

// MarkedText is the document text of the reported span.
func (r *Result) MarkedText() string {
	return r.Sentence.Slice(r.Span.Start, r.Span.End)
}

// Message renders the rule message.
func (r *Result) Message() string {
	return pattern.Render(r.Rule.Message, r.Group)
}

// ShortMessage renders the short message.
func (r *Result) ShortMessage() string {
	return pattern.Render(r.Rule.Short, r.Group)
}

// Suggestions renders the replacement suggestions, dropping empty and
// repeated ones.
func (r *Result) Suggestions() []string {
	if len(r.Rule.Suggestions) == 0 {
		return nil
	}
	marked := r.MarkedText()
	out := make([]string, 0, len(r.Rule.Suggestions))
	for _, sg := range r.Rule.Suggestions {
		text := pattern.ApplyCase(pattern.Render(sg.Template, r.Group), sg.Case, marked)
		if text == "" || slices.Contains(out, text) {
			continue
		}
		out = append(out, text)
	}
	return out
}

// MarkedTokens returns the Tokens indices of the marked content range.
func (r *Result) MarkedTokens() []int {
	out := make([]int, 0, r.MarkEnd-r.MarkStart)
	for i := r.MarkStart; i < r.MarkEnd; i++ {
		out = append(out, r.Sentence.ContentIndex(i))
	}
	return out
}
