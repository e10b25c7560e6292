package fix

import (
	"fmt"

	"gramlint/internal/diag"
	"gramlint/internal/source"
)

// Option mutates fix during construction.
type Option func(*Fix)

// WithID sets stable identifier for fix.
func WithID(id string) Option {
	return func(f *Fix) {
		f.ID = id
	}
}

// WithRule records the rule that proposed the fix.
func WithRule(ruleID, message string) Option {
	return func(f *Fix) {
		f.RuleID = ruleID
		f.Message = message
	}
}

func applyOptions(f Fix, opts []Option) Fix {
	for _, opt := range opts {
		if opt != nil {
			opt(&f)
		}
	}
	return f
}

// InsertText creates fix that inserts text at span (Span.Start == Span.End).
func InsertText(title string, at source.Span, text string, opts ...Option) Fix {
	at.End = at.Start
	return applyOptions(Fix{
		Title: title,
		Edit:  Edit{Span: at, NewText: text},
	}, opts)
}

// DeleteSpan removes text covered by span.
func DeleteSpan(title string, span source.Span, expect string, opts ...Option) Fix {
	return applyOptions(Fix{
		Title: title,
		Edit:  Edit{Span: span, OldText: expect},
	}, opts)
}

// ReplaceSpan replaces text covered by span with newText.
func ReplaceSpan(title string, span source.Span, newText, expect string, opts ...Option) Fix {
	return applyOptions(Fix{
		Title: title,
		Edit:  Edit{Span: span, NewText: newText, OldText: expect},
	}, opts)
}

// FromMatch turns the first suggestion of m into a fix. ok is false when
// the match carries no suggestion.
func FromMatch(fs *source.FileSet, m diag.RuleMatch) (f Fix, ok bool) {
	if len(m.Suggestions) == 0 {
		return Fix{}, false
	}
	var expect string
	if file := fs.Get(m.Span.File); file != nil && int(m.Span.End) <= len(file.Content) && m.Span.Start <= m.Span.End {
		expect = string(file.Content[m.Span.Start:m.Span.End])
	}
	repl := m.Suggestions[0]
	title := fmt.Sprintf("replace %q with %q", expect, repl)
	if expect == "" {
		title = fmt.Sprintf("insert %q", repl)
	}
	return ReplaceSpan(title, m.Span, repl, expect,
		WithID(fmt.Sprintf("%s-%d-%d", m.RuleID, m.Span.File, m.Span.Start)),
		WithRule(m.RuleID, m.Message),
	), true
}

// FromMatches collects fixes of all matches that carry a suggestion.
func FromMatches(fs *source.FileSet, matches []diag.RuleMatch) []Fix {
	fixes := make([]Fix, 0, len(matches))
	for _, m := range matches {
		if f, ok := FromMatch(fs, m); ok {
			fixes = append(fixes, f)
		}
	}
	return fixes
}
