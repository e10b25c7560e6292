package diag

import (
	"gramlint/internal/source"
)

// RuleMatch is one reported violation.
type RuleMatch struct {
	RuleID      string
	Category    string
	Severity    Severity
	Message     string
	Short       string
	Span        source.Span // байтовые смещения в документе
	FromPos     uint32      // смещения в кодовых точках
	ToPos       uint32
	Suggestions []string
	Sentence    int // индекс предложения в документе
	Order       int // порядок объявления правила
}

// WithOffsets fills FromPos/ToPos from the document's offset table.
func (m RuleMatch) WithOffsets(t *source.OffsetTable) RuleMatch {
	m.FromPos = t.RuneOffset(m.Span.Start)
	m.ToPos = t.RuneOffset(m.Span.End)
	return m
}
