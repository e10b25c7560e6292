package token

import (
	"gramlint/internal/source"
)

// SentStartTag is the tag carried by the start-of-sentence marker.
const SentStartTag = "SENT_START"

// Token represents a single raw token with its location in the document.
type Token struct {
	Kind Kind
	Span source.Span
	Text string // исходный текст, байт в байт
	Norm string // очищенная форма для словаря и правил
}

// IsSpace reports whether the token is whitespace-only.
func (t Token) IsSpace() bool { return t.Kind == Space }

// Reading is one candidate interpretation of a token.
type Reading struct {
	Lemma string
	Tag   string // пусто = неизвестно
}

// Unknown reports whether the reading carries no tag.
func (r Reading) Unknown() bool { return r.Tag == "" }

// AnalyzedToken is a Token together with its ordered readings.
type AnalyzedToken struct {
	Token
	Readings    []Reading
	Index       int  // позиция в Sentence.Tokens
	First       bool // первый содержательный токен предложения
	SpaceBefore bool
}

// IsSentStart reports whether the token is the synthetic start marker.
func (t *AnalyzedToken) IsSentStart() bool { return t.Kind == SentStart }

// HasTag reports whether any reading carries tag.
func (t *AnalyzedToken) HasTag(tag string) bool {
	for _, r := range t.Readings {
		if r.Tag == tag {
			return true
		}
	}
	return false
}

// UnknownReading builds the reading used when a dictionary has no entry.
func UnknownReading(tok Token) Reading {
	return Reading{Lemma: tok.Norm}
}
