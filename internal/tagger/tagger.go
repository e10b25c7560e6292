// Package tagger assigns dictionary readings to raw tokens.
package tagger

import (
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"gramlint/internal/dict"
	"gramlint/internal/source"
	"gramlint/internal/token"
)

// Tagger is a pure function from a token to its readings for the lifetime
// of the underlying dictionary. It is safe for concurrent use.
type Tagger struct {
	dict   dict.Dictionary
	casers sync.Pool // cases.Caser хранит состояние, по одному на горутину
}

// New creates a tagger folding case by the rules of lang.
func New(d dict.Dictionary, lang language.Tag) *Tagger {
	t := &Tagger{dict: d}
	t.casers.New = func() any {
		c := cases.Lower(lang)
		return &c
	}
	return t
}

func (t *Tagger) lower(s string) string {
	c, ok := t.casers.Get().(*cases.Caser)
	if !ok {
		return s
	}
	out := c.String(s)
	t.casers.Put(c)
	return out
}

// Tag returns the readings of tok: exact form first, then the lowercase
// variant. Whitespace and unknown forms yield nil; the caller substitutes
// the unknown reading.
func (t *Tagger) Tag(tok token.Token) []token.Reading {
	if tok.IsSpace() || tok.Norm == "" {
		return nil
	}
	exact := t.dict.Lookup(tok.Norm)
	folded := t.lower(tok.Norm)
	if folded == tok.Norm {
		return exact
	}
	more := t.dict.Lookup(folded)
	if len(more) == 0 {
		return exact
	}
	if len(exact) == 0 {
		return more
	}
	out := make([]token.Reading, 0, len(exact)+len(more))
	out = append(out, exact...)
	for _, r := range more {
		dup := false
		for _, have := range exact {
			if have == r {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, r)
		}
	}
	return out
}

// TagSentence builds the analyzed sentence for toks, which cover text at span.
func (t *Tagger) TagSentence(span source.Span, text string, toks []token.Token) *token.Sentence {
	readings := make([][]token.Reading, len(toks))
	for i, tok := range toks {
		readings[i] = t.Tag(tok)
	}
	return token.NewSentence(span, text, toks, readings)
}
