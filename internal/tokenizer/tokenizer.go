package tokenizer

import (
	"fmt"
	"unicode"

	"fortio.org/safecast"

	"gramlint/internal/source"
	"gramlint/internal/token"
)

type Options struct {
	Separators Separators
	Rewriters  []Rewriter // применяются по порядку до разбиения
}

// Tokenizer splits one sentence into raw tokens. It is immutable and safe
// for concurrent use.
type Tokenizer struct {
	opts Options
}

func New(opts Options) *Tokenizer {
	if opts.Separators.m == nil {
		opts.Separators = DefaultSeparators()
	}
	return &Tokenizer{opts: opts}
}

// Tokenize splits text, which starts at byte offset base of document file.
// Every separator becomes a token of its own; runs of other characters form
// words. The returned tokens always reconstruct text exactly, otherwise an
// error is returned.
func (t *Tokenizer) Tokenize(text string, file source.FileID, base uint32) ([]token.Token, error) {
	if text == "" {
		return nil, nil
	}
	work := text
	omap := offsetMap{origLen: len(text)}
	for _, rw := range t.opts.Rewriters {
		var pos []int
		work, pos = rw.Rewrite(work)
		omap = omap.compose(pos)
	}

	cur := Cursor{Text: work}
	toks := make([]token.Token, 0, len(work)/3+1)
	for !cur.EOF() {
		m := cur.Mark()
		r := cur.Bump()
		kind := token.Word
		switch t.opts.Separators.class(r) {
		case sepSpace:
			kind = token.Space
		case sepPunct:
			kind = token.Punct
		default:
			digits := unicode.IsDigit(r)
			for !cur.EOF() {
				next, _ := cur.Peek()
				if t.opts.Separators.IsSeparator(next) {
					break
				}
				digits = digits && unicode.IsDigit(next)
				cur.Bump()
			}
			if digits {
				kind = token.Number
			}
		}
		piece := cur.From(m)
		start := omap.boundary(int(m))
		end := omap.boundary(cur.Off)
		sp, err := makeSpan(file, base, start, end)
		if err != nil {
			return nil, err
		}
		toks = append(toks, token.Token{
			Kind: kind,
			Span: sp,
			Text: text[start:end],
			Norm: Clean(piece),
		})
	}
	if err := token.VerifyCover(toks, text, base); err != nil {
		return nil, fmt.Errorf("tokenizer invariant violated: %w", err)
	}
	return toks, nil
}

func makeSpan(file source.FileID, base uint32, start, end int) (source.Span, error) {
	s, err := safecast.Conv[uint32](start)
	if err != nil {
		return source.Span{}, fmt.Errorf("token offset overflow: %w", err)
	}
	e, err := safecast.Conv[uint32](end)
	if err != nil {
		return source.Span{}, fmt.Errorf("token offset overflow: %w", err)
	}
	return source.Span{File: file, Start: base + s, End: base + e}, nil
}
