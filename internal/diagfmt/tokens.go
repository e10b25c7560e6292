package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gramlint/internal/source"
	"gramlint/internal/token"
)

type ReadingOutput struct {
	Lemma string `json:"lemma"`
	Tag   string `json:"tag,omitempty"`
}

type TokenOutput struct {
	Kind     string          `json:"kind"`
	Text     string          `json:"text"`
	Norm     string          `json:"norm,omitempty"`
	Span     source.Span     `json:"span"`
	Readings []ReadingOutput `json:"readings,omitempty"`
}

type SentenceOutput struct {
	Span   source.Span   `json:"span"`
	Tokens []TokenOutput `json:"tokens"`
}

// FormatTokensPretty выводит токены предложений в человекочитаемом формате.
// withReadings adds the dictionary readings of each token.
func FormatTokensPretty(w io.Writer, sentences []*token.Sentence, fs *source.FileSet, withReadings bool) error {
	n := 0
	for si, s := range sentences {
		if _, err := fmt.Fprintf(w, "# sentence %d\n", si+1); err != nil {
			return err
		}
		for i := range s.Tokens {
			tok := &s.Tokens[i]
			if tok.IsSentStart() {
				continue
			}
			n++
			startPos, endPos := fs.Resolve(tok.Span)
			fmt.Fprintf(w, "%3d: %-10s %q", n, tok.Kind.String(), tok.Text)
			if tok.Norm != tok.Text && !tok.IsSpace() {
				fmt.Fprintf(w, " norm=%q", tok.Norm)
			}
			fmt.Fprintf(w, " at %d:%d-%d:%d", startPos.Line, startPos.Col, endPos.Line, endPos.Col)
			if withReadings && !tok.IsSpace() {
				parts := make([]string, 0, len(tok.Readings))
				for _, r := range tok.Readings {
					tag := r.Tag
					if tag == "" {
						tag = "?"
					}
					parts = append(parts, r.Lemma+"/"+tag)
				}
				fmt.Fprintf(w, " [%s]", strings.Join(parts, " "))
			}
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
	}
	return nil
}

// FormatTokensJSON выводит токены в JSON формате
func FormatTokensJSON(w io.Writer, sentences []*token.Sentence, withReadings bool) error {
	output := make([]SentenceOutput, 0, len(sentences))
	for _, s := range sentences {
		so := SentenceOutput{Span: s.Span, Tokens: make([]TokenOutput, 0, len(s.Tokens))}
		for i := range s.Tokens {
			tok := &s.Tokens[i]
			if tok.IsSentStart() {
				continue
			}
			out := TokenOutput{
				Kind: tok.Kind.String(),
				Text: tok.Text,
				Span: tok.Span,
			}
			if tok.Norm != tok.Text {
				out.Norm = tok.Norm
			}
			if withReadings && !tok.IsSpace() {
				for _, r := range tok.Readings {
					out.Readings = append(out.Readings, ReadingOutput{Lemma: r.Lemma, Tag: r.Tag})
				}
			}
			so.Tokens = append(so.Tokens, out)
		}
		output = append(output, so)
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
