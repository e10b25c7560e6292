package token_test

import (
	"testing"

	"gramlint/internal/source"
	"gramlint/internal/token"
)

func mk(kind token.Kind, start uint32, text string) token.Token {
	return token.Token{
		Kind: kind,
		Span: source.Span{Start: start, End: start + uint32(len(text))}, // #nosec G115 -- test input is tiny
		Text: text,
		Norm: text,
	}
}

func sampleTokens() []token.Token {
	return []token.Token{
		mk(token.Word, 10, "the"),
		mk(token.Space, 13, " "),
		mk(token.Word, 14, "walk"),
		mk(token.Punct, 18, "."),
	}
}

func TestNewSentenceMetadata(t *testing.T) {
	toks := sampleTokens()
	readings := [][]token.Reading{
		{{Lemma: "the", Tag: "DT"}},
		nil,
		{{Lemma: "walk", Tag: "NN"}, {Lemma: "walk", Tag: "VB"}},
		nil,
	}
	s := token.NewSentence(source.Span{Start: 10, End: 19}, "the walk.", toks, readings)

	if len(s.Tokens) != 5 {
		t.Fatalf("expected marker + 4 tokens, got %d", len(s.Tokens))
	}
	if !s.Tokens[0].IsSentStart() || !s.Tokens[0].HasTag(token.SentStartTag) {
		t.Fatalf("token 0 must be the start marker, got %+v", s.Tokens[0])
	}
	if s.ContentLen() != 4 {
		t.Fatalf("ContentLen = %d, want 4", s.ContentLen())
	}
	if got := s.Content(1).Text; got != "the" || !s.Content(1).First {
		t.Fatalf("content 1 = %q first=%v", got, s.Content(1).First)
	}
	walk := s.Content(2)
	if walk.Text != "walk" || !walk.SpaceBefore || walk.First {
		t.Fatalf("unexpected walk token %+v", walk)
	}
	if s.Content(3).SpaceBefore {
		t.Fatalf("period must not have space before")
	}
	if got := s.Tokens[2].Readings; len(got) != 1 || !got[0].Unknown() || got[0].Lemma != " " {
		t.Fatalf("space token readings = %+v", got)
	}
	if got := s.Slice(14, 18); got != "walk" {
		t.Fatalf("Slice = %q", got)
	}
}

func TestWithReadingsCopies(t *testing.T) {
	toks := sampleTokens()
	s := token.NewSentence(source.Span{Start: 10, End: 19}, "the walk.", toks, make([][]token.Reading, len(toks)))
	nn := []token.Reading{{Lemma: "walk", Tag: "NN"}}
	s2 := s.WithReadings(map[int][]token.Reading{3: nn})

	if s2 == s {
		t.Fatalf("expected a new sentence")
	}
	if s.Tokens[3].HasTag("NN") {
		t.Fatalf("original sentence was modified")
	}
	if !s2.Tokens[3].HasTag("NN") {
		t.Fatalf("new sentence lacks the replaced reading")
	}
	if s.WithReadings(nil) != s {
		t.Fatalf("empty change set must return the same sentence")
	}
}

func TestVerifyCover(t *testing.T) {
	toks := sampleTokens()
	if err := token.VerifyCover(toks, "the walk.", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gap := append([]token.Token(nil), toks[:1]...)
	gap = append(gap, toks[2:]...)
	if err := token.VerifyCover(gap, "the walk.", 10); err == nil {
		t.Fatalf("expected error for a gap")
	}
	if err := token.VerifyCover(toks[:3], "the walk.", 10); err == nil {
		t.Fatalf("expected error for short cover")
	}
}
