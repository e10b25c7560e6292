package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gramlint/internal/source"
	"gramlint/internal/token"
)

func sampleSentence(fs *source.FileSet) *token.Sentence {
	text := "Hi you"
	fileID := fs.AddVirtual("t.txt", []byte(text))
	sp := func(s, e uint32) source.Span { return source.Span{File: fileID, Start: s, End: e} }
	toks := []token.Token{
		{Kind: token.Word, Span: sp(0, 2), Text: "Hi", Norm: "Hi"},
		{Kind: token.Space, Span: sp(2, 3), Text: " ", Norm: " "},
		{Kind: token.Word, Span: sp(3, 6), Text: "you", Norm: "you"},
	}
	readings := [][]token.Reading{
		{{Lemma: "hi", Tag: "UH"}},
		nil,
		{{Lemma: "you", Tag: "PRP"}},
	}
	return token.NewSentence(sp(0, 6), text, toks, readings)
}

func TestFormatTokensPretty(t *testing.T) {
	fs := source.NewFileSet()
	s := sampleSentence(fs)

	var buf bytes.Buffer
	if err := FormatTokensPretty(&buf, []*token.Sentence{s}, fs, true); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"# sentence 1", `"Hi" at 1:1-1:3 [hi/UH]`, `"you" at 1:4-1:7 [you/PRP]`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "SENT_START") {
		t.Errorf("start marker must not be printed:\n%s", out)
	}
}

func TestFormatTokensJSON(t *testing.T) {
	fs := source.NewFileSet()
	s := sampleSentence(fs)

	var buf bytes.Buffer
	if err := FormatTokensJSON(&buf, []*token.Sentence{s}, false); err != nil {
		t.Fatal(err)
	}
	var out []SentenceOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(out) != 1 || len(out[0].Tokens) != 3 {
		t.Fatalf("unexpected output %+v", out)
	}
	if out[0].Tokens[2].Text != "you" || out[0].Tokens[2].Readings != nil {
		t.Fatalf("token = %+v", out[0].Tokens[2])
	}
}
