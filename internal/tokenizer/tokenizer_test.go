package tokenizer

import (
	"strings"
	"testing"

	"gramlint/internal/token"
)

func texts(toks []token.Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Text
	}
	return out
}

func TestTokenizeSplitsEverySeparator(t *testing.T) {
	tk := New(Options{})
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"simple", "This is an test.", []string{"This", " ", "is", " ", "an", " ", "test", "."}},
		{"adjacent separators", "Wait...  no!", []string{"Wait", ".", ".", ".", " ", " ", "no", "!"}},
		{"quotes", "«Так» — сказав", []string{"«", "Так", "»", " ", "—", " ", "сказав"}},
		{"numbers", "In 2024, 3 cats", []string{"In", " ", "2024", ",", " ", "3", " ", "cats"}},
		{"zero width", "a\u200bb", []string{"a", "\u200b", "b"}},
		{"umlauts", "öäüß", []string{"öäüß"}},
		{"crlf", "one\r\ntwo", []string{"one", "\r", "\n", "two"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := tk.Tokenize(tt.input, 0, 0)
			if err != nil {
				t.Fatalf("Tokenize: %v", err)
			}
			got := texts(toks)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
			if strings.Join(got, "") != tt.input {
				t.Fatalf("tokens do not reconstruct input")
			}
		})
	}
}

func TestTokenizeKindsAndOffsets(t *testing.T) {
	tk := New(Options{})
	toks, err := tk.Tokenize("Wir 42.", 3, 100)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	wantKinds := []token.Kind{token.Word, token.Space, token.Number, token.Punct}
	for i, k := range wantKinds {
		if toks[i].Kind != k {
			t.Fatalf("token %d kind = %v, want %v", i, toks[i].Kind, k)
		}
		if toks[i].Span.File != 3 {
			t.Fatalf("token %d has file %d", i, toks[i].Span.File)
		}
	}
	if toks[0].Span.Start != 100 || toks[3].Span.End != 107 {
		t.Fatalf("unexpected spans %v .. %v", toks[0].Span, toks[3].Span)
	}
}

func TestCleanNormalizesWithoutTouchingText(t *testing.T) {
	tk := New(Options{Separators: NewSeparators(DefaultPunct, "")})
	input := "м\u2019ята при\u0301клад пере\u00adнос"
	toks, err := tk.Tokenize(input, 0, 0)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	wantNorm := []string{"м'ята", " ", "приклад", " ", "перенос"}
	for i, w := range wantNorm {
		if toks[i].Norm != w {
			t.Errorf("token %d norm = %q, want %q", i, toks[i].Norm, w)
		}
	}
	if strings.Join(texts(toks), "") != input {
		t.Fatalf("surface text changed")
	}
	// NFC: e + U+0301 собирается в é, а не теряет ударение
	if got := Clean("e\u0301t\u00e9"); got != "\u00e9t\u00e9" {
		t.Fatalf("Clean = %q", got)
	}
}

func TestNameInitialRewrite(t *testing.T) {
	rw, err := NewDropRewriter(`(^|\s)[А-ЯІЇЄҐ]\.([А-ЯІЇЄҐ]\.)?([А-ЯІЇЄҐ][а-яіїєґ'-]+)`, []int{1, 3})
	if err != nil {
		t.Fatalf("NewDropRewriter: %v", err)
	}
	tk := New(Options{Rewriters: []Rewriter{rw}})

	input := "Т.Шевченко і Т.Г.Шевченко."
	toks, err := tk.Tokenize(input, 0, 0)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if strings.Join(texts(toks), "") != input {
		t.Fatalf("rewrite broke reconstruction: %q", texts(toks))
	}
	var norms []string
	for _, tok := range toks {
		if !tok.IsSpace() {
			norms = append(norms, tok.Norm)
		}
	}
	if got := strings.Join(norms, "|"); got != "Шевченко|і|Шевченко|." {
		t.Fatalf("norms = %s", got)
	}
	if toks[0].Text != "Т.Шевченко" {
		t.Fatalf("removed initials must stay with the surname, got %q", toks[0].Text)
	}
}

func TestDropRewriterKeepsUnmatchedText(t *testing.T) {
	rw, err := NewDropRewriter(`x+`, nil)
	if err != nil {
		t.Fatalf("NewDropRewriter: %v", err)
	}
	out, pos := rw.Rewrite("axxbx")
	if out != "ab" {
		t.Fatalf("out = %q", out)
	}
	if len(pos) != 2 || pos[0] != 0 || pos[1] != 3 {
		t.Fatalf("pos = %v", pos)
	}
	if _, err := NewDropRewriter(`(a)`, []int{2}); err == nil {
		t.Fatalf("expected error for a missing group")
	}
}

func TestTokenizeEmpty(t *testing.T) {
	toks, err := New(Options{}).Tokenize("", 0, 0)
	if err != nil || len(toks) != 0 {
		t.Fatalf("got %v, %v", toks, err)
	}
}
