package segment

import (
	"strings"
	"testing"
)

func pieces(text string, rs []Range) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = text[r.Start:r.End]
	}
	return out
}

func TestSplit(t *testing.T) {
	seg := New(Options{Abbreviations: []string{"Mr.", "e.g", "z.B."}})
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"no boundary", "ein kleiner test", []string{"ein kleiner test"}},
		{"two sentences", "This is an test. We will berate you.", []string{"This is an test. ", "We will berate you."}},
		{"abbreviation", "Mr. Smith is here. He left.", []string{"Mr. Smith is here. ", "He left."}},
		{"dotted abbreviation", "Use tools, e.g. Hammers. Fine.", []string{"Use tools, e.g. Hammers. ", "Fine."}},
		{"initial", "J. Doe wrote it.", []string{"J. Doe wrote it."}},
		{"lowercase continues", "It costs 3. maybe more.", []string{"It costs 3. maybe more."}},
		{"decimal", "Pi is 3.14 roughly.", []string{"Pi is 3.14 roughly."}},
		{"cluster", "Really?! Yes... Fine… Ok", []string{"Really?! ", "Yes... ", "Fine… ", "Ok"}},
		{"quoted end", "He said \"Stop.\" Then he left.", []string{"He said \"Stop.\" ", "Then he left."}},
		{"german quotes", "Er sagte „Halt.“ Dann ging er.", []string{"Er sagte „Halt.“ ", "Dann ging er."}},
		{"paragraph", "Heading\n\nbody text", []string{"Heading\n\n", "body text"}},
		{"trailing space", "Done.  ", []string{"Done.  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pieces(tt.text, seg.Split(tt.text))
			if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
			if strings.Join(got, "") != tt.text {
				t.Fatalf("ranges do not cover the input")
			}
		})
	}
}

func TestSplitParagraphBreakDisabled(t *testing.T) {
	seg := New(Options{NoParagraphBreak: true})
	text := "Heading\n\nbody text"
	if got := seg.Split(text); len(got) != 1 {
		t.Fatalf("expected one sentence, got %v", pieces(text, got))
	}
}
