package pattern

import (
	"errors"
	"strings"
	"testing"
)

func rule(id string, elems ...Element) *Rule {
	return &Rule{ID: id, Message: "msg", Elements: elems}
}

func TestCompileValidation(t *testing.T) {
	lit := NewElement(Literal("a"))
	bad := func(mut func(e *Element)) Element {
		e := NewElement(Literal("x"))
		mut(&e)
		return e
	}
	tests := []struct {
		name  string
		r     *Rule
		field string
	}{
		{"empty", rule("R"), "pattern"},
		{"negative min", rule("R", bad(func(e *Element) { e.Min = -1 })), "pattern[1]"},
		{"max below min", rule("R", bad(func(e *Element) { e.Min, e.Max = 3, 2 })), "pattern[1]"},
		{"zero max", rule("R", bad(func(e *Element) { e.Min, e.Max = 0, 0 })), "pattern[1]"},
		{"bad skip", rule("R", lit, bad(func(e *Element) { e.Skip = -2 })), "pattern[2]"},
		{"bad regex", rule("R", NewElement(Regex("(a"))), "pattern[1]"},
		{"bad postag", rule("R", NewElement(Tag("[NN"))), "pattern[1].postag"},
		{"forward backref", rule("R", bad(func(e *Element) { e.Token = TokenMatcher{Kind: MatchBackref, Ref: 1} }), lit), "pattern[1]"},
		{"late sent start", rule("R", lit, bad(func(e *Element) { e.Token = TokenMatcher{Kind: MatchSentStart} })), "pattern[2]"},
		{"negated sent start", rule("R", bad(func(e *Element) { e.Token = TokenMatcher{Kind: MatchSentStart}; e.Negate = true }), lit), "pattern[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Compile()
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("Compile() = %v, want ConfigError", err)
			}
			if ce.RuleID != "R" || ce.Field != tt.field {
				t.Fatalf("error = %v, want field %q", ce, tt.field)
			}
		})
	}
}

func TestCompileMarkAndTemplates(t *testing.T) {
	start := NewElement(Cond{Token: TokenMatcher{Kind: MatchSentStart}})
	r := rule("R", start, NewElement(Regex("[a-z].*")))
	if err := r.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if from, to := r.MarkBounds(); from != 0 || to != 1 {
		t.Fatalf("default mark = %d..%d", from, to)
	}

	r = rule("R", start, NewElement(Regex("[a-z].*")))
	r.Mark = &MarkRange{From: 0, To: 0}
	if err := r.Compile(); err == nil {
		t.Fatalf("mark over the marker alone must be rejected")
	}

	r = rule("R", NewElement(Literal("a")))
	r.Suggestions = []Suggestion{{Template: `\2`}}
	if err := r.Compile(); err == nil || !strings.Contains(err.Error(), "suggestion[0]") {
		t.Fatalf("out of range reference: %v", err)
	}
}

func TestCompileRegexIsAnchoredAndFolded(t *testing.T) {
	r := rule("R", NewElement(Regex("an?")))
	if err := r.Compile(); err != nil {
		t.Fatal(err)
	}
	re := r.Elements[0].Token.Regexp()
	for in, want := range map[string]bool{"a": true, "AN": true, "ant": false, "can": false} {
		if re.MatchString(in) != want {
			t.Errorf("MatchString(%q) != %v", in, want)
		}
	}

	cs := true
	r = rule("R", NewElement(Cond{Token: TokenMatcher{Kind: MatchRegex, Text: "an?", CaseSensitive: &cs}}))
	if err := r.Compile(); err != nil {
		t.Fatal(err)
	}
	if r.Elements[0].Token.Regexp().MatchString("AN") {
		t.Fatalf("case-sensitive override ignored")
	}
}

func TestLiterals(t *testing.T) {
	opt := NewElement(Literal("maybe"))
	opt.Min = 0
	neg := NewElement(Literal("not"))
	neg.Negate = true
	infl := NewElement(Literal("be"))
	infl.Inflected = true
	r := rule("R", NewElement(Literal("Wieder")), opt, neg, infl, NewElement(Literal("WIEDER")), NewElement(Regex("x+")))
	if err := r.Compile(); err != nil {
		t.Fatal(err)
	}
	got := r.Literals()
	if len(got) != 1 || got[0] != Fold("wieder") {
		t.Fatalf("Literals() = %q", got)
	}

	cs := rule("CS", NewElement(Literal("dog")))
	cs.CaseSensitive = true
	if err := cs.Compile(); err != nil {
		t.Fatal(err)
	}
	if got := cs.Literals(); len(got) != 1 || got[0] != Fold("dog") {
		t.Fatalf("case-sensitive Literals() = %q, want folded", got)
	}
}

func TestFoldAgreesWithEqualFold(t *testing.T) {
	pairs := [][2]string{
		{"straße", "STRASSE"},
		{"Kelvin", "Kelvin"},
		{"ſ", "S"},
		{"Ünï", "üNÏ"},
		{"σς", "ΣΣ"},
		{"ab", "abc"},
	}
	for _, p := range pairs {
		if got, want := Fold(p[0]) == Fold(p[1]), strings.EqualFold(p[0], p[1]); got != want {
			t.Errorf("Fold(%q)==Fold(%q) is %v, EqualFold is %v", p[0], p[1], got, want)
		}
	}
}

func TestRender(t *testing.T) {
	groups := map[int]string{1: "an", 2: "apple"}
	get := func(n int) (string, bool) { s, ok := groups[n]; return s, ok }
	tests := []struct{ in, want string }{
		{"plain", "plain"},
		{`\1 \2`, "an apple"},
		{`\3!`, "!"},
		{`a\\1`, `a\1`},
		{`tail\`, `tail\`},
		{`\12`, ""},
	}
	for _, tt := range tests {
		if got := Render(tt.in, get); got != tt.want {
			t.Errorf("Render(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if refs := References(`\1 and \\2 and \3`); len(refs) != 2 || refs[0] != 1 || refs[1] != 3 {
		t.Fatalf("References = %v", refs)
	}
}

func TestApplyCase(t *testing.T) {
	tests := []struct {
		s      string
		c      CaseConv
		marked string
		want   string
	}{
		{"an", CasePreserve, "A", "An"},
		{"an", CasePreserve, "a", "an"},
		{"an", CasePreserve, "NASA", "AN"},
		{"éte", CaseStartUpper, "", "Éte"},
		{"Über", CaseStartLower, "", "über"},
		{"x", CaseAllUpper, "", "X"},
		{"", CaseStartUpper, "", ""},
	}
	for _, tt := range tests {
		if got := ApplyCase(tt.s, tt.c, tt.marked); got != tt.want {
			t.Errorf("ApplyCase(%q, %d, %q) = %q, want %q", tt.s, tt.c, tt.marked, got, tt.want)
		}
	}
}
