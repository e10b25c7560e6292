package language

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	langtag "golang.org/x/text/language"

	"gramlint/internal/dict"
	"gramlint/internal/pattern"
	"gramlint/internal/token"
)

func TestBuiltinLanguages(t *testing.T) {
	r, err := NewRegistry(Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if errs := r.Errors(); len(errs) != 0 {
		t.Fatalf("builtin data failed to load: %v", errs[0])
	}
	var codes []string
	for _, info := range r.Languages() {
		codes = append(codes, info.Code)
	}
	if got := strings.Join(codes, ","); got != "de,en,pl,uk" {
		t.Fatalf("languages = %s", got)
	}
	en, err := r.Get("en")
	if err != nil {
		t.Fatal(err)
	}
	if en.Rules.Rule("EN_A_VS_AN") == nil || len(en.Rules.FalseFriendsFor("de")) != 1 {
		t.Fatalf("en rules incomplete")
	}
	if en.Disambiguator.Len() == 0 {
		t.Fatalf("en has no disambiguation rules")
	}
}

func TestResolveVariants(t *testing.T) {
	r, err := NewRegistry(Options{})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		in, want string
		ok       bool
	}{
		{"en", "en", true},
		{"de-DE", "de", true},
		{"DE-at", "de", true},
		{"en-IE", "en", true},
		{"zz-ZZ", "", false},
		{"xx", "", false},
	}
	for _, tt := range tests {
		got, ok := r.Resolve(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Resolve(%q) = %q, %v", tt.in, got, ok)
		}
	}
	_, err = r.Get("tlh")
	var ue *UnknownLanguageError
	if !errors.As(err, &ue) || ue.Code != "tlh" {
		t.Fatalf("Get(tlh) = %v", err)
	}
}

const goodLang = `
[language]
name = "Good"
code = "gd"

[[rule]]
id = "OK"
message = "ok"
  [[rule.pattern]]
  token = "x"
`

func TestBrokenLanguageIsUnavailable(t *testing.T) {
	fsys := fstest.MapFS{
		"gd/language.toml": {Data: []byte(goodLang)},
		"bd/language.toml": {Data: []byte("[language]\ncode = \"bd\"\n[[rule]]\nid = \"BROKEN\"\nmessage = \"m\"\n[[rule.pattern]]\nregex = \"(\"\n")},
		"xx/language.toml": {Data: []byte("[language]\ncode = \"xx\"\nunknown = 1\n")},
		"notes.txt":        {Data: []byte("ignored")},
	}
	r, err := NewRegistry(Options{FS: fsys})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Get("gd"); err != nil {
		t.Fatalf("good language: %v", err)
	}
	_, err = r.Get("bd")
	var ua *UnavailableError
	if !errors.As(err, &ua) {
		t.Fatalf("Get(bd) = %v", err)
	}
	var ce *pattern.ConfigError
	if !errors.As(err, &ce) || ce.RuleID != "BROKEN" {
		t.Fatalf("config error lost: %v", err)
	}
	if _, err := r.Get("xx"); !errors.As(err, &ua) || !strings.Contains(err.Error(), "unknown keys") {
		t.Fatalf("Get(xx) = %v", err)
	}
	if len(r.Errors()) != 2 || len(r.Languages()) != 1 {
		t.Fatalf("errors = %d, languages = %d", len(r.Errors()), len(r.Languages()))
	}
}

func TestUnregisteredCodeLoads(t *testing.T) {
	lang := strings.ReplaceAll(goodLang, `code = "gd"`, `code = "zq"`)
	r, err := NewRegistry(Options{FS: fstest.MapFS{"zq/language.toml": {Data: []byte(lang)}}})
	if err != nil {
		t.Fatal(err)
	}
	l, err := r.Get("zq")
	if err != nil {
		t.Fatalf("Get(zq): %v", err)
	}
	if l.Tag != langtag.Und {
		t.Fatalf("tag = %v, want und", l.Tag)
	}

	for _, code := range []string{"de", "zq", "bd"} {
		if _, err := parseTag(code); err != nil {
			t.Errorf("parseTag(%q): %v", code, err)
		}
	}
	if _, err := parseTag("not a tag"); err == nil {
		t.Fatalf("parseTag accepted a malformed code")
	}
}

func TestCompiledDictionaryAndUserWords(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "gd"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "gd", "language.toml"), []byte(goodLang), 0o600); err != nil {
		t.Fatal(err)
	}
	err := dict.CompileFile(filepath.Join(dir, "gd", "dictionary.bin"), []dict.Entry{
		{Form: "house", Lemma: "house", Tag: "NN"},
	})
	if err != nil {
		t.Fatal(err)
	}
	user := dict.NewMap()
	user.Add(dict.Entry{Form: "gramlint", Lemma: "gramlint", Tag: dict.UserTag})

	r, err := NewRegistry(Options{Dir: dir, UserDicts: map[string]dict.Dictionary{"gd": user}})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	lang, err := r.Get("gd")
	if err != nil {
		t.Fatal(err)
	}
	if rs := lang.Tagger.Tag(token.Token{Kind: token.Word, Norm: "House"}); len(rs) != 1 || rs[0].Tag != "NN" {
		t.Fatalf("compiled lookup = %v", rs)
	}
	if rs := lang.Dictionary.Lookup("gramlint"); len(rs) != 1 || rs[0].Tag != dict.UserTag {
		t.Fatalf("user lookup = %v", rs)
	}
}

func TestUkrainianKeepsApostrophes(t *testing.T) {
	r, err := NewRegistry(Options{})
	if err != nil {
		t.Fatal(err)
	}
	uk, err := r.Get("uk")
	if err != nil {
		t.Fatal(err)
	}
	toks, err := uk.Tokenizer.Tokenize("п‘ять", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(toks) != 1 || toks[0].Norm != "п'ять" {
		t.Fatalf("tokens = %+v", toks)
	}
}
