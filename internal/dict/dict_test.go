package dict

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gramlint/internal/token"
)

const sampleTSV = `# form	lemma	tag
walk	walk	NN
walk	walk	VB
walks	walk	VBZ
the	the	DT
Berlin		NNP
`

func TestLoadTSV(t *testing.T) {
	m, err := LoadTSV(strings.NewReader(sampleTSV))
	if err != nil {
		t.Fatalf("LoadTSV: %v", err)
	}
	want := []token.Reading{{Lemma: "walk", Tag: "NN"}, {Lemma: "walk", Tag: "VB"}}
	if got := m.Lookup("walk"); !reflect.DeepEqual(got, want) {
		t.Fatalf("Lookup(walk) = %v, want %v", got, want)
	}
	if got := m.Lookup("Berlin"); len(got) != 1 || got[0].Lemma != "Berlin" {
		t.Fatalf("empty lemma must default to the form, got %v", got)
	}
	if m.Lookup("missing") != nil {
		t.Fatalf("expected no readings for a missing form")
	}
}

func TestReadTSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"too few columns", "walk\twalk\n"},
		{"empty form", "\twalk\tNN\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadTSV(strings.NewReader(tt.input)); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestCompiledMatchesMap(t *testing.T) {
	entries, err := ReadTSV(strings.NewReader(sampleTSV))
	if err != nil {
		t.Fatalf("ReadTSV: %v", err)
	}
	path := filepath.Join(t.TempDir(), "en.dict.bin")
	if err := CompileFile(path, entries); err != nil {
		t.Fatalf("CompileFile: %v", err)
	}
	c, err := OpenCompiled(path)
	if err != nil {
		t.Fatalf("OpenCompiled: %v", err)
	}
	defer c.Close()

	m, _ := LoadTSV(strings.NewReader(sampleTSV))
	if c.Len() != m.Len() {
		t.Fatalf("Len = %d, want %d", c.Len(), m.Len())
	}
	for _, form := range []string{"walk", "walks", "the", "Berlin", "absent", "", "zzz"} {
		if got, want := c.Lookup(form), m.Lookup(form); !sameReadings(got, want) {
			t.Errorf("Lookup(%q) = %v, want %v", form, got, want)
		}
	}
}

func TestOpenCompiledRejectsGarbage(t *testing.T) {
	if _, err := newCompiled([]byte("not a dictionary at all!")); err == nil {
		t.Fatalf("expected bad magic error")
	}
	if _, err := newCompiled([]byte("GLD1")); err == nil {
		t.Fatalf("expected short header error")
	}
}

func TestCachedAndLayered(t *testing.T) {
	base, _ := LoadTSV(strings.NewReader(sampleTSV))
	user := NewMap()
	user.Add(Entry{Form: "walk", Lemma: "walk", Tag: UserTag})
	user.Add(Entry{Form: "walk", Lemma: "walk", Tag: "NN"})

	cached, err := NewCached(Layered{base, user}, 4)
	if err != nil {
		t.Fatalf("NewCached: %v", err)
	}
	want := []token.Reading{{Lemma: "walk", Tag: "NN"}, {Lemma: "walk", Tag: "VB"}, {Lemma: "walk", Tag: UserTag}}
	for range 2 {
		if got := cached.Lookup("walk"); !reflect.DeepEqual(got, want) {
			t.Fatalf("Lookup = %v, want %v", got, want)
		}
	}
	if cached.Len() != 1 {
		t.Fatalf("cache holds %d forms, want 1", cached.Len())
	}
}

func TestMemberEncoding(t *testing.T) {
	tests := []struct {
		in   Entry
		want Entry
	}{
		{Entry{Form: "gramlint"}, Entry{Form: "gramlint", Lemma: "gramlint", Tag: UserTag}},
		{Entry{Form: "walks", Lemma: "walk", Tag: "VBZ"}, Entry{Form: "walks", Lemma: "walk", Tag: "VBZ"}},
	}
	for _, tt := range tests {
		if got := decodeMember(encodeMember(tt.in)); got != tt.want {
			t.Errorf("round trip of %+v = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func sameReadings(a, b []token.Reading) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}
