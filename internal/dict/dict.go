// Package dict provides morphological dictionaries behind one lookup contract.
//
// Назначение: отдать упорядоченный список чтений (lemma+tag) для словоформы.
// Все реализации неизменяемы после загрузки и безопасны для параллельного чтения;
// Cached синхронизирован внутри.
package dict

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"gramlint/internal/token"
)

// Dictionary maps a word form to its readings in dictionary order.
// The returned slice must not be modified by callers.
type Dictionary interface {
	Lookup(form string) []token.Reading
}

// Entry is one form/lemma/tag triple.
type Entry struct {
	Form  string
	Lemma string
	Tag   string
}

// Map is a hashmap dictionary.
type Map struct {
	m map[string][]token.Reading
}

func NewMap() *Map {
	return &Map{m: make(map[string][]token.Reading)}
}

// Add appends a reading for e.Form unless the same reading is already present.
// Add must not be called once the map is shared between sessions.
func (d *Map) Add(e Entry) {
	r := token.Reading{Lemma: e.Lemma, Tag: e.Tag}
	if r.Lemma == "" {
		r.Lemma = e.Form
	}
	for _, have := range d.m[e.Form] {
		if have == r {
			return
		}
	}
	d.m[e.Form] = append(d.m[e.Form], r)
}

func (d *Map) Lookup(form string) []token.Reading {
	return d.m[form]
}

// Len returns the number of distinct forms.
func (d *Map) Len() int { return len(d.m) }

// Entries returns all entries sorted by form; readings keep their order.
func (d *Map) Entries() []Entry {
	forms := make([]string, 0, len(d.m))
	for f := range d.m {
		forms = append(forms, f)
	}
	sort.Strings(forms)
	out := make([]Entry, 0, len(forms))
	for _, f := range forms {
		for _, r := range d.m[f] {
			out = append(out, Entry{Form: f, Lemma: r.Lemma, Tag: r.Tag})
		}
	}
	return out
}

// ReadTSV parses "form<TAB>lemma<TAB>tag" lines. Blank lines and lines
// starting with '#' are skipped; an empty lemma column means the form itself.
func ReadTSV(r io.Reader) ([]Entry, error) {
	var out []Entry
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		cols := strings.Split(text, "\t")
		if len(cols) != 3 {
			return nil, fmt.Errorf("line %d: expected 3 tab-separated columns, got %d", line, len(cols))
		}
		if cols[0] == "" {
			return nil, fmt.Errorf("line %d: empty form", line)
		}
		out = append(out, Entry{Form: cols[0], Lemma: cols[1], Tag: cols[2]})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadTSV reads a TSV dictionary into a Map.
func LoadTSV(r io.Reader) (*Map, error) {
	entries, err := ReadTSV(r)
	if err != nil {
		return nil, err
	}
	m := NewMap()
	for _, e := range entries {
		m.Add(e)
	}
	return m, nil
}

// Layered merges several dictionaries: readings of earlier layers come first,
// duplicates are dropped.
type Layered []Dictionary

func (l Layered) Lookup(form string) []token.Reading {
	var out []token.Reading
	for _, d := range l {
		for _, r := range d.Lookup(form) {
			if !containsReading(out, r) {
				out = append(out, r)
			}
		}
	}
	return out
}

func containsReading(rs []token.Reading, r token.Reading) bool {
	for _, have := range rs {
		if have == r {
			return true
		}
	}
	return false
}
