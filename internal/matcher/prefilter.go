package matcher

import (
	"strings"

	aho "github.com/petar-dambovaliev/aho-corasick"

	"gramlint/internal/pattern"
	"gramlint/internal/token"
)

// Prefilter skips rules whose required literals do not all occur in a
// sentence. It never drops a rule that could match.
type Prefilter struct {
	automaton aho.AhoCorasick
	literals  []string
	need      map[*pattern.Rule][]int
}

// NewPrefilter builds one automaton over the required literals of rules.
// Rules must be compiled.
func NewPrefilter(rules []*pattern.Rule) *Prefilter {
	p := &Prefilter{need: make(map[*pattern.Rule][]int, len(rules))}
	ids := make(map[string]int)
	for _, r := range rules {
		lits := r.Literals()
		if len(lits) == 0 {
			continue
		}
		need := make([]int, 0, len(lits))
		for _, lit := range lits {
			id, ok := ids[lit]
			if !ok {
				id = len(p.literals)
				ids[lit] = id
				p.literals = append(p.literals, lit)
			}
			need = append(need, id)
		}
		p.need[r] = need
	}
	if len(p.literals) > 0 {
		builder := aho.NewAhoCorasickBuilder(aho.Opts{DFA: true})
		p.automaton = builder.Build(p.literals)
	}
	return p
}

// Seen marks which literals occur in a sentence.
type Seen []bool

// Scan finds the literals present among the folded norms of s.
func (p *Prefilter) Scan(s *token.Sentence) Seen {
	seen := make(Seen, len(p.literals))
	if len(p.literals) == 0 {
		return seen
	}
	var b strings.Builder
	for i := 1; i < s.ContentLen(); i++ {
		b.WriteByte(0)
		b.WriteString(pattern.Fold(s.Content(i).Norm))
	}
	iter := p.automaton.IterOverlappingByte([]byte(b.String()))
	for next := iter.Next(); next != nil; next = iter.Next() {
		seen[next.Pattern()] = true
	}
	return seen
}

// Allows reports whether r may match a sentence with the given literals.
func (p *Prefilter) Allows(r *pattern.Rule, seen Seen) bool {
	for _, id := range p.need[r] {
		if !seen[id] {
			return false
		}
	}
	return true
}
