// Package disambig narrows token readings with ordered pattern rules.
package disambig

import (
	"context"

	"gramlint/internal/matcher"
	"gramlint/internal/pattern"
	"gramlint/internal/token"
)

// Disambiguator applies disambiguation rules in their listed order.
// It is immutable and safe for concurrent use.
type Disambiguator struct {
	rules []*pattern.Rule
}

// New returns a disambiguator over compiled rules carrying an Action.
// Rules without an action are ignored.
func New(rules []*pattern.Rule) *Disambiguator {
	d := &Disambiguator{}
	for _, r := range rules {
		if r.Action != nil {
			d.rules = append(d.rules, r)
		}
	}
	return d
}

// Len returns the number of active rules.
func (d *Disambiguator) Len() int { return len(d.rules) }

// Apply returns a sentence with the actions of every matching rule applied.
// s itself is never modified. The only error is the context's.
func (d *Disambiguator) Apply(ctx context.Context, s *token.Sentence) (*token.Sentence, error) {
	for _, r := range d.rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := matcher.Match(ctx, r, s)
		if err != nil {
			return nil, err
		}
		if len(res) == 0 {
			continue
		}
		changes := make(map[int][]token.Reading)
		for i := range res {
			for _, idx := range res[i].MarkedTokens() {
				tok := &s.Tokens[idx]
				if rs, ok := apply(r.Action, tok); ok {
					changes[idx] = rs
				}
			}
		}
		s = s.WithReadings(changes)
	}
	return s, nil
}

// apply computes the new reading set of tok; ok is false when nothing changes.
func apply(a *pattern.Action, tok *token.AnalyzedToken) ([]token.Reading, bool) {
	switch a.Kind {
	case pattern.ActionFilter, pattern.ActionRemove:
		keep := a.Kind == pattern.ActionFilter
		re := a.POSRegexp()
		out := make([]token.Reading, 0, len(tok.Readings))
		for _, r := range tok.Readings {
			if re.MatchString(r.Tag) == keep {
				out = append(out, r)
			}
		}
		if len(out) == 0 || len(out) == len(tok.Readings) {
			return nil, false
		}
		return out, true
	case pattern.ActionReplace:
		out := make([]token.Reading, len(a.Readings))
		for i, r := range a.Readings {
			if r.Lemma == "" {
				r.Lemma = tok.Norm
			}
			out[i] = r
		}
		return out, true
	case pattern.ActionMark:
		lemma := a.Lemma
		if lemma == "" {
			lemma = tok.Norm
		}
		return []token.Reading{{Lemma: lemma, Tag: a.POS}}, true
	}
	return nil, false
}
