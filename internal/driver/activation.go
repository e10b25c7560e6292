package driver

import (
	"gramlint/internal/pattern"
)

// Activation selects the rules of a request.
//
// A non-empty Enabled list runs exactly the listed rules. Otherwise every
// default-on rule not listed in Disabled runs. A rule listed in both runs.
type Activation struct {
	Enabled  []string
	Disabled []string
}

// Active reports whether r runs under a.
func (a Activation) Active(r *pattern.Rule) bool {
	return a.compile().active(r)
}

// Filter returns the active rules in their original order.
func (a Activation) Filter(rules []*pattern.Rule) []*pattern.Rule {
	set := a.compile()
	out := make([]*pattern.Rule, 0, len(rules))
	for _, r := range rules {
		if set.active(r) {
			out = append(out, r)
		}
	}
	return out
}

type activeSet struct {
	enabled  map[string]struct{}
	disabled map[string]struct{}
}

func (a Activation) compile() activeSet {
	return activeSet{enabled: toSet(a.Enabled), disabled: toSet(a.Disabled)}
}

func (s activeSet) active(r *pattern.Rule) bool {
	if len(s.enabled) > 0 {
		_, ok := s.enabled[r.ID]
		return ok
	}
	if _, off := s.disabled[r.ID]; off {
		return false
	}
	return r.DefaultOn
}

func toSet(ids []string) map[string]struct{} {
	if len(ids) == 0 {
		return nil
	}
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			m[id] = struct{}{}
		}
	}
	return m
}
