// Package rules turns TOML rule tables into compiled pattern rules.
//
// Ошибка в любом правиле делает весь набор непригодным: вызывающий код
// (language.Registry) помечает язык как недоступный.
package rules

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"gramlint/internal/diag"
	"gramlint/internal/pattern"
	"gramlint/internal/token"
)

// Set is an immutable, compiled rule set of one language.
type Set struct {
	Rules          []*pattern.Rule
	Disambiguation []*pattern.Rule
	FalseFriends   []*pattern.Rule

	byID map[string]*pattern.Rule
}

// Parse decodes and compiles a standalone rule file. Unknown keys are errors.
func Parse(data, name string) (*Set, error) {
	var f File
	meta, err := toml.Decode(data, &f)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", name, err)
	}
	if err := CheckUndecoded(meta); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return Build(&f)
}

// CheckUndecoded reports keys that no field consumed.
func CheckUndecoded(meta toml.MetaData) error {
	keys := meta.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return fmt.Errorf("unknown keys: %s", strings.Join(names, ", "))
}

// Build compiles every table of f. Rule ids must be unique within the set.
func Build(f *File) (*Set, error) {
	s := &Set{byID: make(map[string]*pattern.Rule)}
	order := 0
	add := func(dst *[]*pattern.Rule, specs []RuleSpec, kind string) error {
		for i := range specs {
			group, err := buildGroup(&specs[i], kind)
			if err != nil {
				return err
			}
			id := group[0].ID
			if kind != "disambiguation" {
				if _, dup := s.byID[id]; dup {
					return &pattern.ConfigError{RuleID: id, Field: "id", Err: errors.New("duplicate rule id")}
				}
				s.byID[id] = group[0]
			}
			for _, r := range group {
				r.Order = order
				*dst = append(*dst, r)
			}
			order++
		}
		return nil
	}
	if err := add(&s.Disambiguation, f.Disambiguation, "disambiguation"); err != nil {
		return nil, err
	}
	order = 0
	if err := add(&s.Rules, f.Rules, "rule"); err != nil {
		return nil, err
	}
	if err := add(&s.FalseFriends, f.FalseFriends, "falsefriend"); err != nil {
		return nil, err
	}
	return s, nil
}

// Rule looks up a checking or false-friend rule by id. For rules with
// variants it returns the first variant.
func (s *Set) Rule(id string) *pattern.Rule { return s.byID[id] }

// Len returns the number of distinct checking and false-friend rule ids.
func (s *Set) Len() int { return len(s.byID) }

// FalseFriendsFor returns the false-friend rules for a mother tongue.
func (s *Set) FalseFriendsFor(motherTongue string) []*pattern.Rule {
	if motherTongue == "" {
		return nil
	}
	var out []*pattern.Rule
	for _, r := range s.FalseFriends {
		if strings.EqualFold(r.MotherTongue, motherTongue) {
			out = append(out, r)
		}
	}
	return out
}

// All returns one rule per id, checking and false-friend rules alike,
// sorted by id.
func (s *Set) All() []*pattern.Rule {
	out := make([]*pattern.Rule, 0, len(s.byID))
	for _, r := range s.byID {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// buildGroup compiles a rule, or one rule per variant when variants are given.
func buildGroup(spec *RuleSpec, kind string) ([]*pattern.Rule, error) {
	if len(spec.Variants) == 0 {
		r, err := buildRule(spec, kind)
		if err != nil {
			return nil, err
		}
		return []*pattern.Rule{r}, nil
	}
	if len(spec.Pattern) > 0 {
		return nil, &pattern.ConfigError{RuleID: spec.ID, Field: "pattern", Err: errors.New("rule with variants cannot have its own pattern")}
	}
	out := make([]*pattern.Rule, 0, len(spec.Variants))
	for i := range spec.Variants {
		v := &spec.Variants[i]
		vs := *spec
		vs.Variants = nil
		vs.Pattern = v.Pattern
		if v.Message != "" {
			vs.Message = v.Message
		}
		if v.Short != "" {
			vs.Short = v.Short
		}
		if v.Mark != nil {
			vs.Mark = v.Mark
		}
		if v.Suggestions != nil {
			vs.Suggestions = v.Suggestions
		}
		r, err := buildRule(&vs, kind)
		if err != nil {
			var ce *pattern.ConfigError
			if errors.As(err, &ce) {
				ce.Field = fmt.Sprintf("variant[%d].%s", i+1, ce.Field)
			}
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func buildRule(spec *RuleSpec, kind string) (*pattern.Rule, error) {
	id := strings.TrimSpace(spec.ID)
	if id == "" {
		return nil, &pattern.ConfigError{RuleID: "<unnamed " + kind + ">", Field: "id", Err: errors.New("missing id")}
	}
	fail := func(field string, err error) error {
		return &pattern.ConfigError{RuleID: id, Field: field, Err: err}
	}

	r := &pattern.Rule{
		ID:            id,
		Description:   spec.Description,
		Message:       spec.Message,
		Short:         spec.Short,
		Category:      spec.Category,
		CaseSensitive: spec.CaseSensitive,
		MotherTongue:  spec.MotherTongue,
	}
	sev, err := diag.ParseSeverity(spec.Severity)
	if err != nil {
		return nil, fail("severity", err)
	}
	r.Severity = sev
	switch spec.Default {
	case "", "on":
		r.DefaultOn = true
	case "off":
	default:
		return nil, fail("default", fmt.Errorf("want \"on\" or \"off\", got %q", spec.Default))
	}

	if r.Elements, err = buildElements(spec.Pattern); err != nil {
		return nil, fail("pattern", err)
	}
	if len(spec.Source) > 0 {
		if r.Source, err = buildElements(spec.Source); err != nil {
			return nil, fail("source", err)
		}
	}
	switch len(spec.Mark) {
	case 0:
	case 2:
		r.Mark = &pattern.MarkRange{From: spec.Mark[0] - 1, To: spec.Mark[1] - 1}
	default:
		return nil, fail("mark", errors.New("want [from, to]"))
	}
	for i, sg := range spec.Suggestions {
		c, ok := pattern.ParseCaseConv(sg.Case)
		if !ok {
			return nil, fail(fmt.Sprintf("suggestion[%d].case", i), fmt.Errorf("unknown case conversion %q", sg.Case))
		}
		r.Suggestions = append(r.Suggestions, pattern.Suggestion{Template: sg.Text, Case: c})
	}

	switch kind {
	case "disambiguation":
		if spec.Action == nil {
			return nil, fail("action", errors.New("missing action"))
		}
		a, err := buildAction(spec.Action)
		if err != nil {
			return nil, fail("action", err)
		}
		r.Action = a
	case "falsefriend":
		if spec.MotherTongue == "" {
			return nil, fail("mother_tongue", errors.New("missing mother tongue"))
		}
	default:
		if spec.Message == "" {
			return nil, fail("message", errors.New("missing message"))
		}
	}
	if kind != "disambiguation" && spec.Action != nil {
		return nil, fail("action", errors.New("only disambiguation rules carry actions"))
	}

	if err := r.Compile(); err != nil {
		return nil, err
	}
	return r, nil
}

func buildElements(specs []ElementSpec) ([]pattern.Element, error) {
	out := make([]pattern.Element, 0, len(specs))
	for i := range specs {
		es := &specs[i]
		c, err := buildCond(&es.CondSpec)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i+1, err)
		}
		e := pattern.NewElement(c)
		if es.Min != nil {
			e.Min = *es.Min
		}
		if es.Max != nil {
			e.Max = *es.Max
		} else if es.Min != nil && *es.Min > 1 {
			e.Max = *es.Min
		}
		e.Skip = es.Skip
		if es.SpaceBefore != nil {
			e.SpaceBefore = pattern.TriNo
			if *es.SpaceBefore {
				e.SpaceBefore = pattern.TriYes
			}
		}
		for j := range es.Exceptions {
			ex := &es.Exceptions[j]
			ec, err := buildCond(&ex.CondSpec)
			if err != nil {
				return nil, fmt.Errorf("element %d exception %d: %w", i+1, j+1, err)
			}
			scope, ok := pattern.ParseScope(ex.Scope)
			if !ok {
				return nil, fmt.Errorf("element %d exception %d: unknown scope %q", i+1, j+1, ex.Scope)
			}
			e.Exceptions = append(e.Exceptions, pattern.Exception{Cond: ec, Scope: scope})
		}
		out = append(out, e)
	}
	return out, nil
}

func buildCond(cs *CondSpec) (pattern.Cond, error) {
	c := pattern.Cond{
		Inflected:   cs.Inflected,
		POS:         cs.POS,
		AllReadings: cs.AllReadings,
		Negate:      cs.Negate,
	}
	set := 0
	if cs.Token != "" {
		c.Token = pattern.TokenMatcher{Kind: pattern.MatchLiteral, Text: cs.Token}
		set++
	}
	if cs.Regex != "" {
		c.Token = pattern.TokenMatcher{Kind: pattern.MatchRegex, Text: cs.Regex}
		set++
	}
	if cs.Backref != 0 {
		c.Token = pattern.TokenMatcher{Kind: pattern.MatchBackref, Ref: cs.Backref - 1}
		set++
	}
	if cs.SentStart {
		c.Token = pattern.TokenMatcher{Kind: pattern.MatchSentStart}
		set++
	}
	if set > 1 {
		return c, errors.New("token, regex, backref and sent_start are mutually exclusive")
	}
	c.Token.CaseSensitive = cs.CaseSensitive
	return c, nil
}

func buildAction(as *ActionSpec) (*pattern.Action, error) {
	kind, ok := pattern.ParseActionKind(as.Kind)
	if !ok {
		return nil, fmt.Errorf("unknown action %q", as.Kind)
	}
	a := &pattern.Action{Kind: kind, POS: as.POS, Lemma: as.Lemma}
	for _, rs := range as.Readings {
		a.Readings = append(a.Readings, token.Reading{Lemma: rs.Lemma, Tag: rs.Tag})
	}
	return a, nil
}
