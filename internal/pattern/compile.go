package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// ConfigError reports a malformed rule. It is raised at load time only.
type ConfigError struct {
	RuleID string
	Field  string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("rule %s: %v", e.RuleID, e.Err)
	}
	return fmt.Sprintf("rule %s: %s: %v", e.RuleID, e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

var (
	errEmptyPattern = errors.New("pattern has no elements")
	errRange        = errors.New("invalid occurrence range")
	errSkip         = errors.New("invalid skip bound")
)

// Compile validates the rule and compiles its regexes. It is idempotent.
func (r *Rule) Compile() error {
	if r.compiled {
		return nil
	}
	if strings.TrimSpace(r.ID) == "" {
		return &ConfigError{RuleID: "<unnamed>", Field: "id", Err: errors.New("missing id")}
	}
	if err := compileElements(r, "pattern", r.Elements); err != nil {
		return err
	}
	if r.Source != nil {
		if err := compileElements(r, "source", r.Source); err != nil {
			return err
		}
	}

	n := len(r.Elements)
	r.markFrom, r.markTo = 0, n-1
	if r.Mark != nil {
		r.markFrom, r.markTo = r.Mark.From, r.Mark.To
	}
	if r.markFrom < 0 || r.markTo >= n || r.markFrom > r.markTo {
		return r.errf("mark", "mark range %d..%d outside 1..%d", r.markFrom+1, r.markTo+1, n)
	}
	onlyStart := true
	for i := r.markFrom; i <= r.markTo; i++ {
		if r.Elements[i].Token.Kind != MatchSentStart {
			onlyStart = false
		}
	}
	if onlyStart {
		return r.errf("mark", "mark range covers only the sentence start marker")
	}

	if err := checkTemplate(r, "message", r.Message, n); err != nil {
		return err
	}
	for i, s := range r.Suggestions {
		if err := checkTemplate(r, fmt.Sprintf("suggestion[%d]", i), s.Template, n); err != nil {
			return err
		}
	}
	if r.Action != nil {
		if err := compileAction(r); err != nil {
			return err
		}
	}

	r.literals = requiredLiterals(r.Elements)
	r.compiled = true
	return nil
}

func (r *Rule) errf(field, format string, args ...any) *ConfigError {
	return &ConfigError{RuleID: r.ID, Field: field, Err: fmt.Errorf(format, args...)}
}

func compileElements(r *Rule, what string, elems []Element) error {
	if len(elems) == 0 {
		return &ConfigError{RuleID: r.ID, Field: what, Err: errEmptyPattern}
	}
	for i := range elems {
		e := &elems[i]
		field := fmt.Sprintf("%s[%d]", what, i+1)
		switch {
		case e.Min < 0, e.Max == 0, e.Max < Unbounded, e.Max != Unbounded && e.Max < e.Min:
			return &ConfigError{RuleID: r.ID, Field: field, Err: fmt.Errorf("%w: [%d,%d]", errRange, e.Min, e.Max)}
		case e.Skip < Unbounded:
			return &ConfigError{RuleID: r.ID, Field: field, Err: fmt.Errorf("%w: %d", errSkip, e.Skip)}
		}
		if e.Token.Kind == MatchSentStart {
			if i != 0 {
				return r.errf(field, "sentence start marker is only allowed as the first element")
			}
			if e.Negate || e.Min != 1 || e.Max != 1 {
				return r.errf(field, "sentence start marker cannot be negated or repeated")
			}
		}
		if err := compileCond(r, field, &e.Cond, i); err != nil {
			return err
		}
		for j := range e.Exceptions {
			ex := &e.Exceptions[j]
			if ex.Token.Kind == MatchSentStart {
				return r.errf(fmt.Sprintf("%s.exception[%d]", field, j+1), "sentence start marker is not allowed in exceptions")
			}
			if err := compileCond(r, fmt.Sprintf("%s.exception[%d]", field, j+1), &ex.Cond, i); err != nil {
				return err
			}
		}
	}
	return nil
}

// compileCond compiles c; backrefs must point below limit.
func compileCond(r *Rule, field string, c *Cond, limit int) error {
	cs := r.CaseSensitive
	if c.Token.CaseSensitive != nil {
		cs = *c.Token.CaseSensitive
	}
	c.Token.fold = !cs
	switch c.Token.Kind {
	case MatchLiteral:
		if c.Token.Text == "" {
			return r.errf(field, "empty literal")
		}
	case MatchRegex:
		expr := "^(?:" + c.Token.Text + ")$"
		if !cs {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return &ConfigError{RuleID: r.ID, Field: field, Err: err}
		}
		c.Token.re = re
	case MatchBackref:
		if c.Token.Ref < 0 || c.Token.Ref >= limit {
			return r.errf(field, "back-reference \\%d must point to an earlier element", c.Token.Ref+1)
		}
	case MatchAny, MatchSentStart:
	default:
		return r.errf(field, "unknown matcher kind %d", c.Token.Kind)
	}
	if c.POS != "" {
		re, err := regexp.Compile("^(?:" + c.POS + ")$")
		if err != nil {
			return &ConfigError{RuleID: r.ID, Field: field + ".postag", Err: err}
		}
		c.pos = re
	}
	if c.AllReadings && c.POS == "" {
		return r.errf(field, "all_readings requires a postag")
	}
	return nil
}

func compileAction(r *Rule) error {
	a := r.Action
	switch a.Kind {
	case ActionFilter, ActionRemove:
		if a.POS == "" {
			return r.errf("action", "%s requires a postag", a.Kind)
		}
		re, err := regexp.Compile("^(?:" + a.POS + ")$")
		if err != nil {
			return &ConfigError{RuleID: r.ID, Field: "action.postag", Err: err}
		}
		a.pos = re
	case ActionMark:
		if a.POS == "" {
			return r.errf("action", "mark requires a tag")
		}
	case ActionReplace:
		if len(a.Readings) == 0 {
			return r.errf("action", "replace requires at least one reading")
		}
	default:
		return r.errf("action", "unknown action")
	}
	return nil
}

func checkTemplate(r *Rule, field, tmpl string, n int) error {
	for _, ref := range References(tmpl) {
		if ref < 1 || ref > n {
			return r.errf(field, "reference \\%d outside 1..%d", ref, n)
		}
	}
	return nil
}

// requiredLiterals collects folded literals of elements that must be present
// in every match. Case-sensitive literals are folded too: equal strings have
// equal folds, so folded presence is still necessary.
func requiredLiterals(elems []Element) []string {
	var out []string
	seen := make(map[string]struct{})
	for i := range elems {
		e := &elems[i]
		if e.Token.Kind != MatchLiteral || e.Negate || e.Min < 1 || e.Inflected {
			continue
		}
		lit := Fold(e.Token.Text)
		if _, ok := seen[lit]; ok {
			continue
		}
		seen[lit] = struct{}{}
		out = append(out, lit)
	}
	return out
}

// Fold maps every rune to the smallest member of its simple case-folding
// orbit. Two strings are equal under strings.EqualFold exactly when their
// Fold values are equal.
func Fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		b.WriteRune(foldRune(r))
	}
	return b.String()
}

func foldRune(r rune) rune {
	if r < 0x80 {
		if 'a' <= r && r <= 'z' {
			return r - 'a' + 'A'
		}
		return r
	}
	m := r
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		m = min(m, f)
	}
	return m
}
