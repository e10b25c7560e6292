package pattern

import (
	"regexp"
)

// MatcherKind is the closed set of token-value matchers.
type MatcherKind uint8

const (
	// MatchAny accepts every token value.
	MatchAny MatcherKind = iota
	// MatchLiteral compares the token value with Text.
	MatchLiteral
	// MatchRegex matches the whole token value against Text.
	MatchRegex
	// MatchBackref compares the token value with the first token bound to element Ref.
	MatchBackref
	// MatchSentStart accepts only the start-of-sentence marker.
	MatchSentStart
)

func (k MatcherKind) String() string {
	switch k {
	case MatchAny:
		return "any"
	case MatchLiteral:
		return "literal"
	case MatchRegex:
		return "regex"
	case MatchBackref:
		return "backref"
	case MatchSentStart:
		return "sent_start"
	}
	return "invalid"
}

// TokenMatcher tests the value of a token (surface form or lemma).
type TokenMatcher struct {
	Kind MatcherKind
	Text string // литерал или исходник regex
	Ref  int    // для MatchBackref: индекс элемента (с нуля)
	// CaseSensitive overrides the rule default when non-nil.
	CaseSensitive *bool

	re   *regexp.Regexp
	fold bool // сравнение без учёта регистра (вычисляется в Compile)
}

// Regexp returns the compiled, anchored regex of a MatchRegex matcher.
func (m *TokenMatcher) Regexp() *regexp.Regexp { return m.re }

// IgnoreCase reports the effective case handling after Compile.
func (m *TokenMatcher) IgnoreCase() bool { return m.fold }

// Cond is a single-token condition shared by elements and exceptions.
type Cond struct {
	Token TokenMatcher
	// Inflected makes Token match reading lemmas instead of the surface form.
	Inflected bool
	// POS is a regex over reading tags; empty means any tag.
	POS string
	// AllReadings requires every reading to satisfy the condition.
	AllReadings bool
	Negate      bool

	pos *regexp.Regexp
}

// POSRegexp returns the compiled, anchored tag regex or nil.
func (c *Cond) POSRegexp() *regexp.Regexp { return c.pos }

// Tri is an optional boolean.
type Tri uint8

const (
	TriAny Tri = iota
	TriYes
	TriNo
)

// Unbounded marks an open upper bound of Max or Skip.
const Unbounded = -1

// Element is one positional constraint of a rule.
type Element struct {
	Cond
	Min, Max int // диапазон повторений, по умолчанию [1,1]
	// Skip allows up to Skip intervening tokens before the element; Unbounded
	// tries every count up to the sentence end, smallest first.
	Skip int
	// SpaceBefore constrains whitespace between this and the previous token.
	SpaceBefore Tri
	Exceptions  []Exception
}

// Scope tells which token an exception is tested against.
type Scope uint8

const (
	// ScopeCurrent tests the candidate token and every token skipped before it.
	ScopeCurrent Scope = iota
	// ScopeNext tests the token following the candidate.
	ScopeNext
	// ScopePrevious tests the token preceding the candidate.
	ScopePrevious
)

func ParseScope(s string) (Scope, bool) {
	switch s {
	case "", "current":
		return ScopeCurrent, true
	case "next":
		return ScopeNext, true
	case "previous":
		return ScopePrevious, true
	}
	return ScopeCurrent, false
}

// Exception invalidates an element match when its Cond holds.
type Exception struct {
	Cond
	Scope Scope
}
