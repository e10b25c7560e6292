package pattern

import (
	"regexp"

	"gramlint/internal/diag"
	"gramlint/internal/token"
)

// CaseConv adjusts the case of a rendered suggestion.
type CaseConv uint8

const (
	CaseNone CaseConv = iota
	// CasePreserve upper-cases the first letter when the marked text starts uppercase.
	CasePreserve
	CaseStartUpper
	CaseStartLower
	CaseAllUpper
	CaseAllLower
)

func ParseCaseConv(s string) (CaseConv, bool) {
	switch s {
	case "", "none":
		return CaseNone, true
	case "preserve":
		return CasePreserve, true
	case "startupper":
		return CaseStartUpper, true
	case "startlower":
		return CaseStartLower, true
	case "allupper":
		return CaseAllUpper, true
	case "alllower":
		return CaseAllLower, true
	}
	return CaseNone, false
}

// Suggestion is a replacement template; \N refers to element N (1-based).
type Suggestion struct {
	Template string
	Case     CaseConv
}

// ActionKind enumerates disambiguation actions.
type ActionKind uint8

const (
	// ActionFilter keeps readings whose tag matches POS.
	ActionFilter ActionKind = iota + 1
	// ActionReplace replaces the reading set with Readings.
	ActionReplace
	// ActionMark sets a single reading with tag POS unconditionally.
	ActionMark
	// ActionRemove drops readings whose tag matches POS.
	ActionRemove
)

func ParseActionKind(s string) (ActionKind, bool) {
	switch s {
	case "filter":
		return ActionFilter, true
	case "replace":
		return ActionReplace, true
	case "mark":
		return ActionMark, true
	case "remove":
		return ActionRemove, true
	}
	return 0, false
}

func (k ActionKind) String() string {
	switch k {
	case ActionFilter:
		return "filter"
	case ActionReplace:
		return "replace"
	case ActionMark:
		return "mark"
	case ActionRemove:
		return "remove"
	}
	return "none"
}

// Action is applied by the disambiguator to the marked tokens of a match.
type Action struct {
	Kind     ActionKind
	POS      string          // regex для filter/remove, тег для mark
	Lemma    string          // для mark; пусто = нормализованная форма токена
	Readings []token.Reading // для replace; пустая лемма = форма токена

	pos *regexp.Regexp
}

// POSRegexp returns the compiled tag regex of filter/remove actions.
func (a *Action) POSRegexp() *regexp.Regexp { return a.pos }

// Rule is a compiled pattern rule. After Compile it must not be modified.
type Rule struct {
	ID          string
	Description string
	Message     string // шаблон с \N
	Short       string
	Category    string
	Severity    diag.Severity
	DefaultOn   bool
	// CaseSensitive is inherited by token matchers that do not override it.
	CaseSensitive bool
	Elements      []Element
	// Mark selects the elements whose tokens form the reported span;
	// nil marks the whole pattern.
	Mark        *MarkRange
	Suggestions []Suggestion

	// Action is set for disambiguation rules.
	Action *Action
	// MotherTongue is set for false-friend rules.
	MotherTongue string
	// Source must match the paired source sentence in bitext mode.
	Source []Element
	// Order is the declaration index inside its rule set.
	Order int

	markFrom, markTo int
	literals         []string
	compiled         bool
}

// MarkRange is an inclusive, 0-based element range.
type MarkRange struct {
	From, To int
}

// MarkBounds returns the effective mark range after Compile.
func (r *Rule) MarkBounds() (from, to int) { return r.markFrom, r.markTo }

// Literals returns the case-folded literals every match of the rule contains.
func (r *Rule) Literals() []string { return r.literals }

// Compiled reports whether Compile succeeded.
func (r *Rule) Compiled() bool { return r.compiled }

// NewElement returns an element with the default [1,1] occurrence range.
func NewElement(c Cond) Element {
	return Element{Cond: c, Min: 1, Max: 1}
}

// Literal is a shorthand for a literal condition.
func Literal(text string) Cond {
	return Cond{Token: TokenMatcher{Kind: MatchLiteral, Text: text}}
}

// Regex is a shorthand for a regex condition.
func Regex(expr string) Cond {
	return Cond{Token: TokenMatcher{Kind: MatchRegex, Text: expr}}
}

// Tag is a shorthand for a part-of-speech condition.
func Tag(expr string) Cond {
	return Cond{POS: expr}
}
