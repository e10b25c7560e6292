package matcher

import (
	"context"
	"strings"

	"gramlint/internal/pattern"
	"gramlint/internal/token"
)

// checkEvery is the number of machine steps between cancellation checks.
const checkEvery = 256

// Binding is the content-position range [Start, End) consumed by one element.
type Binding struct {
	Start, End int
}

// Present reports whether the element consumed at least one token.
func (b Binding) Present() bool { return b.End > b.Start }

// alt is one way to satisfy an element: skip up to at, then take count tokens.
type alt struct {
	at, count int
}

type frame struct {
	elem int
	alts []alt
	next int
}

type machine struct {
	ctx   context.Context
	elems []pattern.Element
	sent  *token.Sentence
	n     int // число content-позиций
	binds []Binding
	stack []frame
	steps int
}

func newMachine(ctx context.Context, elems []pattern.Element, s *token.Sentence) *machine {
	return &machine{
		ctx:   ctx,
		elems: elems,
		sent:  s,
		n:     s.ContentLen(),
		binds: make([]Binding, len(elems)),
	}
}

// Match returns every non-overlapping match of r in s, ordered by position.
// The rule must be compiled. The only error is the context's.
func Match(ctx context.Context, r *pattern.Rule, s *token.Sentence) ([]Result, error) {
	m := newMachine(ctx, r.Elements, s)
	out := make([]Result, 0)
	for start := 0; start < m.n; {
		ok, err := m.align(start)
		if err != nil {
			return nil, err
		}
		if !ok {
			start++
			continue
		}
		res := newResult(r, s, m.binds)
		out = append(out, res)
		start = max(res.End, start+1)
	}
	return out, nil
}

// MatchSource reports whether the source pattern of a false-friend rule
// occurs in s. Rules without a source pattern always pass.
func MatchSource(ctx context.Context, r *pattern.Rule, s *token.Sentence) (bool, error) {
	if len(r.Source) == 0 {
		return true, nil
	}
	m := newMachine(ctx, r.Source, s)
	for start := 0; start < m.n; start++ {
		ok, err := m.align(start)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

// align searches for the first accepted alignment anchored at start.
// On success m.binds holds the element bindings.
func (m *machine) align(start int) (bool, error) {
	m.stack = append(m.stack[:0], frame{elem: 0, alts: m.alternatives(0, start)})
	for len(m.stack) > 0 {
		m.steps++
		if m.steps%checkEvery == 0 {
			if err := m.ctx.Err(); err != nil {
				return false, err
			}
		}
		top := len(m.stack) - 1
		f := &m.stack[top]
		if f.next >= len(f.alts) {
			m.stack = m.stack[:top]
			continue
		}
		a := f.alts[f.next]
		f.next++
		elem := f.elem
		m.binds[elem] = Binding{Start: a.at, End: a.at + a.count}
		pos := a.at + a.count
		if elem == len(m.elems)-1 {
			if m.consumed() {
				return true, nil
			}
			continue
		}
		m.stack = append(m.stack, frame{elem: elem + 1, alts: m.alternatives(elem+1, pos)})
	}
	return false, nil
}

// consumed is false for alignments that bound nothing but the start marker.
func (m *machine) consumed() bool {
	for _, b := range m.binds {
		if b.End > max(b.Start, 1) {
			return true
		}
	}
	return false
}

// alternatives lists the ways element i can match from position pos, in the
// order they are tried.
func (m *machine) alternatives(i, pos int) []alt {
	e := &m.elems[i]
	maxSkip := e.Skip
	if i == 0 {
		maxSkip = 0
	} else if maxSkip == pattern.Unbounded {
		maxSkip = m.n - pos
	}
	var alts []alt
	for k := 0; k <= maxSkip; k++ {
		at := pos + k
		if at >= m.n {
			break
		}
		if k > 0 {
			skipped := at - 1
			if skipped == 0 || m.excepted(e, skipped, true) {
				break
			}
		}
		run := m.run(e, at)
		for c := run; c >= max(e.Min, 1); c-- {
			alts = append(alts, alt{at: at, count: c})
		}
	}
	if e.Min == 0 {
		alts = append(alts, alt{at: pos})
	}
	return alts
}

// run counts consecutive tokens from at that satisfy e, capped at e.Max.
func (m *machine) run(e *pattern.Element, at int) int {
	limit := m.n - at
	if e.Max != pattern.Unbounded {
		limit = min(limit, e.Max)
	}
	c := 0
	for c < limit && m.accepts(e, at+c) {
		c++
	}
	return c
}

func (m *machine) accepts(e *pattern.Element, x int) bool {
	tok := m.sent.Content(x)
	switch e.SpaceBefore {
	case pattern.TriYes:
		if !tok.SpaceBefore {
			return false
		}
	case pattern.TriNo:
		if tok.SpaceBefore {
			return false
		}
	}
	return m.test(&e.Cond, x) && !m.excepted(e, x, false)
}

// excepted reports whether an exception of e fires at content position x.
// Skipped tokens only see exceptions of the current scope.
func (m *machine) excepted(e *pattern.Element, x int, skipped bool) bool {
	for i := range e.Exceptions {
		ex := &e.Exceptions[i]
		y := x
		switch ex.Scope {
		case pattern.ScopeNext:
			y = x + 1
		case pattern.ScopePrevious:
			y = x - 1
		}
		if skipped && ex.Scope != pattern.ScopeCurrent {
			continue
		}
		if y < 0 || y >= m.n {
			continue
		}
		if m.test(&ex.Cond, y) {
			return true
		}
	}
	return false
}

// test evaluates a single-token condition at content position x.
func (m *machine) test(c *pattern.Cond, x int) bool {
	tok := m.sent.Content(x)
	if tok.IsSentStart() || c.Token.Kind == pattern.MatchSentStart {
		return tok.IsSentStart() && c.Token.Kind == pattern.MatchSentStart
	}
	some, all := false, true
	for _, r := range tok.Readings {
		ok := m.reading(c, tok, r)
		some = some || ok
		all = all && ok
	}
	ok := some
	if c.AllReadings {
		ok = all && len(tok.Readings) > 0
	}
	return ok != c.Negate
}

func (m *machine) reading(c *pattern.Cond, tok *token.AnalyzedToken, r token.Reading) bool {
	if re := c.POSRegexp(); re != nil && !re.MatchString(r.Tag) {
		return false
	}
	val := tok.Norm
	if c.Inflected {
		val = r.Lemma
	}
	tm := &c.Token
	switch tm.Kind {
	case pattern.MatchLiteral:
		return equal(val, tm.Text, tm.IgnoreCase())
	case pattern.MatchRegex:
		return tm.Regexp().MatchString(val)
	case pattern.MatchBackref:
		b := m.binds[tm.Ref]
		if !b.Present() {
			return false
		}
		ref := m.sent.Content(b.Start)
		want := ref.Norm
		if c.Inflected {
			return m.sharesLemma(ref, val, tm.IgnoreCase())
		}
		return equal(val, want, tm.IgnoreCase())
	}
	return true
}

func (m *machine) sharesLemma(ref *token.AnalyzedToken, lemma string, fold bool) bool {
	for _, r := range ref.Readings {
		if equal(r.Lemma, lemma, fold) {
			return true
		}
	}
	return false
}

func equal(a, b string, fold bool) bool {
	if fold {
		return strings.EqualFold(a, b)
	}
	return a == b
}
