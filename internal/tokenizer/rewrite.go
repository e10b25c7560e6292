package tokenizer

import (
	"fmt"
	"regexp"
	"slices"
)

// Rewriter transforms sentence text before it is split into tokens.
// Alongside the new text it returns, for every byte of it, the offset of the
// byte it was copied from. A nil map means the text is unchanged.
type Rewriter interface {
	Rewrite(text string) (string, []int)
}

// DropRewriter removes the parts of every match of Re that are not covered
// by one of the Keep groups. With pattern `(\s)[А-Я]\.([А-Я][а-я]+)` and
// Keep {1, 2} it turns " Т.Шевченко" into " Шевченко".
type DropRewriter struct {
	Re   *regexp.Regexp
	Keep []int
}

// NewDropRewriter compiles pattern and checks that every kept group exists.
func NewDropRewriter(pattern string, keep []int) (*DropRewriter, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	for _, g := range keep {
		if g < 0 || g > re.NumSubexp() {
			return nil, fmt.Errorf("rewrite pattern %q has no group %d", pattern, g)
		}
	}
	return &DropRewriter{Re: re, Keep: keep}, nil
}

func (d *DropRewriter) Rewrite(text string) (string, []int) {
	matches := d.Re.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, nil
	}
	var drops [][2]int
	for _, m := range matches {
		kept := make([][2]int, 0, len(d.Keep))
		for _, g := range d.Keep {
			if m[2*g] >= 0 {
				kept = append(kept, [2]int{m[2*g], m[2*g+1]})
			}
		}
		slices.SortFunc(kept, func(a, b [2]int) int { return a[0] - b[0] })
		cur := m[0]
		for _, k := range kept {
			if k[0] > cur {
				drops = append(drops, [2]int{cur, k[0]})
			}
			cur = max(cur, k[1])
		}
		if m[1] > cur {
			drops = append(drops, [2]int{cur, m[1]})
		}
	}
	if len(drops) == 0 {
		return text, nil
	}

	out := make([]byte, 0, len(text))
	pos := make([]int, 0, len(text))
	next := 0
	for i := 0; i < len(text); i++ {
		if next < len(drops) && i >= drops[next][0] {
			i = drops[next][1] - 1
			next++
			continue
		}
		out = append(out, text[i])
		pos = append(pos, i)
	}
	return string(out), pos
}

// offsetMap maps positions of rewritten text back into the original text.
type offsetMap struct {
	pos     []int // nil = тождественное отображение
	origLen int
}

// compose applies the next rewrite on top of m.
func (m offsetMap) compose(next []int) offsetMap {
	if next == nil {
		return m
	}
	if m.pos == nil {
		return offsetMap{pos: next, origLen: m.origLen}
	}
	out := make([]int, len(next))
	for i, p := range next {
		out[i] = m.pos[p]
	}
	return offsetMap{pos: out, origLen: m.origLen}
}

// boundary converts a boundary of the rewritten text into one of the original.
// Removed characters end up on the side of the token that follows them.
func (m offsetMap) boundary(b int) int {
	switch {
	case m.pos == nil:
		return b
	case b <= 0:
		return 0
	case b >= len(m.pos):
		return m.origLen
	default:
		return m.pos[b-1] + 1
	}
}
