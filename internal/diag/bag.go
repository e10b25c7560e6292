package diag

import (
	"sort"
)

// Bag collects rule matches. It is not safe for concurrent use; the session
// keeps one Bag per sentence and merges them in sentence order.
type Bag struct {
	items []RuleMatch
	max   int
}

// NewBag creates a bag holding at most max matches; max <= 0 means unlimited.
func NewBag(max int) *Bag {
	capHint := max
	if capHint <= 0 || capHint > 64 {
		capHint = 16
	}
	return &Bag{
		items: make([]RuleMatch, 0, capHint),
		max:   max,
	}
}

// Add добавляет совпадение, учитывая лимит.
// Возвращает false, если совпадение не добавлено (достигнут лимит).
func (b *Bag) Add(m RuleMatch) bool {
	if b.max > 0 && len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, m)
	return true
}

// HasErrors возвращает true, если есть хотя бы одно совпадение с Severity >= Error
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// длина
func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice совпадений.
// ВАЖНО: не модифицируйте возвращаемый срез! (он указывает на внутренний массив Bag)
func (b *Bag) Items() []RuleMatch {
	return b.items
}

// Merge appends all matches of other, ignoring the limit.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
	if b.max > 0 && len(b.items) > b.max {
		b.max = len(b.items)
	}
}

// Sort сортирует совпадения по: file, start, порядок правила, end
// для стабильного и детерминированного порядка вывода.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		mi, mj := &b.items[i], &b.items[j]
		if mi.Span.File != mj.Span.File {
			return mi.Span.File < mj.Span.File
		}
		if mi.Span.Start != mj.Span.Start {
			return mi.Span.Start < mj.Span.Start
		}
		if mi.Order != mj.Order {
			return mi.Order < mj.Order
		}
		return mi.Span.End < mj.Span.End
	})
}

type dedupKey struct {
	rule  string
	file  uint32
	start uint32
	end   uint32
}

// Dedup drops repeated (rule, span) pairs, keeping the first occurrence.
func (b *Bag) Dedup() {
	seen := make(map[dedupKey]struct{}, len(b.items))
	out := b.items[:0]
	for _, m := range b.items {
		key := dedupKey{rule: m.RuleID, file: uint32(m.Span.File), start: m.Span.Start, end: m.Span.End}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m)
	}
	b.items = out
}
