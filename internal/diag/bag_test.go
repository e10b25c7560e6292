package diag

import (
	"testing"

	"gramlint/internal/source"
)

func rm(rule string, order int, start, end uint32) RuleMatch {
	return RuleMatch{RuleID: rule, Order: order, Span: source.Span{Start: start, End: end}}
}

func TestBagSortByStartThenRuleOrder(t *testing.T) {
	b := NewBag(0)
	b.Add(rm("WORD_REPEAT", 5, 10, 17))
	b.Add(rm("EN_A_VS_AN", 2, 10, 12))
	b.Add(rm("UPPERCASE_SENTENCE_START", 0, 0, 3))
	b.Add(rm("EN_A_VS_AN", 2, 4, 6))
	b.Sort()

	want := []string{"UPPERCASE_SENTENCE_START", "EN_A_VS_AN", "EN_A_VS_AN", "WORD_REPEAT"}
	for i, m := range b.Items() {
		if m.RuleID != want[i] {
			t.Fatalf("item %d = %s, want %s", i, m.RuleID, want[i])
		}
	}
	if b.Items()[1].Span.Start != 4 {
		t.Fatalf("matches of one rule must be ordered by start")
	}
}

func TestBagLimitAndDedup(t *testing.T) {
	b := NewBag(2)
	if !b.Add(rm("A", 0, 0, 1)) || !b.Add(rm("A", 0, 0, 1)) {
		t.Fatalf("first two adds must succeed")
	}
	if b.Add(rm("B", 1, 2, 3)) {
		t.Fatalf("limit ignored")
	}
	b.Dedup()
	if b.Len() != 1 {
		t.Fatalf("Dedup left %d items, want 1", b.Len())
	}

	other := NewBag(0)
	other.Add(rm("C", 2, 5, 6))
	other.Add(rm("D", 3, 7, 8))
	b.Merge(other)
	if b.Len() != 3 {
		t.Fatalf("Merge must ignore the limit, got %d", b.Len())
	}
}

func TestWithOffsets(t *testing.T) {
	text := []byte("öäüß test")
	m := rm("X", 0, 9, 13).WithOffsets(source.NewOffsetTable(text))
	if m.FromPos != 5 || m.ToPos != 9 {
		t.Fatalf("offsets = %d..%d, want 5..9", m.FromPos, m.ToPos)
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
		ok   bool
	}{
		{"", SevWarning, true},
		{"Error", SevError, true},
		{"hint", SevInfo, true},
		{"fatal", SevInfo, false},
	}
	for _, tt := range tests {
		got, err := ParseSeverity(tt.in)
		if (err == nil) != tt.ok || (tt.ok && got != tt.want) {
			t.Errorf("ParseSeverity(%q) = %v, %v", tt.in, got, err)
		}
	}
}
