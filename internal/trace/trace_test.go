package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLevelShouldEmit(t *testing.T) {
	scopes := []Scope{ScopeDriver, ScopePhase, ScopeSentence, ScopeRule}
	tests := []struct {
		level Level
		want  []bool
	}{
		{LevelOff, []bool{false, false, false, false}},
		{LevelError, []bool{false, false, false, false}},
		{LevelPhase, []bool{true, true, false, false}},
		{LevelDetail, []bool{true, true, true, false}},
		{LevelDebug, []bool{true, true, true, true}},
	}
	for _, tt := range tests {
		for i, sc := range scopes {
			if got := tt.level.ShouldEmit(sc); got != tt.want[i] {
				t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tt.level, sc, got, tt.want[i])
			}
		}
	}
}

func TestParse(t *testing.T) {
	if l, err := ParseLevel("DETAIL"); err != nil || l != LevelDetail {
		t.Errorf("ParseLevel = %v, %v", l, err)
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Errorf("ParseLevel accepted verbose")
	}
	if m, err := ParseMode("Both"); err != nil || m != ModeBoth {
		t.Errorf("ParseMode = %v, %v", m, err)
	}
	if f, err := ParseFormat("json"); err != nil || f != FormatNDJSON {
		t.Errorf("ParseFormat = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Errorf("ParseFormat accepted xml")
	}
}

func TestSpansRespectLevel(t *testing.T) {
	ring := NewRingTracer(16, LevelDetail)
	root := Begin(ring, ScopeDriver, "check", 0)
	sent := BeginSentence(ring, ScopeSentence, "sentence", root.ID(), 0)
	rule := BeginSentence(ring, ScopeRule, "EN_A_VS_AN", sent.ID(), 0)
	rule.End("")
	sent.WithExtra("tokens", "5").End("")
	root.End("1 match")

	evs := ring.Snapshot()
	if len(evs) != 4 {
		t.Fatalf("got %d events, want 4", len(evs))
	}
	if rule.ID() != 0 {
		t.Errorf("rule span must be a no-op at detail level")
	}
	if evs[1].ParentID != root.ID() || evs[1].Name != "sentence" || evs[1].Lane != 1 {
		t.Errorf("sentence begin = %+v", evs[1])
	}
	if evs[2].Kind != KindSpanEnd || evs[2].Extra["tokens"] != "5" {
		t.Errorf("sentence end = %+v", evs[2])
	}
	if idx, ok := evs[1].Sentence(); !ok || idx != 0 {
		t.Errorf("sentence lane = %d, %v", idx, ok)
	}
	if _, ok := evs[3].Sentence(); ok || evs[3].Detail != "1 match" {
		t.Errorf("root end detail %q", evs[3].Detail)
	}
}

func TestErrorAtErrorLevel(t *testing.T) {
	ring := NewRingTracer(8, LevelError)
	Begin(ring, ScopeDriver, "check", 0).End("")
	Point(ring, ScopePhase, "segment", "", 0)
	Error(ring, "sentence", errors.New("boom"), 0, 2)
	Error(ring, "sentence", nil, 0, 3)

	evs := ring.Snapshot()
	if len(evs) != 1 || evs[0].Kind != KindError || evs[0].Detail != "boom" {
		t.Fatalf("events = %+v", evs)
	}
	if evs[0].Lane != 3 || evs[0].Extra["sentence"] != "2" {
		t.Fatalf("error lane = %d extra = %v", evs[0].Lane, evs[0].Extra)
	}
}

func TestRingWraps(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(ring, ScopeRule, name, "", 0)
	}
	evs := ring.Snapshot()
	var names []string
	for _, ev := range evs {
		names = append(names, ev.Name)
	}
	if strings.Join(names, "") != "cde" {
		t.Fatalf("snapshot = %v", names)
	}
}

func TestStreamFormats(t *testing.T) {
	var text bytes.Buffer
	st := NewStreamTracer(&text, LevelPhase, FormatText)
	Begin(st, ScopePhase, "segment", 0).WithExtra("sentences", "2").End("ok")
	BeginSentence(st, ScopePhase, "merge", 0, 3).End("")
	if text.Len() != 0 {
		t.Fatalf("buffered output written before Flush")
	}
	if err := st.Flush(); err != nil {
		t.Fatal(err)
	}
	out := text.String()
	if !strings.Contains(out, "→ segment") || !strings.Contains(out, "← segment (ok) {sentences=2}") || !strings.Contains(out, "#3   → merge") {
		t.Fatalf("text output:\n%s", out)
	}

	var nd bytes.Buffer
	st = NewStreamTracer(&nd, LevelPhase, FormatNDJSON)
	Point(st, ScopeDriver, "check", "done", 0)
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}
	var ev map[string]any
	if err := json.Unmarshal(nd.Bytes(), &ev); err != nil {
		t.Fatalf("ndjson: %v\n%s", err, nd.String())
	}
	if ev["kind"] != "point" || ev["scope"] != "driver" || ev["detail"] != "done" {
		t.Fatalf("ndjson event = %v", ev)
	}
	if _, ok := ev["sentence"]; ok {
		t.Fatalf("document event carries a sentence: %v", ev)
	}

	var chrome bytes.Buffer
	st = NewStreamTracer(&chrome, LevelPhase, FormatChrome)
	Begin(st, ScopeDriver, "check", 0).End("")
	BeginSentence(st, ScopePhase, "segment", 0, 4).End("")
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}
	var doc struct {
		TraceEvents []map[string]any `json:"traceEvents"`
	}
	if err := json.Unmarshal(chrome.Bytes(), &doc); err != nil {
		t.Fatalf("chrome: %v\n%s", err, chrome.String())
	}
	if len(doc.TraceEvents) != 4 || doc.TraceEvents[0]["ph"] != "B" || doc.TraceEvents[1]["ph"] != "E" {
		t.Fatalf("chrome events = %v", doc.TraceEvents)
	}
	if doc.TraceEvents[0]["tid"] != float64(0) || doc.TraceEvents[2]["tid"] != float64(5) {
		t.Fatalf("chrome lanes = %v, %v", doc.TraceEvents[0]["tid"], doc.TraceEvents[2]["tid"])
	}
}

func TestNewAndContext(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("New(off) = %v, %v", tr, err)
	}
	tr, err = New(Config{Level: LevelDebug, Mode: ModeRing, RingSize: 4})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tr.(*RingTracer); !ok {
		t.Fatalf("ring mode gave %T", tr)
	}
	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tr.(*MultiTracer); !ok {
		t.Fatalf("both mode gave %T", tr)
	}

	if FromContext(context.Background()) != Nop {
		t.Errorf("empty context must give Nop")
	}
	ctx := WithTracer(context.Background(), tr)
	if FromContext(ctx) != tr {
		t.Errorf("tracer lost in context")
	}
	if ParentFrom(ctx) != 0 || WithParent(ctx, 0) != ctx {
		t.Errorf("unexpected parent")
	}
	ctx = WithParent(ctx, 42)
	if ParentFrom(ctx) != 42 {
		t.Errorf("parent lost")
	}
}

func TestHeartbeatNilSafe(t *testing.T) {
	if h := StartHeartbeat(Nop, 0); h != nil {
		t.Fatalf("heartbeat on Nop tracer")
	}
	var h *Heartbeat
	h.Stop()
}

func TestHeartbeatBeats(t *testing.T) {
	ring := NewRingTracer(16, LevelError)
	h := StartHeartbeat(ring, time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for len(ring.Snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	h.Stop()
	h.Stop()
	evs := ring.Snapshot()
	if len(evs) == 0 || evs[0].Kind != KindHeartbeat || !strings.HasPrefix(evs[0].Detail, "#1 ") {
		t.Fatalf("heartbeat events = %+v", evs)
	}
}

func TestRingDumpChrome(t *testing.T) {
	ring := NewRingTracer(4, LevelPhase)
	Begin(ring, ScopePhase, "segment", 0).End("")
	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatChrome); err != nil {
		t.Fatal(err)
	}
	var doc struct {
		TraceEvents []map[string]any `json:"traceEvents"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil || len(doc.TraceEvents) != 2 {
		t.Fatalf("dump = %v, %v\n%s", doc.TraceEvents, err, buf.String())
	}
}
