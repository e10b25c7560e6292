package trace

import "time"

// Kind is the type of a trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat
	// KindError is emitted at every enabled level.
	KindError
)

var kindNames = [...]string{
	KindSpanBegin: "begin",
	KindSpanEnd:   "end",
	KindPoint:     "point",
	KindHeartbeat: "heartbeat",
	KindError:     "error",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope is the granularity of an event; lower values are coarser.
type Scope uint8

const (
	// ScopeDriver covers one check request or CLI command.
	ScopeDriver Scope = iota + 1
	// ScopePhase covers pipeline stages (segment, analyze, merge).
	ScopePhase
	// ScopeSentence covers the analysis of one sentence.
	ScopeSentence
	// ScopeRule covers one rule evaluated on one sentence.
	ScopeRule
)

var scopeNames = [...]string{
	ScopeDriver:   "driver",
	ScopePhase:    "phase",
	ScopeSentence: "sentence",
	ScopeRule:     "rule",
}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // монотонный номер, назначает трассировщик
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 для корня
	// Lane is the sentence index plus one; 0 marks document-wide events.
	// Chrome traces draw one row per lane.
	Lane   uint32
	Name   string // "check", "segment", "sentence", "EN_A_VS_AN"
	Detail string
	Extra  map[string]string
}

// Sentence returns the sentence index of the event and false for
// document-wide events.
func (ev *Event) Sentence() (int, bool) {
	if ev.Lane == 0 {
		return 0, false
	}
	return int(ev.Lane) - 1, true
}
