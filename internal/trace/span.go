package trace

import (
	"strconv"
	"sync/atomic"
	"time"

	"fortio.org/safecast"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

func nextSeq() uint64 { return seqCounter.Add(1) }

// Span is an open Begin/End pair. A span that is filtered out by the level is
// still usable; its methods do nothing.
type Span struct {
	tracer   Tracer
	id       uint64
	parentID uint64
	lane     uint32
	scope    Scope
	name     string
	started  time.Time
	extra    map[string]string
}

var disabled = &Span{tracer: Nop}

// Begin opens a document-wide span under parent (0 for a root span).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	return begin(t, scope, name, parent, 0)
}

// BeginSentence opens a span on the lane of sentence idx. Sentence and rule
// spans use it so that concurrent sentences do not interleave in one row.
func BeginSentence(t Tracer, scope Scope, name string, parent uint64, idx int) *Span {
	return begin(t, scope, name, parent, laneOf(idx))
}

func begin(t Tracer, scope Scope, name string, parent uint64, lane uint32) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return disabled
	}
	s := &Span{
		tracer:   t,
		id:       spanCounter.Add(1),
		parentID: parent,
		lane:     lane,
		scope:    scope,
		name:     name,
		started:  time.Now(),
	}
	t.Emit(&Event{
		Time:     s.started,
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   s.id,
		ParentID: parent,
		Lane:     lane,
		Name:     name,
	})
	return s
}

// End closes the span and returns its duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.id == 0 {
		return 0
	}
	dur := time.Since(s.started)
	s.tracer.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parentID,
		Lane:     s.lane,
		Name:     s.name,
		Detail:   detail,
		Extra:    s.extra,
	})
	return dur
}

// WithExtra attaches key=value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.id == 0 {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

// ID returns the span id, 0 for a disabled span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point emits an instant event when scope is enabled at the tracer's level.
func Point(t Tracer, scope Scope, name, detail string, parent uint64) {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{Time: time.Now(), Kind: KindPoint, Scope: scope, ParentID: parent, Name: name, Detail: detail})
}

// Error records a failure of sentence idx; idx < 0 marks a document-wide
// failure. Errors are emitted at every level above off.
func Error(t Tracer, name string, err error, parent uint64, idx int) {
	if t == nil || !t.Enabled() || err == nil {
		return
	}
	ev := &Event{
		Time:     time.Now(),
		Kind:     KindError,
		Scope:    ScopeSentence,
		ParentID: parent,
		Lane:     laneOf(idx),
		Name:     name,
		Detail:   err.Error(),
	}
	if idx >= 0 {
		ev.Extra = map[string]string{"sentence": strconv.Itoa(idx)}
	}
	t.Emit(ev)
}

func laneOf(idx int) uint32 {
	if idx < 0 {
		return 0
	}
	lane, err := safecast.Conv[uint32](idx + 1)
	if err != nil {
		return 0
	}
	return lane
}
