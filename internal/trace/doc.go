// Package trace records structured events of a check run.
//
// Tracing answers "where did the time go" and "which rule hangs": every check
// opens a driver span, every pipeline stage a phase span, every sentence a
// sentence span and every evaluated rule a rule span.
//
//	gramlint check --trace=- --trace-level=detail notes.txt
//
// Реализации:
//
//   - nopTracer: пустышка, когда трассировка выключена
//   - StreamTracer: пишет сразу (text, ndjson, chrome)
//   - RingTracer: кольцевой буфер последних событий
//   - MultiTracer: объединяет несколько трассировщиков
//
// Уровни: off, error, phase (driver + stages), detail (+ sentences),
// debug (+ rules).
//
// Events of one sentence share a lane (Chrome tid), lane 0 is the whole
// document. The tracer and the current parent span travel in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx = trace.WithParent(ctx, cmdSpan.ID())
//	span := trace.BeginSentence(trace.FromContext(ctx), trace.ScopeSentence, "sentence", trace.ParentFrom(ctx), 3)
//	defer span.End("")
package trace
