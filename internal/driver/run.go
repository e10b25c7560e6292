package driver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"fortio.org/safecast"
	"golang.org/x/sync/errgroup"

	"gramlint/internal/diag"
	"gramlint/internal/language"
	"gramlint/internal/matcher"
	"gramlint/internal/observ"
	"gramlint/internal/pattern"
	"gramlint/internal/segment"
	"gramlint/internal/source"
	"gramlint/internal/token"
	"gramlint/internal/trace"
)

// run holds the state of a single Check or CheckBitext call.
type run struct {
	lang     *language.Language
	tracer   trace.Tracer
	span     *trace.Span
	jobs     int
	timer    *observ.Timer
	observer PhaseObserver
	matches  int
	// source marks the run over the bitext source text.
	source bool
}

// document is the per-sentence outcome, indexed by sentence.
type document struct {
	spans  []source.Span
	bags   []*diag.Bag
	mu     sync.Mutex
	failed []*AnalysisError
}

func newDocument(n int) *document {
	return &document{
		spans: make([]source.Span, n),
		bags:  make([]*diag.Bag, n),
	}
}

// phase opens a trace span and a timer stage and notifies the observer.
// The returned func ends it.
func (r *run) phase(name string) func(note string) {
	started := time.Now()
	stop := r.timer.Start(name)
	ev := PhaseEvent{Name: name, Status: PhaseStart, Language: r.lang.Code, Source: r.source}
	if r.observer != nil {
		r.observer(ev)
	}
	ps := trace.Begin(r.tracer, trace.ScopePhase, name, r.span.ID())
	return func(note string) {
		ps.End(note)
		stop(note)
		if r.observer != nil {
			ev.Status, ev.Elapsed, ev.Note = PhaseEnd, time.Since(started), note
			r.observer(ev)
		}
	}
}

func (r *run) finish() {
	r.span.End(plural(r.matches, "match"))
}

func (r *run) check(ctx context.Context, text string, file source.FileID, rules []*pattern.Rule) (*document, error) {
	end := r.phase("segment")
	ranges := r.lang.Segmenter.Split(text)
	end(plural(len(ranges), "sentence"))

	offs := source.NewOffsetTable([]byte(text))
	doc := newDocument(len(ranges))
	end = r.phase("analyze")
	err := r.each(ctx, len(ranges), func(ctx context.Context, i int) error {
		sent, err := r.sentence(ctx, text, file, ranges[i], i, doc)
		if sent == nil {
			return err
		}
		bag, err := r.match(ctx, sent, i, rules, offs, nil, false)
		if err != nil {
			return r.classify(ctx, err, i, sent.Span, doc)
		}
		doc.bags[i] = bag
		return nil
	})
	end("")
	if err != nil {
		return nil, cancelled(err)
	}
	return doc, nil
}

// analyzeAll runs the token pipeline over every sentence of text and
// returns the sentences that did not fail.
func (r *run) analyzeAll(ctx context.Context, text string, file source.FileID) ([]*token.Sentence, *document, error) {
	end := r.phase("segment")
	ranges := r.lang.Segmenter.Split(text)
	end(plural(len(ranges), "sentence"))

	doc := newDocument(len(ranges))
	sents := make([]*token.Sentence, len(ranges))
	end = r.phase("analyze")
	err := r.each(ctx, len(ranges), func(ctx context.Context, i int) error {
		sent, err := r.sentence(ctx, text, file, ranges[i], i, doc)
		sents[i] = sent
		return err
	})
	end("")
	if err != nil {
		return nil, nil, cancelled(err)
	}
	out := sents[:0]
	for _, s := range sents {
		if s != nil {
			out = append(out, s)
		}
	}
	return out, doc, nil
}

func (r *run) bitext(ctx context.Context, srcLang *language.Language, req BitextRequest, rules, friends []*pattern.Rule) (*document, error) {
	end := r.phase("segment")
	tgtRanges := r.lang.Segmenter.Split(req.Target)
	srcRanges := srcLang.Segmenter.Split(req.Source)
	if len(tgtRanges) != len(srcRanges) {
		// пары по индексу невозможны, сравниваем тексты целиком
		tgtRanges = whole(req.Target)
		srcRanges = whole(req.Source)
	}
	end(plural(len(tgtRanges), "sentence pair"))

	// source sentences are analyzed with the source language and never
	// reported; a failure only disables the false friends of that pair.
	srcRun := &run{lang: srcLang, tracer: r.tracer, span: r.span, jobs: r.jobs, timer: r.timer, observer: r.observer, source: true}
	srcDoc := newDocument(len(srcRanges))
	sources := make([]*token.Sentence, len(srcRanges))
	end = srcRun.phase("analyze-source")
	err := srcRun.each(ctx, len(srcRanges), func(ctx context.Context, i int) error {
		sent, err := srcRun.sentence(ctx, req.Source, req.File, srcRanges[i], i, srcDoc)
		sources[i] = sent
		return err
	})
	end("")
	if err != nil {
		return nil, cancelled(err)
	}

	offs := source.NewOffsetTable([]byte(req.Target))
	doc := newDocument(len(tgtRanges))
	doc.failed = srcDoc.failed
	end = r.phase("analyze")
	err = r.each(ctx, len(tgtRanges), func(ctx context.Context, i int) error {
		sent, err := r.sentence(ctx, req.Target, req.File, tgtRanges[i], i, doc)
		if sent == nil {
			return err
		}
		bag, err := r.match(ctx, sent, i, rules, offs, nil, false)
		if err != nil {
			return r.classify(ctx, err, i, sent.Span, doc)
		}
		var src *token.Sentence
		if i < len(sources) {
			src = sources[i]
		}
		more, err := r.match(ctx, sent, i, friends, offs, src, true)
		if err != nil {
			return r.classify(ctx, err, i, sent.Span, doc)
		}
		bag.Merge(more)
		bag.Sort()
		bag.Dedup()
		doc.bags[i] = bag
		return nil
	})
	end("")
	if err != nil {
		return nil, cancelled(err)
	}
	return doc, nil
}

func whole(text string) []segment.Range {
	if text == "" {
		return nil
	}
	return []segment.Range{{Start: 0, End: len(text)}}
}

// each runs fn for every sentence index with at most r.jobs workers.
func (r *run) each(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	if n == 0 {
		return ctx.Err()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(r.jobs, n))
	for i := range n {
		g.Go(func() error {
			// отмена между предложениями
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// sentence analyzes one range. It returns a nil sentence when analysis
// failed; the failure is recorded in doc and err is only set on cancellation.
func (r *run) sentence(ctx context.Context, text string, file source.FileID, rg segment.Range, idx int, doc *document) (*token.Sentence, error) {
	span, err := rangeSpan(file, rg)
	if err != nil {
		r.fail(idx, source.Span{File: file}, err, doc)
		return nil, nil
	}
	doc.spans[idx] = span

	ss := trace.BeginSentence(r.tracer, trace.ScopeSentence, "sentence", r.span.ID(), idx).WithExtra("index", strconv.Itoa(idx))
	sent, err := r.analyze(ctx, text[rg.Start:rg.End], span)
	if err != nil {
		ss.End("failed")
		return nil, r.classify(ctx, err, idx, span, doc)
	}
	ss.End(plural(sent.ContentLen()-1, "token"))
	return sent, nil
}

// analyze runs the token pipeline. Panics inside any stage become errors.
func (r *run) analyze(ctx context.Context, text string, span source.Span) (sent *token.Sentence, err error) {
	defer func() {
		if p := recover(); p != nil {
			sent, err = nil, fmt.Errorf("panic: %v", p)
		}
	}()
	t0 := time.Now()
	toks, err := r.lang.Tokenizer.Tokenize(text, span.File, span.Start)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	t1 := time.Now()
	sent = r.lang.Tagger.TagSentence(span, text, toks)
	t2 := time.Now()
	sent, err = r.lang.Disambiguator.Apply(ctx, sent)
	if err != nil {
		return nil, fmt.Errorf("disambiguate: %w", err)
	}
	t3 := time.Now()
	r.timer.Sample("tokenize", t1.Sub(t0))
	r.timer.Sample("tag", t2.Sub(t1))
	r.timer.Sample("disambiguate", t3.Sub(t2))
	return sent, nil
}

// match runs rules over sent. With bitext set, rules carrying a source
// pattern fire only when src is present and matches it.
func (r *run) match(ctx context.Context, sent *token.Sentence, idx int, rules []*pattern.Rule, offs *source.OffsetTable, src *token.Sentence, bitext bool) (bag *diag.Bag, err error) {
	defer func() {
		if p := recover(); p != nil {
			bag, err = nil, fmt.Errorf("panic: %v", p)
		}
	}()
	started := time.Now()
	defer func() { r.timer.Sample("match", time.Since(started)) }()

	seen := r.lang.Prefilter.Scan(sent)
	bag = diag.NewBag(0)
	for _, rule := range rules {
		// отмена между правилами
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !r.lang.Prefilter.Allows(rule, seen) {
			continue
		}
		if bitext && len(rule.Source) > 0 && src == nil {
			continue
		}
		rs := trace.BeginSentence(r.tracer, trace.ScopeRule, rule.ID, r.span.ID(), idx)
		results, err := matcher.Match(ctx, rule, sent)
		if err != nil {
			rs.End("error")
			return nil, fmt.Errorf("rule %s: %w", rule.ID, err)
		}
		if bitext && len(results) > 0 {
			ok, err := matcher.MatchSource(ctx, rule, src)
			if err != nil {
				rs.End("error")
				return nil, fmt.Errorf("rule %s source: %w", rule.ID, err)
			}
			if !ok {
				results = nil
			}
		}
		rs.End(plural(len(results), "match"))
		for i := range results {
			bag.Add(toRuleMatch(&results[i], idx).WithOffsets(offs))
		}
	}
	bag.Sort()
	bag.Dedup()
	return bag, nil
}

func toRuleMatch(res *matcher.Result, idx int) diag.RuleMatch {
	rule := res.Rule
	return diag.RuleMatch{
		RuleID:      rule.ID,
		Category:    rule.Category,
		Severity:    rule.Severity,
		Message:     res.Message(),
		Short:       res.ShortMessage(),
		Span:        res.Span,
		Suggestions: res.Suggestions(),
		Sentence:    idx,
		Order:       rule.Order,
	}
}

// classify turns err into a cancellation (returned) or an AnalysisError
// (recorded in doc, nil returned).
func (r *run) classify(ctx context.Context, err error, idx int, span source.Span, doc *document) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	r.fail(idx, span, err, doc)
	return nil
}

func (r *run) fail(idx int, span source.Span, err error, doc *document) {
	aerr := &AnalysisError{Sentence: idx, Span: span, Source: r.source, Err: err}
	trace.Error(r.tracer, "sentence", aerr, r.span.ID(), idx)
	doc.mu.Lock()
	doc.failed = append(doc.failed, aerr)
	doc.mu.Unlock()
}

func rangeSpan(file source.FileID, rg segment.Range) (source.Span, error) {
	start, err := safecast.Conv[uint32](rg.Start)
	if err != nil {
		return source.Span{}, fmt.Errorf("sentence offset overflow: %w", err)
	}
	end, err := safecast.Conv[uint32](rg.End)
	if err != nil {
		return source.Span{}, fmt.Errorf("sentence offset overflow: %w", err)
	}
	return source.Span{File: file, Start: start, End: end}, nil
}

// result merges sentence bags in sentence order.
func (r *run) result(doc *document) *Result {
	end := r.phase("merge")
	all := diag.NewBag(0)
	for _, b := range doc.bags {
		all.Merge(b)
	}
	sortFailed(doc.failed)
	matches := make([]diag.RuleMatch, all.Len())
	copy(matches, all.Items())
	r.matches = len(matches)
	end(plural(len(matches), "match"))

	res := &Result{
		Language:  r.lang.Code,
		Matches:   matches,
		Sentences: doc.spans,
		Failed:    doc.failed,
	}
	if r.timer != nil {
		report := r.timer.Report()
		res.Timings = &report
	}
	return res
}

// sortFailed orders failures by sentence, source before target.
func sortFailed(failed []*AnalysisError) {
	sort.Slice(failed, func(i, j int) bool {
		fi, fj := failed[i], failed[j]
		if fi.Sentence != fj.Sentence {
			return fi.Sentence < fj.Sentence
		}
		return fi.Source && !fj.Source
	})
}
