package driver

import (
	"context"
	"runtime"
	"slices"
	"strconv"
	"time"

	"gramlint/internal/diag"
	"gramlint/internal/language"
	"gramlint/internal/observ"
	"gramlint/internal/pattern"
	"gramlint/internal/source"
	"gramlint/internal/token"
	"gramlint/internal/trace"
)

// Options tune a Session. The zero value uses GOMAXPROCS workers, no
// timeout, the context tracer and no cache.
type Options struct {
	Jobs    int
	Timeout time.Duration
	// Tracer overrides trace.FromContext.
	Tracer trace.Tracer
	Cache  *DiskCache
	// Timings fills Result.Timings.
	Timings bool
	// Observer receives phase boundaries, e.g. for a progress UI.
	Observer PhaseObserver
}

// Session checks documents against a shared registry. It holds no state
// between calls and is safe for concurrent use.
type Session struct {
	reg  *language.Registry
	opts Options
}

func NewSession(reg *language.Registry, opts Options) *Session {
	return &Session{reg: reg, opts: opts}
}

// Registry returns the registry the session checks against.
func (s *Session) Registry() *language.Registry { return s.reg }

// Request is a monolingual check.
type Request struct {
	Text     string
	Language string
	// MotherTongue activates the false friends of that language.
	MotherTongue string
	Enabled      []string
	Disabled     []string
	// File tags the spans of the result.
	File source.FileID
}

// BitextRequest checks a translation against its source text.
type BitextRequest struct {
	Source         string
	SourceLanguage string
	Target         string
	Language       string
	Enabled        []string
	Disabled       []string
	File           source.FileID
}

// Result of one check. Matches and Sentences are never nil.
type Result struct {
	Language  string
	Matches   []diag.RuleMatch
	Sentences []source.Span
	Failed    []*AnalysisError
	Timings   *observ.Report
	// Cached is set when the result came from the disk cache.
	Cached bool
}

// Check runs every active rule of the request's language over req.Text.
//
// Errors: *language.UnknownLanguageError, *language.UnavailableError and
// ErrCancelled. Sentences that fail to analyze are reported in
// Result.Failed and do not fail the call.
func (s *Session) Check(ctx context.Context, req Request) (*Result, error) {
	lang, err := s.reg.Get(req.Language)
	if err != nil {
		return nil, err
	}
	act := Activation{Enabled: req.Enabled, Disabled: req.Disabled}
	active := act.Filter(lang.Rules.Rules)
	if req.MotherTongue != "" {
		active = append(active, act.Filter(lang.Rules.FalseFriendsFor(req.MotherTongue))...)
	}

	if err := ctx.Err(); err != nil {
		return nil, cancelled(err)
	}
	key := requestKey(lang, req.File, active, req.MotherTongue, req.Text)
	if res, ok := s.opts.Cache.load(key, lang.Code); ok {
		trace.Point(s.tracerFor(ctx), trace.ScopeDriver, "cache", "hit", trace.ParentFrom(ctx))
		return res, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	r := s.newRun(ctx, lang, "check")
	defer r.finish()

	doc, err := r.check(ctx, req.Text, req.File, active)
	if err != nil {
		return nil, err
	}
	res := r.result(doc)
	// кэш необязателен, ошибки записи не мешают проверке
	_ = s.opts.Cache.save(key, res)
	return res, nil
}

// CheckBitext checks req.Target like Check and additionally runs the
// target language's false friends for req.SourceLanguage. A false friend
// fires only when its source pattern matches the paired source sentence.
func (s *Session) CheckBitext(ctx context.Context, req BitextRequest) (*Result, error) {
	lang, err := s.reg.Get(req.Language)
	if err != nil {
		return nil, err
	}
	srcLang, err := s.reg.Get(req.SourceLanguage)
	if err != nil {
		return nil, err
	}
	act := Activation{Enabled: req.Enabled, Disabled: req.Disabled}
	active := act.Filter(lang.Rules.Rules)
	friends := act.Filter(lang.Rules.FalseFriendsFor(srcLang.Code))

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	r := s.newRun(ctx, lang, "bitext")
	defer r.finish()

	doc, err := r.bitext(ctx, srcLang, req, active, friends)
	if err != nil {
		return nil, err
	}
	return r.result(doc), nil
}

// Analysis is the output of Analyze: every sentence that analyzed
// successfully, in text order.
type Analysis struct {
	Language  string
	Sentences []*token.Sentence
	Failed    []*AnalysisError
}

// Analyze segments, tokenizes, tags and disambiguates req.Text without
// running any checking rule. Enabled, Disabled and MotherTongue are ignored.
func (s *Session) Analyze(ctx context.Context, req Request) (*Analysis, error) {
	lang, err := s.reg.Get(req.Language)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	r := s.newRun(ctx, lang, "analyze")
	defer r.finish()

	sents, doc, err := r.analyzeAll(ctx, req.Text, req.File)
	if err != nil {
		return nil, err
	}
	sortFailed(doc.failed)
	return &Analysis{Language: lang.Code, Sentences: sents, Failed: doc.failed}, nil
}

func (s *Session) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout > 0 {
		return context.WithTimeout(ctx, s.opts.Timeout)
	}
	return context.WithCancel(ctx)
}

func (s *Session) tracerFor(ctx context.Context) trace.Tracer {
	if s.opts.Tracer != nil {
		return s.opts.Tracer
	}
	return trace.FromContext(ctx)
}

func (s *Session) newRun(ctx context.Context, lang *language.Language, name string) *run {
	tracer := s.tracerFor(ctx)
	jobs := s.opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	r := &run{
		lang:     lang,
		tracer:   tracer,
		jobs:     jobs,
		observer: s.opts.Observer,
	}
	if s.opts.Timings {
		r.timer = observ.NewTimer()
	}
	r.span = trace.Begin(tracer, trace.ScopeDriver, name, trace.ParentFrom(ctx)).WithExtra("lang", lang.Code)
	return r
}

// ruleIDs lists the ids of rules in order, for cache keys and traces.
func ruleIDs(rules []*pattern.Rule) []string {
	ids := make([]string, 0, len(rules))
	for _, r := range rules {
		ids = append(ids, r.ID)
	}
	return slices.Compact(ids)
}

func plural(n int, what string) string {
	if n == 1 {
		return "1 " + what
	}
	return strconv.Itoa(n) + " " + what + "s"
}
