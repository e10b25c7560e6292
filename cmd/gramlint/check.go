package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gramlint/internal/diag"
	"gramlint/internal/diagfmt"
	"gramlint/internal/driver"
	"gramlint/internal/language"
	"gramlint/internal/project"
	"gramlint/internal/source"
	"gramlint/internal/trace"
	"gramlint/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [paths...|-]",
	Short: "Check text files or stdin",
	Long: `Check text against the rules of one language. Directories are walked for
*.txt, *.md and *.text files; "-" or no argument reads stdin.`,
	RunE: runCheck,
}

func init() {
	f := checkCmd.Flags()
	f.String("lang", "", "language code or variant, e.g. en or en-US (default from gramlint.toml, else en)")
	f.String("mother-tongue", "", "mother tongue of the writer; enables false friends")
	f.StringSlice("enable", nil, "comma-separated rule ids; only these rules run")
	f.StringSlice("disable", nil, "comma-separated rule ids to turn off")
	f.String("format", "pretty", "output format (pretty|json|xml|sarif)")
	f.Int("jobs", 0, "max parallel workers (0=auto)")
	f.Duration("timeout", 0, "abort a check after this long (0 = no limit)")
	f.String("bitext-source", "", "source text file; the single path argument is its translation")
	f.String("source-lang", "", "language of --bitext-source (default: --mother-tongue)")
	f.Bool("cache", false, "reuse results from the disk cache")
	f.String("ui", "auto", "progress UI for multiple files (auto|on|off)")
	f.Int("max-matches", 0, "limit printed matches (0 = all)")
	f.Bool("suggest", false, "show replacement suggestions")
	f.Bool("preview", false, "preview the first suggestion of each match")
	f.String("path-mode", "auto", "path display (auto|absolute|relative|basename)")
	f.Int8("context", 0, "lines of context around each match")
}

// checkOptions is the merged view of flags and gramlint.toml.
type checkOptions struct {
	lang         string
	motherTongue string
	enable       []string
	disable      []string
	format       string
	jobs         int
	timeout      time.Duration
	bitextSource string
	sourceLang   string
	cache        bool
	ui           uiMode
	maxMatches   int
	suggest      bool
	preview      bool
	pathMode     diagfmt.PathMode
	context      int8
}

func readCheckOptions(cmd *cobra.Command, cfg *project.Config) (checkOptions, error) {
	f := cmd.Flags()
	var opts checkOptions
	var err error

	if opts.lang, err = f.GetString("lang"); err != nil {
		return opts, fmt.Errorf("failed to get lang flag: %w", err)
	}
	if opts.motherTongue, err = f.GetString("mother-tongue"); err != nil {
		return opts, fmt.Errorf("failed to get mother-tongue flag: %w", err)
	}
	enable, err := f.GetStringSlice("enable")
	if err != nil {
		return opts, fmt.Errorf("failed to get enable flag: %w", err)
	}
	disable, err := f.GetStringSlice("disable")
	if err != nil {
		return opts, fmt.Errorf("failed to get disable flag: %w", err)
	}
	opts.enable, opts.disable = splitList(enable), splitList(disable)
	if opts.format, err = f.GetString("format"); err != nil {
		return opts, fmt.Errorf("failed to get format flag: %w", err)
	}
	if opts.jobs, err = f.GetInt("jobs"); err != nil {
		return opts, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if opts.timeout, err = f.GetDuration("timeout"); err != nil {
		return opts, fmt.Errorf("failed to get timeout flag: %w", err)
	}
	if opts.bitextSource, err = f.GetString("bitext-source"); err != nil {
		return opts, fmt.Errorf("failed to get bitext-source flag: %w", err)
	}
	if opts.sourceLang, err = f.GetString("source-lang"); err != nil {
		return opts, fmt.Errorf("failed to get source-lang flag: %w", err)
	}
	if opts.cache, err = f.GetBool("cache"); err != nil {
		return opts, fmt.Errorf("failed to get cache flag: %w", err)
	}
	uiValue, err := f.GetString("ui")
	if err != nil {
		return opts, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if opts.ui, err = readUIMode(uiValue); err != nil {
		return opts, err
	}
	if opts.maxMatches, err = f.GetInt("max-matches"); err != nil {
		return opts, fmt.Errorf("failed to get max-matches flag: %w", err)
	}
	if opts.suggest, err = f.GetBool("suggest"); err != nil {
		return opts, fmt.Errorf("failed to get suggest flag: %w", err)
	}
	if opts.preview, err = f.GetBool("preview"); err != nil {
		return opts, fmt.Errorf("failed to get preview flag: %w", err)
	}
	pathMode, err := f.GetString("path-mode")
	if err != nil {
		return opts, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	var ok bool
	if opts.pathMode, ok = diagfmt.ParsePathMode(pathMode); !ok {
		return opts, fmt.Errorf("unknown path mode: %s", pathMode)
	}
	if opts.context, err = f.GetInt8("context"); err != nil {
		return opts, fmt.Errorf("failed to get context flag: %w", err)
	}

	mergeProjectConfig(&opts, cfg, f.Changed)

	switch opts.format {
	case "pretty", "json", "xml", "sarif":
	default:
		return opts, fmt.Errorf("unknown format: %s", opts.format)
	}
	if opts.jobs < 0 || opts.maxMatches < 0 || opts.timeout < 0 {
		return opts, errors.New("--jobs, --max-matches and --timeout must not be negative")
	}
	if opts.sourceLang == "" {
		opts.sourceLang = opts.motherTongue
	}
	return opts, nil
}

// mergeProjectConfig fills options that were not set on the command line
// from gramlint.toml. changed reports whether a flag was given explicitly.
func mergeProjectConfig(opts *checkOptions, cfg *project.Config, changed func(string) bool) {
	if cfg != nil {
		c := cfg.Check
		if !changed("lang") && c.Language != "" {
			opts.lang = c.Language
		}
		if !changed("mother-tongue") && c.MotherTongue != "" {
			opts.motherTongue = c.MotherTongue
		}
		if !changed("enable") && len(c.Enable) > 0 {
			opts.enable = c.Enable
		}
		if !changed("disable") && len(c.Disable) > 0 {
			opts.disable = c.Disable
		}
		if !changed("jobs") && c.Jobs > 0 {
			opts.jobs = c.Jobs
		}
		if !changed("timeout") && c.TimeoutDuration > 0 {
			opts.timeout = c.TimeoutDuration
		}
		if !changed("cache") && c.Cache {
			opts.cache = true
		}
		if !changed("format") && cfg.Output.Format != "" {
			opts.format = cfg.Output.Format
		}
		if !changed("max-matches") && cfg.Output.MaxMatches > 0 {
			opts.maxMatches = cfg.Output.MaxMatches
		}
	}
	if opts.lang == "" {
		opts.lang = "en"
	}
	opts.format = strings.ToLower(opts.format)
}

// checkRun is the merged output of one check command.
type checkRun struct {
	fileSet *source.FileSet
	results []driver.FileResult
}

const cacheMaxAge = 30 * 24 * time.Hour

func runCheck(cmd *cobra.Command, args []string) error {
	cleanup, err := setupDiagnostics(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	g, err := readGlobals(cmd)
	if err != nil {
		return err
	}
	start := ""
	if len(args) > 0 {
		start = args[0]
	}
	cfg, err := loadProjectConfig(g, start)
	if err != nil {
		return err
	}
	opts, err := readCheckOptions(cmd, cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "check", trace.ParentFrom(ctx))
	defer span.End(fmt.Sprintf("%d args", len(args)))
	ctx = trace.WithParent(ctx, span.ID())

	reg, err := openRegistry(ctx, g, opts.lang, opts.sourceLang)
	if err != nil {
		return err
	}
	defer func() { _ = reg.Close() }()
	if !g.quiet {
		for _, le := range reg.Errors() {
			fmt.Fprintf(os.Stderr, "warning: %v\n", le)
		}
	}

	sessOpts := driver.Options{Jobs: opts.jobs, Timeout: opts.timeout, Timings: g.timings}
	if opts.cache {
		cache, err := driver.OpenDiskCache("gramlint")
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		// старые записи чистим при каждом запуске с --cache
		if _, err := cache.Prune(cacheMaxAge); err != nil && !g.quiet {
			fmt.Fprintf(os.Stderr, "warning: cache prune: %v\n", err)
		}
		sessOpts.Cache = cache
	}
	session := driver.NewSession(reg, sessOpts)

	var run *checkRun
	switch {
	case opts.bitextSource != "":
		run, err = checkBitext(ctx, session, opts, args)
	case len(args) == 0 || (len(args) == 1 && args[0] == "-"):
		run, err = checkStdin(ctx, session, opts)
	default:
		run, err = checkPaths(ctx, session, opts, args)
	}
	if err != nil {
		return err
	}

	bag := diag.NewBag(0)
	for _, fr := range run.results {
		for _, m := range fr.Result.Matches {
			bag.Add(m)
		}
		if !g.quiet {
			reportFailed(os.Stderr, fr)
		}
	}
	bag.Sort()

	if err := writeMatches(os.Stdout, bag, run.fileSet, reg, opts, g, args); err != nil {
		return err
	}
	if g.timings {
		for _, fr := range run.results {
			printTimings(os.Stderr, fr.Path, fr.Result)
		}
		if sessOpts.Cache != nil {
			st := sessOpts.Cache.Stats()
			fmt.Fprintf(os.Stderr, "cache: %d hits, %d misses\n", st.Hits, st.Misses)
		}
	}
	if bag.Len() > 0 {
		return errMatchesFound
	}
	return nil
}

func checkStdin(ctx context.Context, session *driver.Session, opts checkOptions) (*checkRun, error) {
	content, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	fileSet := source.NewFileSet()
	id := fileSet.AddVirtual("<stdin>", content)
	res, err := session.Check(ctx, driver.Request{
		Text:         string(fileSet.Get(id).Content),
		Language:     opts.lang,
		MotherTongue: opts.motherTongue,
		Enabled:      opts.enable,
		Disabled:     opts.disable,
		File:         id,
	})
	if err != nil {
		return nil, err
	}
	return &checkRun{fileSet: fileSet, results: []driver.FileResult{{Path: "<stdin>", FileID: id, Result: res}}}, nil
}

func checkPaths(ctx context.Context, session *driver.Session, opts checkOptions, args []string) (*checkRun, error) {
	paths, err := driver.ListFiles(args, nil)
	if err != nil {
		return nil, err
	}
	fileSet := source.NewFileSet()
	if wd, err := os.Getwd(); err == nil {
		fileSet.SetBaseDir(wd)
	}
	ids := make([]source.FileID, 0, len(paths))
	for _, p := range paths {
		id, err := fileSet.Load(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		ids = append(ids, id)
	}
	req := driver.Request{
		Language:     opts.lang,
		MotherTongue: opts.motherTongue,
		Enabled:      opts.enable,
		Disabled:     opts.disable,
	}

	var results []driver.FileResult
	if len(ids) > 1 && shouldUseTUI(opts.ui, opts.format) {
		results, err = runCheckWithUI(ctx, "checking", session, fileSet, ids, req)
	} else {
		results, err = session.CheckFiles(ctx, fileSet, ids, req, nil)
	}
	if err != nil {
		return nil, err
	}
	return &checkRun{fileSet: fileSet, results: results}, nil
}

func checkBitext(ctx context.Context, session *driver.Session, opts checkOptions, args []string) (*checkRun, error) {
	if len(args) != 1 || args[0] == "-" {
		return nil, errors.New("--bitext-source needs exactly one translation file")
	}
	if opts.sourceLang == "" {
		return nil, errors.New("--bitext-source needs --source-lang or --mother-tongue")
	}
	srcContent, err := os.ReadFile(opts.bitextSource)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", opts.bitextSource, err)
	}
	fileSet := source.NewFileSet()
	id, err := fileSet.Load(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	f := fileSet.Get(id)
	res, err := session.CheckBitext(ctx, driver.BitextRequest{
		Source:         string(srcContent),
		SourceLanguage: opts.sourceLang,
		Target:         string(f.Content),
		Language:       opts.lang,
		Enabled:        opts.enable,
		Disabled:       opts.disable,
		File:           id,
	})
	if err != nil {
		return nil, err
	}
	return &checkRun{fileSet: fileSet, results: []driver.FileResult{{Path: f.Path, FileID: id, Result: res}}}, nil
}

func writeMatches(w io.Writer, bag *diag.Bag, fileSet *source.FileSet, reg *language.Registry, opts checkOptions, g globalOptions, args []string) error {
	switch opts.format {
	case "pretty":
		useColor, err := readColor(g.color, os.Stdout)
		if err != nil {
			return err
		}
		out := bag
		if opts.maxMatches > 0 && bag.Len() > opts.maxMatches {
			out = diag.NewBag(opts.maxMatches)
			for _, m := range bag.Items()[:opts.maxMatches] {
				out.Add(m)
			}
		}
		diagfmt.Pretty(w, out, fileSet, diagfmt.PrettyOpts{
			Color:           useColor,
			Context:         opts.context,
			PathMode:        opts.pathMode,
			ShowSuggestions: opts.suggest,
			ShowPreview:     opts.preview,
		})
		if !g.quiet && bag.Len() > out.Len() {
			fmt.Fprintf(os.Stderr, "... %d more matches not shown\n", bag.Len()-out.Len())
		}
		return nil
	case "json":
		return diagfmt.JSON(w, bag, fileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         opts.pathMode,
			Max:              opts.maxMatches,
			IncludeContext:   true,
		})
	case "xml":
		return diagfmt.XML(w, bag, fileSet, diagfmt.XMLOpts{
			Software: "gramlint",
			Version:  version.Version,
			Max:      opts.maxMatches,
		})
	case "sarif":
		return diagfmt.Sarif(w, bag, fileSet, diagfmt.SarifRunMeta{
			ToolName:       "gramlint",
			ToolVersion:    version.Version,
			InvocationArgs: append([]string{"check"}, args...),
			Rules:          ruleDescriptions(reg, opts.lang),
		})
	}
	return fmt.Errorf("unknown format: %s", opts.format)
}

func ruleDescriptions(reg *language.Registry, code string) map[string]string {
	lang, err := reg.Get(code)
	if err != nil {
		return nil
	}
	out := make(map[string]string, lang.Rules.Len())
	for _, r := range lang.Rules.All() {
		out[r.ID] = r.Description
	}
	return out
}

func reportFailed(w io.Writer, fr driver.FileResult) {
	for _, ae := range fr.Result.Failed {
		fmt.Fprintf(w, "%s: warning: %v\n", fr.Path, ae)
	}
}
