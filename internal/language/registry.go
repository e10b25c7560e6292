// Package language maps language codes to their analysis pipeline and rules.
//
// Данные языка лежат в каталоге <code>/ файловой системы:
//
//	language.toml    метаданные, токенизатор, сегментатор, правила
//	dictionary.bin   скомпилированный словарь (только при Options.Dir)
//	dictionary.tsv   текстовый словарь form<TAB>lemma<TAB>tag
//
// Встроенные языки (en, de, pl, uk) вшиты через embed.
package language

import (
	"crypto/sha256"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	langtag "golang.org/x/text/language"

	"gramlint/internal/dict"
	"gramlint/internal/disambig"
	"gramlint/internal/matcher"
	"gramlint/internal/rules"
	"gramlint/internal/segment"
	"gramlint/internal/tagger"
	"gramlint/internal/tokenizer"
)

//go:embed data
var embedded embed.FS

// Builtin returns the embedded language data.
func Builtin() fs.FS {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

type Options struct {
	// FS holds one directory per language; nil means the embedded data.
	FS fs.FS
	// Dir is a data directory on disk. It overrides FS and enables
	// memory-mapped dictionary.bin files.
	Dir string
	// CacheSize bounds the per-language lookup cache; 0 selects the default.
	CacheSize int
	// UserDicts adds user words per language code, ahead of the main dictionary.
	UserDicts map[string]dict.Dictionary
}

// Info describes an available language.
type Info struct {
	Name     string
	Code     string
	Variants []string
}

// Language is the immutable analysis pipeline of one language.
type Language struct {
	Info
	Tag           langtag.Tag
	Segmenter     *segment.Segmenter
	Tokenizer     *tokenizer.Tokenizer
	Tagger        *tagger.Tagger
	Disambiguator *disambig.Disambiguator
	Rules         *rules.Set
	Prefilter     *matcher.Prefilter
	Dictionary    dict.Dictionary
	// Digest is the SHA-256 of language.toml; result caches key on it.
	Digest [32]byte
}

// Registry is loaded once and shared read-only by all sessions.
type Registry struct {
	langs   map[string]*Language
	failed  map[string]*LoadError
	aliases map[string]string
	closers []io.Closer
}

// NewRegistry loads every language found in the data source. A language that
// fails to load is recorded and reported by Get; the others stay usable.
func NewRegistry(opts Options) (*Registry, error) {
	fsys := opts.FS
	if opts.Dir != "" {
		fsys = os.DirFS(opts.Dir)
	}
	if fsys == nil {
		fsys = Builtin()
	}
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read language data: %w", err)
	}
	r := &Registry{
		langs:   make(map[string]*Language),
		failed:  make(map[string]*LoadError),
		aliases: make(map[string]string),
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		code := e.Name()
		if _, err := fs.Stat(fsys, path.Join(code, "language.toml")); err != nil {
			continue
		}
		lang, closer, err := load(fsys, code, opts)
		if closer != nil {
			r.closers = append(r.closers, closer)
		}
		if err != nil {
			var le *LoadError
			if !errors.As(err, &le) {
				le = &LoadError{Lang: code, Path: path.Join(code, "language.toml"), Err: err}
			}
			r.failed[code] = le
			r.aliases[code] = code
			continue
		}
		r.langs[code] = lang
		r.aliases[code] = code
		for _, v := range lang.Variants {
			r.aliases[strings.ToLower(v)] = code
		}
	}
	return r, nil
}

// Resolve maps a code or variant such as "de-AT" to a loaded language code.
func (r *Registry) Resolve(code string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(code))
	if c, ok := r.aliases[key]; ok {
		return c, true
	}
	tag, err := langtag.Parse(key)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	c, ok := r.aliases[base.String()]
	return c, ok
}

// Get returns the language for code. It fails with *UnknownLanguageError or
// *UnavailableError.
func (r *Registry) Get(code string) (*Language, error) {
	c, ok := r.Resolve(code)
	if !ok {
		return nil, &UnknownLanguageError{Code: code}
	}
	if le, bad := r.failed[c]; bad {
		return nil, &UnavailableError{Code: c, Err: le}
	}
	return r.langs[c], nil
}

// Languages lists loaded languages sorted by code.
func (r *Registry) Languages() []Info {
	out := make([]Info, 0, len(r.langs))
	for _, l := range r.langs {
		out = append(out, l.Info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Errors returns the load errors sorted by language code.
func (r *Registry) Errors() []*LoadError {
	out := make([]*LoadError, 0, len(r.failed))
	for _, le := range r.failed {
		out = append(out, le)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Lang < out[j].Lang })
	return out
}

// Close releases memory-mapped dictionaries.
func (r *Registry) Close() error {
	var errs []error
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

func load(fsys fs.FS, code string, opts Options) (*Language, io.Closer, error) {
	file := path.Join(code, "language.toml")
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, nil, &LoadError{Lang: code, Path: file, Err: err}
	}
	var spec fileSpec
	meta, err := toml.Decode(string(data), &spec)
	if err != nil {
		return nil, nil, &LoadError{Lang: code, Path: file, Err: err}
	}
	if err := rules.CheckUndecoded(meta); err != nil {
		return nil, nil, &LoadError{Lang: code, Path: file, Err: err}
	}
	if spec.Language.Code != code {
		return nil, nil, &LoadError{Lang: code, Path: file, Err: fmt.Errorf("code %q does not match directory", spec.Language.Code)}
	}

	set, err := rules.Build(&spec.File)
	if err != nil {
		return nil, nil, &LoadError{Lang: code, Path: file, Err: err}
	}
	tag, err := parseTag(code)
	if err != nil {
		return nil, nil, &LoadError{Lang: code, Path: file, Err: err}
	}
	tok, err := newTokenizer(spec.Tokenizer)
	if err != nil {
		return nil, nil, &LoadError{Lang: code, Path: file, Err: err}
	}

	base, closer, err := loadDictionary(fsys, code, opts.Dir)
	if err != nil {
		return nil, closer, err
	}
	var d dict.Dictionary = base
	if user := opts.UserDicts[code]; user != nil {
		d = dict.Layered{user, base}
	}
	size := opts.CacheSize
	if size <= 0 {
		size = dict.DefaultCacheSize
	}
	cached, err := dict.NewCached(d, size)
	if err != nil {
		return nil, closer, &LoadError{Lang: code, Path: file, Err: err}
	}

	name := spec.Language.Name
	if name == "" {
		name = code
	}
	return &Language{
		Info:          Info{Name: name, Code: code, Variants: spec.Language.Variants},
		Tag:           tag,
		Segmenter:     segment.New(segment.Options{Abbreviations: spec.Segmenter.Abbreviations, NoParagraphBreak: spec.Segmenter.NoParagraphBreak}),
		Tokenizer:     tok,
		Tagger:        tagger.New(cached, tag),
		Disambiguator: disambig.New(set.Disambiguation),
		Rules:         set,
		Prefilter:     matcher.NewPrefilter(slices.Concat(set.Rules, set.FalseFriends)),
		Dictionary:    cached,
		Digest:        sha256.Sum256(data),
	}, closer, nil
}

func newTokenizer(spec tokenizerSpec) (*tokenizer.Tokenizer, error) {
	punct := tokenizer.DefaultPunct
	if spec.Punct != nil {
		punct = *spec.Punct
	}
	opts := tokenizer.Options{Separators: tokenizer.NewSeparators(punct, spec.Keep)}
	for i, rw := range spec.Rewrite {
		d, err := tokenizer.NewDropRewriter(rw.Pattern, rw.Keep)
		if err != nil {
			return nil, fmt.Errorf("tokenizer.rewrite[%d]: %w", i+1, err)
		}
		opts.Rewriters = append(opts.Rewriters, d)
	}
	return tokenizer.New(opts), nil
}

// loadDictionary prefers a compiled dictionary on disk, then the TSV file.
// A language without a dictionary gets an empty one.
func loadDictionary(fsys fs.FS, code, dir string) (dict.Dictionary, io.Closer, error) {
	if dir != "" {
		bin := filepath.Join(dir, code, "dictionary.bin")
		if _, err := os.Stat(bin); err == nil {
			c, err := dict.OpenCompiled(bin)
			if err != nil {
				return nil, nil, &LoadError{Lang: code, Path: bin, Err: err}
			}
			return c, c, nil
		}
	}
	file := path.Join(code, "dictionary.tsv")
	f, err := fsys.Open(file)
	if errors.Is(err, fs.ErrNotExist) {
		return dict.NewMap(), nil, nil
	}
	if err != nil {
		return nil, nil, &LoadError{Lang: code, Path: file, Err: err}
	}
	defer f.Close()
	m, err := dict.LoadTSV(f)
	if err != nil {
		return nil, nil, &LoadError{Lang: code, Path: file, Err: err}
	}
	return m, nil, nil
}

// parseTag resolves the casing locale of code. A well-formed code that
// x/text does not know falls back to Und; only malformed codes fail.
func parseTag(code string) (langtag.Tag, error) {
	tag, err := langtag.Parse(code)
	if err == nil {
		return tag, nil
	}
	var verr langtag.ValueError
	if errors.As(err, &verr) {
		return langtag.Und, nil
	}
	return langtag.Und, err
}
