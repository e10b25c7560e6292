package diagfmt

import (
	"encoding/json"
	"io"

	"gramlint/internal/diag"
	"gramlint/internal/source"
)

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// ContextJSON is the text around a match; Offset and Length are in code
// points relative to Text.
type ContextJSON struct {
	Text   string `json:"text"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
}

// MatchJSON представляет совпадение правила в JSON формате
type MatchJSON struct {
	RuleID       string       `json:"rule_id"`
	Category     string       `json:"category,omitempty"`
	Severity     string       `json:"severity"`
	Message      string       `json:"message"`
	ShortMessage string       `json:"short_message,omitempty"`
	Offset       uint32       `json:"offset"`
	Length       uint32       `json:"length"`
	Sentence     int          `json:"sentence"`
	Replacements []string     `json:"replacements"`
	Location     LocationJSON `json:"location"`
	Context      *ContextJSON `json:"context,omitempty"`
}

// MatchesOutput представляет корневую структуру JSON вывода
type MatchesOutput struct {
	Matches []MatchJSON `json:"matches"`
	Count   int         `json:"count"`
}

func formatPath(f *source.File, fs *source.FileSet, pathMode PathMode) string {
	switch pathMode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return f.FormatPath("basename", "")
	case PathModeAuto:
		return f.FormatPath("auto", "")
	default:
		return f.Path
	}
}

// makeLocation создаёт LocationJSON из Span
func makeLocation(span source.Span, fs *source.FileSet, pathMode PathMode, includePositions bool) LocationJSON {
	loc := LocationJSON{
		StartByte: span.Start,
		EndByte:   span.End,
	}
	f := fs.Get(span.File)
	if f == nil {
		return loc
	}
	loc.File = formatPath(f, fs, pathMode)

	// Добавляем позиции строк/колонок если требуется
	if includePositions {
		startPos, endPos := fs.Resolve(span)
		loc.StartLine = startPos.Line
		loc.StartCol = startPos.Col
		loc.EndLine = endPos.Line
		loc.EndCol = endPos.Col
	}
	return loc
}

// BuildMatchesOutput формирует структуру JSON-вывода без сериализации.
func BuildMatchesOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) MatchesOutput {
	items := bag.Items()
	maxItems := len(items)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}

	matches := make([]MatchJSON, 0, maxItems)
	for i := range maxItems {
		m := items[i]
		repl := m.Suggestions
		if repl == nil {
			repl = []string{}
		}
		mj := MatchJSON{
			RuleID:       m.RuleID,
			Category:     m.Category,
			Severity:     m.Severity.String(),
			Message:      m.Message,
			ShortMessage: m.Short,
			Offset:       m.FromPos,
			Length:       m.ToPos - m.FromPos,
			Sentence:     m.Sentence,
			Replacements: repl,
			Location:     makeLocation(m.Span, fs, opts.PathMode, opts.IncludePositions),
		}
		if opts.IncludeContext {
			if f := fs.Get(m.Span.File); f != nil {
				c := contextOf(f, m.Span, defaultContextChars)
				mj.Context = &ContextJSON{Text: c.text, Offset: c.offset, Length: c.length}
			}
		}
		matches = append(matches, mj)
	}
	return MatchesOutput{Matches: matches, Count: len(matches)}
}

// JSON форматирует совпадения в JSON формат.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildMatchesOutput(bag, fs, opts))
}
