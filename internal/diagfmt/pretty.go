package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"gramlint/internal/diag"
	"gramlint/internal/source"
)

const tabWidth = 4

type palette struct {
	path, info, warning, error, rule, caret, gutter, add, del *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		path:    color.New(color.Bold),
		info:    color.New(color.FgCyan, color.Bold),
		warning: color.New(color.FgYellow, color.Bold),
		error:   color.New(color.FgRed, color.Bold),
		rule:    color.New(color.FgMagenta),
		caret:   color.New(color.FgGreen, color.Bold),
		gutter:  color.New(color.FgBlue),
		add:     color.New(color.FgGreen),
		del:     color.New(color.FgRed),
	}
	for _, c := range []*color.Color{p.path, p.info, p.warning, p.error, p.rule, p.caret, p.gutter, p.add, p.del} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.error
	case diag.SevWarning:
		return p.warning
	}
	return p.info
}

// Pretty форматирует совпадения в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого совпадения печатает:
// <path>:<line>:<col>: <SEV> <RULE>: <Message>
// затем строку текста с подчёркиванием ^~~~ по Span, затем варианты замены.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, m := range bag.Items() {
		prettyOne(w, m, fs, opts, p)
	}
}

func prettyOne(w io.Writer, m diag.RuleMatch, fs *source.FileSet, opts PrettyOpts, p palette) {
	f := fs.Get(m.Span.File)
	if f == nil {
		fmt.Fprintf(w, "%s %s: %s\n", p.severity(m.Severity).Sprint(m.Severity.String()), p.rule.Sprint(m.RuleID), m.Message)
		return
	}
	start, end := fs.Resolve(m.Span)
	fmt.Fprintf(w, "%s: %s %s: %s\n",
		p.path.Sprintf("%s:%d:%d", formatPath(f, fs, opts.PathMode), start.Line, start.Col),
		p.severity(m.Severity).Sprint(m.Severity.String()),
		p.rule.Sprint(m.RuleID),
		m.Message,
	)

	ctx := uint32(max(opts.Context, 0))
	first := start.Line - min(ctx, start.Line-1)
	last := min(end.Line+ctx, max(textLines(f), end.Line))
	gutterWidth := len(fmt.Sprint(last))
	for ln := first; ln <= last; ln++ {
		line := f.GetLine(ln)
		display := clip(expandTabs(line), opts.Width)
		fmt.Fprintf(w, " %s %s\n", p.gutter.Sprintf("%*d |", gutterWidth, ln), display)
		if ln < start.Line || ln > end.Line {
			continue
		}
		from, to := caretRange(line, ln, start, end)
		pad := strings.Repeat(" ", from)
		mark := "^" + strings.Repeat("~", max(to-from-1, 0))
		fmt.Fprintf(w, " %s %s%s\n", p.gutter.Sprintf("%*s |", gutterWidth, ""), pad, p.caret.Sprint(mark))
	}

	if opts.ShowSuggestions && len(m.Suggestions) > 0 {
		fmt.Fprintf(w, "  suggestion: %s\n", strings.Join(quoteAll(m.Suggestions), ", "))
	}
	if opts.ShowPreview && len(m.Suggestions) > 0 {
		if pv, err := buildPreview(fs, m.Span, m.Suggestions[0]); err == nil {
			fmt.Fprintln(w, "  preview:")
			for _, l := range pv.before {
				fmt.Fprintf(w, "    %s\n", p.del.Sprint("- "+l))
			}
			for _, l := range pv.after {
				fmt.Fprintf(w, "    %s\n", p.add.Sprint("+ "+l))
			}
		}
	}
	if m.Short != "" && m.Short != m.Message {
		fmt.Fprintf(w, "  = %s\n", m.Short)
	}
}

// textLines counts lines without the empty one after a final newline.
func textLines(f *source.File) uint32 {
	n := f.LineCount()
	if n > 1 && f.Content[len(f.Content)-1] == '\n' {
		n--
	}
	return n
}

// caretRange returns display columns [from, to) of the marked part of line ln.
func caretRange(line string, ln uint32, start, end source.LineCol) (int, int) {
	runes := []rune(line)
	s := 0
	if ln == start.Line {
		s = min(int(start.Col)-1, len(runes))
	}
	e := len(runes)
	if ln == end.Line {
		e = min(int(end.Col)-1, len(runes))
	}
	from := displayWidth(string(runes[:s]))
	to := displayWidth(string(runes[:max(e, s)]))
	if to <= from {
		to = from + 1
	}
	return from, to
}

func displayWidth(s string) int {
	return runewidth.StringWidth(expandTabs(s))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

func clip(s string, width uint8) string {
	if width == 0 || runewidth.StringWidth(s) <= int(width) {
		return s
	}
	return runewidth.Truncate(s, int(width), "...")
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}
