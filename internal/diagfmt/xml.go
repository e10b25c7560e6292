package diagfmt

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"gramlint/internal/diag"
	"gramlint/internal/source"
)

// errorXML is one <error> element of the match list. Lines and columns are
// 0-based, columns and offsets count code points.
type errorXML struct {
	XMLName       xml.Name `xml:"error"`
	FromY         uint32   `xml:"fromy,attr"`
	FromX         uint32   `xml:"fromx,attr"`
	ToY           uint32   `xml:"toy,attr"`
	ToX           uint32   `xml:"tox,attr"`
	RuleID        string   `xml:"ruleId,attr"`
	Msg           string   `xml:"msg,attr"`
	Replacements  string   `xml:"replacements,attr"`
	Context       string   `xml:"context,attr"`
	ContextOffset int      `xml:"contextoffset,attr"`
	Offset        uint32   `xml:"offset,attr"`
	ErrorLength   uint32   `xml:"errorlength,attr"`
	Category      string   `xml:"category,attr,omitempty"`
	Severity      string   `xml:"severity,attr"`
}

// XML writes the match list as a <matches> document. All attribute values
// are escaped, so markup in the checked text never reaches the output raw.
func XML(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts XMLOpts) error {
	software := opts.Software
	if software == "" {
		software = "gramlint"
	}
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString("<matches")
	writeAttr(&b, "software", software)
	if opts.Version != "" {
		writeAttr(&b, "version", opts.Version)
	}
	b.WriteString(">\n")

	chars := opts.ContextChars
	if chars <= 0 {
		chars = defaultContextChars
	}
	items := bag.Items()
	if opts.Max > 0 && opts.Max < len(items) {
		items = items[:opts.Max]
	}
	for _, m := range items {
		e := errorXML{
			RuleID:       m.RuleID,
			Msg:          m.Message,
			Replacements: strings.Join(m.Suggestions, "#"),
			Offset:       m.FromPos,
			ErrorLength:  m.ToPos - m.FromPos,
			Category:     m.Category,
			Severity:     strings.ToLower(m.Severity.String()),
		}
		if f := fs.Get(m.Span.File); f != nil {
			start, end := fs.Resolve(m.Span)
			e.FromY, e.FromX = zeroBased(start)
			e.ToY, e.ToX = zeroBased(end)
			c := contextOf(f, m.Span, chars)
			e.Context = c.text
			e.ContextOffset = c.offset
		}
		out, err := xml.Marshal(e)
		if err != nil {
			return fmt.Errorf("xml: %w", err)
		}
		b.Write(out)
		b.WriteByte('\n')
	}
	b.WriteString("</matches>\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func zeroBased(p source.LineCol) (line, col uint32) {
	if p.Line > 0 {
		line = p.Line - 1
	}
	if p.Col > 0 {
		col = p.Col - 1
	}
	return line, col
}

func writeAttr(b *strings.Builder, name, value string) {
	b.WriteByte(' ')
	b.WriteString(name)
	b.WriteString(`="`)
	// EscapeText пишет в strings.Builder без ошибок
	_ = xml.EscapeText(b, []byte(value))
	b.WriteByte('"')
}
