package diagfmt

import (
	"errors"
	"fmt"
	"strings"

	"gramlint/internal/source"
)

type editPreview struct {
	before []string
	after  []string
}

// buildPreview returns the lines touched by replacing span with newText,
// before and after the replacement.
func buildPreview(fs *source.FileSet, span source.Span, newText string) (editPreview, error) {
	if fs == nil {
		return editPreview{}, errors.New("nil FileSet")
	}
	file := fs.Get(span.File)
	if file == nil {
		return editPreview{}, fmt.Errorf("file %d not found in FileSet", span.File)
	}
	if span.End < span.Start || span.End > file.Size() {
		return editPreview{}, fmt.Errorf("span %v out of range", span)
	}

	startPos, endPos := fs.Resolve(span)
	from, _, ok := file.LineBounds(startPos.Line)
	if !ok {
		return editPreview{}, fmt.Errorf("line %d out of range", startPos.Line)
	}
	_, to, ok := file.LineBounds(max(endPos.Line, startPos.Line))
	if !ok {
		return editPreview{}, fmt.Errorf("line %d out of range", endPos.Line)
	}
	to = max(to, span.End)

	block := string(file.Content[from:to])
	rel := span.Start - from
	after := block[:rel] + newText + block[span.End-from:]
	return editPreview{
		before: previewLines(block),
		after:  previewLines(after),
	}, nil
}

func previewLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
