package fix

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"gramlint/internal/source"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// ApplyMode determines selection strategy for fixes.
type ApplyMode uint8

const (
	ApplyModeOnce ApplyMode = iota
	ApplyModeAll
	ApplyModeID
)

// ApplyOptions configures how fixes are selected.
type ApplyOptions struct {
	Mode     ApplyMode
	TargetID string
	// DryRun computes the new contents without writing any file.
	DryRun bool
}

// Edit replaces the bytes of Span with NewText. A non-empty OldText must
// match the current content of Span.
type Edit struct {
	Span    source.Span
	NewText string
	OldText string
}

// Fix is a single replacement proposed for one rule match.
type Fix struct {
	ID      string
	Title   string
	RuleID  string
	Message string
	Edit    Edit
}

// AppliedFix records a successfully applied fix.
type AppliedFix struct {
	ID          string
	Title       string
	RuleID      string
	Message     string
	PrimaryPath string
}

// SkippedFix captures a skipped or failed fix with a reason.
type SkippedFix struct {
	ID     string
	Title  string
	Reason string
}

// FileChange summarises modifications performed on a file.
type FileChange struct {
	Path      string
	EditCount int
	Written   bool // false для виртуальных файлов и DryRun
}

// ApplyResult aggregates applied fixes, skipped ones, and file changes.
type ApplyResult struct {
	Applied     []AppliedFix
	Skipped     []SkippedFix
	FileChanges []FileChange
	// Content holds the new content of every changed file.
	Content map[source.FileID][]byte
}

type candidate struct {
	fix   Fix
	order int
}

// Apply selects a subset of fixes according to opts and applies them.
// Changed files are written back unless they are virtual or opts.DryRun is set;
// the new contents are always available in ApplyResult.Content.
func Apply(fs *source.FileSet, fixes []Fix, opts ApplyOptions) (*ApplyResult, error) {
	result := &ApplyResult{
		Applied:     make([]AppliedFix, 0),
		Skipped:     make([]SkippedFix, 0),
		FileChanges: make([]FileChange, 0),
		Content:     make(map[source.FileID][]byte),
	}
	if fs == nil {
		return result, fmt.Errorf("fix: FileSet is nil")
	}

	candidates, skips := gatherCandidates(fs, fixes)
	result.Skipped = append(result.Skipped, skips...)
	if len(candidates) == 0 {
		return result, ErrNoFixes
	}

	sortCandidates(candidates)

	selected, selectionSkips := selectCandidates(candidates, opts)
	result.Skipped = append(result.Skipped, selectionSkips...)
	if len(selected) == 0 {
		return result, ErrNoFixes
	}

	err := applyCandidates(fs, selected, opts, result)
	if err != nil {
		return result, err
	}
	if len(result.Applied) == 0 {
		return result, ErrNoFixes
	}
	return result, nil
}

// gatherCandidates drops fixes whose file is unknown and duplicates of an
// already seen ID; an empty ID is synthesized from the file and span start.
func gatherCandidates(fs *source.FileSet, fixes []Fix) ([]candidate, []SkippedFix) {
	cands := make([]candidate, 0, len(fixes))
	skips := make([]SkippedFix, 0)
	seen := make(map[string]struct{}, len(fixes))

	for i, f := range fixes {
		if fs.Get(f.Edit.Span.File) == nil {
			skips = append(skips, SkippedFix{ID: f.ID, Title: f.Title, Reason: "unknown file"})
			continue
		}
		if f.ID == "" {
			f.ID = fmt.Sprintf("%s-%d-%d-%d", f.RuleID, f.Edit.Span.File, f.Edit.Span.Start, i)
		}
		if _, dup := seen[f.ID]; dup {
			skips = append(skips, SkippedFix{ID: f.ID, Title: f.Title, Reason: "duplicate fix id"})
			continue
		}
		seen[f.ID] = struct{}{}
		cands = append(cands, candidate{fix: f, order: i})
	}
	return cands, skips
}

// sortCandidates orders by file, span start, span end, then input order.
func sortCandidates(candidates []candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		ei, ej := candidates[i].fix.Edit.Span, candidates[j].fix.Edit.Span
		if ei.File != ej.File {
			return ei.File < ej.File
		}
		if ei.Start != ej.Start {
			return ei.Start < ej.Start
		}
		if ei.End != ej.End {
			return ei.End < ej.End
		}
		return candidates[i].order < candidates[j].order
	})
}

func selectCandidates(candidates []candidate, opts ApplyOptions) ([]candidate, []SkippedFix) {
	switch opts.Mode {
	case ApplyModeID:
		for _, cand := range candidates {
			if cand.fix.ID == opts.TargetID {
				return []candidate{cand}, nil
			}
		}
		return nil, []SkippedFix{{
			ID:     opts.TargetID,
			Reason: "fix id not found",
		}}
	case ApplyModeAll:
		return candidates, nil
	case ApplyModeOnce:
		return candidates[:1], nil
	default:
		return nil, nil
	}
}

// fileEdits collects the accepted edits of one file in text order.
type fileEdits struct {
	file  *source.File
	edits []Edit
}

// accept checks edit against the original content and the edits accepted
// so far; it returns the reason for a skip or "".
func (fe *fileEdits) accept(edit Edit) string {
	span := edit.Span
	switch {
	case span.End < span.Start || span.End > fe.file.Size():
		return "edit span out of range"
	case len(fe.edits) > 0 && spansConflict(fe.edits[len(fe.edits)-1], edit):
		// кандидаты отсортированы, достаточно сравнить с последней правкой
		return "overlaps an applied edit"
	case edit.OldText != "" && string(fe.file.Content[span.Start:span.End]) != edit.OldText:
		return "existing text does not match expected content"
	}
	fe.edits = append(fe.edits, edit)
	return ""
}

// render returns the file content with all accepted edits applied.
func (fe *fileEdits) render() []byte {
	content := fe.file.Content
	var b bytes.Buffer
	b.Grow(len(content))
	var pos uint32
	for _, e := range fe.edits {
		b.Write(content[pos:e.Span.Start])
		b.WriteString(e.NewText)
		pos = e.Span.End
	}
	b.Write(content[pos:])
	return b.Bytes()
}

// applyCandidates applies selected, which is sorted by file and position,
// in a single pass per file.
func applyCandidates(fs *source.FileSet, selected []candidate, opts ApplyOptions, result *ApplyResult) error {
	baseDir := fs.BaseDir()
	var files []*fileEdits
	var cur *fileEdits
	for _, cand := range selected {
		edit := cand.fix.Edit
		if cur == nil || cur.file.ID != edit.Span.File {
			cur = &fileEdits{file: fs.Get(edit.Span.File)}
			files = append(files, cur)
		}
		if reason := cur.accept(edit); reason != "" {
			result.Skipped = append(result.Skipped, SkippedFix{ID: cand.fix.ID, Title: cand.fix.Title, Reason: reason})
			continue
		}
		result.Applied = append(result.Applied, AppliedFix{
			ID:          cand.fix.ID,
			Title:       cand.fix.Title,
			RuleID:      cand.fix.RuleID,
			Message:     cand.fix.Message,
			PrimaryPath: cur.file.FormatPath("auto", baseDir),
		})
	}

	for _, fe := range files {
		if len(fe.edits) == 0 {
			continue
		}
		file := fe.file
		buf := fe.render()
		result.Content[file.ID] = buf

		write := !opts.DryRun && file.Flags&source.FileVirtual == 0
		if write {
			if err := writeKeepingMode(file.Path, buf); err != nil {
				return err
			}
		}
		result.FileChanges = append(result.FileChanges, FileChange{
			Path:      file.FormatPath("relative", baseDir),
			EditCount: len(fe.edits),
			Written:   write,
		})
	}
	return nil
}

func writeKeepingMode(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// spansConflict reports whether two text edits' spans overlap.
// Spans are treated as half-open intervals [Start, End). Two insertions at
// the same position conflict, other zero-length edits conflict only when
// they fall strictly inside the other span.
func spansConflict(a, b Edit) bool {
	aStart, aEnd := a.Span.Start, a.Span.End
	bStart, bEnd := b.Span.Start, b.Span.End

	if aStart == aEnd && bStart == bEnd {
		return aStart == bStart
	}
	if aStart == aEnd {
		return bStart < aStart && aStart < bEnd
	}
	if bStart == bEnd {
		return aStart < bStart && bStart < aEnd
	}
	return aStart < bEnd && bStart < aEnd
}
