package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"gramlint/internal/source"
)

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.txt", "a.md", "skip.go", ".hidden/c.txt", "sub/d.TXT"} {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	explicit := filepath.Join(dir, "skip.go")
	got, err := ListFiles([]string{dir, explicit}, nil)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.md"),
		filepath.Join(dir, "b.txt"),
		explicit,
		filepath.Join(dir, "sub", "d.TXT"),
	}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v\nwant %v", got, want)
	}
	if _, err := ListFiles([]string{filepath.Join(dir, "missing")}, nil); err == nil {
		t.Fatalf("expected an error for a missing path")
	}
}

func TestCheckFiles(t *testing.T) {
	fs := source.NewFileSet()
	texts := []string{"This is an test.", "A short clean sentence.", "They said you you."}
	var fileIDs []source.FileID
	for i, text := range texts {
		fileIDs = append(fileIDs, fs.AddVirtual(fmt.Sprintf("doc%d.txt", i), []byte(text)))
	}
	status := make(map[int][]FileStatus)
	matches := make(map[int]int)
	res, err := NewSession(registry(t), Options{Jobs: 2}).CheckFiles(context.Background(), fs, fileIDs, Request{Language: "en"}, func(ev FileEvent) {
		status[ev.Index] = append(status[ev.Index], ev.Status)
		matches[ev.Index] = ev.Matches
	})
	if err != nil {
		t.Fatalf("CheckFiles: %v", err)
	}
	if len(res) != len(texts) {
		t.Fatalf("got %d results", len(res))
	}
	want := [][]string{{"EN_A_VS_AN"}, {}, {"WORD_REPEAT_RULE"}}
	for i, fr := range res {
		if fr.FileID != fileIDs[i] {
			t.Errorf("result %d has file %d", i, fr.FileID)
		}
		if got := ids(fr.Result.Matches); !slices.Equal(got, want[i]) {
			t.Errorf("file %d: fired %v, want %v", i, got, want[i])
		}
		for _, m := range fr.Result.Matches {
			if m.Span.File != fileIDs[i] {
				t.Errorf("file %d: match points at file %d", i, m.Span.File)
			}
		}
	}
	for i := range texts {
		if got := status[i]; !slices.Equal(got, []FileStatus{FileChecking, FileDone}) {
			t.Errorf("file %d: events %v", i, got)
		}
		if matches[i] != len(want[i]) {
			t.Errorf("file %d: event reports %d matches", i, matches[i])
		}
	}

	var failed int
	_, err = NewSession(registry(t), Options{}).CheckFiles(context.Background(), fs, fileIDs, Request{Language: "tlh"}, func(ev FileEvent) {
		if ev.Status == FileError {
			failed++
		}
	})
	if err == nil {
		t.Fatalf("unknown language did not fail")
	}
	if failed == 0 {
		t.Errorf("no error event reported")
	}
}
