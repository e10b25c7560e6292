package ui

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"gramlint/internal/driver"
)

func TestProgressModelTracksFiles(t *testing.T) {
	events := make(chan driver.FileEvent)
	m := NewProgressModel("checking", []string{"a.txt", "b.txt"}, events).(*progressModel)

	steps := []struct {
		ev       driver.FileEvent
		finished int
		status   []string
	}{
		{driver.FileEvent{Index: 0, Status: driver.FileChecking}, 0, []string{"checking", "queued"}},
		{driver.FileEvent{Index: 0, Status: driver.FileDone, Matches: 3}, 1, []string{"done", "queued"}},
		{driver.FileEvent{Index: 1, Status: driver.FileDone, Failed: 1}, 2, []string{"done", "partial"}},
		// чужой индекс игнорируется
		{driver.FileEvent{Index: 7, Status: driver.FileDone}, 2, []string{"done", "partial"}},
	}
	for i, st := range steps {
		m.Update(eventMsg(st.ev))
		if m.finished != st.finished {
			t.Fatalf("step %d: finished %d, want %d", i, m.finished, st.finished)
		}
		for j, want := range st.status {
			if got := stateLabels[m.items[j].state]; got != want {
				t.Fatalf("step %d: item %d status %q, want %q", i, j, got, want)
			}
		}
	}

	view := stripStyle(m.View())
	if !strings.Contains(view, "2/2 files, 3 matches, 1 sentence not analyzed") || !strings.Contains(view, "a.txt (3)") {
		t.Fatalf("unexpected view:\n%s", view)
	}
	m.Update(doneMsg{})
	if !strings.HasPrefix(stripStyle(m.View()), "done:") {
		t.Fatalf("done view:\n%s", m.View())
	}
}

func TestProgressModelError(t *testing.T) {
	m := NewProgressModel("checking", []string{"a.txt"}, nil).(*progressModel)
	m.Update(eventMsg{Index: 0, Status: driver.FileError, Err: errors.New("read failed")})
	// повторное событие по завершённому файлу не считается
	m.Update(eventMsg{Index: 0, Status: driver.FileDone})
	if m.finished != 1 {
		t.Fatalf("finished = %d", m.finished)
	}
	view := stripStyle(m.View())
	if !strings.Contains(view, "error a.txt read failed") {
		t.Fatalf("error row missing:\n%s", view)
	}
}

func TestProgressModelWindow(t *testing.T) {
	files := make([]string, 30)
	for i := range files {
		files[i] = fmt.Sprintf("f%02d.txt", i)
	}
	m := NewProgressModel("checking", files, nil).(*progressModel)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	m.Update(eventMsg{Index: 0, Status: driver.FileDone})
	m.Update(eventMsg{Index: 25, Status: driver.FileChecking})

	idx, hidden := m.visible(4)
	if len(idx) != 4 || hidden != 26 {
		t.Fatalf("visible = %v, hidden %d", idx, hidden)
	}
	if !slices.Contains(idx, 25) || !slices.Contains(idx, 0) {
		t.Fatalf("checking and finished files not shown: %v", idx)
	}
	if !slices.IsSorted(idx) {
		t.Fatalf("rows out of order: %v", idx)
	}
	if view := stripStyle(m.View()); !strings.Contains(view, "more") {
		t.Fatalf("hidden rows not reported:\n%s", view)
	}
}

func TestPlural(t *testing.T) {
	tests := []struct {
		n    int
		word string
		want string
	}{
		{1, "match", "1 match"},
		{2, "match", "2 matches"},
		{0, "sentence", "0 sentences"},
	}
	for _, tt := range tests {
		if got := plural(tt.n, tt.word); got != tt.want {
			t.Errorf("plural(%d, %q) = %q, want %q", tt.n, tt.word, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short.txt", 20, "short.txt"},
		{"a/very/long/path.txt", 10, "a/very/..."},
		{"abcdef", 3, "abc"},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func stripStyle(s string) string {
	var b strings.Builder
	esc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			esc = true
		case esc && r == 'm':
			esc = false
		case !esc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
