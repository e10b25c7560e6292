package source

import (
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"
)

func TestOffsetTableRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"ascii", "A short clean sentence."},
		{"umlauts", "Und wieder Erwarten: öäüß."},
		{"cyrillic", "Т.Шевченко писав вірші."},
		{"mixed widths", "a€b😀c"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tab := NewOffsetTable([]byte(tt.text))
			if got, want := tab.Runes(), uint32(utf8.RuneCountInString(tt.text)); got != want {
				t.Fatalf("Runes() = %d, want %d", got, want)
			}
			var runeIdx uint32
			for byteIdx := range tt.text {
				b := uint32(byteIdx) // #nosec G115 -- test input is tiny
				if got := tab.RuneOffset(b); got != runeIdx {
					t.Fatalf("RuneOffset(%d) = %d, want %d", b, got, runeIdx)
				}
				if got := tab.ByteOffset(runeIdx); got != b {
					t.Fatalf("ByteOffset(%d) = %d, want %d", runeIdx, got, b)
				}
				runeIdx++
			}
			end := uint32(len(tt.text)) // #nosec G115 -- test input is tiny
			if got := tab.RuneOffset(end); got != runeIdx {
				t.Fatalf("RuneOffset(end) = %d, want %d", got, runeIdx)
			}
		})
	}
}

func TestResolveCountsCodePoints(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("doc.txt", []byte("erste Zeile\nöäüß test\r\nletzte"))

	// "test" на второй строке начинается после "öäüß " (5 кодовых точек, 9 байт)
	span := Span{File: id, Start: 12 + 9, End: 12 + 13}
	start, end := fs.Resolve(span)
	if start.Line != 2 || start.Col != 6 {
		t.Fatalf("start = %+v, want line 2 col 6", start)
	}
	if end.Line != 2 || end.Col != 10 {
		t.Fatalf("end = %+v, want line 2 col 10", end)
	}

	f := fs.Get(id)
	if got := f.GetLine(2); got != "öäüß test" {
		t.Fatalf("GetLine(2) = %q", got)
	}
	if got := f.GetLine(3); got != "letzte" {
		t.Fatalf("GetLine(3) = %q", got)
	}
	if got := f.GetLine(4); got != "" {
		t.Fatalf("GetLine(4) = %q, want empty", got)
	}
}

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("notes.txt", []byte("hello world"), 0)
	id2 := fs.Add("notes.txt", []byte("hello universe"), 0)
	if id1 == id2 {
		t.Fatalf("expected distinct ids, got %d twice", id1)
	}
	latest, ok := fs.Lookup("notes.txt")
	if !ok || latest != id2 {
		t.Fatalf("Lookup = %d,%v want %d,true", latest, ok, id2)
	}
	if string(fs.Get(id1).Content) != "hello world" {
		t.Fatalf("first version lost")
	}
	if fs.Get(FileID(42)) != nil {
		t.Fatalf("expected nil for unknown id")
	}
}

func TestSpanRelations(t *testing.T) {
	outer := Span{File: 1, Start: 10, End: 20}
	tests := []struct {
		name     string
		other    Span
		contains bool
		overlaps bool
	}{
		{"inside", Span{File: 1, Start: 12, End: 15}, true, true},
		{"same", outer, true, true},
		{"touching right", Span{File: 1, Start: 20, End: 25}, false, false},
		{"crossing left", Span{File: 1, Start: 5, End: 11}, false, true},
		{"other file", Span{File: 2, Start: 12, End: 15}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outer.Contains(tt.other); got != tt.contains {
				t.Errorf("Contains = %v, want %v", got, tt.contains)
			}
			if got := outer.Overlaps(tt.other); got != tt.overlaps {
				t.Errorf("Overlaps = %v, want %v", got, tt.overlaps)
			}
		})
	}
	if got := outer.Cover(Span{File: 1, Start: 2, End: 12}); got.Start != 2 || got.End != 20 {
		t.Fatalf("Cover = %v", got)
	}
}

func TestLineBounds(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("doc.txt", []byte("one\r\ntwo\n")))
	tests := []struct {
		line       uint32
		start, end uint32
		ok         bool
	}{
		{0, 0, 0, false},
		{1, 0, 4, true},
		{2, 5, 8, true},
		{3, 9, 9, true},
		{4, 0, 0, false},
	}
	for _, tt := range tests {
		start, end, ok := f.LineBounds(tt.line)
		if start != tt.start || end != tt.end || ok != tt.ok {
			t.Errorf("LineBounds(%d) = %d,%d,%v want %d,%d,%v", tt.line, start, end, ok, tt.start, tt.end, tt.ok)
		}
	}
	if f.LineCount() != 3 {
		t.Fatalf("LineCount = %d, want 3", f.LineCount())
	}
	if got := f.GetLine(1); got != "one" {
		t.Fatalf("GetLine(1) = %q", got)
	}
}

func TestLoadStripsBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.txt")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFHallo"), 0o600); err != nil {
		t.Fatal(err)
	}
	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "Hallo" || f.Flags&FileHadBOM == 0 {
		t.Fatalf("content %q flags %b", f.Content, f.Flags)
	}
}
