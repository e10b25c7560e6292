package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func withVersion(t *testing.T, v, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	Version, GitCommit, BuildDate = v, commit, date
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})
}

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestInfo(t *testing.T) {
	tests := []struct {
		name    string
		commit  string
		date    string
		want    []string
		notWant []string
	}{
		{"bare", "", "", []string{"gramlint 1.2.3\n", "go:"}, []string{"commit:", "built:"}},
		{"full", "abc123def456", "2024-01-15T10:30:00Z", []string{"commit: abc123def456", "built:  2024-01-15T10:30:00Z"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withVersion(t, "1.2.3", tt.commit, tt.date)
			out := Info(false)
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("missing %q in:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("unexpected %q in:\n%s", w, out)
				}
			}
		})
	}
}

func TestColored(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = prev })

	withVersion(t, "1.2.3-rc1", "", "")
	out := Colored()
	if !strings.Contains(out, "\x1b[") || !strings.HasSuffix(out, "-rc1") {
		t.Fatalf("Colored() = %q", out)
	}

	withVersion(t, "nightly", "", "")
	if got := Colored(); got != "nightly" {
		t.Fatalf("Colored() = %q, want nightly", got)
	}
}
