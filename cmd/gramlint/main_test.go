package main

import (
	"bytes"
	"slices"
	"strings"
	"testing"
	"time"

	"gramlint/internal/diag"
	"gramlint/internal/fix"
	"gramlint/internal/project"
)

func TestParseApplyOptions(t *testing.T) {
	cases := []struct {
		mode    string
		id      string
		modeSet bool
		want    fix.ApplyMode
		wantErr bool
	}{
		{mode: "once", want: fix.ApplyModeOnce},
		{mode: "ALL", modeSet: true, want: fix.ApplyModeAll},
		{mode: "once", id: "EN_A_VS_AN-1-4", want: fix.ApplyModeID},
		{mode: "id", id: "X", modeSet: true, want: fix.ApplyModeID},
		{mode: "id", modeSet: true, wantErr: true},
		{mode: "all", id: "X", modeSet: true, wantErr: true},
		{mode: "some", wantErr: true},
	}
	for _, tc := range cases {
		got, err := parseApplyOptions(tc.mode, tc.id, tc.modeSet, true)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseApplyOptions(%q, %q): expected error", tc.mode, tc.id)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseApplyOptions(%q, %q): %v", tc.mode, tc.id, err)
		}
		if got.Mode != tc.want || got.TargetID != tc.id || !got.DryRun {
			t.Errorf("parseApplyOptions(%q, %q) = %+v", tc.mode, tc.id, got)
		}
	}
}

func TestMergeProjectConfig(t *testing.T) {
	cfg := &project.Config{
		Check: project.CheckConfig{
			Language:        "de",
			MotherTongue:    "en",
			Disable:         []string{"DE_CASE"},
			Jobs:            3,
			TimeoutDuration: 2 * time.Second,
			Cache:           true,
		},
		Output: project.OutputConfig{Format: "JSON", MaxMatches: 10},
	}
	opts := checkOptions{lang: "pl", format: "pretty", jobs: 1}
	changed := func(name string) bool { return name == "lang" }
	mergeProjectConfig(&opts, cfg, changed)

	if opts.lang != "pl" {
		t.Errorf("lang = %q, flag must win", opts.lang)
	}
	if opts.motherTongue != "en" || opts.jobs != 3 || opts.timeout != 2*time.Second || !opts.cache {
		t.Errorf("config values not applied: %+v", opts)
	}
	if opts.format != "json" || opts.maxMatches != 10 {
		t.Errorf("output config not applied: format=%q max=%d", opts.format, opts.maxMatches)
	}
	if !slices.Equal(opts.disable, []string{"DE_CASE"}) {
		t.Errorf("disable = %v", opts.disable)
	}
}

func TestMergeProjectConfigDefaults(t *testing.T) {
	var opts checkOptions
	mergeProjectConfig(&opts, nil, func(string) bool { return false })
	if opts.lang != "en" {
		t.Errorf("default lang = %q, want en", opts.lang)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList([]string{"A,B", " C ", "", "D,,"})
	want := []string{"A", "B", "C", "D"}
	if !slices.Equal(got, want) {
		t.Fatalf("splitList = %v, want %v", got, want)
	}
}

func TestUserDictKey(t *testing.T) {
	cases := map[string]string{
		"en":    "en",
		"en-US": "en",
		"de-AT": "de",
		"uk":    "uk",
	}
	for in, want := range cases {
		if got := userDictKey(in); got != want {
			t.Errorf("userDictKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, "on": uiModeOn, " off ": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Errorf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("maybe"); err == nil {
		t.Fatalf("expected error for invalid mode")
	}
	if !shouldUseTUI(uiModeOn, "json") || shouldUseTUI(uiModeOff, "pretty") {
		t.Fatalf("explicit ui modes must be honoured")
	}
}

func TestReadColor(t *testing.T) {
	if on, err := readColor("on", nil); err != nil || !on {
		t.Errorf("on: %v %v", on, err)
	}
	if on, err := readColor("off", nil); err != nil || on {
		t.Errorf("off: %v %v", on, err)
	}
	if on, err := readColor("auto", nil); err != nil || on {
		t.Errorf("auto without output: %v %v", on, err)
	}
	if _, err := readColor("rainbow", nil); err == nil {
		t.Errorf("expected error")
	}
}

func TestFilterRules(t *testing.T) {
	matches := []diag.RuleMatch{{RuleID: "A"}, {RuleID: "B"}, {RuleID: "A"}}
	if got := filterRules(matches, nil); len(got) != 3 {
		t.Fatalf("no filter kept %d", len(got))
	}
	got := filterRules(matches, []string{"A"})
	if len(got) != 2 || got[0].RuleID != "A" || got[1].RuleID != "A" {
		t.Fatalf("filter A = %+v", got)
	}
	if matches[1].RuleID != "B" {
		t.Fatalf("input modified")
	}
}

func TestHandleApplyResult(t *testing.T) {
	var buf bytes.Buffer
	res := &fix.ApplyResult{
		Applied:     []fix.AppliedFix{{ID: "F1", Title: `replace "an" with "a"`, RuleID: "EN_A_VS_AN", PrimaryPath: "doc.txt"}},
		FileChanges: []fix.FileChange{{Path: "doc.txt", EditCount: 1}},
		Skipped:     []fix.SkippedFix{{ID: "F2", Reason: "conflicts with another fix"}},
	}
	if err := handleApplyResult(&buf, res, nil); err != nil {
		t.Fatalf("handleApplyResult: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Applied 1 fix(es)", "[F1] doc.txt", "doc.txt (1 edits, not written)", "[F2]: conflicts"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := handleApplyResult(&buf, &fix.ApplyResult{}, fix.ErrNoFixes); err != nil {
		t.Fatalf("ErrNoFixes must not fail: %v", err)
	}
	if !strings.Contains(buf.String(), "No applicable fixes found.") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
