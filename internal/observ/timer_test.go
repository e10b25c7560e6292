package observ

import (
	"sync"
	"testing"
	"time"
)

func TestTimerOrderAndTotal(t *testing.T) {
	tm := NewTimer()
	end := tm.Start("segment")
	end("2 sentences")
	endAnalyze := tm.Start("analyze")
	tm.Sample("tokenize", 3*time.Millisecond)
	tm.Sample("tokenize", 2*time.Millisecond)
	endAnalyze("")

	r := tm.Report()
	if len(r.Phases) != 3 {
		t.Fatalf("got %d phases, want 3: %+v", len(r.Phases), r.Phases)
	}
	wantNames := []string{"segment", "analyze", "tokenize"}
	for i, name := range wantNames {
		if r.Phases[i].Name != name {
			t.Errorf("phase %d = %q, want %q", i, r.Phases[i].Name, name)
		}
	}
	if r.Phases[0].Note != "2 sentences" {
		t.Errorf("segment note = %q", r.Phases[0].Note)
	}
	tok := r.Phases[2]
	if !tok.Summed || tok.Samples != 2 || tok.DurationMS != 5 {
		t.Errorf("tokenize = %+v", tok)
	}
	if tok.Note != "sum over 2 sentences" {
		t.Errorf("tokenize note = %q", tok.Note)
	}
	if got := r.Phases[0].DurationMS + r.Phases[1].DurationMS; got != r.TotalMS {
		t.Errorf("total %v, want wall sum %v", r.TotalMS, got)
	}
}

func TestTimerConcurrentSamples(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.Sample("match", time.Millisecond)
		}()
	}
	wg.Wait()
	r := tm.Report()
	if len(r.Phases) != 1 || r.Phases[0].Samples != 16 {
		t.Fatalf("report = %+v", r)
	}
	if r.TotalMS != 0 {
		t.Errorf("summed stages counted in total: %v", r.TotalMS)
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.Start("segment")("")
	tm.Sample("tag", time.Second)
	if r := tm.Report(); len(r.Phases) != 0 {
		t.Fatalf("nil timer reported %+v", r)
	}
}
