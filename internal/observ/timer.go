package observ

import (
	"fmt"
	"sync"
	"time"
)

// Timer collects stage durations of one check.
//
// Wall stages run once, one after another, and make up the total. Summed
// stages are reported by parallel workers, one sample per sentence, so
// their durations overlap the wall stage that runs them.
//
// A nil *Timer ignores everything. Timer is safe for concurrent use.
type Timer struct {
	mu     sync.Mutex
	stages []stage
	byName map[string]int
}

type stage struct {
	name    string
	dur     time.Duration
	samples int
	summed  bool
	note    string
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer {
	return &Timer{stages: make([]stage, 0, 8), byName: make(map[string]int, 8)}
}

// slot returns the index of the named stage, registering it on first use.
// Caller holds t.mu.
func (t *Timer) slot(name string, summed bool) int {
	if i, ok := t.byName[name]; ok {
		return i
	}
	t.stages = append(t.stages, stage{name: name, summed: summed})
	t.byName[name] = len(t.stages) - 1
	return len(t.stages) - 1
}

// Start opens a wall stage. The stage keeps its place in the report from
// this moment; the returned func closes it.
func (t *Timer) Start(name string) func(note string) {
	if t == nil {
		return func(string) {}
	}
	t.mu.Lock()
	i := t.slot(name, false)
	t.mu.Unlock()
	started := time.Now()
	return func(note string) {
		d := time.Since(started)
		t.mu.Lock()
		t.stages[i].dur += d
		t.stages[i].samples++
		if note != "" {
			t.stages[i].note = note
		}
		t.mu.Unlock()
	}
}

// Sample adds d to the summed stage name.
func (t *Timer) Sample(name string, d time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	i := t.slot(name, true)
	t.stages[i].dur += d
	t.stages[i].samples++
	t.mu.Unlock()
}

// PhaseReport представляет сжатую информацию о стадии для сериализации.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Summed     bool    `json:"summed,omitempty"`
	Samples    int     `json:"samples,omitempty"`
	Note       string  `json:"note,omitempty"`
}

// Report описывает агрегированные данные таймера.
// TotalMS counts wall stages only.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report формирует срез стадий в порядке их появления.
func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.stages) == 0 {
		return Report{}
	}
	report := Report{Phases: make([]PhaseReport, len(t.stages))}
	var total time.Duration
	for i, st := range t.stages {
		pr := PhaseReport{
			Name:       st.name,
			DurationMS: durationToMillis(st.dur),
			Summed:     st.summed,
			Note:       st.note,
		}
		if st.summed {
			pr.Samples = st.samples
			if pr.Note == "" {
				pr.Note = fmt.Sprintf("sum over %d sentences", st.samples)
			}
		} else {
			total += st.dur
		}
		report.Phases[i] = pr
	}
	report.TotalMS = durationToMillis(total)
	return report
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
