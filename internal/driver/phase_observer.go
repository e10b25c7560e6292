package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus uint8

const (
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

func (s PhaseStatus) String() string {
	if s == PhaseEnd {
		return "end"
	}
	return "start"
}

// PhaseEvent describes one boundary of a check stage: segment, analyze,
// analyze-source or merge. Elapsed and Note are set on PhaseEnd only.
type PhaseEvent struct {
	Name     string
	Status   PhaseStatus
	Language string
	// Source marks the source side of a bitext check.
	Source  bool
	Elapsed time.Duration
	Note    string
}

// PhaseObserver receives phase events emitted during Check and CheckBitext.
// It may be called from the goroutine running the check only, never from
// sentence workers.
type PhaseObserver func(PhaseEvent)
