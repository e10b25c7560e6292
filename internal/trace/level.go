package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // only KindError events
	LevelPhase        // driver + pipeline stages
	LevelDetail       // + sentences
	LevelDebug        // + every evaluated rule
)

var levelNames = []string{"off", "error", "phase", "detail", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts the level names in any case.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames, "|"))
}

// ShouldEmit reports whether spans and points of scope are recorded at l.
// Errors and heartbeats bypass this check.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelPhase:
		return scope <= ScopePhase
	case LevelDetail:
		return scope <= ScopeSentence
	case LevelDebug:
		return true
	}
	// off и error: спаны не пишем
	return false
}

// accepts is the filter shared by all tracers.
func (l Level) accepts(ev *Event) bool {
	if l == LevelOff {
		return false
	}
	return ev.Kind == KindError || ev.Kind == KindHeartbeat || l.ShouldEmit(ev.Scope)
}
