package diag

import (
	"fmt"
	"strings"
)

// Severity defines the importance of a rule match.
type Severity uint8

const (
	// SevInfo is for style hints.
	SevInfo Severity = iota
	// SevWarning is the default for grammar and style rules.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ParseSeverity accepts "info", "warning" or "error" in any case; empty means warning.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return SevWarning, nil
	case "info", "hint", "style":
		return SevInfo, nil
	case "warning", "warn":
		return SevWarning, nil
	case "error":
		return SevError, nil
	}
	return SevInfo, fmt.Errorf("unknown severity %q", s)
}
