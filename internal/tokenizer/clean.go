package tokenizer

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	apostrophes = strings.NewReplacer("\u2019", "'", "\u02BC", "'", "\u2018", "'", "\u201B", "'", "\u2032", "'")
	invisible   = strings.NewReplacer("\u0301", "", "\u00AD", "")
)

// Clean returns the normalized form of a token used for lookups:
// NFC, combining acute and soft hyphen removed, curly apostrophes mapped to '.
// The token's surface text is never touched.
func Clean(s string) string {
	if isPlainASCII(s) {
		return s
	}
	s = norm.NFC.String(s)
	if strings.ContainsAny(s, "\u0301\u00AD") {
		s = invisible.Replace(s)
	}
	return apostrophes.Replace(s)
}

func isPlainASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
