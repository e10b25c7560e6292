package pattern

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// References lists the element numbers (1-based) that tmpl refers to.
func References(tmpl string) []int {
	var refs []int
	walkTemplate(tmpl, func(lit string) {}, func(n int) { refs = append(refs, n) })
	return refs
}

// Render substitutes \N with group(N). Unknown or absent groups render as "".
// A doubled backslash stands for a literal one.
func Render(tmpl string, group func(n int) (string, bool)) string {
	if !strings.ContainsRune(tmpl, '\\') {
		return tmpl
	}
	var b strings.Builder
	b.Grow(len(tmpl))
	walkTemplate(tmpl, func(lit string) { b.WriteString(lit) }, func(n int) {
		if s, ok := group(n); ok {
			b.WriteString(s)
		}
	})
	return b.String()
}

func walkTemplate(tmpl string, lit func(string), ref func(int)) {
	start := 0
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '\\' || i+1 >= len(tmpl) {
			continue
		}
		next := tmpl[i+1]
		switch {
		case next == '\\':
			lit(tmpl[start:i])
			lit("\\")
			i++
			start = i + 1
		case '0' <= next && next <= '9':
			lit(tmpl[start:i])
			j := i + 1
			n := 0
			for j < len(tmpl) && '0' <= tmpl[j] && tmpl[j] <= '9' {
				n = n*10 + int(tmpl[j]-'0')
				j++
			}
			ref(n)
			i = j - 1
			start = j
		}
	}
	lit(tmpl[start:])
}

// ApplyCase converts s according to c; marked is the text being replaced.
func ApplyCase(s string, c CaseConv, marked string) string {
	switch c {
	case CaseStartUpper:
		return mapFirst(s, unicode.ToUpper)
	case CaseStartLower:
		return mapFirst(s, unicode.ToLower)
	case CaseAllUpper:
		return strings.ToUpper(s)
	case CaseAllLower:
		return strings.ToLower(s)
	case CasePreserve:
		switch {
		case isAllUpper(marked):
			return strings.ToUpper(s)
		case startsUpper(marked):
			return mapFirst(s, unicode.ToUpper)
		}
	}
	return s
}

func mapFirst(s string, f func(rune) rune) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return s
	}
	return string(f(r)) + s[size:]
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

// isAllUpper is true for words of two or more letters without lowercase ones.
func isAllUpper(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters > 1
}
