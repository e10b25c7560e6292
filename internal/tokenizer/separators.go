package tokenizer

type sepClass uint8

const (
	sepNone sepClass = iota
	sepSpace
	sepPunct
)

// Separators is the set of characters that split words.
// Each separator always forms a one-character token of its own.
type Separators struct {
	m map[rune]sepClass
}

// spaceSeparators are whitespace, line and zero-width variants.
var spaceSeparators = []rune{
	'\u0020', '\u00A0', '\u115F', '\u1160', '\u1680',
	'\u2000', '\u2001', '\u2002', '\u2003', '\u2004', '\u2005', '\u2006', '\u2007',
	'\u2008', '\u2009', '\u200A', '\u200B', '\u200C', '\u200D', '\u200E', '\u200F',
	'\u2028', '\u2029', '\u202A', '\u202B', '\u202C', '\u202D', '\u202E', '\u202F',
	'\u205F', '\u2060', '\u2061', '\u2062', '\u2063', '\u206A', '\u206B', '\u206C', '\u206D',
	'\u206E', '\u206F', '\u3000', '\u3164', '\uFEFF', '\uFFA0', '\uFFF9', '\uFFFA', '\uFFFB',
	'\t', '\n', '\r',
}

// DefaultPunct lists punctuation separators used when a language does not override them.
const DefaultPunct = ",.;()[]{}<>!?:/|\\\"«»„”“`´‘‛′…¿¡"

// NewSeparators builds a separator set from the whitespace table plus punct.
// Characters in keep are removed from the set (e.g. apostrophes inside words).
func NewSeparators(punct, keep string) Separators {
	m := make(map[rune]sepClass, len(spaceSeparators)+len(punct))
	for _, r := range spaceSeparators {
		m[r] = sepSpace
	}
	for _, r := range punct {
		if _, ok := m[r]; !ok {
			m[r] = sepPunct
		}
	}
	for _, r := range keep {
		delete(m, r)
	}
	return Separators{m: m}
}

// DefaultSeparators returns the separator set shared by most languages.
func DefaultSeparators() Separators {
	return NewSeparators(DefaultPunct, "")
}

func (s Separators) class(r rune) sepClass {
	if s.m == nil {
		return sepNone
	}
	return s.m[r]
}

// IsSeparator reports whether r splits words.
func (s Separators) IsSeparator(r rune) bool {
	return s.class(r) != sepNone
}
