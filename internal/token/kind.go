package token

// Kind represents the category of a raw token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// SentStart is the synthetic marker at position 0 of every sentence.
	SentStart
	// Word is a run of non-separator characters containing a letter.
	Word
	// Number is a run of non-separator characters made of digits only.
	Number
	// Punct is a single non-whitespace separator character.
	Punct
	// Space is a single whitespace or zero-width separator character.
	Space
)

func (k Kind) String() string {
	switch k {
	case SentStart:
		return "SENT_START"
	case Word:
		return "Word"
	case Number:
		return "Number"
	case Punct:
		return "Punct"
	case Space:
		return "Space"
	default:
		return "Invalid"
	}
}
