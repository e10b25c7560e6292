package rules

// File is the rule part of a language file.
type File struct {
	Rules          []RuleSpec `toml:"rule"`
	Disambiguation []RuleSpec `toml:"disambiguation"`
	FalseFriends   []RuleSpec `toml:"falsefriend"`
}

// RuleSpec mirrors one [[rule]], [[disambiguation]] or [[falsefriend]] table.
type RuleSpec struct {
	ID            string           `toml:"id"`
	Description   string           `toml:"description"`
	Message       string           `toml:"message"`
	Short         string           `toml:"short"`
	Category      string           `toml:"category"`
	Severity      string           `toml:"severity"`
	Default       string           `toml:"default"` // "on" (по умолчанию) или "off"
	CaseSensitive bool             `toml:"case_sensitive"`
	Mark          []int            `toml:"mark"` // [from, to], с единицы
	Pattern       []ElementSpec    `toml:"pattern"`
	Suggestions   []SuggestionSpec `toml:"suggestion"`
	Action        *ActionSpec      `toml:"action"`
	MotherTongue  string           `toml:"mother_tongue"`
	Source        []ElementSpec    `toml:"source"`
	Variants      []VariantSpec    `toml:"variant"`
}

// VariantSpec is an alternative pattern sharing the id and metadata of its
// rule. Empty fields inherit from the rule.
type VariantSpec struct {
	Message     string           `toml:"message"`
	Short       string           `toml:"short"`
	Mark        []int            `toml:"mark"`
	Pattern     []ElementSpec    `toml:"pattern"`
	Suggestions []SuggestionSpec `toml:"suggestion"`
}

// CondSpec holds the single-token condition keys.
type CondSpec struct {
	Token         string `toml:"token"`
	Regex         string `toml:"regex"`
	Backref       int    `toml:"backref"` // номер элемента с единицы
	SentStart     bool   `toml:"sent_start"`
	Inflected     bool   `toml:"inflected"`
	POS           string `toml:"postag"`
	AllReadings   bool   `toml:"all_readings"`
	Negate        bool   `toml:"negate"`
	CaseSensitive *bool  `toml:"case_sensitive"`
}

type ElementSpec struct {
	CondSpec
	Min         *int            `toml:"min"`
	Max         *int            `toml:"max"`
	Skip        int             `toml:"skip"`
	SpaceBefore *bool           `toml:"space_before"`
	Exceptions  []ExceptionSpec `toml:"exception"`
}

type ExceptionSpec struct {
	CondSpec
	Scope string `toml:"scope"`
}

type SuggestionSpec struct {
	Text string `toml:"text"`
	Case string `toml:"case"`
}

type ActionSpec struct {
	Kind     string        `toml:"kind"`
	POS      string        `toml:"postag"`
	Lemma    string        `toml:"lemma"`
	Readings []ReadingSpec `toml:"reading"`
}

type ReadingSpec struct {
	Lemma string `toml:"lemma"`
	Tag   string `toml:"tag"`
}
