package language

import (
	"gramlint/internal/rules"
)

// fileSpec is the layout of language.toml.
type fileSpec struct {
	Language  metaSpec      `toml:"language"`
	Tokenizer tokenizerSpec `toml:"tokenizer"`
	Segmenter segmenterSpec `toml:"segmenter"`
	rules.File
}

type metaSpec struct {
	Name     string   `toml:"name"`
	Code     string   `toml:"code"`
	Variants []string `toml:"variants"`
}

type tokenizerSpec struct {
	Punct   *string       `toml:"punct"` // nil = tokenizer.DefaultPunct
	Keep    string        `toml:"keep"`
	Rewrite []rewriteSpec `toml:"rewrite"`
}

type rewriteSpec struct {
	Pattern string `toml:"pattern"`
	Keep    []int  `toml:"keep"`
}

type segmenterSpec struct {
	Abbreviations    []string `toml:"abbreviations"`
	NoParagraphBreak bool     `toml:"no_paragraph_break"`
}
