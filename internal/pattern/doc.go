// Package pattern defines declarative token-pattern rules.
//
// A Rule is an ordered list of Elements; each Element constrains one or more
// consecutive tokens through a Cond (a token-value matcher from a closed set
// of kinds plus an optional part-of-speech regex), an occurrence range, a
// skip window before it and scoped exceptions.
//
// Rules are validated and compiled once by Rule.Compile and are immutable
// afterwards; the matcher package evaluates them. Malformed rules never reach
// the matcher: every problem is reported as a *ConfigError at load time.
package pattern
