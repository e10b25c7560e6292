// Package token defines raw tokens, readings and analyzed sentences.
// Invariants:
//   - Token.Text is a slice of the original document (no copies, no cleaning).
//   - Token.Span matches Text exactly; tokens of a sentence are contiguous.
//   - Token.Norm is the cleaned form used for lookups; it may differ from Text.
//   - Every AnalyzedToken carries at least one Reading.
//   - Sentence.Tokens[0] is the synthetic start marker with an empty span.
//   - A Sentence is never modified after construction; rewrites build a new one.
package token
