// Package diag defines the rule match model shared by the matcher, the
// checking session and the presentation layer.
//
// # Purpose
//
//   - Provide deterministic, serialisable match records (RuleMatch) with both
//     byte spans and code point offsets into the checked text.
//   - Offer the aggregation container (Bag) that merges matches of many rules,
//     orders them and drops duplicates.
//
// # Scope
//
// Package diag does not perform any formatting, escaping or IO. Rendering
// lives in internal/diagfmt; applying suggestions lives in internal/fix.
//
// # Ordering
//
// Bag.Sort orders matches by document, start offset, rule declaration order
// and end offset. The order is total for distinct (rule, span) pairs, so the
// output of a check is stable across runs.
package diag
