// Package matcher evaluates compiled pattern rules against analyzed sentences.
//
// Alignment walks the content tokens of a sentence (the start marker at
// position 0 plus every non-whitespace token). Backtracking state lives on an
// explicit frame stack, so deep patterns never grow the goroutine stack.
//
// Порядок альтернатив для элемента:
//   - skip перебирается по возрастанию (ленивый);
//   - число повторов по убыванию (жадный);
//   - вариант «элемент отсутствует» (Min == 0) идёт последним.
//
// Matches of one rule never overlap: scanning resumes after the full match.
package matcher
