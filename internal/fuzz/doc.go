// Package fuzztests houses Go fuzz harnesses for the checking pipeline
// (segmenter -> tokenizer -> full check). Its goal is to smoke test
// robustness and guard against panics, hangs and broken offsets on
// arbitrary text.
//
// Назначение: прогонять произвольный текст через сегментатор, токенизатор и
// сессию проверки и сверять инварианты из internal/testkit.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/language, internal/driver, internal/testkit.

package fuzztests
