package fuzztests

import (
	"bufio"
	"bytes"
	"io/fs"
	"strings"
	"testing"

	"gramlint/internal/language"
)

const (
	maxSeedBytes  = 64 << 10 // 64 KiB, ограничение для тестового корпуса
	wordsPerSeed  = 24
	maxFuzzInput  = 1 << 16
	seedLanguage  = "en"
	fuzzTextLimit = 4 << 10 // полная проверка медленнее токенизации
)

var handSeeds = []string{
	"",
	"This is an test.",
	"Mr. Smith arrived. He was late!\n\nNew paragraph?",
	"Т.Шевченко писав писав вірші.",
	"„Zitat.“ Ein Satz... noch einer",
	"öäüß öäüß",
	"a​b c\td\r\ne",
	"e.g. z.B. U.S.A. 3.14 1,000",
}

// addCorpusSeeds adds hand-written texts and, per embedded language, a line
// built from its dictionary forms.
func addCorpusSeeds(f *testing.F) {
	for _, s := range handSeeds {
		f.Add(s)
	}
	addDictionarySeeds(f, language.Builtin())
}

func addDictionarySeeds(f *testing.F, fsys fs.FS) {
	dirs, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return
	}
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		data, err := fs.ReadFile(fsys, d.Name()+"/dictionary.tsv")
		if err != nil {
			continue
		}
		var words []string
		sc := bufio.NewScanner(bytes.NewReader(data))
		for sc.Scan() && len(words) < wordsPerSeed {
			line := sc.Text()
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			form, _, _ := strings.Cut(line, "\t")
			words = append(words, form)
		}
		if len(words) == 0 {
			continue
		}
		// два предложения, чтобы задеть сегментатор
		half := len(words) / 2
		seed := strings.Join(words[:half], " ") + ". " + strings.Join(words[half:], " ") + "."
		f.Add(clampSeed(seed))
	}
}

func clampSeed(src string) string {
	if len(src) <= maxSeedBytes {
		return src
	}
	return strings.ToValidUTF8(src[:maxSeedBytes], "")
}

func clampInput(input string, limit int) string {
	if len(input) > limit {
		input = input[:limit]
	}
	return strings.ToValidUTF8(input, "�")
}
