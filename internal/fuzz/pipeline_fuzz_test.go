package fuzztests

import (
	"context"
	"sync"
	"testing"
	"time"

	"fortio.org/safecast"

	"gramlint/internal/driver"
	"gramlint/internal/language"
	"gramlint/internal/source"
	"gramlint/internal/testkit"
)

// checkTimeout is the maximum time allowed for checking a single input.
// If checking takes longer, it indicates a potential runaway backtrack.
const checkTimeout = 5 * time.Second

var (
	regOnce sync.Once
	reg     *language.Registry
	regErr  error
)

func registry(t *testing.T) *language.Registry {
	t.Helper()
	regOnce.Do(func() {
		reg, regErr = language.NewRegistry(language.Options{})
	})
	if regErr != nil {
		t.Fatalf("registry: %v", regErr)
	}
	return reg
}

func FuzzTokenizerReconstruction(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input string) {
		text := clampInput(input, maxFuzzInput)
		lang, err := registry(t).Get(seedLanguage)
		if err != nil {
			t.Fatal(err)
		}
		toks, err := lang.Tokenizer.Tokenize(text, 0, 0)
		if err != nil {
			t.Fatalf("tokenize: %v", err)
		}
		if text == "" {
			return
		}
		if err := testkit.CheckReconstruction(toks, text, 0); err != nil {
			t.Fatal(err)
		}
	})
}

func FuzzSegmenterCover(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input string) {
		text := clampInput(input, maxFuzzInput)
		for _, code := range []string{"en", "de", "pl", "uk"} {
			lang, err := registry(t).Get(code)
			if err != nil {
				t.Fatal(err)
			}
			ranges := lang.Segmenter.Split(text)
			spans := make([]source.Span, len(ranges))
			for i, r := range ranges {
				start, err := safecast.Conv[uint32](r.Start)
				if err != nil {
					t.Fatal(err)
				}
				end, err := safecast.Conv[uint32](r.End)
				if err != nil {
					t.Fatal(err)
				}
				spans[i] = source.Span{Start: start, End: end}
			}
			if err := testkit.CheckSentenceCover(spans, text); err != nil {
				t.Fatalf("%s: %v", code, err)
			}
		}
	})
}

func FuzzCheckInvariants(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input string) {
		text := clampInput(input, fuzzTextLimit)
		sess := driver.NewSession(registry(t), driver.Options{Jobs: 2})

		ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
		defer cancel()
		res, err := sess.Check(ctx, driver.Request{Text: text, Language: seedLanguage, MotherTongue: "de"})
		if err != nil {
			t.Fatalf("check did not finish: %v", err)
		}
		if len(res.Failed) > 0 {
			t.Fatalf("analysis failed: %v", res.Failed[0])
		}
		if err := testkit.CheckSentenceCover(res.Sentences, text); err != nil {
			t.Fatal(err)
		}
		if err := testkit.CheckContainment(res.Matches, res.Sentences); err != nil {
			t.Fatal(err)
		}
		if err := testkit.CheckNonOverlap(res.Matches); err != nil {
			t.Fatal(err)
		}
		if err := testkit.CheckOffsets(res.Matches, text); err != nil {
			t.Fatal(err)
		}
	})
}
