// Package token provides a cheap, language-aware approximation of LLM token
// counts. The estimate only needs to be directionally correct and monotonic
// in text length: it sizes chunks, it does not bill anyone.
package token

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/language"
)

// Multipliers are heuristic tokens-per-unit weights. Exact tokenization would
// require the backend model's own tokenizer, which is unavailable client-side.
// Treat these as tunables, not authoritative constants.
var (
	// JapaneseCharWeight is tokens per hiragana/katakana/kanji character.
	JapaneseCharWeight = 2.0
	// LatinWordWeight is tokens per Latin-alphabet word run.
	LatinWordWeight = 1.3
	// OtherCharWeight is tokens per remaining character.
	OtherCharWeight = 0.5
)

// CompressionRatio anticipates how much translated output grows or shrinks
// relative to the source, so chunk sizing bounds the output rather than just
// the input. Pairs not listed use 1.0.
var (
	RatioJapaneseToEnglish = 0.65
	RatioEnglishToJapanese = 1.5
)

var latinWordPattern = regexp.MustCompile(`[A-Za-z]+`)

// isJapaneseRune reports whether r belongs to the Japanese script class:
// hiragana, katakana, or the CJK unified ideograph ranges.
func isJapaneseRune(r rune) bool {
	switch {
	case r >= 0x3040 && r <= 0x309F: // hiragana
		return true
	case r >= 0x30A0 && r <= 0x30FF: // katakana
		return true
	case r >= 0x3400 && r <= 0x4DBF: // CJK extension A
		return true
	case r >= 0x4E00 && r <= 0x9FFF: // CJK unified ideographs
		return true
	}
	return false
}

// Estimate returns the estimated token count of text. When targetLanguage is
// non-empty the raw estimate is scaled by the translation compression ratio
// for the detected-source → target pair.
func Estimate(text, targetLanguage string) int {
	if text == "" {
		return 0
	}

	japanese := 0
	other := 0
	for _, r := range text {
		switch {
		case isJapaneseRune(r):
			japanese++
		case r <= unicode.MaxASCII && ((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')):
			// counted as word runs below
		default:
			other++
		}
	}
	words := len(latinWordPattern.FindAllStringIndex(text, -1))

	estimate := float64(japanese)*JapaneseCharWeight +
		float64(words)*LatinWordWeight +
		float64(other)*OtherCharWeight

	if targetLanguage != "" {
		estimate *= compressionRatio(japanese, words, targetLanguage)
	}

	if estimate < 1 {
		return 1
	}
	return int(estimate)
}

// compressionRatio picks the output/input length ratio for the language pair
// formed by the detected source script and the caller's target language.
func compressionRatio(japaneseChars, latinWords int, targetLanguage string) float64 {
	target := CanonicalTag(targetLanguage)
	sourceJapanese := japaneseChars > latinWords

	base, _ := target.Base()
	switch base.String() {
	case "en":
		if sourceJapanese {
			return RatioJapaneseToEnglish
		}
	case "ja":
		if !sourceJapanese {
			return RatioEnglishToJapanese
		}
	}
	return 1.0
}

// languageAliases maps common human-readable language names to BCP-47 codes
// that language.Parse understands.
var languageAliases = map[string]string{
	"english":    "en",
	"japanese":   "ja",
	"日本語":        "ja",
	"chinese":    "zh",
	"中文":         "zh",
	"korean":     "ko",
	"french":     "fr",
	"german":     "de",
	"spanish":    "es",
	"italian":    "it",
	"portuguese": "pt",
	"russian":    "ru",
}

// CanonicalTag canonicalizes a user-supplied language string ("Japanese",
// "ja", "ja-JP", "日本語") to a BCP-47 tag. Unknown input yields language.Und.
func CanonicalTag(lang string) language.Tag {
	s := strings.TrimSpace(strings.ToLower(lang))
	if s == "" {
		return language.Und
	}
	if code, ok := languageAliases[s]; ok {
		s = code
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und
	}
	return tag
}

// SentenceTerminators returns the sentence-ending runes typical for the
// target language, used by the chunker's sentence-boundary fallback.
func SentenceTerminators(targetLanguage string) []rune {
	base, _ := CanonicalTag(targetLanguage).Base()
	switch base.String() {
	case "ja", "zh":
		return []rune{'。', '！', '？', '.', '!', '?'}
	default:
		return []rune{'.', '!', '?', '。', '！', '？'}
	}
}
