// Package chunker splits protected text into a sequence of chunks, each under
// a token budget, without breaking a placeholder token or, where possible, a
// paragraph or sentence boundary. Concatenating the returned chunks always
// reproduces the input exactly.
package chunker

import (
	"regexp"
	"strings"

	"doc-translator/internal/logger"
	"doc-translator/internal/protect"
	"doc-translator/internal/token"
)

// paragraphPattern matches blank-line paragraph separators.
var paragraphPattern = regexp.MustCompile(`\n[ \t]*\n`)

// SplitTextIntoChunks splits text into ordered chunks whose token estimate
// stays under maxTokens. A single atomic unit (one placeholder, one
// unsplittable run) that alone exceeds the budget becomes its own chunk.
func SplitTextIntoChunks(text string, maxTokens int, targetLanguage string) []string {
	if text == "" {
		return nil
	}
	if token.Estimate(text, targetLanguage) <= maxTokens {
		return []string{text}
	}

	segments := splitParagraphs(text)
	chunks := accumulate(segments, maxTokens, targetLanguage, func(oversize string) []string {
		return splitSentences(oversize, maxTokens, targetLanguage)
	})

	logger.Debug("split text into chunks",
		logger.Int("chunkCount", len(chunks)),
		logger.Int("maxTokens", maxTokens),
		logger.Int("textLength", len(text)))
	return chunks
}

// splitParagraphs partitions text at blank-line boundaries. Each segment
// keeps its trailing separator so the segments concatenate back to text.
func splitParagraphs(text string) []string {
	matches := paragraphPattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return []string{text}
	}

	var segments []string
	last := 0
	for _, m := range matches {
		segments = append(segments, text[last:m[1]])
		last = m[1]
	}
	if last < len(text) {
		segments = append(segments, text[last:])
	}
	return segments
}

// accumulate greedily packs consecutive segments into chunks under the
// budget. A segment that alone exceeds the budget is handed to split for
// finer division.
func accumulate(segments []string, maxTokens int, lang string, split func(string) []string) []string {
	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, seg := range segments {
		if token.Estimate(seg, lang) > maxTokens {
			flush()
			chunks = append(chunks, split(seg)...)
			continue
		}
		if current.Len() > 0 && token.Estimate(current.String()+seg, lang) > maxTokens {
			flush()
		}
		current.WriteString(seg)
	}
	flush()
	return chunks
}

// splitSentences divides an oversized paragraph at sentence boundaries,
// falling back to hard rune boundaries for a sentence that is still too big.
func splitSentences(text string, maxTokens int, lang string) []string {
	terminators := token.SentenceTerminators(lang)
	isTerminator := func(r rune) bool {
		for _, t := range terminators {
			if r == t {
				return true
			}
		}
		return false
	}

	placeholders := protect.PlaceholderPattern.FindAllStringIndex(text, -1)

	var sentences []string
	runes := []rune(text)
	start := 0
	byteAt := 0
	bytePositions := make([]int, len(runes)+1)
	for i, r := range runes {
		bytePositions[i] = byteAt
		byteAt += len(string(r))
	}
	bytePositions[len(runes)] = byteAt

	for i := 0; i < len(runes); i++ {
		if !isTerminator(runes[i]) {
			continue
		}
		// ASCII terminators only end a sentence before whitespace or at end
		// of text ("3.14" is not a boundary). Fullwidth terminators end one
		// unconditionally. Never cut inside a placeholder token.
		if runes[i] < 0x80 && i+1 < len(runes) && !isSpace(runes[i+1]) {
			continue
		}
		cut := bytePositions[i+1]
		if insidePlaceholder(cut, placeholders) {
			continue
		}
		sentences = append(sentences, text[bytePositions[start]:cut])
		start = i + 1
	}
	if start < len(runes) {
		sentences = append(sentences, text[bytePositions[start]:])
	}
	if len(sentences) == 0 {
		sentences = []string{text}
	}

	return accumulate(sentences, maxTokens, lang, func(oversize string) []string {
		return splitHard(oversize, maxTokens, lang)
	})
}

// splitHard cuts text at rune boundaries so each piece stays under the
// budget, shifting any cut that would straddle a placeholder to just before
// the token (or past it, when the placeholder itself opens the piece and is
// unavoidably larger than the budget).
func splitHard(text string, maxTokens int, lang string) []string {
	var chunks []string
	rest := text
	for rest != "" {
		if token.Estimate(rest, lang) <= maxTokens {
			chunks = append(chunks, rest)
			break
		}
		cut := largestPrefix(rest, maxTokens, lang)
		cut = safeCut(rest, cut)
		chunks = append(chunks, rest[:cut])
		rest = rest[cut:]
	}
	return chunks
}

// largestPrefix finds the longest prefix (byte offset, rune-aligned) whose
// estimate fits the budget. Estimation is monotonic in length, so binary
// search over rune count is sound.
func largestPrefix(text string, maxTokens int, lang string) int {
	runes := []rune(text)
	lo, hi := 1, len(runes)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if token.Estimate(string(runes[:mid]), lang) <= maxTokens {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return len(string(runes[:lo]))
}

// safeCut moves a proposed cut out of any placeholder token it would split.
func safeCut(text string, cut int) int {
	for _, loc := range protect.PlaceholderPattern.FindAllStringIndex(text, -1) {
		if cut > loc[0] && cut < loc[1] {
			if loc[0] == 0 {
				// The placeholder opens this piece; it is atomic, so the
				// piece must swallow it whole even over budget.
				return loc[1]
			}
			return loc[0]
		}
	}
	if cut <= 0 {
		return len(text)
	}
	return cut
}

func insidePlaceholder(pos int, placeholders [][]int) bool {
	for _, loc := range placeholders {
		if pos > loc[0] && pos < loc[1] {
			return true
		}
	}
	return false
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
