package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-translator/internal/protect"
	"doc-translator/internal/token"
)

func paragraphs(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(strings.Repeat("alpha beta gamma delta epsilon zeta ", 10))
		b.WriteString("\n\n")
	}
	return b.String()
}

func TestSplitSmallTextIsSingleChunk(t *testing.T) {
	text := "A short paragraph that fits comfortably."
	chunks := SplitTextIntoChunks(text, 1000, "Japanese")
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplitEmptyText(t *testing.T) {
	assert.Nil(t, SplitTextIntoChunks("", 100, "English"))
}

func TestSplitConcatenationReproducesInput(t *testing.T) {
	text := paragraphs(12)
	chunks := SplitTextIntoChunks(text, 150, "English")
	require.Greater(t, len(chunks), 1)
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplitRespectsTokenBudget(t *testing.T) {
	// Roughly 12,000 characters against a 500-token budget.
	text := paragraphs(30)
	require.GreaterOrEqual(t, len(text), 10000)

	chunks := SplitTextIntoChunks(text, 500, "English")
	require.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		assert.LessOrEqual(t, token.Estimate(chunk, "English"), 500,
			"chunk %d exceeds the budget", i)
	}
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplitSentenceFallback(t *testing.T) {
	// One giant paragraph with no blank lines forces the sentence pass.
	text := strings.Repeat("The pipeline moves records between stages. ", 60)
	chunks := SplitTextIntoChunks(text, 100, "English")
	require.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		assert.LessOrEqual(t, token.Estimate(chunk, "English"), 100,
			"chunk %d exceeds the budget", i)
	}
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplitJapaneseSentences(t *testing.T) {
	text := strings.Repeat("これは文章の分割を確認するための例文です。", 40)
	chunks := SplitTextIntoChunks(text, 120, "English")
	require.Greater(t, len(chunks), 1)
	assert.Equal(t, text, strings.Join(chunks, ""))
	for i, chunk := range chunks {
		assert.LessOrEqual(t, token.Estimate(chunk, "English"), 120,
			"chunk %d exceeds the budget", i)
	}
}

func TestSplitNeverBreaksPlaceholders(t *testing.T) {
	ph1 := "__PROTECTED_1700000000000_000001__"
	ph2 := "__PROTECTED_1700000000000_000002__"
	text := strings.Repeat("Filler sentence before the token. ", 15) + ph1 +
		strings.Repeat(" more filler prose after it goes on and on. ", 15) + ph2 + "\n"

	chunks := SplitTextIntoChunks(text, 60, "English")
	require.Greater(t, len(chunks), 1)
	assert.Equal(t, text, strings.Join(chunks, ""))

	found := 0
	for _, chunk := range chunks {
		found += len(protect.PlaceholderPattern.FindAllString(chunk, -1))
	}
	assert.Equal(t, 2, found, "every placeholder must survive intact in exactly one chunk")
}

func TestSplitOversizedPlaceholderIsAtomic(t *testing.T) {
	ph := "__PROTECTED_1700000000000_000001__"
	chunks := SplitTextIntoChunks(ph, 1, "English")
	require.Len(t, chunks, 1)
	assert.Equal(t, ph, chunks[0])
}

func TestSplitHardBoundary(t *testing.T) {
	// No paragraph breaks, no sentence terminators: only hard cuts remain.
	text := strings.Repeat("abcdefghij ", 200)
	chunks := SplitTextIntoChunks(text, 50, "English")
	require.Greater(t, len(chunks), 1)
	assert.Equal(t, text, strings.Join(chunks, ""))
	for i, chunk := range chunks {
		assert.LessOrEqual(t, token.Estimate(chunk, "English"), 50,
			"chunk %d exceeds the budget", i)
	}
}
