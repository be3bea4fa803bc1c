package protect

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-translator/internal/types"
)

const sampleDocument = "Intro paragraph explaining the release.\n\n" +
	"```go\nfunc main() {}\n```\n\n" +
	"| Name | Value |\n| A    | 1     |\n\n" +
	"See https://example.com/docs for details.\n\n" +
	"Count\n-------\n     0\n\n" +
	"Growth was 12% overall.\n"

func TestProtectRestoreRoundTrip(t *testing.T) {
	engine := NewEngineWithCounter(NewCounter())

	result := engine.Protect(sampleDocument)
	require.True(t, result.HasProtectedContent)
	require.NotEmpty(t, result.Patterns)

	assert.NotContains(t, result.ProtectedText, "func main")
	assert.NotContains(t, result.ProtectedText, "https://")
	assert.NotContains(t, result.ProtectedText, "12%")

	restored := Restore(result.ProtectedText, result.Patterns)
	assert.Equal(t, sampleDocument, restored.RestoredText)
	assert.Equal(t, len(result.Patterns), restored.RestoredCount)
}

func TestProtectCoversAllPatternTypes(t *testing.T) {
	engine := NewEngineWithCounter(NewCounter())
	result := engine.Protect(sampleDocument)

	seen := map[types.PatternType]bool{}
	for _, p := range result.Patterns {
		seen[p.Type] = true
	}
	for _, want := range []types.PatternType{
		types.PatternCode,
		types.PatternTable,
		types.PatternSimpleTable,
		types.PatternTechnical,
		types.PatternNumeric,
	} {
		assert.True(t, seen[want], "expected a %s pattern", want)
	}
}

func TestProtectSimpleTableIsOnePlaceholder(t *testing.T) {
	engine := NewEngineWithCounter(NewCounter())
	input := "Count\n-------\n     0\n"

	result := engine.Protect(input)
	require.Len(t, result.Patterns, 1)
	assert.Equal(t, types.PatternSimpleTable, result.Patterns[0].Type)
	assert.Equal(t, input, result.Patterns[0].OriginalText)
	assert.True(t, PlaceholderPattern.MatchString(result.ProtectedText))
	assert.Equal(t, result.Patterns[0].Placeholder, result.ProtectedText)
}

func TestProtectPlaceholdersAreUnique(t *testing.T) {
	engine := NewEngineWithCounter(NewCounter())
	result := engine.Protect(sampleDocument)

	seen := map[string]bool{}
	for _, p := range result.Patterns {
		assert.True(t, PlaceholderPattern.MatchString(p.Placeholder))
		assert.False(t, seen[p.Placeholder], "placeholder %s issued twice", p.Placeholder)
		seen[p.Placeholder] = true
	}
}

func TestProtectIsIdempotent(t *testing.T) {
	engine := NewEngineWithCounter(NewCounter())
	first := engine.Protect(sampleDocument)

	second := engine.Protect(first.ProtectedText)
	assert.Empty(t, second.Patterns)
	assert.Equal(t, first.ProtectedText, second.ProtectedText)
}

func TestProtectDiscardsTinyMatches(t *testing.T) {
	engine := NewEngineWithCounter(NewCounter())

	// "5%" trims to two characters and is left alone; "12%" is long enough.
	short := engine.Protect("Sales rose 5% year over year.")
	assert.Empty(t, short.Patterns)

	long := engine.Protect("Sales rose 12% year over year.")
	require.Len(t, long.Patterns, 1)
	assert.Equal(t, "12%", long.Patterns[0].OriginalText)
}

func TestProtectSpecificTypes(t *testing.T) {
	engine := NewEngineWithCounter(NewCounter())
	input := "Run `make all` first, then read https://example.com/guide today.\n"

	result := engine.ProtectSpecificTypes(input, types.PatternCode)
	require.Len(t, result.Patterns, 1)
	assert.Equal(t, types.PatternCode, result.Patterns[0].Type)

	// The URL was un-protected again and survives verbatim.
	assert.Contains(t, result.ProtectedText, "https://example.com/guide")
	assert.NotContains(t, result.ProtectedText, "`make all`")

	restored := Restore(result.ProtectedText, result.Patterns)
	assert.Equal(t, input, restored.RestoredText)
}

func TestRestoreToleratesDroppedPlaceholder(t *testing.T) {
	engine := NewEngineWithCounter(NewCounter())
	result := engine.Protect("Visit https://example.com/a and https://example.com/b now.\n")
	require.Len(t, result.Patterns, 2)

	// Simulate the model eating one placeholder.
	mangled := strings.Replace(result.ProtectedText, result.Patterns[1].Placeholder, "", 1)
	restored := Restore(mangled, result.Patterns)
	assert.Equal(t, 1, restored.RestoredCount)
	assert.Contains(t, restored.RestoredText, "https://example.com/a")
	assert.NotContains(t, restored.RestoredText, "https://example.com/b")

	// Restoring again changes nothing.
	again := Restore(restored.RestoredText, result.Patterns)
	assert.Equal(t, restored.RestoredText, again.RestoredText)
}

func TestCounterSequence(t *testing.T) {
	c := NewCounter()
	first := c.Next()
	second := c.Next()
	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasSuffix(first, "_000000__"))
	assert.True(t, strings.HasSuffix(second, "_000001__"))

	c.Reset()
	assert.True(t, strings.HasSuffix(c.Next(), "_000000__"))
}
