package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-translator/internal/config"
)

func TestForModelSelection(t *testing.T) {
	cfg := config.Default()
	tests := []struct {
		model         string
		wantBilingual bool
	}{
		{"plamo-2-translate", true},
		{"PLaMo-100B", true},
		{"mlx-community/plamo-2-translate", true},
		{"gpt-4o-mini", false},
		{"llama-3.1-8b-instruct", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			s := ForModel(tt.model, cfg)
			_, bilingual := s.(bilingualStrategy)
			assert.Equal(t, tt.wantBilingual, bilingual)
		})
	}
}

func TestGeneralStrategyBuild(t *testing.T) {
	cfg := config.Default()
	s := ForModel("gpt-4o-mini", cfg)

	out := s.Build("Hello there.", "French")
	assert.Contains(t, out, "French")
	assert.Contains(t, out, "Hello there.")
	assert.Contains(t, out, "__PROTECTED_")
}

func TestBilingualStrategyDirection(t *testing.T) {
	cfg := config.Default()
	s := ForModel("plamo-2-translate", cfg)

	en := s.Build("The system processes documents in order.", "Japanese")
	assert.Contains(t, en, "<|plamo:op|>dataset\ntranslation\n")
	assert.Contains(t, en, "input lang=English")
	assert.Contains(t, en, "output lang=Japanese")

	ja := s.Build("この文書は順番に処理されます。", "Japanese")
	assert.Contains(t, ja, "input lang=Japanese")
	assert.Contains(t, ja, "output lang=English")

	// The caller's nominal target never overrides the detected direction.
	require.True(t, strings.HasSuffix(ja, "<|plamo:op|>output lang=English\n"))
}

func TestDominantScriptJapanese(t *testing.T) {
	assert.False(t, DominantScriptJapanese("purely latin text"))
	assert.True(t, DominantScriptJapanese("完全に日本語の文章です"))
	assert.True(t, DominantScriptJapanese("APIを使って翻訳処理を実行します"))
	assert.False(t, DominantScriptJapanese("mostly English with 少し Japanese"))
	assert.False(t, DominantScriptJapanese(""))
}
