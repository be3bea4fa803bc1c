// Package prompt selects and builds the translation prompt for a given model.
// Model families with a dedicated prompt format register a Strategy; every
// other model falls through to the general instruction template.
package prompt

import (
	"fmt"
	"strings"

	"doc-translator/internal/config"
)

// Strategy builds the single user message sent for one translation request.
type Strategy interface {
	Build(text, targetLanguage string) string
}

// familyEntry binds a declarative model-family predicate to its strategy.
type familyEntry struct {
	name    string
	matches func(model string) bool
	make    func(cfg *config.Config) Strategy
}

// registry is checked in order; the first matching family wins.
var registry = []familyEntry{
	{
		name: "plamo",
		matches: func(model string) bool {
			// Substring match, case-insensitive, with or without a version
			// suffix ("plamo-2-translate", "PLaMo-100B", ...).
			return strings.Contains(strings.ToLower(model), "plamo")
		},
		make: func(*config.Config) Strategy { return bilingualStrategy{} },
	},
}

// ForModel returns the prompt strategy for the given model name.
func ForModel(model string, cfg *config.Config) Strategy {
	for _, e := range registry {
		if e.matches(model) {
			return e.make(cfg)
		}
	}
	return generalStrategy{cfg: cfg}
}

// generalStrategy delegates to the configuration provider's template.
type generalStrategy struct {
	cfg *config.Config
}

func (s generalStrategy) Build(text, targetLanguage string) string {
	return s.cfg.BuildTranslationPrompt(text, targetLanguage)
}

// bilingualStrategy emits the PLaMo translation dataset format. The model is
// a dedicated English/Japanese translator, so the direction is chosen from
// the input's dominant script rather than the caller's nominal target
// language: Latin-heavy input translates to Japanese and vice versa.
type bilingualStrategy struct{}

func (bilingualStrategy) Build(text, _ string) string {
	source, target := "English", "Japanese"
	if DominantScriptJapanese(text) {
		source, target = "Japanese", "English"
	}
	return fmt.Sprintf(
		"<|plamo:op|>dataset\ntranslation\n<|plamo:op|>input lang=%s\n%s\n<|plamo:op|>output lang=%s\n",
		source, text, target)
}

// DominantScriptJapanese reports whether text contains more Japanese-script
// characters than Latin letters.
func DominantScriptJapanese(text string) bool {
	latin, japanese := 0, 0
	for _, r := range text {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			latin++
		case (r >= 0x3040 && r <= 0x30FF) || (r >= 0x3400 && r <= 0x4DBF) || (r >= 0x4E00 && r <= 0x9FFF):
			japanese++
		}
	}
	return japanese > latin
}
