// Package protect implements reversible shielding of non-translatable spans.
// Spans of code, tables, technical patterns, and numeric data are replaced
// with unique placeholder tokens before translation and restored byte-for-byte
// afterward.
package protect

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"doc-translator/internal/logger"
	"doc-translator/internal/types"
)

const (
	// placeholderMark is the literal prefix shared by every placeholder.
	// A match that already contains it is skipped as already protected.
	placeholderMark = "__PROTECTED_"
	// minMatchLen is the minimum trimmed length of an accepted match.
	// Anything shorter is treated as a likely false positive.
	minMatchLen = 3
)

// PlaceholderPattern matches a complete placeholder token.
var PlaceholderPattern = regexp.MustCompile(`__PROTECTED_\d+_\d{6}__`)

// Counter issues unique placeholder tokens. Uniqueness is guaranteed within
// one Counter instance: the epoch is fixed at construction and the sequence
// number only ever increases. The zero-padded fixed-width suffix keeps every
// placeholder the same length so no placeholder is a prefix of another.
type Counter struct {
	mu    sync.Mutex
	epoch int64
	next  int64
}

// NewCounter creates a Counter stamped with the current time.
func NewCounter() *Counter {
	return &Counter{epoch: time.Now().UnixMilli()}
}

// Next returns a fresh placeholder token.
func (c *Counter) Next() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.next
	c.next++
	return fmt.Sprintf("__PROTECTED_%d_%06d__", c.epoch, n)
}

// Reset rewinds the sequence. Intended for tests only; resetting a counter
// that already issued placeholders into live text breaks uniqueness.
func (c *Counter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next = 0
	c.epoch = time.Now().UnixMilli()
}

// defaultCounter backs engines created by NewEngine. Sharing one counter
// process-wide keeps placeholders unique even across concurrent engines.
var defaultCounter = NewCounter()

// Engine runs the detector cascade and the restore step.
type Engine struct {
	counter *Counter
}

// NewEngine creates an Engine backed by the shared process-wide counter.
func NewEngine() *Engine {
	return &Engine{counter: defaultCounter}
}

// NewEngineWithCounter creates an Engine with an injected counter, so tests
// can reset numbering without touching the shared instance.
func NewEngineWithCounter(c *Counter) *Engine {
	return &Engine{counter: c}
}

// Protect runs the detector cascade over text and returns the protected text
// together with the patterns that were shielded, in detection order.
//
// Detectors run over the same mutable buffer: once a span is replaced by a
// placeholder, later detectors see the placeholder instead of the original
// text, which prevents double protection and nested corruption.
func (e *Engine) Protect(text string) *types.ProtectionResult {
	buf := text
	var patterns []types.ProtectedPattern

	for _, det := range detectors {
		cursor := 0
		for cursor < len(buf) {
			loc := det.re.FindStringIndex(buf[cursor:])
			if loc == nil {
				break
			}
			start := cursor + loc[0]
			end := cursor + loc[1]
			match := buf[start:end]

			// Never re-protect a span that already carries a placeholder.
			if strings.Contains(match, placeholderMark) {
				cursor = end
				continue
			}
			if len(strings.TrimSpace(match)) < minMatchLen {
				cursor = end
				continue
			}

			ph := e.counter.Next()
			patterns = append(patterns, types.ProtectedPattern{
				Type:         det.typ,
				OriginalText: match,
				Placeholder:  ph,
			})

			// Direct splice at the match offset, then advance the cursor past
			// the inserted placeholder so it is never rescanned.
			buf = buf[:start] + ph + buf[end:]
			cursor = start + len(ph)
		}
	}

	if len(patterns) > 0 {
		logger.Debug("protected spans",
			logger.Int("patternCount", len(patterns)),
			logger.Int("originalLength", len(text)),
			logger.Int("protectedLength", len(buf)))
	}

	return &types.ProtectionResult{
		ProtectedText:       buf,
		Patterns:            patterns,
		HasProtectedContent: len(patterns) > 0,
	}
}

// Restore substitutes every placeholder in text back to its original span.
// Patterns are applied longest-placeholder-first so a placeholder can never
// be clobbered by a partial-prefix match. A placeholder absent from the text
// (dropped or mangled by the model) is skipped, not an error.
func Restore(text string, patterns []types.ProtectedPattern) *types.RestoreResult {
	ordered := make([]types.ProtectedPattern, len(patterns))
	copy(ordered, patterns)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Placeholder) > len(ordered[j].Placeholder)
	})

	restored := 0
	for _, p := range ordered {
		if strings.Contains(text, p.Placeholder) {
			text = strings.ReplaceAll(text, p.Placeholder, p.OriginalText)
			restored++
		}
	}

	if restored < len(patterns) {
		logger.Warn("some placeholders were not restored",
			logger.Int("expected", len(patterns)),
			logger.Int("restored", restored))
	}

	return &types.RestoreResult{RestoredText: text, RestoredCount: restored}
}

// ProtectSpecificTypes runs the full cascade, then immediately un-protects
// every pattern whose type is not in the allow-list. The result looks as if
// only the allowed detectors had run.
func (e *Engine) ProtectSpecificTypes(text string, allowed ...types.PatternType) *types.ProtectionResult {
	full := e.Protect(text)

	allow := make(map[types.PatternType]bool, len(allowed))
	for _, t := range allowed {
		allow[t] = true
	}

	var kept, rejected []types.ProtectedPattern
	for _, p := range full.Patterns {
		if allow[p.Type] {
			kept = append(kept, p)
		} else {
			rejected = append(rejected, p)
		}
	}

	buf := full.ProtectedText
	if len(rejected) > 0 {
		buf = Restore(buf, rejected).RestoredText
	}

	return &types.ProtectionResult{
		ProtectedText:       buf,
		Patterns:            kept,
		HasProtectedContent: len(kept) > 0,
	}
}
