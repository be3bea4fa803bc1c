// Package imagestore keeps inline base64 image payloads out of the
// translation stream. Data URIs are swapped for short placeholder tokens
// before translation and swapped back afterward, so binary data is never
// sent to the LLM or counted toward token budgets.
package imagestore

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"doc-translator/internal/logger"
)

// dataURIPattern matches an inline base64 data URI wherever it appears:
// markdown image targets, HTML src attributes, or bare in text.
var dataURIPattern = regexp.MustCompile(`data:image/[a-zA-Z+.-]+;base64,[A-Za-z0-9+/=]+`)

// Manager stores stripped image payloads for one document's lifetime.
type Manager struct {
	mu     sync.Mutex
	images map[string]string
	next   int
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{images: make(map[string]string)}
}

// StoreImage records one payload and returns its placeholder token.
func (m *Manager) StoreImage(dataURI, alt string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ph := fmt.Sprintf("__IMG_%d__", m.next)
	m.next++
	m.images[ph] = dataURI
	logger.Debug("stored inline image",
		logger.String("placeholder", ph),
		logger.String("alt", alt),
		logger.Int("payloadLength", len(dataURI)))
	return ph
}

// ProtectImages replaces every inline data URI in text with a placeholder.
// Surrounding markup (markdown image syntax, img tags) is left in place so
// document structure survives translation.
func (m *Manager) ProtectImages(text string) string {
	return dataURIPattern.ReplaceAllStringFunc(text, func(uri string) string {
		return m.StoreImage(uri, "")
	})
}

// RestoreImages substitutes stored payloads back for their placeholders.
// Placeholders the model dropped stay unresolved; that is data loss the
// caller can detect by scanning for leftover __IMG_ tokens.
func (m *Manager) RestoreImages(text string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for ph, uri := range m.images {
		text = strings.ReplaceAll(text, ph, uri)
	}
	return text
}

// Count returns the number of stored images.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.images)
}
