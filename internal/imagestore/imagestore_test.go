package imagestore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtectRestoreImages(t *testing.T) {
	m := NewManager()
	text := "Before ![diagram](data:image/png;base64,iVBORw0KGgoAAAANSUhEUg==) after.\n" +
		"<img src=\"data:image/jpeg;base64,/9j/4AAQSkZJRg==\"/>\n"

	protected := m.ProtectImages(text)
	assert.Equal(t, 2, m.Count())
	assert.NotContains(t, protected, "base64,")
	assert.Contains(t, protected, "![diagram](__IMG_0__)")
	assert.Contains(t, protected, "__IMG_1__")

	restored := m.RestoreImages(protected)
	assert.Equal(t, text, restored)
}

func TestProtectImagesNoImages(t *testing.T) {
	m := NewManager()
	text := "Plain prose, no inline payloads."
	assert.Equal(t, text, m.ProtectImages(text))
	assert.Equal(t, 0, m.Count())
}

func TestRestoreImagesToleratesDroppedPlaceholder(t *testing.T) {
	m := NewManager()
	text := "![a](data:image/png;base64,AAAA) and ![b](data:image/png;base64,BBBB)"
	protected := m.ProtectImages(text)
	require.Equal(t, 2, m.Count())

	// The model ate one placeholder; the other still comes back.
	mangled := strings.Replace(protected, "__IMG_1__", "", 1)
	restored := m.RestoreImages(mangled)
	assert.Contains(t, restored, "data:image/png;base64,AAAA")
	assert.NotContains(t, restored, "BBBB")
}
