// Package fileproc extracts translatable plain text from supported document
// formats. Processors receive raw file content; the translation core never
// touches format parsing itself.
package fileproc

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"doc-translator/internal/logger"
)

// Processor extracts plain text from one document format.
type Processor interface {
	// Extensions lists the lower-case file types this processor handles.
	Extensions() []string
	// Extract converts raw file content to translatable text.
	Extract(content []byte) (string, error)
}

var processors = map[string]Processor{}

func register(p Processor) {
	for _, ext := range p.Extensions() {
		processors[ext] = p
	}
}

func init() {
	register(textProcessor{})
	register(pdfProcessor{})
	register(epubProcessor{})
}

// Extract runs the processor registered for fileType ("txt", "md", "pdf",
// "epub"; a leading dot is tolerated) over content.
func Extract(content []byte, fileType string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(fileType), "."))
	p, ok := processors[ext]
	if !ok {
		return "", fmt.Errorf("unsupported file type %q", fileType)
	}
	text, err := p.Extract(content)
	if err != nil {
		return "", err
	}
	logger.Debug("extracted document text",
		logger.String("fileType", ext),
		logger.Int("textLength", len(text)))
	return text, nil
}

// Supported returns the registered file types.
func Supported() []string {
	exts := make([]string, 0, len(processors))
	for ext := range processors {
		exts = append(exts, ext)
	}
	return exts
}

// textProcessor passes plain text and markdown through unchanged; markdown
// structure is meaningful to the protection engine, so it is not stripped.
type textProcessor struct{}

func (textProcessor) Extensions() []string { return []string{"txt", "text", "md", "markdown"} }

func (textProcessor) Extract(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return "", fmt.Errorf("file is not valid UTF-8 text")
	}
	return string(content), nil
}
