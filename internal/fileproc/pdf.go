package fileproc

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	pdfcpu "github.com/pdfcpu/pdfcpu/pkg/api"

	"doc-translator/internal/logger"
)

// pdfProcessor extracts text from PDF files. pdfcpu validates the document
// and supplies the page count; ledongthuc/pdf does the actual text
// extraction (more reliable for row-ordered text).
type pdfProcessor struct{}

func (pdfProcessor) Extensions() []string { return []string{"pdf"} }

func (pdfProcessor) Extract(content []byte) (string, error) {
	pageCount, err := pdfcpu.PageCount(bytes.NewReader(content), nil)
	if err != nil {
		return "", fmt.Errorf("invalid PDF: %w", err)
	}
	logger.Debug("validated PDF", logger.Int("pageCount", pageCount))

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var out strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			// A damaged page should not sink the whole document.
			logger.Warn("failed to extract page text",
				logger.Int("page", pageNum), logger.Err(err))
			continue
		}
		for _, row := range rows {
			var line strings.Builder
			for _, text := range row.Content {
				line.WriteString(text.S)
			}
			if s := strings.TrimSpace(line.String()); s != "" {
				out.WriteString(s)
				out.WriteString("\n")
			}
		}
		// Blank line between pages keeps paragraph chunking sane.
		out.WriteString("\n")
	}

	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", fmt.Errorf("PDF contains no extractable text")
	}
	return text + "\n", nil
}
