package fileproc

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
)

// epubProcessor extracts text from EPUB files. An EPUB is a zip archive of
// XHTML chapters; chapters are read in archive path order and reduced to
// plain text by stripping markup.
type epubProcessor struct{}

func (epubProcessor) Extensions() []string { return []string{"epub"} }

var (
	epubTagPattern    = regexp.MustCompile(`(?s)<[^>]*>`)
	epubScriptPattern = regexp.MustCompile(`(?s)<(script|style)[^>]*>.*?</(script|style)>`)
	epubBlockPattern  = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|blockquote|tr)>|<br\s*/?>`)
)

func (epubProcessor) Extract(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("invalid EPUB archive: %w", err)
	}

	var chapters []*zip.File
	for _, f := range zr.File {
		name := strings.ToLower(f.Name)
		if strings.HasSuffix(name, ".xhtml") || strings.HasSuffix(name, ".html") || strings.HasSuffix(name, ".htm") {
			chapters = append(chapters, f)
		}
	}
	if len(chapters) == 0 {
		return "", fmt.Errorf("EPUB contains no chapters")
	}
	sort.Slice(chapters, func(i, j int) bool { return chapters[i].Name < chapters[j].Name })

	var out strings.Builder
	for _, ch := range chapters {
		rc, err := ch.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		text := stripMarkup(string(data))
		if text != "" {
			out.WriteString(text)
			out.WriteString("\n\n")
		}
	}

	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", fmt.Errorf("EPUB contains no extractable text")
	}
	return text + "\n", nil
}

// stripMarkup reduces an XHTML chapter to plain text, turning block-level
// closings into paragraph breaks.
func stripMarkup(src string) string {
	src = epubScriptPattern.ReplaceAllString(src, "")
	src = epubBlockPattern.ReplaceAllString(src, "\n\n")
	src = epubTagPattern.ReplaceAllString(src, "")
	src = strings.ReplaceAll(src, "&nbsp;", " ")
	src = strings.ReplaceAll(src, "&amp;", "&")
	src = strings.ReplaceAll(src, "&lt;", "<")
	src = strings.ReplaceAll(src, "&gt;", ">")
	src = strings.ReplaceAll(src, "&quot;", `"`)
	src = strings.ReplaceAll(src, "&#39;", "'")

	// Collapse runs of blank lines left behind by stripped markup.
	lines := strings.Split(src, "\n")
	var kept []string
	blank := true
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank {
				kept = append(kept, "")
			}
			blank = true
			continue
		}
		kept = append(kept, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
