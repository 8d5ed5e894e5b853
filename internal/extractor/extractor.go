// Package extractor converts uploaded file bytes into plain text.
package extractor

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"smartdoc/internal/domain"
)

// Extractor dispatches on the filename extension: PDFs are read page by page,
// everything else is decoded as UTF-8 text.
type Extractor struct{}

var _ domain.Extractor = (*Extractor)(nil)

// New returns a text extractor.
func New() *Extractor { return &Extractor{} }

// Extract returns the plain text of data. Failures wrap domain.ErrExtraction.
func (e *Extractor) Extract(data []byte, filename string) (string, error) {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return extractPDF(data)
	}
	return decodeText(data)
}

func decodeText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: text file is not valid UTF-8", domain.ErrExtraction)
	}
	return string(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))), nil
}

func extractPDF(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: PDF processing error: %v", domain.ErrExtraction, r)
		}
	}()

	if len(data) == 0 {
		return "", nil
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: PDF processing error: %w", domain.ErrExtraction, err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: PDF page %d: %w", domain.ErrExtraction, i, err)
		}
		if pageText == "" {
			continue
		}
		pages = append(pages, pageText)
	}
	return strings.Join(pages, "\n"), nil
}
