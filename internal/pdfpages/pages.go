package pdfpages

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/spergel/translation-stuff-sub001/internal/shared/storage/object"
)

// ExtractPages reads a stored PDF and returns the plain text of each page in
// order. Pages with no extractable text come back as empty strings; the caller
// decides how to handle them.
func ExtractPages(ctx context.Context, store object.ObjectStore, storageKey string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := store.Open(ctx, storageKey)
	if err != nil {
		return nil, fmt.Errorf("extract pages key=%s: %w", storageKey, err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("extract pages key=%s: read: %w", storageKey, err)
	}

	pages, err := ExtractPagesFromBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("extract pages key=%s: %w", storageKey, err)
	}
	return pages, nil
}

// ExtractPagesFromBytes extracts per-page text from an in-memory PDF.
func ExtractPagesFromBytes(data []byte) ([]string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return nil, err
	}

	total := pdfReader.NumPage()
	pages := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the document.
			pages = append(pages, "")
			continue
		}
		pages = append(pages, CollapseWhitespace(text))
	}
	return pages, nil
}

// PageCount returns the number of pages in an in-memory PDF.
func PageCount(data []byte) (int, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return 0, err
	}
	return pdfReader.NumPage(), nil
}

// CollapseWhitespace normalizes runs of whitespace to single spaces.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
