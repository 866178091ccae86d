package pdfpages

import (
	"bytes"
	"context"
	"testing"

	"github.com/jung-kurt/gofpdf"

	"github.com/spergel/translation-stuff-sub001/internal/shared/storage/object/local"
)

func buildPDF(t *testing.T, pageTexts []string) []byte {
	t.Helper()
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	for _, text := range pageTexts {
		doc.AddPage()
		if text != "" {
			doc.Cell(0, 10, text)
		}
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	return buf.Bytes()
}

func TestExtractPagesFromBytes(t *testing.T) {
	raw := buildPDF(t, []string{"alpha", "beta", "gamma"})

	pages, err := ExtractPagesFromBytes(raw)
	if err != nil {
		t.Fatalf("extract pages: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	for i, want := range []string{"alpha", "beta", "gamma"} {
		if pages[i] != want {
			t.Fatalf("page %d: got %q want %q", i+1, pages[i], want)
		}
	}
}

func TestExtractPagesEmptyPage(t *testing.T) {
	raw := buildPDF(t, []string{"first", ""})

	pages, err := ExtractPagesFromBytes(raw)
	if err != nil {
		t.Fatalf("extract pages: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if pages[1] != "" {
		t.Fatalf("expected empty second page, got %q", pages[1])
	}
}

func TestExtractPagesRejectsGarbage(t *testing.T) {
	if _, err := ExtractPagesFromBytes([]byte("not a pdf")); err == nil {
		t.Fatalf("expected error for non-PDF input")
	}
}

func TestPageCount(t *testing.T) {
	raw := buildPDF(t, []string{"one", "two"})
	count, err := PageCount(raw)
	if err != nil {
		t.Fatalf("page count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 pages, got %d", count)
	}
}

func TestExtractPagesFromStore(t *testing.T) {
	store := local.New(t.TempDir())
	raw := buildPDF(t, []string{"stored"})

	key, _, _, err := store.Save(context.Background(), "user-1", "doc.pdf", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	pages, err := ExtractPages(context.Background(), store, key)
	if err != nil {
		t.Fatalf("extract pages: %v", err)
	}
	if len(pages) != 1 || pages[0] != "stored" {
		t.Fatalf("unexpected pages: %#v", pages)
	}
}

func TestExtractPagesMissingKey(t *testing.T) {
	store := local.New(t.TempDir())
	if _, err := ExtractPages(context.Background(), store, "nope"); err == nil {
		t.Fatalf("expected error for missing key")
	}
}

func TestCollapseWhitespace(t *testing.T) {
	got := CollapseWhitespace("  a\n\tb   c ")
	if got != "a b c" {
		t.Fatalf("got %q", got)
	}
}
