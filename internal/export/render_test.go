package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spergel/translation-stuff-sub001/internal/translations"
)

func sampleTranslation() translations.Translation {
	return translations.Translation{
		ID:             "tr-1",
		DocumentID:     "doc-1",
		UserID:         "user-1",
		TargetLanguage: "French",
		Status:         translations.StatusCompleted,
		Progress:       100,
		PageCount:      2,
		Pages: []translations.Page{
			{PageNumber: 1, OriginalText: "Hello <world>", TranslatedText: "Bonjour <monde>"},
			{PageNumber: 2, OriginalText: "Second", TranslatedText: "Deuxieme", Notes: "translation error: timeout"},
		},
	}
}

func TestRenderHTMLTranslationOnly(t *testing.T) {
	body := string(RenderHTML("My Book", sampleTranslation(), HTMLOptions{}))

	if !strings.Contains(body, "<title>My Book</title>") {
		t.Fatalf("expected title in output")
	}
	if !strings.Contains(body, "Bonjour &lt;monde&gt;") {
		t.Fatalf("expected escaped translated text, got: %s", body)
	}
	if strings.Contains(body, "Hello &lt;world&gt;") {
		t.Fatalf("default layout must not include original text")
	}
	if !strings.Contains(body, "translation error: timeout") {
		t.Fatalf("expected page notes rendered")
	}
	if !strings.Contains(body, "Page 2") {
		t.Fatalf("expected page numbers rendered")
	}
}

func TestRenderHTMLSideBySide(t *testing.T) {
	body := string(RenderHTML("My Book", sampleTranslation(), HTMLOptions{SideBySide: true}))

	if !strings.Contains(body, "Hello &lt;world&gt;") {
		t.Fatalf("side-by-side must include original text")
	}
	if !strings.Contains(body, "Bonjour &lt;monde&gt;") {
		t.Fatalf("side-by-side must include translated text")
	}
	if !strings.Contains(body, "class=\"columns\"") {
		t.Fatalf("expected column layout markup")
	}
}

func TestRenderEPUBHTMLChapters(t *testing.T) {
	body := string(RenderEPUBHTML("My Book", sampleTranslation()))

	if !strings.Contains(body, "<?xml version=\"1.0\" encoding=\"utf-8\"?>") {
		t.Fatalf("expected xml declaration")
	}
	if !strings.Contains(body, "epub:type=\"chapter\" id=\"page-1\"") {
		t.Fatalf("expected chapter per page")
	}
	if !strings.Contains(body, "<details><summary>Original</summary>") {
		t.Fatalf("expected collapsible original text")
	}
	if !strings.Contains(body, "lang=\"French\"") {
		t.Fatalf("expected target language on html element")
	}
}

func TestRenderPDFProducesDocument(t *testing.T) {
	body, err := RenderPDF("My Book", sampleTranslation())
	if err != nil {
		t.Fatalf("render pdf: %v", err)
	}
	if !bytes.HasPrefix(body, []byte("%PDF-")) {
		t.Fatalf("expected PDF magic bytes")
	}
	if len(body) < 500 {
		t.Fatalf("suspiciously small pdf: %d bytes", len(body))
	}
}
