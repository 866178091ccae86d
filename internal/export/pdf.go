package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/spergel/translation-stuff-sub001/internal/translations"
)

// RenderPDF renders a completed translation as a PDF, one source page per
// output page. Text outside cp1252 is transliterated by the font descriptor
// translator; scripts it cannot cover degrade to substitution characters.
func RenderPDF(title string, tr translations.Translation) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetAutoPageBreak(true, 15)
	trans := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, trans(title), "", "L", false)
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, trans(fmt.Sprintf("Translated to %s", tr.TargetLanguage)), "", "L", false)

	for _, page := range tr.Pages {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 6, trans(fmt.Sprintf("Page %d", page.PageNumber)), "", "L", false)
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "", 11)
		if page.TranslatedText != "" {
			pdf.MultiCell(0, 5.5, trans(page.TranslatedText), "", "L", false)
		}
		if page.Notes != "" {
			pdf.Ln(2)
			pdf.SetFont("Helvetica", "I", 9)
			pdf.MultiCell(0, 5, trans(page.Notes), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
