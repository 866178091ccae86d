package export

import (
	"html"
	"strconv"
	"strings"

	"github.com/spergel/translation-stuff-sub001/internal/translations"
)

// RenderEPUBHTML renders a completed translation as a single chaptered XHTML
// document suitable for e-reader import. One chapter per page, translated
// text only, original kept in a collapsible block.
func RenderEPUBHTML(title string, tr translations.Translation) []byte {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString("<html xmlns=\"http://www.w3.org/1999/xhtml\" xmlns:epub=\"http://www.idpf.org/2007/ops\" lang=\"")
	b.WriteString(html.EscapeString(tr.TargetLanguage))
	b.WriteString("\">\n<head>\n<meta charset=\"utf-8\"/>\n<title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title>\n</head>\n<body>\n")

	for _, page := range tr.Pages {
		chapter := strconv.Itoa(page.PageNumber)
		b.WriteString("<section epub:type=\"chapter\" id=\"page-")
		b.WriteString(chapter)
		b.WriteString("\">\n<h2>Page ")
		b.WriteString(chapter)
		b.WriteString("</h2>\n<p>")
		b.WriteString(html.EscapeString(page.TranslatedText))
		b.WriteString("</p>\n")
		if page.OriginalText != "" {
			b.WriteString("<details><summary>Original</summary><p>")
			b.WriteString(html.EscapeString(page.OriginalText))
			b.WriteString("</p></details>\n")
		}
		b.WriteString("</section>\n")
	}

	b.WriteString("</body>\n</html>\n")
	return []byte(b.String())
}
