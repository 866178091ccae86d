package export

import (
	"html"
	"strconv"
	"strings"

	"github.com/spergel/translation-stuff-sub001/internal/translations"
)

// HTMLOptions controls the standalone HTML rendering.
type HTMLOptions struct {
	// SideBySide renders original and translated text in two columns.
	// Otherwise only the translation is shown.
	SideBySide bool
}

// RenderHTML renders a completed translation as a standalone HTML document.
func RenderHTML(title string, tr translations.Translation, opts HTMLOptions) []byte {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"")
	b.WriteString(html.EscapeString(tr.TargetLanguage))
	b.WriteString("\">\n<head>\n<meta charset=\"utf-8\">\n<title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title>\n<style>\n")
	b.WriteString("body{font-family:Georgia,serif;max-width:60rem;margin:2rem auto;padding:0 1rem;line-height:1.6}\n")
	b.WriteString(".page{margin-bottom:2rem;border-bottom:1px solid #ddd;padding-bottom:1rem}\n")
	b.WriteString(".page-number{color:#888;font-size:.85rem;margin-bottom:.5rem}\n")
	b.WriteString(".columns{display:flex;gap:2rem}\n.columns>div{flex:1}\n")
	b.WriteString(".original{color:#555}\n.notes{color:#a33;font-size:.85rem;font-style:italic}\n")
	b.WriteString("</style>\n</head>\n<body>\n<h1>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</h1>\n")

	for _, page := range tr.Pages {
		b.WriteString("<section class=\"page\">\n<div class=\"page-number\">Page ")
		b.WriteString(strconv.Itoa(page.PageNumber))
		b.WriteString("</div>\n")
		if opts.SideBySide {
			b.WriteString("<div class=\"columns\">\n<div class=\"original\"><p>")
			b.WriteString(html.EscapeString(page.OriginalText))
			b.WriteString("</p></div>\n<div class=\"translated\"><p>")
			b.WriteString(html.EscapeString(page.TranslatedText))
			b.WriteString("</p></div>\n</div>\n")
		} else {
			b.WriteString("<p>")
			b.WriteString(html.EscapeString(page.TranslatedText))
			b.WriteString("</p>\n")
		}
		if page.Notes != "" {
			b.WriteString("<p class=\"notes\">")
			b.WriteString(html.EscapeString(page.Notes))
			b.WriteString("</p>\n")
		}
		b.WriteString("</section>\n")
	}

	b.WriteString("</body>\n</html>\n")
	return []byte(b.String())
}
