package export

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/spergel/translation-stuff-sub001/internal/documents"
	"github.com/spergel/translation-stuff-sub001/internal/shared/server/middleware"
	"github.com/spergel/translation-stuff-sub001/internal/shared/server/respond"
	"github.com/spergel/translation-stuff-sub001/internal/shared/util"
	"github.com/spergel/translation-stuff-sub001/internal/translations"
)

// Handler renders completed translations for download.
type Handler struct {
	Translations *translations.Service
	DocRepo      documents.DocumentsRepo
}

// NewHandler constructs a Handler.
func NewHandler(trSvc *translations.Service, docRepo documents.DocumentsRepo) *Handler {
	return &Handler{Translations: trSvc, DocRepo: docRepo}
}

// RegisterRoutes attaches download routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/translations/:id/download", h.download)
}

func (h *Handler) download(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "html")))
	switch format {
	case "html", "epub", "pdf":
	default:
		respond.Error(c, http.StatusBadRequest, "validation", "format must be html, epub or pdf", nil)
		return
	}

	tr, err := h.Translations.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, translations.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "translation not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch translation", nil)
		return
	}
	if tr.Status != translations.StatusCompleted {
		respond.Error(c, http.StatusConflict, "translation_pending", "translation is not completed", gin.H{
			"status":   tr.Status,
			"progress": tr.Progress,
		})
		return
	}

	title := "Translation"
	if doc, err := h.DocRepo.GetByID(c.Request.Context(), userID, tr.DocumentID); err == nil {
		title = strings.TrimSuffix(doc.FileName, ".pdf")
	}
	safeTitle, err := util.SanitizeFileName(title)
	if err != nil {
		safeTitle = "translation"
	}
	safeLanguage, err := util.SanitizeFileName(tr.TargetLanguage)
	if err != nil {
		safeLanguage = "translated"
	}
	baseName := safeTitle + "." + safeLanguage

	switch format {
	case "html":
		opts := HTMLOptions{SideBySide: c.Query("layout") == "side-by-side"}
		body := RenderHTML(title, tr, opts)
		serve(c, body, "text/html; charset=utf-8", baseName+".html")
	case "epub":
		body := RenderEPUBHTML(title, tr)
		serve(c, body, "application/xhtml+xml; charset=utf-8", baseName+".xhtml")
	case "pdf":
		body, err := RenderPDF(title, tr)
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to render pdf", nil)
			return
		}
		serve(c, body, "application/pdf", baseName+".pdf")
	}
}

func serve(c *gin.Context, body []byte, contentType, fileName string) {
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, contentType, body)
}
