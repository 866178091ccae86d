package translations

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/spergel/translation-stuff-sub001/internal/documents"
	"github.com/spergel/translation-stuff-sub001/internal/shared/server/middleware"
	"github.com/spergel/translation-stuff-sub001/internal/shared/server/respond"
)

const (
	ssePollInterval = time.Second
	sseMaxDuration  = 10 * time.Minute
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches translation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:id/translations", h.create)
	rg.GET("/translations", h.list)
	rg.GET("/translations/:id", h.get)
	rg.GET("/translations/:id/events", h.events)
}

type createRequest struct {
	TargetLanguage string `json:"targetLanguage"`
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	documentID := c.Param("id")

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation", "invalid request body", nil)
		return
	}
	req.TargetLanguage = strings.TrimSpace(req.TargetLanguage)
	if req.TargetLanguage == "" {
		respond.Error(c, http.StatusBadRequest, "validation", "targetLanguage is required", nil)
		return
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	tr, err := h.Svc.Create(ctx, userID, documentID, req.TargetLanguage)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case strings.Contains(err.Error(), "validation"):
			respond.Error(c, http.StatusBadRequest, "validation", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create translation", nil)
		}
		return
	}

	respond.JSON(c, http.StatusAccepted, tr)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	filter := ListFilter{
		DocumentID: strings.TrimSpace(c.Query("documentId")),
		Limit:      20,
	}
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			filter.Limit = parsed
		}
	}
	if filter.Limit < 0 {
		filter.Limit = 0
	}
	if filter.Limit > 50 {
		filter.Limit = 50
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			filter.Offset = parsed
		}
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	items, err := h.Svc.List(c.Request.Context(), userID, filter)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list translations", nil)
		return
	}

	// Page bodies are heavy; the list view carries status only.
	summaries := make([]gin.H, 0, len(items))
	for _, tr := range items {
		summaries = append(summaries, summarize(tr))
	}
	respond.JSON(c, http.StatusOK, gin.H{"translations": summaries})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	tr, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "translation not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch translation", nil)
		return
	}
	respond.JSON(c, http.StatusOK, tr)
}

// events streams job progress as server-sent events until the job reaches a
// terminal status, the client disconnects, or the stream times out.
func (h *Handler) events(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	translationID := c.Param("id")

	tr, err := h.Svc.Get(c.Request.Context(), userID, translationID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "translation not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch translation", nil)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	writeFrame(c, tr)
	if tr.Terminal() {
		return
	}

	ticker := time.NewTicker(ssePollInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(sseMaxDuration)
	defer deadline.Stop()

	last := eventPayload(tr)
	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-deadline.C:
			return
		case <-ticker.C:
			tr, err = h.Svc.Get(c.Request.Context(), userID, translationID)
			if err != nil {
				return
			}
			if payload := eventPayload(tr); payload != last {
				writeFrame(c, tr)
				last = payload
			}
			if tr.Terminal() {
				return
			}
		}
	}
}

type event struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Progress  int    `json:"progress"`
	PageCount int    `json:"pageCount,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`
}

func eventPayload(tr Translation) string {
	raw, _ := json.Marshal(event{
		ID:        tr.ID,
		Status:    tr.Status,
		Progress:  tr.Progress,
		PageCount: tr.PageCount,
		ErrorCode: tr.ErrorCode,
	})
	return string(raw)
}

func writeFrame(c *gin.Context, tr Translation) {
	c.Writer.WriteString("data: " + eventPayload(tr) + "\n\n")
	c.Writer.Flush()
}

func summarize(tr Translation) gin.H {
	return gin.H{
		"id":             tr.ID,
		"documentId":     tr.DocumentID,
		"targetLanguage": tr.TargetLanguage,
		"status":         tr.Status,
		"progress":       tr.Progress,
		"pageCount":      tr.PageCount,
		"errorCode":      tr.ErrorCode,
		"createdAt":      tr.CreatedAt,
		"completedAt":    tr.CompletedAt,
	}
}
