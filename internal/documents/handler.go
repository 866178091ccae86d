package documents

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/spergel/translation-stuff-sub001/internal/shared/server/middleware"
	"github.com/spergel/translation-stuff-sub001/internal/shared/server/respond"
	"github.com/spergel/translation-stuff-sub001/internal/usage"
)

// Largest tier cap plus multipart overhead; the per-tier cap is
// enforced in the service.
const maxUploadSize = (200 << 20) + (1 << 20)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.upload)
	rg.POST("/documents/from-s3", h.createFromS3)
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id", h.get)
	rg.GET("/documents/:id/file", h.file)
	rg.PATCH("/documents/:id", h.move)
	rg.DELETE("/documents/:id", h.remove)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation", "unable to read file", nil)
		return
	}
	defer file.Close()

	folderID := strings.TrimSpace(c.PostForm("folderId"))
	plan := middleware.UserPlanFromContext(c)

	doc, err := h.Svc.Upload(c.Request.Context(), userID, plan, fileHeader.Filename, folderID, file)
	if err != nil {
		h.writeError(c, err, "failed to upload document")
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(doc))
}

type createFromS3Request struct {
	S3Key            string `json:"s3Key"`
	OriginalFileName string `json:"originalFileName"`
	ContentType      string `json:"contentType"`
	SizeBytes        int64  `json:"sizeBytes"`
	FolderID         string `json:"folderId"`
}

func (h *Handler) createFromS3(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createFromS3Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation", "invalid request body", nil)
		return
	}

	req.S3Key = strings.TrimSpace(req.S3Key)
	req.OriginalFileName = strings.TrimSpace(req.OriginalFileName)
	req.ContentType = strings.TrimSpace(req.ContentType)
	req.FolderID = strings.TrimSpace(req.FolderID)

	if req.S3Key == "" {
		respond.Error(c, http.StatusBadRequest, "validation", "s3Key is required", nil)
		return
	}
	if req.OriginalFileName == "" {
		respond.Error(c, http.StatusBadRequest, "validation", "originalFileName is required", nil)
		return
	}
	if req.ContentType == "" {
		respond.Error(c, http.StatusBadRequest, "validation", "contentType is required", nil)
		return
	}
	if req.SizeBytes <= 0 {
		respond.Error(c, http.StatusBadRequest, "validation", "sizeBytes must be positive", nil)
		return
	}

	plan := middleware.UserPlanFromContext(c)
	doc, err := h.Svc.CreateFromS3(c.Request.Context(), userID, plan, req.S3Key, req.OriginalFileName, req.ContentType, req.SizeBytes, req.FolderID)
	if err != nil {
		h.writeError(c, err, "failed to create document")
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(doc))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	filter := ListFilter{
		FolderID: strings.TrimSpace(c.Query("folderId")),
		Limit:    20,
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

	docs, err := h.Svc.List(c.Request.Context(), userID, filter)
	if err != nil {
		h.writeError(c, err, "failed to list documents")
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toResponse(doc))
	}
	respond.JSON(c, http.StatusOK, gin.H{"documents": resp})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	doc, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.writeError(c, err, "failed to fetch document")
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(doc))
}

func (h *Handler) file(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	doc, body, err := h.Svc.Open(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.writeError(c, err, "failed to open document")
		return
	}
	defer body.Close()

	c.Header("Content-Type", doc.MimeType)
	c.Header("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
	c.Status(http.StatusOK)
	io.Copy(c.Writer, body)
}

type moveRequest struct {
	FolderID string `json:"folderId"`
}

func (h *Handler) move(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation", "invalid request body", nil)
		return
	}

	doc, err := h.Svc.Move(c.Request.Context(), userID, c.Param("id"), strings.TrimSpace(req.FolderID))
	if err != nil {
		h.writeError(c, err, "failed to move document")
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(doc))
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.writeError(c, err, "failed to delete document")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case IsFolderNotFound(err):
		respond.Error(c, http.StatusBadRequest, "validation", "folder not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation", err.Error(), nil)
	case errors.Is(err, usage.ErrQuotaExceeded):
		respond.Error(c, http.StatusForbidden, "quota_exceeded", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
