package folders

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spergel/translation-stuff-sub001/internal/shared/server/middleware"
	"github.com/spergel/translation-stuff-sub001/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/folders", h.create)
	rg.GET("/folders", h.list)
	rg.PATCH("/folders/:id", h.rename)
	rg.DELETE("/folders/:id", h.remove)
}

type folderRequest struct {
	Name string `json:"name"`
}

func (h *Handler) create(c *gin.Context) {
	var req folderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid JSON body", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)
	folder, err := h.Svc.Create(c.Request.Context(), userID, req.Name)
	if err != nil {
		if errors.Is(err, ErrInvalidName) {
			respond.Error(c, http.StatusBadRequest, "validation", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create folder", nil)
		return
	}
	respond.JSON(c, http.StatusCreated, folder)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	items, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list folders", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"folders": items})
}

func (h *Handler) rename(c *gin.Context) {
	var req folderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid JSON body", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)
	folder, err := h.Svc.Rename(c.Request.Context(), userID, c.Param("id"), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidName):
			respond.Error(c, http.StatusBadRequest, "validation", err.Error(), nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "folder not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to rename folder", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, folder)
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "folder not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete folder", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"deleted": true})
}
