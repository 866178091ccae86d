package billing

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/spergel/translation-stuff-sub001/internal/shared/server/middleware"
	"github.com/spergel/translation-stuff-sub001/internal/shared/server/respond"
	"github.com/spergel/translation-stuff-sub001/internal/shared/telemetry"
)

const maxWebhookBody = 1 << 20 // 1MB

// Handler exposes billing endpoints. The webhook route is exempt from auth;
// Stripe authenticates with its signature header instead.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches billing routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/billing/checkout", h.checkout)
	rg.POST("/billing/webhook", h.webhook)
}

type checkoutRequest struct {
	Plan string `json:"plan"`
}

func (h *Handler) checkout(c *gin.Context) {
	if middleware.IsGuest(c) {
		respond.Error(c, http.StatusUnauthorized, "login_required", "login required to manage billing", nil)
		return
	}

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation", "invalid request body", nil)
		return
	}

	userID := middleware.UserIDFromContext(c)
	email := middleware.UserEmailFromContext(c)
	url, err := h.Svc.CreateCheckout(c.Request.Context(), userID, email, planFromRequest(req.Plan))
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownPlan):
			respond.Error(c, http.StatusBadRequest, "validation", err.Error(), nil)
		case errors.Is(err, ErrNotConfigured):
			respond.Error(c, http.StatusServiceUnavailable, "billing_not_configured", "billing is not configured", nil)
		default:
			telemetry.Error("billing.checkout", err, map[string]any{"user_id": userID})
			respond.Error(c, http.StatusBadGateway, "billing_failed", "failed to create checkout session", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"url": url})
}

func (h *Handler) webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation", "unable to read body", nil)
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.Svc.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		switch {
		case errors.Is(err, ErrNotConfigured):
			respond.Error(c, http.StatusServiceUnavailable, "billing_not_configured", "billing is not configured", nil)
		case isSignatureError(err):
			respond.Error(c, http.StatusBadRequest, "invalid_signature", "webhook signature verification failed", nil)
		default:
			telemetry.Error("billing.webhook", err, nil)
			// Non-2xx makes Stripe retry, which is what we want for
			// transient persistence failures.
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process event", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"received": true})
}

func isSignatureError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "webhook signature")
}
