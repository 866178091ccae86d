package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spergel/translation-stuff-sub001/internal/account"
	googleauth "github.com/spergel/translation-stuff-sub001/internal/auth"
	"github.com/spergel/translation-stuff-sub001/internal/billing"
	"github.com/spergel/translation-stuff-sub001/internal/documents"
	"github.com/spergel/translation-stuff-sub001/internal/export"
	"github.com/spergel/translation-stuff-sub001/internal/folders"
	"github.com/spergel/translation-stuff-sub001/internal/shared/config"
	"github.com/spergel/translation-stuff-sub001/internal/shared/metrics"
	"github.com/spergel/translation-stuff-sub001/internal/shared/server/middleware"
	"github.com/spergel/translation-stuff-sub001/internal/shared/server/respond"
	"github.com/spergel/translation-stuff-sub001/internal/translations"
	"github.com/spergel/translation-stuff-sub001/internal/uploads"
	"github.com/spergel/translation-stuff-sub001/internal/usage"
	"github.com/spergel/translation-stuff-sub001/internal/users"
)

// RouterDeps carries the handlers the router mounts. Nil handlers are
// skipped, so tests can build a partial router.
type RouterDeps struct {
	Config             config.Config
	AccountHandler     *account.Handler
	BillingHandler     *billing.Handler
	DocumentHandler    *documents.Handler
	ExportHandler      *export.Handler
	FolderHandler      *folders.Handler
	TranslationHandler *translations.Handler
	UsageHandler       *usage.Handler
	UserHandler        *users.Handler
	GoogleAuth         *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
		middleware.RateLimit(rateLimitConfig()),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterRoutes(api)
	}
	if deps.FolderHandler != nil {
		deps.FolderHandler.RegisterRoutes(api)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.TranslationHandler != nil {
		deps.TranslationHandler.RegisterRoutes(api)
	}
	if deps.ExportHandler != nil {
		deps.ExportHandler.RegisterRoutes(api)
	}
	if deps.UsageHandler != nil {
		deps.UsageHandler.RegisterRoutes(api)
	}
	if deps.BillingHandler != nil {
		deps.BillingHandler.RegisterRoutes(api)
	}
	uploads.RegisterRoutes(api)

	if deps.Config.Env == "dev" && deps.UsageHandler != nil {
		dev := api.Group("/dev")
		deps.UsageHandler.RegisterDevRoutes(dev)
	}

	return r
}

// Translation jobs burn provider quota, so job creation gets a tighter
// bucket than reads.
func rateLimitConfig() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"WRITE":   {Rate: 5, Burst: 10},
			"DEFAULT": {Rate: 25, Burst: 50},
		},
		DefaultGroup: "DEFAULT",
		GroupFor: func(c *gin.Context) string {
			switch c.Request.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return "DEFAULT"
			default:
				return "WRITE"
			}
		},
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
