package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/spergel/translation-stuff-sub001/internal/account"
	googleauth "github.com/spergel/translation-stuff-sub001/internal/auth"
	"github.com/spergel/translation-stuff-sub001/internal/billing"
	"github.com/spergel/translation-stuff-sub001/internal/documents"
	"github.com/spergel/translation-stuff-sub001/internal/export"
	"github.com/spergel/translation-stuff-sub001/internal/folders"
	"github.com/spergel/translation-stuff-sub001/internal/queue"
	"github.com/spergel/translation-stuff-sub001/internal/shared/config"
	"github.com/spergel/translation-stuff-sub001/internal/shared/server"
	"github.com/spergel/translation-stuff-sub001/internal/shared/storage/db"
	"github.com/spergel/translation-stuff-sub001/internal/shared/storage/object"
	localstore "github.com/spergel/translation-stuff-sub001/internal/shared/storage/object/local"
	s3store "github.com/spergel/translation-stuff-sub001/internal/shared/storage/object/s3"
	"github.com/spergel/translation-stuff-sub001/internal/translations"
	"github.com/spergel/translation-stuff-sub001/internal/translator"
	"github.com/spergel/translation-stuff-sub001/internal/translator/gemini"
	"github.com/spergel/translation-stuff-sub001/internal/usage"
	"github.com/spergel/translation-stuff-sub001/internal/users"
)

// App holds shared dependencies for the API server and the worker.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	DocumentsRepo    documents.DocumentsRepo
	FoldersRepo      folders.Repo
	TranslationsRepo translations.Repo
	UsersRepo        users.Repo

	DocumentsService    *documents.Service
	FoldersService      *folders.Service
	TranslationsService *translations.Service
	UsageService        *usage.Service
	UsersService        *users.Service
	AccountService      *account.Service
	BillingService      *billing.Service

	DocumentsHandler    *documents.Handler
	FoldersHandler      *folders.Handler
	TranslationsHandler *translations.Handler
	ExportHandler       *export.Handler
	UsageHandler        *usage.Handler
	UsersHandler        *users.Handler
	AccountHandler      *account.Handler
	BillingHandler      *billing.Handler
	GoogleAuth          *googleauth.GoogleService
}

// Build prepares shared dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:             app.Config,
		AccountHandler:     app.AccountHandler,
		BillingHandler:     app.BillingHandler,
		DocumentHandler:    app.DocumentsHandler,
		ExportHandler:      app.ExportHandler,
		FolderHandler:      app.FoldersHandler,
		TranslationHandler: app.TranslationsHandler,
		UsageHandler:       app.UsageHandler,
		UserHandler:        app.UsersHandler,
		GoogleAuth:         app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context) (queue.Client, error) {
	if strings.TrimSpace(os.Getenv("TS_SQS_QUEUE_URL")) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func buildTranslator(cfg config.Config, model string) (translator.Client, error) {
	if cfg.TranslatorProvider != "gemini" || strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		return translator.PlaceholderClient{}, nil
	}
	return gemini.NewClient(cfg.GeminiAPIKey, model)
}

func buildServices(app *App) error {
	var (
		docRepo    documents.DocumentsRepo
		folderRepo folders.Repo
		trRepo     translations.Repo
		userRepo   users.Repo
		eventsRepo billing.EventsRepo
	)

	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		folderRepo = &folders.PGRepo{DB: app.DB}
		trRepo = &translations.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
		eventsRepo = &billing.PGEventsRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
		folderRepo = folders.NewMemoryRepo()
		trRepo = translations.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
		eventsRepo = billing.NewMemoryEventsRepo()
	}
	if folderMem, ok := folderRepo.(*folders.MemoryRepo); ok {
		if docMem, ok := docRepo.(*documents.MemoryRepo); ok {
			folderMem.DetachDocuments = docMem.DetachFolder
		}
	}
	app.DocumentsRepo = docRepo
	app.FoldersRepo = folderRepo
	app.TranslationsRepo = trRepo
	app.UsersRepo = userRepo

	if app.DB != nil {
		app.UsageService = usage.NewPostgresService(usage.NewPGStore(app.DB))
	} else {
		app.UsageService = usage.NewService()
	}

	app.UsersService = users.NewService(userRepo)

	app.FoldersService = folders.NewService(folderRepo)
	app.DocumentsService = &documents.Service{
		Store:   app.Store,
		Repo:    docRepo,
		Quota:   app.UsageService,
		Folders: app.FoldersService,
		Plans:   app.UsersService,
	}
	// Folder deletion purges the documents filed in it.
	app.FoldersService.Docs = app.DocumentsService

	full, err := buildTranslator(app.Config, app.Config.TranslatorModel)
	if err != nil {
		return err
	}
	lite, err := buildTranslator(app.Config, app.Config.TranslatorModelLite)
	if err != nil {
		return err
	}
	app.TranslationsService = &translations.Service{
		Repo:     trRepo,
		DocRepo:  docRepo,
		Store:    app.Store,
		Full:     full,
		Lite:     lite,
		Queue:    app.Queue,
		Plans:    app.UsersService,
		Provider: app.Config.TranslatorProvider,
	}

	app.AccountService = account.NewService(docRepo, trRepo)
	app.BillingService = billing.NewService(billing.Config{
		SecretKey:     app.Config.StripeSecretKey,
		WebhookSecret: app.Config.StripeWebhookSecret,
		PriceBasic:    app.Config.StripePriceBasic,
		PricePro:      app.Config.StripePricePro,
		PriceEnt:      app.Config.StripePriceEnt,
		SuccessURL:    app.Config.CheckoutSuccessURL,
		CancelURL:     app.Config.CheckoutCancelURL,
	}, app.UsersService, userRepo, app.UsageService, eventsRepo)

	app.DocumentsHandler = documents.NewHandler(app.DocumentsService)
	app.FoldersHandler = folders.NewHandler(app.FoldersService)
	app.TranslationsHandler = translations.NewHandler(app.TranslationsService)
	app.ExportHandler = export.NewHandler(app.TranslationsService, docRepo)
	app.UsageHandler = usage.NewHandler(app.UsageService)
	app.UsersHandler = users.NewHandler(app.UsersService)
	app.AccountHandler = account.NewHandler(app.AccountService)
	app.BillingHandler = billing.NewHandler(app.BillingService)
	app.GoogleAuth = googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		app.UsersService,
	)

	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
