package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"knowledgebase-backend/internal/ai"
	"knowledgebase-backend/internal/deletion"
	"knowledgebase-backend/internal/documents"
	"knowledgebase-backend/internal/ingestion"
	"knowledgebase-backend/internal/processing"
	"knowledgebase-backend/internal/quota"
	"knowledgebase-backend/internal/shared/config"
	"knowledgebase-backend/internal/shared/server"
	"knowledgebase-backend/internal/shared/storage/db"
	"knowledgebase-backend/internal/shared/storage/object"
	localstore "knowledgebase-backend/internal/shared/storage/object/local"
	s3store "knowledgebase-backend/internal/shared/storage/object/s3"
	"knowledgebase-backend/internal/usage"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore

	DocumentsRepo documents.Repo
	UsageStore    usage.Store

	DocumentsService *documents.Service
	QuotaGate        *quota.Gate
	IngestionService *ingestion.Service
	Processor        ai.Processor
	Cleaner          ai.Cleaner
	Controller       *processing.Controller
	Deletion         *deletion.Coordinator

	DocumentsHandler  *documents.Handler
	IngestionHandler  *ingestion.Handler
	ProcessingHandler *processing.Handler
	DeletionHandler   *deletion.Handler
	UsageHandler      *quota.Handler
}

// Build prepares shared dependencies and wires the router.
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

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
	}
	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            app.Config,
		Store:             app.Store,
		DocumentHandler:   app.DocumentsHandler,
		IngestionHandler:  app.IngestionHandler,
		ProcessingHandler: app.ProcessingHandler,
		DeletionHandler:   app.DeletionHandler,
		UsageHandler:      app.UsageHandler,
	})

	return app, nil
}

func buildServices(app *App) error {
	cfg := app.Config

	if app.DB != nil {
		app.DocumentsRepo = &documents.PGRepo{DB: app.DB}
		app.UsageStore = usage.NewPGStore(app.DB)
	} else {
		app.DocumentsRepo = documents.NewMemoryRepo()
		app.UsageStore = usage.NewMemoryStore()
	}

	app.DocumentsService = &documents.Service{Repo: app.DocumentsRepo}
	app.QuotaGate = &quota.Gate{
		Docs:  app.DocumentsRepo,
		Usage: app.UsageStore,
		Limits: quota.Limits{
			MaxStorageBytes:  cfg.MaxStorageBytes,
			MaxMonthlyTokens: cfg.MaxMonthlyTokens,
		},
	}

	if strings.TrimSpace(cfg.AIServiceURL) != "" {
		client, err := ai.NewClient(cfg.AIServiceURL, cfg.AIServiceTimeout)
		if err != nil {
			return err
		}
		app.Processor = client
		app.Cleaner = client
	} else {
		log.Printf("bootstrap: AI_SERVICE_URL empty; AI processing disabled")
		app.Processor = ai.Disabled{}
		app.Cleaner = ai.Disabled{}
	}

	spool, err := ingestion.NewSpool(cfg.SpoolDir)
	if err != nil {
		return err
	}
	app.IngestionService = &ingestion.Service{
		Sessions:  ingestion.NewSessions(),
		Validator: ingestion.Validator{MaxFileSizeBytes: cfg.MaxFileSizeBytes},
		Spool:     spool,
		Uploader: &ingestion.Uploader{
			Store:   app.Store,
			Spool:   spool,
			Quota:   app.QuotaGate,
			Workers: cfg.UploadWorkers,
		},
		Registrar: &ingestion.Registrar{Docs: app.DocumentsService},
	}

	app.Controller = processing.NewController(app.DocumentsService, app.Processor, app.QuotaGate)
	app.Deletion = &deletion.Coordinator{Docs: app.DocumentsService, Cleaner: app.Cleaner}

	app.DocumentsHandler = &documents.Handler{Svc: app.DocumentsService}
	app.IngestionHandler = &ingestion.Handler{Svc: app.IngestionService, Proc: app.Controller, Quota: app.QuotaGate}
	app.ProcessingHandler = &processing.Handler{Ctrl: app.Controller, Docs: app.DocumentsService}
	app.DeletionHandler = &deletion.Handler{Coord: app.Deletion}
	app.UsageHandler = &quota.Handler{Gate: app.QuotaGate}
	return nil
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
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
