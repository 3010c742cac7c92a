// Package bootstrap assembles the application dependency graph:
// config → storage → repos → services → handlers → router.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"joel-backend/internal/account"
	"joel-backend/internal/analyses"
	googleauth "joel-backend/internal/auth"
	"joel-backend/internal/documents"
	"joel-backend/internal/images"
	"joel-backend/internal/llm"
	"joel-backend/internal/llm/anthropic"
	"joel-backend/internal/queue"
	"joel-backend/internal/reports"
	"joel-backend/internal/server"
	"joel-backend/internal/services/health"
	"joel-backend/internal/shared/config"
	"joel-backend/internal/shared/storage/db"
	"joel-backend/internal/shared/storage/object"
	localstore "joel-backend/internal/shared/storage/object/local"
	s3store "joel-backend/internal/shared/storage/object/s3"
	"joel-backend/internal/suggestions"
	"joel-backend/internal/tools"
	"joel-backend/internal/usage"
	"joel-backend/internal/users"
)

// App holds the shared dependencies for the API server and the worker.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	DocumentsRepo   documents.DocumentsRepo
	AnalysesRepo    analyses.Repo
	ReportsRepo     reports.ReportsRepo
	SuggestionsRepo suggestions.SuggestionsRepo
	UsersRepo       users.Repo

	DocumentsService   *documents.Service
	AnalysesService    *analyses.Service
	SuggestionsService *suggestions.Service
	UsageService       *usage.Service
	AccountService     *account.Service
	UsersService       *users.Service
	ImagesService      *images.Service

	DocumentsHandler   *documents.Handler
	AnalysesHandler    *analyses.Handler
	SuggestionsHandler *suggestions.Handler
	UsageHandler       *usage.Handler
	UsersHandler       *users.Handler
	AccountHandler     *account.Handler
	GoogleAuth         *googleauth.GoogleService
}

// BuildOptions tweaks what Build assembles.
type BuildOptions struct {
	// SkipRouter leaves App.Router nil. The worker uses this.
	SkipRouter bool
}

// Build prepares the full dependency graph from config.
func Build(cfg config.Config) (*App, error) {
	return BuildWithOptions(cfg, BuildOptions{})
}

// BuildWithOptions prepares the dependency graph, optionally without the router.
func BuildWithOptions(cfg config.Config, opts BuildOptions) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
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

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}
	buildServices(app)

	if !opts.SkipRouter {
		app.Router = server.NewRouter(server.Deps{
			Config:      cfg,
			Health:      health.NewService(),
			Documents:   app.DocumentsHandler,
			Analyses:    app.AnalysesHandler,
			Suggestions: app.SuggestionsHandler,
			Usage:       app.UsageHandler,
			Users:       app.UsersHandler,
			Account:     app.AccountHandler,
			GoogleAuth:  app.GoogleAuth,
			Uploads:     cfg.ObjectStoreType == "s3",
		})
	}

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

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
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

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.QueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.QueueURL, cfg.AWSRegion)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) {
	cfg := app.Config

	var docRepo documents.DocumentsRepo
	var analysisRepo analyses.Repo
	var reportsRepo reports.ReportsRepo
	var suggestionsRepo suggestions.SuggestionsRepo
	var userRepo users.Repo
	var usageSvc *usage.Service

	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		analysisRepo = &analyses.PGRepo{DB: app.DB}
		reportsRepo = &reports.PGRepo{DB: app.DB}
		suggestionsRepo = &suggestions.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
		usageSvc = usage.NewPostgresService(usage.NewPGStore(app.DB, cfg.MonthlyLimit))
	} else {
		docRepo = documents.NewMemoryRepo()
		analysisRepo = analyses.NewMemoryRepo()
		reportsRepo = reports.NewMemoryRepo()
		suggestionsRepo = suggestions.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
		usageSvc = usage.NewServiceWithLimit(cfg.MonthlyLimit)
	}

	docSvc := &documents.Service{Store: app.Store, Repo: docRepo}

	var agent llm.Agent = llm.PlaceholderAgent{}
	if strings.TrimSpace(cfg.AnthropicAPIKey) != "" {
		registry := tools.NewRegistry(
			tools.NewTavilySearch(cfg.TavilyAPIKey),
			tools.NewPubMedSearch(),
			tools.NewArxivSearch(),
			tools.NewFinanceQuotes(),
		)
		agent = anthropic.New(cfg.AnthropicAPIKey, cfg.AgentModel, registry)
	} else {
		log.Printf("bootstrap: ANTHROPIC_API_KEY empty; agent calls will fail")
	}

	imagesSvc := images.NewService(cfg.OpenAIAPIKey, cfg.PixabayAPIKey)

	analysisSvc := &analyses.Service{
		Repo:            analysisRepo,
		Reports:         reportsRepo,
		Docs:            docRepo,
		Usage:           usageSvc,
		Store:           app.Store,
		Agent:           agent,
		Queue:           app.Queue,
		Images:          imagesSvc,
		AgentTimeout:    cfg.AgentTimeout,
		AnalysisTimeout: cfg.AnalysisTimeout,
	}

	suggestionsSvc := &suggestions.Service{Repo: suggestionsRepo}
	userSvc := users.NewService(userRepo)
	accountSvc := account.NewService(docRepo, analysisRepo, reportsRepo, suggestionsRepo, userRepo)

	googleAuthSvc := googleauth.NewGoogleService(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
		cfg.UIRedirectURL,
	)
	googleAuthSvc.Users = userSvc

	app.DocumentsRepo = docRepo
	app.AnalysesRepo = analysisRepo
	app.ReportsRepo = reportsRepo
	app.SuggestionsRepo = suggestionsRepo
	app.UsersRepo = userRepo

	app.DocumentsService = docSvc
	app.AnalysesService = analysisSvc
	app.SuggestionsService = suggestionsSvc
	app.UsageService = usageSvc
	app.AccountService = accountSvc
	app.UsersService = userSvc
	app.ImagesService = imagesSvc

	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.AnalysesHandler = analyses.NewHandler(analysisSvc)
	app.SuggestionsHandler = suggestions.NewHandler(suggestionsSvc)
	app.UsageHandler = usage.NewHandler(usageSvc)
	app.UsersHandler = users.NewHandler(userSvc)
	app.AccountHandler = account.NewHandler(accountSvc)
	app.GoogleAuth = googleAuthSvc
}
