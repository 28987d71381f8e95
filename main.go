package main

import (
	"context"
	"database/sql"
	"io/fs"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"go.uber.org/zap"

	"github.com/brandlens-inc/brandlens-engine/pkg/analyzer"
	"github.com/brandlens-inc/brandlens-engine/pkg/audit"
	"github.com/brandlens-inc/brandlens-engine/pkg/auth"
	"github.com/brandlens-inc/brandlens-engine/pkg/config"
	"github.com/brandlens-inc/brandlens-engine/pkg/database"
	"github.com/brandlens-inc/brandlens-engine/pkg/email"
	"github.com/brandlens-inc/brandlens-engine/pkg/handlers"
	"github.com/brandlens-inc/brandlens-engine/pkg/llm"
	"github.com/brandlens-inc/brandlens-engine/pkg/logging"
	"github.com/brandlens-inc/brandlens-engine/pkg/middleware"
	"github.com/brandlens-inc/brandlens-engine/pkg/repositories"
	"github.com/brandlens-inc/brandlens-engine/pkg/services"
	"github.com/brandlens-inc/brandlens-engine/pkg/wizard"
	"github.com/brandlens-inc/brandlens-engine/ui"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())))

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// golang-migrate drives a database/sql connection, not pgx.
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, "migrations", logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	sqlDB.Close()

	sessionRepo := repositories.NewSessionRepository()
	brandRepo := repositories.NewBrandAnalysisRepository()
	geoRepo := repositories.NewGeoAnalysisRepository()
	reportRepo := repositories.NewReportRepository()
	accountRepo := repositories.NewAccountRepository()

	var sender email.Sender
	if cfg.Email.SendGridAPIKey != "" {
		sender = email.NewSendGridSender(cfg.Email.SendGridAPIKey, cfg.Email.FromAddress, cfg.Email.FromName, logger)
	} else {
		logger.Warn("SENDGRID_API_KEY not set, report delivery is disabled")
	}

	sessionService := services.NewSessionService(sessionRepo, logger)
	brandService := services.NewBrandAnalysisService(brandRepo, logger)
	geoService := services.NewGeoAnalysisService(geoRepo, logger)
	reportService := services.NewReportService(reportRepo, sender, logger)
	accountService := services.NewAccountService(accountRepo, brandRepo, geoRepo, logger)
	snapshotService := services.NewSnapshotService(sessionRepo, brandRepo, geoRepo, reportRepo, logger)

	jwksClient, err := auth.NewJWKSClient(&auth.JWKSConfig{
		EnableVerification: cfg.Auth.EnableVerification,
		JWKSEndpoints:      cfg.Auth.JWKSEndpoints,
	})
	if err != nil {
		logger.Fatal("Failed to create JWKS client", zap.Error(err))
	}
	defer jwksClient.Close()

	authService := auth.NewAuthService(jwksClient, logger)
	authMiddleware := auth.NewMiddleware(authService, accountService, logger)
	sessionStore := auth.NewSessionStore(cfg.Session.Secret, cfg.Session.CookieName, cfg.Session.MaxAgeHours)
	auditor := audit.NewSecurityAuditor(logger)

	factory := llm.NewClientFactory(cfg.Analysis.OpenAIAPIKey, cfg.Analysis.AnthropicAPIKey, logger)
	analysisClient, err := factory.CreateForModel(cfg.Analysis.DefaultModel)
	if err != nil {
		logger.Fatal("Failed to create analysis client",
			zap.String("model", cfg.Analysis.DefaultModel),
			zap.Error(err))
	}

	brandInfoSvc := analyzer.NewBrandInfoService(analysisClient, logger)
	queryGenSvc := analyzer.NewQueryGenService(analysisClient, logger)
	positioningSvc := analyzer.NewPositioningService(factory, cfg.Analysis.DefaultModel, logger)

	scope := handlers.Middleware(database.WithScope(db, logger))
	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewSessionsHandler(sessionService, sessionStore, auditor, logger).RegisterRoutes(mux, authMiddleware, scope)
	handlers.NewAnalysesHandler(brandService, geoService, auditor, logger).RegisterRoutes(mux, authMiddleware, scope)
	handlers.NewReportsHandler(reportService, logger).RegisterRoutes(mux, authMiddleware, scope)
	handlers.NewAccountsHandler(accountService, brandService, geoService, reportService, logger).RegisterRoutes(mux, authMiddleware, scope)
	handlers.NewSnapshotHandler(snapshotService, logger).RegisterRoutes(mux, scope)
	handlers.NewStreamsHandler(brandInfoSvc, queryGenSvc, positioningSvc, brandService, geoService, auditor, logger).
		RegisterRoutes(mux, authMiddleware, scope)

	// The wizard drives this server's own streaming endpoints.
	streamTimeout := time.Duration(cfg.Analysis.RequestTimeoutSeconds) * time.Second
	controllerFactory := func() *wizard.Controller {
		client := wizard.NewStreamClient(cfg.BaseURL, streamTimeout, logger)
		return wizard.NewController(client, cfg.Analysis.TestModels, cfg.Analysis.MaxQueries, logger)
	}
	handlers.NewWizardHandler(controllerFactory, logger).RegisterRoutes(mux, authMiddleware, scope)

	// Serve the built UI.
	dist, err := fs.Sub(ui.DistFS(), "dist")
	if err != nil {
		logger.Fatal("Failed to open UI filesystem", zap.Error(err))
	}
	mux.Handle("/", http.FileServer(http.FS(dist)))

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting brandlens-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
