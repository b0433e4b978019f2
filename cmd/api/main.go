package main

import (
	"context"
	"log"

	"github.com/justsurfingit/prep-pilot/internal/auth"
	"github.com/justsurfingit/prep-pilot/internal/config"
	"github.com/justsurfingit/prep-pilot/internal/database"
	"github.com/justsurfingit/prep-pilot/internal/handlers"
	"github.com/justsurfingit/prep-pilot/internal/logger"
	"github.com/justsurfingit/prep-pilot/internal/metrics"
	"github.com/justsurfingit/prep-pilot/internal/repos"
	"github.com/justsurfingit/prep-pilot/internal/server"
	"github.com/justsurfingit/prep-pilot/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

func main() {
	// 1. Load Environment Variables
	cfg, envLoaded := config.Load()

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer appLog.Sync()
	if !envLoaded {
		appLog.Info("No .env file found, using process environment")
	}

	// 2. Database Connection
	db, err := database.Connect(cfg.DatabaseURL, appLog)
	if err != nil {
		appLog.Fatal("Failed to connect to database", "error", err)
	}

	// 3. Initialize Core Services (Dependencies)
	ctx := context.Background()
	appRepo := repos.NewApplicationRepo(db, appLog, cfg.ApplicationsTable)
	roleRepo := repos.NewRoleRepo(db, appLog)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	migrationMetrics, err := metrics.NewMigrationMetrics(registry)
	if err != nil {
		appLog.Fatal("Failed to register metrics", "error", err)
	}

	llmService, err := services.NewLLMService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, appLog)
	if err != nil {
		appLog.Warn("Job extraction disabled", "error", err)
	}
	applicationService := services.NewApplicationService(db, appRepo, appLog)
	migrationService := services.NewMigrationService(appRepo, appLog, services.MigrationConfig{
		DefaultLimit: cfg.MigrationDefaultLimit,
		MaxLimit:     cfg.MigrationMaxLimit,
	}).WithObserver(migrationMetrics)
	if cfg.AuthJWTSecret == "" {
		appLog.Warn("AUTH_JWT_SECRET is empty; every admin request will be rejected")
	}
	gate := services.NewAccessGate(services.NewJWTIdentityResolver(cfg.AuthJWTSecret), roleRepo, cfg.AdminRole, appLog)

	// 4. Initialize Gmail report notifications
	var notifier services.ReportNotifier
	if cfg.NotifierEnabled() {
		notifier, err = buildNotifier(ctx, cfg, appLog)
		if err != nil {
			appLog.Warn("Migration report emails disabled", "error", err)
			notifier = nil
		} else {
			appLog.Info("Gmail report notifier connected", "recipient", cfg.ReportRecipient)
		}
	}

	// 5. Initialize Handlers & Router
	router := server.NewRouter(server.RouterConfig{
		ApplicationHandler: handlers.NewApplicationHandler(llmService, applicationService),
		MigrationHandler:   handlers.NewMigrationHandler(migrationService, notifier, appLog),
		AdminGate:          gate,
		AllowedOrigins:     cfg.CORSAllowedOrigins,
		Log:                appLog,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	appLog.Info("Server starting", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		appLog.Fatal("Server failed to start", "error", err)
	}
}

func buildNotifier(ctx context.Context, cfg config.Config, appLog *logger.Logger) (services.ReportNotifier, error) {
	oauthConfig, err := auth.GmailConfig(cfg.GmailCredentialsFile)
	if err != nil {
		return nil, err
	}
	httpClient, err := auth.GmailClient(ctx, oauthConfig, cfg.GmailTokenFile)
	if err != nil {
		return nil, err
	}
	gmailService, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}
	return services.NewEmailService(services.NewGmailSender(gmailService), cfg.ReportRecipient, appLog), nil
}
