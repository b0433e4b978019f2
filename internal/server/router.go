package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/prep-pilot/internal/handlers"
	"github.com/justsurfingit/prep-pilot/internal/logger"
	"github.com/justsurfingit/prep-pilot/internal/middleware"
)

type RouterConfig struct {
	ApplicationHandler *handlers.ApplicationHandler
	MigrationHandler   *handlers.MigrationHandler
	AdminGate          middleware.Authorizer
	AllowedOrigins     []string
	Log                *logger.Logger
	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), middleware.JSONRecovery(cfg.Log))

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	api := r.Group("/api/v1")
	{
		api.GET("/health", handlers.HealthCheck)

		// Application Routes
		api.POST("/applications/extract", cfg.ApplicationHandler.ParseJob)
		api.POST("/applications", cfg.ApplicationHandler.CreateApplication)
		api.GET("/applications/:id/interview-prep", cfg.ApplicationHandler.GetInterviewPrep)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin(cfg.AdminGate, cfg.Log))
	{
		admin.POST("/interview-prep/migrate", cfg.MigrationHandler.Migrate)
	}

	return r
}
