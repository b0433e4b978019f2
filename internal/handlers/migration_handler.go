package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/prep-pilot/internal/dtos"
	"github.com/justsurfingit/prep-pilot/internal/logger"
	"github.com/justsurfingit/prep-pilot/internal/middleware"
	"github.com/justsurfingit/prep-pilot/internal/services"
)

const notifyTimeout = 30 * time.Second

type MigrationHandler struct {
	Migrations *services.MigrationService
	// Notifier may be nil.
	Notifier services.ReportNotifier
	log      *logger.Logger
}

func NewMigrationHandler(m *services.MigrationService, notifier services.ReportNotifier, log *logger.Logger) *MigrationHandler {
	return &MigrationHandler{
		Migrations: m,
		Notifier:   notifier,
		log:        log.With("handler", "MigrationHandler"),
	}
}

// Migrate is the POST /admin/interview-prep/migrate endpoint. It must sit
// behind middleware.RequireAdmin.
func (h *MigrationHandler) Migrate(c *gin.Context) {
	var req dtos.MigrationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request: " + err.Error()})
		return
	}

	dryRun := true
	if req.DryRun != nil {
		dryRun = *req.DryRun
	}
	limit := 0
	if req.Limit != nil {
		limit = *req.Limit
	}

	adminID := ""
	if admin, ok := middleware.AdminFromContext(c); ok {
		adminID = admin.UserID.String()
	}
	h.log.Info("Interview prep migration requested", "admin_id", adminID, "dry_run", dryRun, "limit", limit)

	report, err := h.Migrations.Run(c.Request.Context(), services.MigrationOptions{DryRun: dryRun, Limit: limit})
	if err != nil {
		h.log.Error("Interview prep migration failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	if h.Notifier != nil {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), notifyTimeout)
		if nErr := h.Notifier.NotifyMigration(ctx, report, dryRun); nErr != nil {
			h.log.Warn("Migration report notification failed", "error", nErr)
		}
		cancel()
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"dryRun":  dryRun,
		"results": report,
	})
}
