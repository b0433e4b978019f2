package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/justsurfingit/prep-pilot/internal/dtos"
	"github.com/justsurfingit/prep-pilot/internal/repos"
	"github.com/justsurfingit/prep-pilot/internal/services"
)

type ApplicationHandler struct {
	LLMService         *services.LLMService
	ApplicationService *services.ApplicationService
}

// NewApplicationHandler creates the handler with dependencies. llm may be nil
// when no API key is configured.
func NewApplicationHandler(llm *services.LLMService, a *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		LLMService:         llm,
		ApplicationService: a,
	}
}

// ParseJob is the POST /applications/extract endpoint
func (h *ApplicationHandler) ParseJob(c *gin.Context) {
	var req dtos.JobExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid JSON format: " + err.Error()})
		return
	}
	if h.LLMService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": services.ErrLLMDisabled.Error()})
		return
	}

	extractedJSON, err := h.LLMService.ExtractJobDetails(c.Request.Context(), req.RawHTML)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "AI Extraction failed: " + err.Error()})
		return
	}
	if !json.Valid([]byte(extractedJSON)) {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "AI Extraction returned invalid JSON"})
		return
	}

	// json.RawMessage keeps Go from escaping the inner JSON string
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    json.RawMessage(extractedJSON),
	})
}

// CreateApplication is the POST /applications endpoint
func (h *ApplicationHandler) CreateApplication(c *gin.Context) {
	var req dtos.ApplicationCreationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid JSON format: " + err.Error()})
		return
	}
	app, err := h.ApplicationService.CreateApplication(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create application: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, app)
}

// GetInterviewPrep is the GET /applications/:id/interview-prep endpoint
func (h *ApplicationHandler) GetInterviewPrep(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid application id"})
		return
	}
	payload, shape, err := h.ApplicationService.InterviewPrep(c.Request.Context(), id)
	switch {
	case errors.Is(err, repos.ErrRecordNotFound), errors.Is(err, services.ErrNoInterviewPrep):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"storedFormat": shape.String(),
		"data":         payload,
	})
}

// HealthCheck is the GET /health endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
