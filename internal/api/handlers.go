// Package api exposes the operator HTTP surface: starting runs, driving
// finalize, and reading the published dataset.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/blob"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/dataset"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/domain"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/logger"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/pipeline"
	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/research"
)

// Handler handles HTTP requests for the pipeline API.
type Handler struct {
	runner    *pipeline.Runner
	engine    *research.Engine
	publisher *dataset.Publisher
	defaults  research.Params
	logger    logger.Logger
}

// NewHandler creates a new API handler. The defaults fill in request
// fields the caller leaves zero.
func NewHandler(
	runner *pipeline.Runner,
	engine *research.Engine,
	publisher *dataset.Publisher,
	defaults research.Params,
	log logger.Logger,
) *Handler {
	return &Handler{
		runner:    runner,
		engine:    engine,
		publisher: publisher,
		defaults:  defaults,
		logger:    log,
	}
}

// StartRunRequest is the body of POST /api/v1/runs.
type StartRunRequest struct {
	Query       string `json:"query"`
	WithinDays  int    `json:"within_days"`
	TargetCount int    `json:"target_count"`
	SearchLimit int    `json:"search_limit"`
	Mode        string `json:"mode"`
}

// StartRun handles POST /api/v1/runs.
func (h *Handler) StartRun(c *gin.Context) {
	// An empty body is fine; everything falls back to defaults.
	var req StartRunRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	params := h.defaults
	if req.Query != "" {
		params.Query = req.Query
	}
	if req.WithinDays > 0 {
		params.WithinDays = req.WithinDays
	}
	if req.TargetCount > 0 {
		params.TargetCount = req.TargetCount
	}
	if req.SearchLimit > 0 {
		params.SearchLimit = req.SearchLimit
	}
	switch req.Mode {
	case "":
	case string(domain.ModeStrict), string(domain.ModeSpeculative):
		params.Mode = domain.RunMode(req.Mode)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be strict or speculative"})
		return
	}

	job, err := h.runner.StartRun(c.Request.Context(), params)
	if err != nil {
		h.logger.Error("failed to start run", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.logger.Info("run started via api",
		zap.String("run_id", job.RunID),
		zap.String("mode", string(job.Mode)),
	)
	c.JSON(http.StatusCreated, job)
}

// FinalizeRun handles POST /api/v1/runs/:run_id/finalize.
func (h *Handler) FinalizeRun(c *gin.Context) {
	runID := c.Param("run_id")

	out, err := h.runner.FinalizeRun(c.Request.Context(), runID)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found: " + runID})
			return
		}
		h.logger.Error("finalize failed",
			zap.String("run_id", runID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, out)
}

// GetRun handles GET /api/v1/runs/:run_id.
func (h *Handler) GetRun(c *gin.Context) {
	runID := c.Param("run_id")

	job, err := h.engine.LoadJob(c.Request.Context(), runID)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found: " + runID})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, job)
}

// GetLatestDataset handles GET /api/v1/dataset/latest.
func (h *Handler) GetLatestDataset(c *gin.Context) {
	ds, manifest, err := h.publisher.LoadLatest(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"manifest":     manifest,
		"case_studies": ds,
	})
}

// GetStats handles GET /api/v1/stats.
func (h *Handler) GetStats(c *gin.Context) {
	snapshot := h.runner.Metrics().Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"runs_started":        snapshot.RunsStarted,
		"runs_published":      snapshot.RunsPublished,
		"runs_pending":        snapshot.RunsPending,
		"runs_blocked":        snapshot.RunsBlocked,
		"runs_failed":         snapshot.RunsFailed,
		"candidates_rejected": snapshot.CandidatesRejected,
		"case_studies_added":  snapshot.CaseStudiesAdded,
		"last_published_at":   snapshot.LastPublishedAt,
		"start_time":          snapshot.StartTime,
	})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
