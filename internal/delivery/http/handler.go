package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nutrilog/backend/internal/domain"
	"github.com/nutrilog/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	logs    *usecase.LogService
	imports *usecase.ImportService
	targets *usecase.TargetService
	log     *zap.SugaredLogger
}

// NewHandler creates a new HTTP handler
func NewHandler(logs *usecase.LogService, imports *usecase.ImportService, targets *usecase.TargetService, log *zap.SugaredLogger) *Handler {
	return &Handler{logs: logs, imports: imports, targets: targets, log: log.With("component", "http")}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "nutrilog-backend",
		"version": "1.0.0",
	})
}

// submitLogRequest is the POST /logs/:date body.
type submitLogRequest struct {
	Items   []domain.LogItem `json:"items"`
	Notes   string           `json:"notes"`
	WaterMl int              `json:"waterMl"`
	SaltG   float64          `json:"saltG"`
}

// SubmitDayLog resolves the submitted items and replaces the day's log.
func (h *Handler) SubmitDayLog(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	var req submitLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.logs.ResolveDayLog(c.Request.Context(), userID, c.Param("date"),
		req.Items, req.Notes, req.WaterMl, req.SaltG)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DaySummary returns totals, the nutrient breakdown, and items for one date.
func (h *Handler) DaySummary(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	summary, err := h.logs.DaySummary(c.Request.Context(), userID, c.Param("date"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// SearchFoods proxies a free-text query to the external food database. The
// returned external IDs feed ImportFood.
func (h *Handler) SearchFoods(c *gin.Context) {
	if _, ok := requestUserID(c); !ok {
		return
	}

	results, err := h.imports.SearchExternal(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if results == nil {
		results = []domain.ExternalFood{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

type importFoodRequest struct {
	ExternalID string `json:"externalId"`
}

// ImportFood copies a food from the external database into the global store.
func (h *Handler) ImportFood(c *gin.Context) {
	if _, ok := requestUserID(c); !ok {
		return
	}

	var req importFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.imports.ImportExternalFood(c.Request.Context(), req.ExternalID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	status := http.StatusCreated
	if result.Reused {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

// MicroTargets returns the user's personalized per-nutrient targets.
func (h *Handler) MicroTargets(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	result, err := h.targets.MicroTargets(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type updateTargetsRequest struct {
	Mode      string             `json:"mode"`
	Overrides map[string]float64 `json:"overrides"`
}

// UpdateTargets sets the target basis mode and custom overrides.
func (h *Handler) UpdateTargets(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	var req updateTargetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.targets.SetMicroTargetMode(c.Request.Context(), userID, req.Mode, req.Overrides); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// writeError maps domain errors onto HTTP statuses.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrFoodNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrFoodDataAPIFailure),
		errors.Is(err, domain.ErrEstimatorFailure),
		errors.Is(err, domain.ErrEstimatorRefusal):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		h.log.Errorw("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
