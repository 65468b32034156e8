package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/circadia-app/circadia/backend/internal/apierror"
	"github.com/circadia-app/circadia/backend/internal/logger"
	"github.com/circadia-app/circadia/backend/internal/models"
	"github.com/circadia-app/circadia/backend/internal/repository"
	"github.com/circadia-app/circadia/backend/internal/service"
)

// InsightsHandler handles insight ingestion and retrieval.
type InsightsHandler struct {
	circadianService service.CircadianService
	insightService   service.InsightService
}

// NewInsightsHandler creates a new insights handler
func NewInsightsHandler(circadianService service.CircadianService, insightService service.InsightService) *InsightsHandler {
	return &InsightsHandler{
		circadianService: circadianService,
		insightService:   insightService,
	}
}

// IngestEvent evaluates one behavioral event against the circadian rule set
// and returns the insights it generated (possibly none).
// POST /api/v1/insights/events
func (h *InsightsHandler) IngestEvent(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
		return
	}

	var req models.IngestEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.WriteProblem(c, apierror.NewBadRequestError(
			apierror.GetRequestID(c), err.Error(), "Invalid JSON format"))
		return
	}

	insights, err := h.circadianService.IngestEvent(c.Request.Context(), userID.(string), req.Event)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.InsightsResponse{Insights: insights})
}

// GetInsights returns all insights for the authenticated user.
// GET /api/v1/insights
func (h *InsightsHandler) GetInsights(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
		return
	}

	insights, err := h.insightService.GetInsights(c.Request.Context(), userID.(string))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.InsightsResponse{Insights: insights})
}

// MarkRead toggles an insight's read flag.
// PATCH /api/v1/insights/:id/read
func (h *InsightsHandler) MarkRead(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
		return
	}

	insightID := c.Param("id")

	var req models.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsRead == nil {
		apierror.WriteProblem(c, apierror.NewValidationError(apierror.GetRequestID(c), []apierror.FieldError{
			{Field: "is_read", Message: "is required", Code: "required"},
		}))
		return
	}

	insight, err := h.insightService.MarkRead(c.Request.Context(), userID.(string), insightID, *req.IsRead)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			apierror.WriteProblem(c, apierror.NewNotFoundError(apierror.GetRequestID(c), "Insight", insightID))
			return
		}
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, insight)
}

// writeServiceError maps the service error taxonomy onto problem responses:
// validation failures are client errors and were never retried against a
// store; store failures are retryable server errors.
func writeServiceError(c *gin.Context, err error) {
	requestID := apierror.GetRequestID(c)

	switch {
	case service.IsValidation(err):
		apierror.WriteProblem(c, apierror.NewBadRequestError(
			requestID, err.Error(), "Please check your input and try again"))
	case errors.Is(err, service.ErrStoreUnavailable):
		logger.Ctx(c.Request.Context()).Error("store unavailable", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewStoreUnavailableError(requestID, 30))
	default:
		logger.Ctx(c.Request.Context()).Error("unhandled service error", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
	}
}
