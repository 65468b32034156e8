package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/circadia-app/circadia/backend/internal/apierror"
	"github.com/circadia-app/circadia/backend/internal/models"
	"github.com/circadia-app/circadia/backend/internal/service"
)

// EventHandler handles event recording and retrieval.
type EventHandler struct {
	eventService service.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
	}
}

// RecordEvent records a behavioral event and evaluates the insight rules
// against it in one call.
// POST /api/v1/events
func (h *EventHandler) RecordEvent(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
		return
	}

	var req models.RecordEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.WriteProblem(c, apierror.NewBadRequestError(
			apierror.GetRequestID(c), err.Error(), "Invalid JSON format"))
		return
	}

	resp, err := h.eventService.RecordEvent(c.Request.Context(), userID.(string), req.Event)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetEvents returns the authenticated user's events, newest first.
// GET /api/v1/events?limit=&offset=
func (h *EventHandler) GetEvents(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	events, err := h.eventService.GetUserEvents(c.Request.Context(), userID.(string), limit, offset)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"count":  len(events),
	})
}
