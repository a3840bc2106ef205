package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shimms/shimms-backend/internal/services"
	"github.com/shimms/shimms-backend/internal/types"
)

type CalendarHandler struct {
	calendarService services.CalendarService
}

func NewCalendarHandler(calendarService services.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarService: calendarService}
}

// ListEvents reads ?from / ?to as RFC3339; defaults to the current month.
func (h *CalendarHandler) ListEvents(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	target, err := targetID(c, actor)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_range", err)
			return
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_range", err)
			return
		}
		to = parsed
	}

	events, err := h.calendarService.ListClientEvents(c.Request.Context(), actor, target, from, to)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"events": events})
}

func (h *CalendarHandler) CreateEvent(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	target, err := targetID(c, actor)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req struct {
		Title           string     `json:"title"`
		Description     string     `json:"description"`
		StartsAt        time.Time  `json:"starts_at"`
		EndsAt          *time.Time `json:"ends_at"`
		VisibleToClient *bool      `json:"visible_to_client"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	event := types.CalendarEvent{
		UserID:          target,
		Title:           req.Title,
		Description:     req.Description,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
		VisibleToClient: true,
	}
	if req.VisibleToClient != nil {
		event.VisibleToClient = *req.VisibleToClient
	}
	created, err := h.calendarService.CreateClientEvent(c.Request.Context(), actor, &event)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, created)
}

func (h *CalendarHandler) DeleteEvent(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	target, err := targetID(c, actor)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	eventID, err := pathUUID(c, "eventId")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := h.calendarService.DeleteClientEvent(c.Request.Context(), actor, target, eventID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
