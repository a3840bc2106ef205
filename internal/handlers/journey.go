package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shimms/shimms-backend/internal/services"
)

type JourneyHandler struct {
	journeyService services.JourneyService
	userService    services.UserService
}

func NewJourneyHandler(journeyService services.JourneyService, userService services.UserService) *JourneyHandler {
	return &JourneyHandler{journeyService: journeyService, userService: userService}
}

func (h *JourneyHandler) GetMine(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	state, err := h.journeyService.GetState(c.Request.Context(), actor)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, state)
}

func (h *JourneyHandler) Recalculate(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	state, err := h.journeyService.Recalculate(c.Request.Context(), actor)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, state)
}

// GetClient is the coach/admin view of a client's journey; access is decided
// in the service, denials come back as 403.
func (h *JourneyHandler) GetClient(c *gin.Context) {
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
	state, err := h.userService.GetClientJourney(c.Request.Context(), actor, target)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, state)
}

func (h *JourneyHandler) GetClientAnalytics(c *gin.Context) {
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
	analytics, err := h.userService.GetClientAnalytics(c.Request.Context(), actor, target)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, analytics)
}
