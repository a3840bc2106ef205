package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shimms/shimms-backend/internal/services"
)

// AdminHandler groups the management endpoints: user listing, role grants,
// and coach assignments. Role checks live in the services.
type AdminHandler struct {
	userService services.UserService
}

func NewAdminHandler(userService services.UserService) *AdminHandler {
	return &AdminHandler{userService: userService}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	users, err := h.userService.ListUsers(c.Request.Context(), actor, limit, offset)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"users": users})
}

func (h *AdminHandler) AssignRole(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	var req struct {
		UserID string `json:"user_id"`
		Role   string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	userID, err := parseUUIDField(req.UserID, "user_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := h.userService.AssignRole(c.Request.Context(), actor, userID, req.Role); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"assigned": true})
}

func (h *AdminHandler) AssignCoach(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	var req struct {
		CoachID  string `json:"coach_id"`
		ClientID string `json:"client_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	coachID, err := parseUUIDField(req.CoachID, "coach_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	clientID, err := parseUUIDField(req.ClientID, "client_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := h.userService.AssignCoach(c.Request.Context(), actor, coachID, clientID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"assigned": true})
}

func (h *AdminHandler) SetAssignmentActive(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	var req struct {
		CoachID  string `json:"coach_id"`
		ClientID string `json:"client_id"`
		Active   bool   `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	coachID, err := parseUUIDField(req.CoachID, "coach_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	clientID, err := parseUUIDField(req.ClientID, "client_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := h.userService.SetAssignmentActive(c.Request.Context(), actor, coachID, clientID, req.Active); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"updated": true})
}
