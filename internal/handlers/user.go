package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shimms/shimms-backend/internal/services"
	"github.com/shimms/shimms-backend/internal/types"
)

type UserHandler struct {
	userService    services.UserService
	personaService services.PersonaService
}

func NewUserHandler(userService services.UserService, personaService services.PersonaService) *UserHandler {
	return &UserHandler{userService: userService, personaService: personaService}
}

func (h *UserHandler) GetMe(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	user, err := h.userService.GetProfile(c.Request.Context(), actor, actor)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, user)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
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
	user, err := h.userService.GetProfile(c.Request.Context(), actor, target)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, user)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
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
		FirstName      string `json:"first_name"`
		LastName       string `json:"last_name"`
		ClientCategory string `json:"client_category"`
		ClientStatus   string `json:"client_status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	update := types.User{
		ID:             target,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		ClientCategory: req.ClientCategory,
		ClientStatus:   req.ClientStatus,
	}
	user, err := h.userService.UpdateProfile(c.Request.Context(), actor, &update)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, user)
}

// ListClients returns the coach's active roster.
func (h *UserHandler) ListClients(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	clients, err := h.userService.ListClients(c.Request.Context(), actor)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"clients": clients})
}

// Greeting fills the persona template for the given trigger context.
func (h *UserHandler) Greeting(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	user, err := h.userService.GetProfile(c.Request.Context(), actor, actor)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	persona, greeting := h.personaService.Select(c.DefaultQuery("context", "default"), user.FirstName)
	RespondOK(c, gin.H{"persona": persona.Name, "greeting": greeting})
}
