package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shimms/shimms-backend/internal/services"
)

type InvitationHandler struct {
	invitationService services.InvitationService
}

func NewInvitationHandler(invitationService services.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService}
}

func (h *InvitationHandler) Invite(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	var req struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	inv, err := h.invitationService.Invite(c.Request.Context(), actor, req.Email, req.Role)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, inv)
}

// Redeem is public: the token is the credential.
func (h *InvitationHandler) Redeem(c *gin.Context) {
	var req services.RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	user, err := h.invitationService.Redeem(c.Request.Context(), req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, user)
}

func (h *InvitationHandler) ListMine(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	invitations, err := h.invitationService.ListByInviter(c.Request.Context(), actor)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"invitations": invitations})
}
