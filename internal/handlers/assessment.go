package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shimms/shimms-backend/internal/pillars"
	"github.com/shimms/shimms-backend/internal/services"
)

type AssessmentHandler struct {
	flowService       services.AssessmentFlowService
	assessmentService services.AssessmentService
}

func NewAssessmentHandler(flowService services.AssessmentFlowService, assessmentService services.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{flowService: flowService, assessmentService: assessmentService}
}

func (h *AssessmentHandler) parseKind(c *gin.Context) (pillars.Key, bool) {
	kind, err := pillars.Parse(c.Param("kind"))
	if err != nil {
		RespondServiceError(c, err)
		return "", false
	}
	return kind, true
}

// GetStatus never fails; store trouble degrades to "can start".
func (h *AssessmentHandler) GetStatus(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	kind, ok := h.parseKind(c)
	if !ok {
		return
	}
	RespondOK(c, h.flowService.GetStatus(c.Request.Context(), actor, kind))
}

func (h *AssessmentHandler) GetQuestions(c *gin.Context) {
	kind, ok := h.parseKind(c)
	if !ok {
		return
	}
	RespondOK(c, gin.H{"kind": kind.String(), "questions": pillars.Questions(kind)})
}

func (h *AssessmentHandler) SaveDraft(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	kind, ok := h.parseKind(c)
	if !ok {
		return
	}
	var req struct {
		Answers map[string]float64 `json:"answers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	draft, err := h.flowService.SaveDraft(c.Request.Context(), actor, kind, req.Answers)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, draft)
}

func (h *AssessmentHandler) ClearDraft(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	kind, ok := h.parseKind(c)
	if !ok {
		return
	}
	if err := h.flowService.ClearDraft(c.Request.Context(), actor, kind); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"cleared": true})
}

func (h *AssessmentHandler) Complete(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	kind, ok := h.parseKind(c)
	if !ok {
		return
	}
	var req struct {
		Answers map[string]float64 `json:"answers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	result, err := h.assessmentService.Complete(c.Request.Context(), actor, kind, req.Answers)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

func (h *AssessmentHandler) ListRounds(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	rounds, err := h.assessmentService.ListRounds(c.Request.Context(), actor)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"rounds": rounds})
}

func (h *AssessmentHandler) GetRound(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	roundID, err := pathUUID(c, "roundId")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	round, err := h.assessmentService.GetRound(c.Request.Context(), actor, roundID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, round)
}

// Consolidate is the operator repair endpoint; the service rejects
// non-admin actors.
func (h *AssessmentHandler) Consolidate(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	result, err := h.assessmentService.Consolidate(c.Request.Context(), actor, limit)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}
