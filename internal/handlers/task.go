package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shimms/shimms-backend/internal/services"
	"github.com/shimms/shimms-backend/internal/types"
)

type TaskHandler struct {
	taskService      services.TaskService
	pathEntryService services.PathEntryService
}

func NewTaskHandler(taskService services.TaskService, pathEntryService services.PathEntryService) *TaskHandler {
	return &TaskHandler{taskService: taskService, pathEntryService: pathEntryService}
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
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
	tasks, err := h.taskService.ListClientTasks(c.Request.Context(), actor, target)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"tasks": tasks})
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
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
		Title       string     `json:"title"`
		Description string     `json:"description"`
		Priority    string     `json:"priority"`
		DueDate     *time.Time `json:"due_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	task := types.Task{
		UserID:      target,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	}
	created, err := h.taskService.CreateTask(c.Request.Context(), actor, &task)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, created)
}

func (h *TaskHandler) CompleteTask(c *gin.Context) {
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
	taskID, err := pathUUID(c, "taskId")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := h.taskService.CompleteTask(c.Request.Context(), actor, target, taskID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"completed": true})
}

func (h *TaskHandler) ListPath(c *gin.Context) {
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
	entries, err := h.pathEntryService.ListClientPath(c.Request.Context(), actor, target)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"entries": entries})
}

func (h *TaskHandler) CreatePathEntry(c *gin.Context) {
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
		Type            string `json:"type"`
		Title           string `json:"title"`
		Details         string `json:"details"`
		VisibleToClient *bool  `json:"visible_to_client"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	entry := types.PathEntry{
		UserID:          target,
		Type:            req.Type,
		Title:           req.Title,
		Details:         req.Details,
		VisibleToClient: true,
	}
	if req.VisibleToClient != nil {
		entry.VisibleToClient = *req.VisibleToClient
	}
	created, err := h.pathEntryService.CreateEntry(c.Request.Context(), actor, &entry)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, created)
}

func (h *TaskHandler) UpdatePathEntryStatus(c *gin.Context) {
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
	entryID, err := pathUUID(c, "entryId")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.pathEntryService.UpdateEntryStatus(c.Request.Context(), actor, target, entryID, req.Status); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"updated": true})
}
