package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shimms/shimms-backend/internal/logger"
	"github.com/shimms/shimms-backend/internal/realtime"
)

// SSEHandler streams realtime events to the authenticated user over
// server-sent events.
type SSEHandler struct {
	log *logger.Logger
	hub *realtime.Hub
}

func NewSSEHandler(log *logger.Logger, hub *realtime.Hub) *SSEHandler {
	return &SSEHandler{log: log.With("handler", "SSEHandler"), hub: hub}
}

func (h *SSEHandler) Stream(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	events, cancel := h.hub.Subscribe(actor)
	defer cancel()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				h.log.Warn("Failed to encode realtime event", "error", err)
				return true
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, payload)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
