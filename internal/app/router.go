package app

import (
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shimms/shimms-backend/internal/server"
)

func wireRouter(h Handlers, m Middleware) *gin.Engine {
	var origins []string
	if raw := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); raw != "" {
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}
	return server.NewRouter(server.RouterConfig{
		AuthHandler:        h.Auth,
		AuthMiddleware:     m.Auth,
		HealthcheckHandler: h.Healthcheck,
		UserHandler:        h.User,
		AssessmentHandler:  h.Assessment,
		JourneyHandler:     h.Journey,
		CalendarHandler:    h.Calendar,
		TaskHandler:        h.Task,
		MessageHandler:     h.Message,
		InvitationHandler:  h.Invitation,
		AdminHandler:       h.Admin,
		SSEHandler:         h.SSE,
		AllowedOrigins:     origins,
	})
}
