package app

import (
	"gorm.io/gorm"

	"github.com/shimms/shimms-backend/internal/handlers"
	"github.com/shimms/shimms-backend/internal/logger"
	"github.com/shimms/shimms-backend/internal/realtime"
)

type Handlers struct {
	Healthcheck *handlers.HealthcheckHandler
	Auth        *handlers.AuthHandler
	User        *handlers.UserHandler
	Assessment  *handlers.AssessmentHandler
	Journey     *handlers.JourneyHandler
	Calendar    *handlers.CalendarHandler
	Task        *handlers.TaskHandler
	Message     *handlers.MessageHandler
	Invitation  *handlers.InvitationHandler
	Admin       *handlers.AdminHandler
	SSE         *handlers.SSEHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, s Services, hub *realtime.Hub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Healthcheck: handlers.NewHealthcheckHandler(db),
		Auth:        handlers.NewAuthHandler(s.Auth),
		User:        handlers.NewUserHandler(s.User, s.Persona),
		Assessment:  handlers.NewAssessmentHandler(s.AssessmentFlow, s.Assessment),
		Journey:     handlers.NewJourneyHandler(s.Journey, s.User),
		Calendar:    handlers.NewCalendarHandler(s.Calendar),
		Task:        handlers.NewTaskHandler(s.Task, s.PathEntry),
		Message:     handlers.NewMessageHandler(s.Message),
		Invitation:  handlers.NewInvitationHandler(s.Invitation),
		Admin:       handlers.NewAdminHandler(s.User),
		SSE:         handlers.NewSSEHandler(log, hub),
	}
}
