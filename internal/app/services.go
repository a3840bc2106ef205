package app

import (
	"gorm.io/gorm"

	"github.com/shimms/shimms-backend/internal/config"
	"github.com/shimms/shimms-backend/internal/logger"
	"github.com/shimms/shimms-backend/internal/realtime"
	"github.com/shimms/shimms-backend/internal/services"
)

type Services struct {
	Auth           services.AuthService
	Access         services.AccessService
	User           services.UserService
	AssessmentFlow services.AssessmentFlowService
	Assessment     services.AssessmentService
	Journey        services.JourneyService
	Persona        services.PersonaService
	Calendar       services.CalendarService
	Task           services.TaskService
	PathEntry      services.PathEntryService
	Message        services.MessageService
	Invitation     services.InvitationService
	Mailer         services.MailerService
	Notifier       services.Notifier
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg config.Config, r Repos, c Clients, hub *realtime.Hub) Services {
	log.Info("Wiring services...")

	var notifier services.Notifier = &services.HubNotifier{Hub: hub}
	if c.EventBus != nil {
		notifier = &services.BusNotifier{Log: log, Bus: c.EventBus}
	}

	mailer := services.NewMailerService(log, c.Email, cfg.AppBaseURL)
	access := services.NewAccessService(db, log, r.UserRole, r.Assignment)
	persona := services.NewPersonaService()

	journey := services.NewJourneyService(db, log, r.JourneyState, r.AssessmentRound, r.Task, r.PathEntry,
		cfg.JourneyWeights, cfg.PhaseThresholds, notifier)
	flow := services.NewAssessmentFlowService(db, log, r.AssessmentDraft, r.AssessmentRound, cfg.DraftExpiry)
	assessment := services.NewAssessmentService(db, log, r.User, r.AssessmentDraft, r.AssessmentRound, r.PathEntry,
		access, journey, persona, c.StefanAI, mailer, notifier)

	auth := services.NewAuthService(db, log, r.User, r.UserRole, r.UserToken, journey, mailer,
		cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	user := services.NewUserService(db, log, r.User, r.UserRole, r.Assignment, r.AssessmentRound, r.Task, access, journey)
	calendar := services.NewCalendarService(db, log, r.CalendarEvent, access, cfg.CalendarReadTimeout)
	task := services.NewTaskService(db, log, r.Task, access, journey)
	pathEntry := services.NewPathEntryService(db, log, r.PathEntry, access, journey, notifier)
	message := services.NewMessageService(db, log, r.Message, r.User, access, mailer, notifier)
	invitation := services.NewInvitationService(db, log, r.Invitation, r.User, r.UserRole, r.Assignment,
		access, journey, mailer, cfg.InvitationTTL, cfg.AppBaseURL)

	return Services{
		Auth:           auth,
		Access:         access,
		User:           user,
		AssessmentFlow: flow,
		Assessment:     assessment,
		Journey:        journey,
		Persona:        persona,
		Calendar:       calendar,
		Task:           task,
		PathEntry:      pathEntry,
		Message:        message,
		Invitation:     invitation,
		Mailer:         mailer,
		Notifier:       notifier,
	}
}
