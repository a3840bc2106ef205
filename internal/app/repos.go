package app

import (
	"gorm.io/gorm"

	"github.com/shimms/shimms-backend/internal/logger"
	"github.com/shimms/shimms-backend/internal/repos"
)

type Repos struct {
	User            repos.UserRepo
	UserToken       repos.UserTokenRepo
	UserRole        repos.UserRoleRepo
	Assignment      repos.AssignmentRepo
	AssessmentDraft repos.AssessmentDraftRepo
	AssessmentRound repos.AssessmentRoundRepo
	JourneyState    repos.JourneyStateRepo
	PathEntry       repos.PathEntryRepo
	CalendarEvent   repos.CalendarEventRepo
	Task            repos.TaskRepo
	Message         repos.MessageRepo
	Invitation      repos.InvitationRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:            repos.NewUserRepo(db, log),
		UserToken:       repos.NewUserTokenRepo(db, log),
		UserRole:        repos.NewUserRoleRepo(db, log),
		Assignment:      repos.NewAssignmentRepo(db, log),
		AssessmentDraft: repos.NewAssessmentDraftRepo(db, log),
		AssessmentRound: repos.NewAssessmentRoundRepo(db, log),
		JourneyState:    repos.NewJourneyStateRepo(db, log),
		PathEntry:       repos.NewPathEntryRepo(db, log),
		CalendarEvent:   repos.NewCalendarEventRepo(db, log),
		Task:            repos.NewTaskRepo(db, log),
		Message:         repos.NewMessageRepo(db, log),
		Invitation:      repos.NewInvitationRepo(db, log),
	}
}
