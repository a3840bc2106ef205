package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/shimms/shimms-backend/internal/handlers"
	"github.com/shimms/shimms-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler        *handlers.AuthHandler
	AuthMiddleware     *middleware.AuthMiddleware
	HealthcheckHandler *handlers.HealthcheckHandler
	UserHandler        *handlers.UserHandler
	AssessmentHandler  *handlers.AssessmentHandler
	JourneyHandler     *handlers.JourneyHandler
	CalendarHandler    *handlers.CalendarHandler
	TaskHandler        *handlers.TaskHandler
	MessageHandler     *handlers.MessageHandler
	InvitationHandler  *handlers.InvitationHandler
	AdminHandler       *handlers.AdminHandler
	SSEHandler         *handlers.SSEHandler
	AllowedOrigins     []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("shimms-backend"))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-Refresh-Token"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", cfg.HealthcheckHandler.Healthcheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)
	router.POST("/invitations/redeem", cfg.InvitationHandler.Redeem)

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)

	// SSE
	protected.GET("/sse/stream", cfg.SSEHandler.Stream)

	// User & persona
	protected.GET("/user", cfg.UserHandler.GetMe)
	protected.PUT("/user", cfg.UserHandler.UpdateProfile)
	protected.GET("/user/greeting", cfg.UserHandler.Greeting)
	protected.GET("/users/:userId", cfg.UserHandler.GetProfile)
	protected.PUT("/users/:userId", cfg.UserHandler.UpdateProfile)

	// Assessments
	protected.GET("/assessments/:kind/status", cfg.AssessmentHandler.GetStatus)
	protected.GET("/assessments/:kind/questions", cfg.AssessmentHandler.GetQuestions)
	protected.PUT("/assessments/:kind/draft", cfg.AssessmentHandler.SaveDraft)
	protected.DELETE("/assessments/:kind/draft", cfg.AssessmentHandler.ClearDraft)
	protected.POST("/assessments/:kind/complete", cfg.AssessmentHandler.Complete)
	protected.GET("/rounds", cfg.AssessmentHandler.ListRounds)
	protected.GET("/rounds/:roundId", cfg.AssessmentHandler.GetRound)

	// Journey
	protected.GET("/journey", cfg.JourneyHandler.GetMine)
	protected.POST("/journey/recalculate", cfg.JourneyHandler.Recalculate)

	// Self-scoped timeline, tasks, calendar
	protected.GET("/path", cfg.TaskHandler.ListPath)
	protected.GET("/tasks", cfg.TaskHandler.ListTasks)
	protected.POST("/tasks", cfg.TaskHandler.CreateTask)
	protected.POST("/tasks/:taskId/complete", cfg.TaskHandler.CompleteTask)
	protected.GET("/calendar", cfg.CalendarHandler.ListEvents)
	protected.POST("/calendar", cfg.CalendarHandler.CreateEvent)

	// Messages
	protected.POST("/messages", cfg.MessageHandler.Send)
	protected.GET("/messages/:userId", cfg.MessageHandler.ListConversation)
	protected.POST("/messages/:userId/read", cfg.MessageHandler.MarkRead)

	// Coach views of a client; every route is gated by the access predicate.
	clients := protected.Group("/clients/:userId")
	{
		clients.GET("/journey", cfg.JourneyHandler.GetClient)
		clients.GET("/analytics", cfg.JourneyHandler.GetClientAnalytics)
		clients.GET("/calendar", cfg.CalendarHandler.ListEvents)
		clients.POST("/calendar", cfg.CalendarHandler.CreateEvent)
		clients.DELETE("/calendar/:eventId", cfg.CalendarHandler.DeleteEvent)
		clients.GET("/tasks", cfg.TaskHandler.ListTasks)
		clients.POST("/tasks", cfg.TaskHandler.CreateTask)
		clients.POST("/tasks/:taskId/complete", cfg.TaskHandler.CompleteTask)
		clients.GET("/path", cfg.TaskHandler.ListPath)
		clients.POST("/path", cfg.TaskHandler.CreatePathEntry)
		clients.PUT("/path/:entryId/status", cfg.TaskHandler.UpdatePathEntryStatus)
	}
	protected.GET("/clients", cfg.UserHandler.ListClients)

	// Invitations
	protected.POST("/invitations", cfg.InvitationHandler.Invite)
	protected.GET("/invitations", cfg.InvitationHandler.ListMine)

	// Admin
	admin := protected.Group("/admin")
	{
		admin.GET("/users", cfg.AdminHandler.ListUsers)
		admin.POST("/roles", cfg.AdminHandler.AssignRole)
		admin.POST("/assignments", cfg.AdminHandler.AssignCoach)
		admin.PUT("/assignments/active", cfg.AdminHandler.SetAssignmentActive)
		admin.POST("/assessments/consolidate", cfg.AssessmentHandler.Consolidate)
	}

	return router
}
