package app

import (
	"github.com/shimms/shimms-backend/internal/config"
	"github.com/shimms/shimms-backend/internal/logger"
	"github.com/shimms/shimms-backend/internal/platform/resend"
	"github.com/shimms/shimms-backend/internal/platform/stefanai"
	"github.com/shimms/shimms-backend/internal/realtime/bus"
)

// Clients are the outbound collaborators. Each one is optional: when its
// feature flag is off or its environment is incomplete the field stays nil
// and the owning service degrades (no analysis, no email, local-only events).
type Clients struct {
	StefanAI stefanai.Client
	Email    resend.Client
	EventBus bus.Bus
}

func wireClients(log *logger.Logger, cfg config.Config) Clients {
	log.Info("Wiring clients...")
	var c Clients

	if cfg.Flags.StefanAnalysis {
		ai, err := stefanai.New(log)
		if err != nil {
			log.Warn("Stefan analysis disabled", "error", err)
		} else {
			c.StefanAI = ai
		}
	}

	if cfg.Flags.EmailDispatch {
		email, err := resend.NewFromEnv(log)
		if err != nil {
			log.Warn("Email dispatch disabled", "error", err)
		} else {
			c.Email = email
		}
	}

	if cfg.Flags.RealtimeBus {
		b, err := bus.NewRedisBus(log)
		if err != nil {
			log.Warn("Realtime bus disabled", "error", err)
		} else {
			c.EventBus = b
		}
	}

	return c
}
