package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shimms/shimms-backend/internal/logger"
	"github.com/shimms/shimms-backend/internal/utils"
)

// JourneyWeights are the component weights of the overall journey percentage.
// They must sum to 1.0.
type JourneyWeights struct {
	Assessments float64 `yaml:"assessments"`
	Tasks       float64 `yaml:"tasks"`
	Pillars     float64 `yaml:"pillars"`
	Milestones  float64 `yaml:"milestones"`
}

// PhaseThresholds are the closed lower bounds of each journey phase.
type PhaseThresholds struct {
	Active   int `yaml:"active"`
	Advanced int `yaml:"advanced"`
	Mastery  int `yaml:"mastery"`
}

type FeatureFlags struct {
	StefanAnalysis bool `yaml:"stefan_analysis"`
	EmailDispatch  bool `yaml:"email_dispatch"`
	RealtimeBus    bool `yaml:"realtime_bus"`
}

type Config struct {
	Port            string
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// DraftExpiry is the inactivity window after which a saved assessment
	// draft is treated as stale and the user must restart.
	DraftExpiry time.Duration

	// CalendarReadTimeout bounds calendar fetches on behalf of a client.
	CalendarReadTimeout time.Duration

	InvitationTTL time.Duration

	JourneyWeights  JourneyWeights
	PhaseThresholds PhaseThresholds
	Flags           FeatureFlags

	AppBaseURL string
}

type fileOverrides struct {
	JourneyWeights  *JourneyWeights  `yaml:"journey_weights"`
	PhaseThresholds *PhaseThresholds `yaml:"phase_thresholds"`
	Flags           *FeatureFlags    `yaml:"features"`
	DraftExpiryHrs  *int             `yaml:"draft_expiry_hours"`
}

// Load builds the startup configuration. Precedence is explicit file override
// > environment > default; nothing reads configuration ambiently after startup.
func Load(log *logger.Logger) (Config, error) {
	cfg := Config{
		Port:                utils.GetEnv("PORT", "8080", log),
		JWTSecretKey:        utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		AccessTokenTTL:      time.Duration(utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)) * time.Second,
		RefreshTokenTTL:     time.Duration(utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)) * time.Second,
		DraftExpiry:         time.Duration(utils.GetEnvAsInt("DRAFT_EXPIRY_HOURS", 168, log)) * time.Hour,
		CalendarReadTimeout: time.Duration(utils.GetEnvAsInt("CALENDAR_READ_TIMEOUT_SECONDS", 15, log)) * time.Second,
		InvitationTTL:       time.Duration(utils.GetEnvAsInt("INVITATION_TTL_HOURS", 168, log)) * time.Hour,
		JourneyWeights: JourneyWeights{
			Assessments: 0.30,
			Tasks:       0.40,
			Pillars:     0.25,
			Milestones:  0.05,
		},
		PhaseThresholds: PhaseThresholds{
			Active:   15,
			Advanced: 50,
			Mastery:  75,
		},
		Flags: FeatureFlags{
			StefanAnalysis: utils.GetEnvAsBool("FEATURE_STEFAN_ANALYSIS", true, log),
			EmailDispatch:  utils.GetEnvAsBool("FEATURE_EMAIL_DISPATCH", true, log),
			RealtimeBus:    utils.GetEnvAsBool("FEATURE_REALTIME_BUS", false, log),
		},
		AppBaseURL: utils.GetEnv("APP_BASE_URL", "http://localhost:3000", log),
	}

	path := utils.GetEnv("SHIMMS_CONFIG", "", log)
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		var ov fileOverrides
		if err := yaml.Unmarshal(raw, &ov); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
		cfg.applyOverrides(ov)
		log.Info("Applied config file overrides", "path", path)
	}

	if err := cfg.JourneyWeights.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyOverrides(ov fileOverrides) {
	if ov.JourneyWeights != nil {
		c.JourneyWeights = *ov.JourneyWeights
	}
	if ov.PhaseThresholds != nil {
		c.PhaseThresholds = *ov.PhaseThresholds
	}
	if ov.Flags != nil {
		c.Flags = *ov.Flags
	}
	if ov.DraftExpiryHrs != nil && *ov.DraftExpiryHrs > 0 {
		c.DraftExpiry = time.Duration(*ov.DraftExpiryHrs) * time.Hour
	}
}

func (w JourneyWeights) Validate() error {
	sum := w.Assessments + w.Tasks + w.Pillars + w.Milestones
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("journey weights must sum to 1.0, got %.3f", sum)
	}
	return nil
}
