package services

import (
	"fmt"

	"github.com/shimms/shimms-backend/internal/normalization"
)

// Persona is the voice Stefan speaks with for one trigger context.
type Persona struct {
	Name     string
	Template string
}

const defaultPersonaContext = "default"

// personaTable is a fixed lookup, no state and no learning. Templates take the
// user's first name as the single argument.
var personaTable = map[string]Persona{
	"low_scores": {
		Name:     "mentor",
		Template: "Hey %s, rough patches are where the real work happens. Let's look at one small thing you can improve this week.",
	},
	"milestone_achievement": {
		Name:     "cheerleader",
		Template: "%s, you did it! That milestone took real commitment. Take a second to enjoy it.",
	},
	"assessment_completion": {
		Name:     "strategist",
		Template: "Nice work, %s. Your results are in. Here's what they tell us about your next move.",
	},
	"inactivity": {
		Name:     "friend",
		Template: "Hi %s, it's been a while. No pressure, just checking in. Your journey is right where you left it.",
	},
	defaultPersonaContext: {
		Name:     "mentor",
		Template: "Hi %s, good to see you. Let's keep building.",
	},
}

type PersonaService interface {
	// Select resolves a trigger context to a persona and a filled greeting.
	// Unknown contexts fall back to the default entry.
	Select(triggerContext, firstName string) (Persona, string)
}

type personaService struct{}

func NewPersonaService() PersonaService {
	return &personaService{}
}

func (s *personaService) Select(triggerContext, firstName string) (Persona, string) {
	key := normalization.ParseInputString(triggerContext)
	p, ok := personaTable[key]
	if !ok {
		p = personaTable[defaultPersonaContext]
	}
	return p, fmt.Sprintf(p.Template, firstName)
}
