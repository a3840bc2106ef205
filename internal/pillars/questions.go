package pillars

// Question is a single 1-5 scale item of an assessment form. Inverted items
// score high when the answered value is low (e.g. stress level).
type Question struct {
	ID       string
	Text     string
	Weight   float64
	Inverted bool
}

var questionSets = map[Key][]Question{
	Welcome: {
		{ID: "life_satisfaction", Text: "How satisfied are you with your life overall right now?", Weight: 0.30},
		{ID: "change_readiness", Text: "How ready do you feel to make changes?", Weight: 0.30},
		{ID: "energy_level", Text: "How would you rate your day-to-day energy?", Weight: 0.20},
		{ID: "support_network", Text: "How supported do you feel by the people around you?", Weight: 0.20},
	},
	SelfCare: {
		{ID: "sleep_quality", Text: "How well do you sleep on a typical night?", Weight: 0.30},
		{ID: "stress_level", Text: "How stressed have you felt over the last two weeks?", Weight: 0.30, Inverted: true},
		{ID: "exercise_frequency", Text: "How often do you move your body in a way that feels good?", Weight: 0.20},
		{ID: "recovery_time", Text: "How much time do you set aside purely for recovery?", Weight: 0.20},
	},
	Skills: {
		{ID: "skill_confidence", Text: "How confident are you in your core professional skills?", Weight: 0.35},
		{ID: "learning_habit", Text: "How consistently do you learn something new each week?", Weight: 0.35},
		{ID: "feedback_seeking", Text: "How actively do you seek feedback on your work?", Weight: 0.30},
	},
	Talent: {
		{ID: "strength_clarity", Text: "How clear are you on your unique strengths?", Weight: 0.40},
		{ID: "strength_use", Text: "How often does your daily work draw on those strengths?", Weight: 0.35},
		{ID: "flow_frequency", Text: "How often do you lose yourself in work you enjoy?", Weight: 0.25},
	},
	Brand: {
		{ID: "visibility", Text: "How visible is your work to the people who matter?", Weight: 0.35},
		{ID: "message_clarity", Text: "How clearly can you describe what you stand for?", Weight: 0.35},
		{ID: "network_activity", Text: "How actively do you maintain your professional network?", Weight: 0.30},
	},
	Economy: {
		{ID: "financial_control", Text: "How in control of your finances do you feel?", Weight: 0.40},
		{ID: "income_stability", Text: "How stable is your income situation?", Weight: 0.35},
		{ID: "money_stress", Text: "How often does money worry you?", Weight: 0.25, Inverted: true},
	},
}

// Questions returns the question set for an assessment kind.
func Questions(k Key) []Question {
	return questionSets[k]
}
