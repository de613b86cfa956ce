// Package schema validates model responses against the strict JSON shapes
// the prompts ask for. Every validator accepts an arbitrary decoded JSON
// value and returns either typed data or a *ValidationError listing every
// violated field path.
//
// Strict mode applies at every object level: a key that is not declared on
// the corresponding struct is reported as unrecognized.
package schema

// Name identifies one response schema.
type Name string

const (
	CheckinFeedbackName Name = "checkin_feedback"
	DecisionCoachName   Name = "decision_coach"
)

// HabitScore is the categorical score block emitted by the model.
type HabitScore struct {
	Protein        *string `json:"protein"         validate:"required,oneof=missing partial ok"`
	Plants         *string `json:"plants"          validate:"required,oneof=missing partial ok"`
	LiquidCalories *string `json:"liquid_calories" validate:"required,oneof=unknown low medium high"`
	Snacks         *string `json:"snacks"          validate:"required,oneof=unknown low medium high"`
	Timing         *string `json:"timing"          validate:"required,oneof=unknown ok needs_attention"`
}

// Flags is shared by both response schemas.
type Flags struct {
	NeedsClarification *bool    `json:"needs_clarification"    validate:"required"`
	SafetyEscalation   *bool    `json:"safety_escalation"      validate:"required"`
	FlagReasons        []string `json:"flag_reasons,omitempty" validate:"omitempty,max=5,dive,max=80"`
}

// CheckinFeedback is the response to a meal check-in analysis.
type CheckinFeedback struct {
	Type             *string     `json:"type"                        validate:"required,eq=checkin_feedback"`
	HabitScore       *HabitScore `json:"habit_score"                 validate:"required"`
	FeedbackShort    *string     `json:"feedback_short"              validate:"required,max=300"`
	OneAction        *string     `json:"one_action"                  validate:"required,max=120"`
	Confidence       *string     `json:"confidence"                  validate:"required,oneof=low medium high"`
	Flags            *Flags      `json:"flags"                       validate:"required"`
	Assumptions      []string    `json:"assumptions"                 validate:"required,max=6,dive,max=120"`
	OptionalQuestion *string     `json:"optional_question,omitempty" validate:"omitempty,max=120"`
}

// Recommended is the primary suggestion of a decision_coach response.
type Recommended struct {
	Title *string  `json:"title"           validate:"required,max=60"`
	Steps []string `json:"steps"           validate:"required,min=1,max=4,dive,max=100"`
	Drink *string  `json:"drink,omitempty" validate:"omitempty,max=60"`
}

// Option is an alternative suggestion of a decision_coach response.
type Option struct {
	Title *string  `json:"title" validate:"required,max=60"`
	Steps []string `json:"steps" validate:"required,min=1,max=4,dive,max=100"`
}

// DecisionCoach is the response shape for "what should I eat" coaching.
type DecisionCoach struct {
	Type             *string      `json:"type"                        validate:"required,eq=decision_coach"`
	Recommended      *Recommended `json:"recommended"                 validate:"required"`
	Options          []Option     `json:"options"                     validate:"required,min=1,max=3,dive"`
	Fallback         *string      `json:"fallback"                    validate:"required,max=120"`
	WhyShort         *string      `json:"why_short"                   validate:"required,max=220"`
	Confidence       *string      `json:"confidence"                  validate:"required,oneof=low medium high"`
	Assumptions      []string     `json:"assumptions"                 validate:"required,max=6,dive,max=120"`
	Flags            *Flags       `json:"flags"                       validate:"required"`
	OptionalQuestion *string      `json:"optional_question,omitempty" validate:"omitempty,max=120"`
}

// Value dereferences an optional string field of a validated response.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
