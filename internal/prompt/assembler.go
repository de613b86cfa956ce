// Package prompt assembles the system and user messages sent to the model.
//
// Output is a pure function of its inputs: the same check-in, user and
// history always produce byte-identical text. Photos are described by count
// only; image content is never sent.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tbourn/go-habit-backend/internal/completion"
	"github.com/tbourn/go-habit-backend/internal/domain"
)

// MaxRecent is the number of prior check-ins included as context.
const MaxRecent = 3

const recentFeedbackRunes = 80

// Input carries everything the assembler reads. User.Goal should be loaded
// when the user has one. Recent is expected newest first.
type Input struct {
	CheckIn *domain.CheckIn
	User    *domain.User
	Recent  []domain.CheckIn
}

const systemContent = `You are a nutrition habit coach. You review one meal check-in at a time and give short, practical, non-judgmental coaching toward the user's goal. You do not give medical advice, diagnoses or calorie prescriptions.

Respond with a single JSON object and nothing else. No prose, no markdown, no code fences. Use exactly these fields and no others:

{
  "type": "checkin_feedback",
  "habit_score": {
    "protein": "missing" | "partial" | "ok",
    "plants": "missing" | "partial" | "ok",
    "liquid_calories": "unknown" | "low" | "medium" | "high",
    "snacks": "unknown" | "low" | "medium" | "high",
    "timing": "unknown" | "ok" | "needs_attention"
  },
  "feedback_short": string (max 300 characters),
  "one_action": string (max 120 characters),
  "confidence": "low" | "medium" | "high",
  "flags": {
    "needs_clarification": boolean,
    "safety_escalation": boolean,
    "flag_reasons": optional array of up to 5 strings (max 80 characters each)
  },
  "assumptions": array of up to 6 strings (max 120 characters each), may be empty,
  "optional_question": optional string (max 120 characters)
}

Set "safety_escalation" to true when the check-in suggests disordered eating, self-harm or a medical issue that needs a professional, and explain why in "flag_reasons".`

const taskContent = `TASK:
Assess today's check-in against the goal. Categorize every habit_score dimension from the information given, write "feedback_short" in the requested tone, and give exactly one concrete action for the next meal in "one_action".`

const rulesContent = `STRICT OUTPUT RULES:
- Return valid JSON only.
- Do not add, remove or rename fields.
- Respect every length limit.
- If you are uncertain, record what you assumed in "assumptions" and lower "confidence".`

const retryContent = `Your previous reply did not match the required JSON schema. Reply again with one JSON object that conforms exactly to the schema in the system message: same field names, allowed values only, all length limits respected, no extra fields. Keep your assessment the same and change content only where needed to conform.`

// System returns the fixed system message content.
func System() string { return systemContent }

// RetryInstruction is appended to the original messages when the first
// reply fails validation.
func RetryInstruction() completion.Message {
	return completion.Message{Role: completion.RoleUser, Content: retryContent}
}

// Messages returns the system and user messages for in.
func Messages(in Input) []completion.Message {
	return []completion.Message{
		{Role: completion.RoleSystem, Content: System()},
		{Role: completion.RoleUser, Content: User(in)},
	}
}

// User builds the user message: goal, preferences, recent context, today's
// data, task and output rules, in that order. Empty optional sections are
// omitted entirely.
func User(in Input) string {
	sections := []string{goalSection(in.User)}
	if s := preferencesSection(in.User); s != "" {
		sections = append(sections, s)
	}
	if s := recentSection(in.Recent); s != "" {
		sections = append(sections, s)
	}
	sections = append(sections, todaySection(in.CheckIn), taskContent, rulesContent)
	return strings.Join(sections, "\n\n")
}

func goalSection(u *domain.User) string {
	var b strings.Builder
	b.WriteString("GOAL:\n")
	if u == nil || u.Goal == nil {
		b.WriteString("General nutrition habits (no specific goal selected).")
		return b.String()
	}
	fmt.Fprintf(&b, "%s: %s", u.Goal.Name, strings.TrimSpace(u.Goal.Description))
	if c := canonicalJSON(u.Goal.Constraints); c != "" {
		fmt.Fprintf(&b, "\nConstraints: %s", c)
	}
	return b.String()
}

func preferencesSection(u *domain.User) string {
	if u == nil {
		return ""
	}
	p := u.Preferences.Data()

	var lines []string
	if p.Tone != "" {
		lines = append(lines, "- Tone: "+string(p.Tone))
	}
	var diet []string
	if p.Vegetarian {
		diet = append(diet, "vegetarian")
	}
	if p.Vegan {
		diet = append(diet, "vegan")
	}
	if len(diet) > 0 {
		lines = append(lines, "- Diet: "+strings.Join(diet, ", "))
	}
	if len(p.Allergies) > 0 {
		lines = append(lines, "- Allergies: "+strings.Join(p.Allergies, ", "))
	}
	if p.NoCalorieEstimates {
		lines = append(lines, "- Do not mention calorie estimates.")
	}
	if len(lines) == 0 {
		return ""
	}
	return "PREFERENCES:\n" + strings.Join(lines, "\n")
}

func recentSection(recent []domain.CheckIn) string {
	if len(recent) == 0 {
		return ""
	}
	if len(recent) > MaxRecent {
		recent = recent[:MaxRecent]
	}
	lines := make([]string, 0, len(recent))
	for _, c := range recent {
		fb := "no feedback"
		if c.AIResult != nil && strings.TrimSpace(c.AIResult.FeedbackShort) != "" {
			fb = truncate(strings.TrimSpace(c.AIResult.FeedbackShort), recentFeedbackRunes)
		}
		lines = append(lines, fmt.Sprintf("- %s (%s): %s", c.Date, c.MealType, fb))
	}
	return "RECENT CHECK-INS:\n" + strings.Join(lines, "\n")
}

func todaySection(c *domain.CheckIn) string {
	var b strings.Builder
	b.WriteString("TODAY'S CHECK-IN:\n")
	if c == nil {
		b.WriteString("No check-in data.")
		return b.String()
	}
	fmt.Fprintf(&b, "Date: %s\n", c.Date)
	fmt.Fprintf(&b, "Meal: %s\n", c.MealType)
	fmt.Fprintf(&b, "Photos: %d photos provided\n", len(c.Photos))

	answers := answerLines(c.Answers)
	if len(answers) == 0 {
		b.WriteString("Answers: None\n")
	} else {
		b.WriteString("Answers:\n")
		for _, a := range answers {
			b.WriteString("- " + a + "\n")
		}
	}

	if c.Notes != nil && strings.TrimSpace(*c.Notes) != "" {
		fmt.Fprintf(&b, "Notes: %q", strings.TrimSpace(*c.Notes))
	} else {
		b.WriteString("Notes: None")
	}
	return b.String()
}

func answerLines(a *domain.CheckInAnswers) []string {
	if a == nil {
		return nil
	}
	var out []string
	add := func(label string, v *string) {
		if v != nil && *v != "" {
			out = append(out, label+": "+*v)
		}
	}
	add("Drinks with calories", a.DrinksCalories)
	add("Alcohol", a.Alcohol)
	add("Snacks", a.Snacks)
	add("Cooking tastes good", a.CookingTastes)
	add("Supplements", a.Supplements)
	add("Missed meals", a.MissedMeals)
	if a.HungerLevel != nil {
		out = append(out, fmt.Sprintf("Hunger level: %d/5", *a.HungerLevel))
	}
	if a.StressLevel != nil {
		out = append(out, fmt.Sprintf("Stress level: %d/5", *a.StressLevel))
	}
	return out
}

// canonicalJSON re-encodes raw so object keys are sorted.
func canonicalJSON(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil || v == nil {
		return ""
	}
	out, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(out)
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + "…"
}
