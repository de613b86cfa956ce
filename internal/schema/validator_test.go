package schema

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return v
}

const validFeedback = `{
	"type": "checkin_feedback",
	"habit_score": {"protein":"ok","plants":"partial","liquid_calories":"low","snacks":"high","timing":"needs_attention"},
	"feedback_short": "Solid protein, add some greens.",
	"one_action": "Add a side salad at dinner.",
	"confidence": "medium",
	"flags": {"needs_clarification": false, "safety_escalation": false},
	"assumptions": []
}`

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T (%v)", err, err)
	}
	out := map[string]string{}
	for _, f := range ve.Fields {
		out[f.Path] = f.Reason
	}
	return out
}

func TestValidateCheckinFeedback_OK(t *testing.T) {
	got, err := ValidateCheckinFeedback(decode(t, validFeedback))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if Value(got.HabitScore.Protein) != "ok" || Value(got.Confidence) != "medium" {
		t.Fatalf("unexpected decode: %+v", got)
	}
	if got.Assumptions == nil || len(got.Assumptions) != 0 {
		t.Fatalf("assumptions should be empty, non-nil")
	}
	if got.OptionalQuestion != nil {
		t.Fatalf("optional_question should be absent")
	}
	if *got.Flags.SafetyEscalation {
		t.Fatalf("safety_escalation should be false")
	}
}

func TestValidateCheckinFeedback_OptionalFields(t *testing.T) {
	v := decode(t, validFeedback).(map[string]any)
	v["optional_question"] = "Did you drink water?"
	v["flags"] = map[string]any{"needs_clarification": true, "safety_escalation": true, "flag_reasons": []any{"mentions fasting"}}
	v["assumptions"] = []any{"portion was medium"}

	got, err := ValidateCheckinFeedback(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if Value(got.OptionalQuestion) == "" || len(got.Flags.FlagReasons) != 1 || len(got.Assumptions) != 1 {
		t.Fatalf("optional fields lost: %+v", got)
	}
}

func TestValidateCheckinFeedback_StrictTopLevel(t *testing.T) {
	v := decode(t, validFeedback).(map[string]any)
	v["extra"] = "nope"
	_, err := ValidateCheckinFeedback(v)
	f := fieldsOf(t, err)
	if f["extra"] != "unrecognized key" {
		t.Fatalf("expected unrecognized key for extra, got %v", f)
	}
}

func TestValidateCheckinFeedback_StrictNested(t *testing.T) {
	v := decode(t, validFeedback).(map[string]any)
	v["habit_score"].(map[string]any)["fiber"] = "ok"
	_, err := ValidateCheckinFeedback(v)
	f := fieldsOf(t, err)
	if f["habit_score.fiber"] != "unrecognized key" {
		t.Fatalf("expected nested unrecognized key, got %v", f)
	}
}

func TestValidateCheckinFeedback_EnumerateAllViolations(t *testing.T) {
	v := decode(t, validFeedback).(map[string]any)
	v["type"] = "decision_coach"
	v["feedback_short"] = strings.Repeat("x", 301)
	v["one_action"] = strings.Repeat("y", 121)
	v["confidence"] = "very"
	v["habit_score"].(map[string]any)["protein"] = "lots"
	v["assumptions"] = []any{"a", "b", "c", "d", "e", "f", "g"}
	delete(v, "flags")

	_, err := ValidateCheckinFeedback(v)
	f := fieldsOf(t, err)

	want := map[string]string{
		"type":                `must equal "checkin_feedback"`,
		"feedback_short":      "must be at most 300 characters",
		"one_action":          "must be at most 120 characters",
		"confidence":          "must be one of: low, medium, high",
		"habit_score.protein": "must be one of: missing, partial, ok",
		"assumptions":         "must contain at most 6 items",
		"flags":               "required",
	}
	for path, reason := range want {
		if f[path] != reason {
			t.Errorf("%s: got %q; want %q", path, f[path], reason)
		}
	}

	msg := err.Error()
	if !strings.HasPrefix(msg, "checkin_feedback: ") || !strings.Contains(msg, "flags: required") || !strings.Contains(msg, ", ") {
		t.Fatalf("diagnostic not joined as expected: %s", msg)
	}
}

func TestValidateCheckinFeedback_TypeMismatch(t *testing.T) {
	v := decode(t, validFeedback).(map[string]any)
	v["flags"] = map[string]any{"needs_clarification": "no", "safety_escalation": false}
	v["assumptions"] = "none"

	_, err := ValidateCheckinFeedback(v)
	f := fieldsOf(t, err)
	if f["flags.needs_clarification"] != "expected boolean, received string" {
		t.Fatalf("flags.needs_clarification: %q", f["flags.needs_clarification"])
	}
	if f["assumptions"] != "expected array, received string" {
		t.Fatalf("assumptions: %q", f["assumptions"])
	}
}

func TestValidateCheckinFeedback_NullIsNotOmitted(t *testing.T) {
	v := decode(t, validFeedback).(map[string]any)
	v["optional_question"] = nil
	v["one_action"] = nil
	v["flags"] = map[string]any{"needs_clarification": false, "safety_escalation": false, "flag_reasons": nil}

	_, err := ValidateCheckinFeedback(v)
	f := fieldsOf(t, err)
	for path, reason := range map[string]string{
		"optional_question":  "expected string, received null",
		"one_action":         "expected string, received null",
		"flags.flag_reasons": "expected array, received null",
	} {
		if f[path] != reason {
			t.Errorf("%s: got %q; want %q (all: %v)", path, f[path], reason, f)
		}
	}

	// omitting the same optional keys is fine
	v = decode(t, validFeedback).(map[string]any)
	delete(v, "optional_question")
	if _, err := ValidateCheckinFeedback(v); err != nil {
		t.Fatalf("omitted optional key: %v", err)
	}
}

func TestValidateCheckinFeedback_ElementLength(t *testing.T) {
	v := decode(t, validFeedback).(map[string]any)
	v["assumptions"] = []any{"fine", strings.Repeat("z", 121)}
	v["flags"] = map[string]any{
		"needs_clarification": false, "safety_escalation": false,
		"flag_reasons": []any{strings.Repeat("r", 81)},
	}
	_, err := ValidateCheckinFeedback(v)
	f := fieldsOf(t, err)
	if f["assumptions.1"] != "must be at most 120 characters" {
		t.Fatalf("assumptions.1: %q (all: %v)", f["assumptions.1"], f)
	}
	if f["flags.flag_reasons.0"] != "must be at most 80 characters" {
		t.Fatalf("flags.flag_reasons.0: %q (all: %v)", f["flags.flag_reasons.0"], f)
	}
}

func TestValidateCheckinFeedback_MaxLengthCountsCharacters(t *testing.T) {
	v := decode(t, validFeedback).(map[string]any)
	v["one_action"] = strings.Repeat("é", 120) // 240 bytes, 120 characters
	if _, err := ValidateCheckinFeedback(v); err != nil {
		t.Fatalf("120 multibyte characters must pass: %v", err)
	}
}

func TestValidateCheckinFeedback_NotAnObject(t *testing.T) {
	for _, in := range []any{nil, "text", []any{}, float64(3)} {
		if _, err := ValidateCheckinFeedback(in); err == nil {
			t.Fatalf("expected error for %v", in)
		}
	}
	_, err := ValidateCheckinFeedback(map[string]any{})
	f := fieldsOf(t, err)
	for _, p := range []string{"type", "habit_score", "feedback_short", "one_action", "confidence", "flags", "assumptions"} {
		if f[p] != "required" {
			t.Errorf("%s should be required, got %q", p, f[p])
		}
	}
}

const validCoach = `{
	"type": "decision_coach",
	"recommended": {"title": "Greek yogurt bowl", "steps": ["Add berries", "Top with nuts"], "drink": "Water"},
	"options": [{"title": "Egg wrap", "steps": ["Scramble eggs"]}],
	"fallback": "Grab a piece of fruit.",
	"why_short": "Protein keeps you full.",
	"confidence": "high",
	"assumptions": ["no dairy allergy"],
	"flags": {"needs_clarification": false, "safety_escalation": false}
}`

func TestValidateDecisionCoach(t *testing.T) {
	got, err := ValidateDecisionCoach(decode(t, validCoach))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if Value(got.Recommended.Drink) != "Water" || len(got.Options) != 1 {
		t.Fatalf("unexpected decode: %+v", got)
	}

	v := decode(t, validCoach).(map[string]any)
	v["options"] = []any{
		map[string]any{"title": "A", "steps": []any{}},
		map[string]any{"title": "B", "steps": []any{"x"}, "drink": "tea"},
	}
	v["recommended"].(map[string]any)["steps"] = []any{"1", "2", "3", "4", "5"}
	_, err = ValidateDecisionCoach(v)
	f := fieldsOf(t, err)
	if f["options.0.steps"] != "must contain at least 1 items" {
		t.Errorf("options.0.steps: %q", f["options.0.steps"])
	}
	if f["options.1.drink"] != "unrecognized key" {
		t.Errorf("options.1.drink: %q", f["options.1.drink"])
	}
	if f["recommended.steps"] != "must contain at most 4 items" {
		t.Errorf("recommended.steps: %q", f["recommended.steps"])
	}
}

func TestValidateDispatch(t *testing.T) {
	if _, err := Validate(CheckinFeedbackName, decode(t, validFeedback)); err != nil {
		t.Fatalf("checkin_feedback: %v", err)
	}
	if _, err := Validate(DecisionCoachName, decode(t, validCoach)); err != nil {
		t.Fatalf("decision_coach: %v", err)
	}
	if _, err := Validate("weekly", map[string]any{}); !errors.Is(err, ErrUnknownSchema) {
		t.Fatalf("expected ErrUnknownSchema, got %v", err)
	}
	// a valid feedback object is not a valid coach object
	if _, err := Validate(DecisionCoachName, decode(t, validFeedback)); err == nil {
		t.Fatalf("cross-schema validation should fail")
	}
}
