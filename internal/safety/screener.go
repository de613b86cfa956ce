// Package safety screens free-text user input for crisis, eating-disorder
// and medical-advice signals before any model is consulted.
//
// Matching is a case-insensitive substring search over three fixed keyword
// lists evaluated in priority order (self-harm, eating disorder, medical).
// The first list that matches decides the category; flags never accumulate.
package safety

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Category is the classification produced by Check.
type Category string

const (
	CategorySafe           Category = "safe"
	CategoryEatingDisorder Category = "eating_disorder"
	CategoryMedical        Category = "medical"
	CategorySelfHarm       Category = "self_harm"

	// Reserved; no keyword list produces them.
	CategoryMinor         Category = "minor"
	CategoryUnsafeContent Category = "unsafe_content"
)

// Result is the outcome of screening one piece of text.
type Result struct {
	Category            Category
	IsSafe              bool
	ShouldBlockResponse bool
	// Message is the fixed resource/disclaimer text for the category, empty
	// when nothing matched.
	Message string
}

var (
	selfHarmKeywords = []string{
		"kill myself",
		"suicide",
		"self harm",
		"cut myself",
		"end it all",
		"want to die",
		"hurt myself",
	}

	eatingDisorderKeywords = []string{
		"purge",
		"purging",
		"binge",
		"restrict",
		"starve",
		"starving",
		"anorexia",
		"bulimia",
		"throw up",
		"vomit",
		"laxative",
		"not eating",
		"stop eating",
		"hate my body",
		"too fat",
	}

	medicalKeywords = []string{
		"medication",
		"prescription",
		"diabetes",
		"insulin",
		"blood pressure",
		"heart",
		"kidney",
		"liver",
		"cancer",
		"disease",
		"diagnose",
		"doctor",
	}
)

// Fixed user-facing texts. These are shown verbatim and never generated.
const (
	CrisisResourcesMessage = "⚠️ If you're in crisis, please contact:\n" +
		"- National Suicide Prevention Lifeline: 988\n" +
		"- Crisis Text Line: Text HOME to 741741\n" +
		"- Emergency Services: 911"

	EatingDisorderResourcesMessage = "⚠️ I notice you may be experiencing disordered eating patterns. " +
		"This app is not designed to treat eating disorders. Please consider reaching out to:\n" +
		"- National Eating Disorders Association (NEDA): 1-800-931-2237\n" +
		"- NEDA Crisis Text Line: Text \"NEDA\" to 741741\n" +
		"- A qualified healthcare professional"

	MedicalDisclaimer = "💡 This app provides general habit guidance only, not medical advice. " +
		"Please consult your healthcare provider for medical questions."

	// ReferralAction is the one-action text of every blocked result.
	ReferralAction = "Please seek support from a qualified professional."
)

// Check classifies text. Empty input is always safe.
func Check(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Category: CategorySafe, IsSafe: true}
	}
	folded := fold(text)

	switch {
	case containsAny(folded, selfHarmKeywords):
		return Result{
			Category:            CategorySelfHarm,
			ShouldBlockResponse: true,
			Message:             CrisisResourcesMessage,
		}
	case containsAny(folded, eatingDisorderKeywords):
		return Result{
			Category:            CategoryEatingDisorder,
			ShouldBlockResponse: true,
			Message:             EatingDisorderResourcesMessage,
		}
	case containsAny(folded, medicalKeywords):
		return Result{
			Category: CategoryMedical,
			IsSafe:   true,
			Message:  MedicalDisclaimer,
		}
	}
	return Result{Category: CategorySafe, IsSafe: true}
}

// SafeResponse returns the fixed feedback text used in place of model output
// for the given category.
func SafeResponse(c Category) string {
	switch c {
	case CategoryEatingDisorder:
		return "I'm designed to support healthy habit building, not treat eating disorders. " +
			"Your wellbeing is important—please reach out to a qualified professional who can provide appropriate support."
	case CategoryMedical:
		return "I can share general nutrition guidance, but I can't provide medical advice. " +
			"Please consult your healthcare provider for any medical concerns or medication questions."
	case CategorySelfHarm:
		return "Your safety matters. Please reach out to a crisis counselor who can help: call 988 or text HOME to 741741."
	case CategoryMinor:
		return "This service is designed for adults 18+. Please work with a parent, guardian, or healthcare provider for nutrition guidance."
	default:
		return "I'm here to support healthy habits. If you have concerns about your health, please consult a qualified healthcare professional."
	}
}

// IsMinor reports whether an age is below the service minimum of 18.
func IsMinor(age int) bool { return age < 18 }

// fold normalizes width/compatibility forms and case so that "SUICIDE" or
// full-width letters match the ASCII keyword lists. A Caser is not safe for
// concurrent use, so one is created per call.
func fold(s string) string {
	return cases.Fold().String(norm.NFKC.String(s))
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
