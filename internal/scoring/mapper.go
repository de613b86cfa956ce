// Package scoring converts the categorical habit_score emitted by the model
// into the numeric 0..10 HabitScore stored on results, and derives the
// overall percentage and badge shown to users.
package scoring

import (
	"math"

	"github.com/tbourn/go-habit-backend/internal/domain"
	"github.com/tbourn/go-habit-backend/internal/schema"
)

// ToNumber maps a category to its base value. Unknown values map to 5.
func ToNumber(category string) int {
	switch category {
	case "ok", "low":
		return 8
	case "partial", "medium":
		return 5
	case "missing", "high":
		return 2
	default:
		return 5
	}
}

// Map converts a validated habit_score. Liquids and snacks are inverted so
// that a higher number is always the better habit. A nil input maps every
// field as unrecognized.
func Map(hs *schema.HabitScore) domain.HabitScore {
	if hs == nil {
		hs = &schema.HabitScore{}
	}
	return domain.HabitScore{
		Protein:  ToNumber(schema.Value(hs.Protein)),
		Plants:   ToNumber(schema.Value(hs.Plants)),
		Liquids:  10 - ToNumber(schema.Value(hs.LiquidCalories)),
		Snacks:   10 - ToNumber(schema.Value(hs.Snacks)),
		Training: training(schema.Value(hs.Timing)),
	}
}

func training(timing string) int {
	switch timing {
	case "ok":
		return 8
	case "needs_attention":
		return 3
	default:
		return 5
	}
}

// Overall returns the score as a rounded percentage of the 50-point maximum.
func Overall(s domain.HabitScore) int {
	sum := s.Protein + s.Plants + s.Liquids + s.Snacks + s.Training
	return int(math.Round(float64(sum) / 50 * 100))
}

// Badge labels an overall percentage.
func Badge(overall int) string {
	switch {
	case overall >= 80:
		return "Excellent"
	case overall >= 60:
		return "Good"
	case overall >= 40:
		return "Fair"
	default:
		return "Needs Work"
	}
}
