package prompt

import (
	"fmt"
	"strings"

	"github.com/tbourn/go-habit-backend/internal/completion"
	"github.com/tbourn/go-habit-backend/internal/domain"
)

const weeklySystemContent = `You are a nutrition habit coach writing a weekly summary. Be encouraging and specific. Respond with a single JSON object with exactly these string fields: "summary" (2-3 sentences about the week), "pattern" (one key pattern you noticed), "nextWeekFocus" (one specific focus for next week). No prose outside the JSON.`

// WeeklyMessages builds the weekly summary prompt for the given ISO week.
// checkIns are rendered in the order given.
func WeeklyMessages(weekKey string, u *domain.User, checkIns []domain.CheckIn) []completion.Message {
	var b strings.Builder
	b.WriteString(goalSection(u))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "CHECK-INS FOR %s:\n", weekKey)
	if len(checkIns) == 0 {
		b.WriteString("None")
	}
	for i, c := range checkIns {
		if i > 0 {
			b.WriteString("\n")
		}
		score := "N/A"
		if c.AIResult != nil {
			s := c.AIResult.HabitScore
			score = fmt.Sprintf("protein %d, plants %d, liquids %d, snacks %d, training %d",
				s.Protein, s.Plants, s.Liquids, s.Snacks, s.Training)
		}
		fmt.Fprintf(&b, "- %s (%s): %s", c.Date, c.MealType, score)
	}
	return []completion.Message{
		{Role: completion.RoleSystem, Content: weeklySystemContent},
		{Role: completion.RoleUser, Content: b.String()},
	}
}
