// Package services – WeeklySummaryService
//
// WeeklySummaryService produces the pro-only narrative for one ISO week
// (Monday..Sunday). A summary is generated at most once per (user, week):
// later requests get the stored row. Model failures still store a summary
// built from fixed texts so the week is not billed twice.
package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-habit-backend/internal/completion"
	"github.com/tbourn/go-habit-backend/internal/domain"
	"github.com/tbourn/go-habit-backend/internal/prompt"
	"github.com/tbourn/go-habit-backend/internal/repo"
)

var weekKeyRE = regexp.MustCompile(`^\d{4}-W\d{2}$`)

// Fixed weekly texts.
var (
	upgradeSummary = domain.WeeklySummary{
		Summary:       "Weekly summaries are available with Pro subscription.",
		Pattern:       "Upgrade to unlock pattern analysis.",
		NextWeekFocus: "Get personalized weekly insights with Pro.",
	}
	fallbackSummary = domain.WeeklySummary{
		Summary:       "Thanks for checking in this week!",
		Pattern:       "Building consistency is key.",
		NextWeekFocus: "Keep up the momentum next week.",
	}
	defaultSummary = domain.WeeklySummary{
		Summary:       "Great work this week!",
		Pattern:       "Keep building consistency.",
		NextWeekFocus: "Focus on one habit at a time.",
	}
)

// WeekKey formats the ISO week containing t as YYYY-Www.
func WeekKey(t time.Time) string {
	y, w := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", y, w)
}

// PreviousWeekKey returns the key of the ISO week before the one containing t.
func PreviousWeekKey(t time.Time) string {
	return WeekKey(t.AddDate(0, 0, -7))
}

// WeekRange returns the Monday and Sunday of an ISO week key.
func WeekRange(weekKey string) (monday, sunday time.Time, err error) {
	if !weekKeyRE.MatchString(weekKey) {
		return time.Time{}, time.Time{}, ErrInvalidWeekKey
	}
	year, _ := strconv.Atoi(weekKey[:4])
	week, _ := strconv.Atoi(weekKey[6:])
	if week < 1 || week > 53 {
		return time.Time{}, time.Time{}, ErrInvalidWeekKey
	}

	// January 4th is always in week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday = jan4.AddDate(0, 0, -offset+(week-1)*7)

	if y, w := monday.ISOWeek(); y != year || w != week {
		return time.Time{}, time.Time{}, ErrInvalidWeekKey
	}
	return monday, monday.AddDate(0, 0, 6), nil
}

// WeeklySummaryService implements weekly summary generation and listing.
type WeeklySummaryService struct {
	DB          *gorm.DB
	Client      completion.Client
	Model       string
	Temperature float32
	MaxTokens   int
}

// Generate returns the summary of weekKey for user. created reports whether
// a new row was stored. Free users get the upgrade summary, which is never
// stored.
func (s *WeeklySummaryService) Generate(ctx context.Context, user *domain.User, weekKey string) (ws *domain.WeeklySummary, created bool, err error) {
	if user == nil {
		return nil, false, ErrUserRequired
	}
	monday, sunday, err := WeekRange(weekKey)
	if err != nil {
		return nil, false, err
	}

	tr := otel.Tracer("services/WeeklySummaryService")
	ctx, span := tr.Start(ctx, "Generate",
		trace.WithAttributes(
			attribute.String("user.id", user.ID),
			attribute.String("week.key", weekKey),
		),
	)
	defer span.End()

	if !user.IsPro() {
		out := upgradeSummary
		out.UserID = user.ID
		out.WeekKey = weekKey
		return &out, false, nil
	}

	existing, err := repo.GetWeeklySummary(ctx, s.DB, user.ID, weekKey)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, false, err
	}

	checkIns, err := repo.CheckInsBetween(ctx, s.DB, user.ID, monday.Format(dayLayout), sunday.Format(dayLayout))
	if err != nil {
		return nil, false, err
	}
	if len(checkIns) == 0 {
		return nil, false, ErrNoCheckInsForWeek
	}

	out := s.summarize(ctx, user, weekKey, checkIns)
	out.UserID = user.ID
	out.WeekKey = weekKey

	saved, err := repo.SaveWeeklySummary(ctx, s.DB, &out)
	if errors.Is(err, repo.ErrDuplicate) && saved != nil {
		return saved, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return saved, true, nil
}

// List returns up to limit summaries, newest week first. limit defaults to
// 12 and is capped at 52.
func (s *WeeklySummaryService) List(ctx context.Context, userID string, limit int) ([]domain.WeeklySummary, error) {
	if limit <= 0 {
		limit = 12
	}
	if limit > 52 {
		limit = 52
	}
	return repo.ListWeeklySummaries(ctx, s.DB, userID, limit)
}

// Stats returns the number of stored summaries and the newest creation time,
// for conditional listing.
func (s *WeeklySummaryService) Stats(ctx context.Context, userID string) (int64, *time.Time, error) {
	return repo.WeeklySummariesStats(ctx, s.DB, userID)
}

// GenerateForAllPro generates weekKey for every pro user and returns how
// many summaries were created. A failing user is logged and skipped.
func (s *WeeklySummaryService) GenerateForAllPro(ctx context.Context, weekKey string) (int, error) {
	ids, err := repo.ListProUserIDs(ctx, s.DB)
	if err != nil {
		return 0, err
	}
	lg := loggerFrom(ctx)
	n := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		u, err := repo.GetUser(ctx, s.DB, id)
		if err != nil {
			lg.Error().Err(err).Str("user_id", id).Msg("weekly summary: load user")
			continue
		}
		_, created, err := s.Generate(ctx, u, weekKey)
		switch {
		case errors.Is(err, ErrNoCheckInsForWeek):
		case err != nil:
			lg.Error().Err(err).Str("user_id", id).Str("week", weekKey).Msg("weekly summary failed")
		case created:
			n++
		}
	}
	return n, nil
}

// summarize asks the model for the three summary fields. Missing fields take
// the default texts; a failed call yields the fallback summary.
func (s *WeeklySummaryService) summarize(ctx context.Context, user *domain.User, weekKey string, checkIns []domain.CheckIn) domain.WeeklySummary {
	client := s.Client
	if client == nil {
		client = completion.Disabled{}
	}
	model := s.Model
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	maxTokens := s.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 500
	}

	raw, err := completion.CompleteJSON(ctx, client, completion.Request{
		Messages:    prompt.WeeklyMessages(weekKey, user, checkIns),
		Model:       model,
		Temperature: s.Temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		loggerFrom(ctx).Error().Err(err).Str("week", weekKey).Msg("weekly summary completion failed")
		return fallbackSummary
	}

	return domain.WeeklySummary{
		Summary:       stringField(raw, "summary", defaultSummary.Summary),
		Pattern:       stringField(raw, "pattern", defaultSummary.Pattern),
		NextWeekFocus: stringField(raw, "nextWeekFocus", defaultSummary.NextWeekFocus),
	}
}

func stringField(m map[string]any, key, def string) string {
	if v, ok := m[key].(string); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}
