// Package services – AnalysisService
//
// AnalysisService is the persistence-facing side of the analysis pipeline.
// For one check-in it returns the stored result when there is one; otherwise
// it takes one unit of the daily analysis quota, runs the Analyzer with the
// user's recent history, and stores the outcome. The unique index on
// ai_results.check_in_id decides concurrent duplicate runs: the first write
// wins and every caller gets that row back.
package services

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-habit-backend/internal/domain"
	"github.com/tbourn/go-habit-backend/internal/prompt"
	"github.com/tbourn/go-habit-backend/internal/repo"
	"github.com/tbourn/go-habit-backend/internal/scoring"
)

// CheckInAnalyzer runs the analysis pipeline for one check-in.
type CheckInAnalyzer interface {
	Analyze(ctx context.Context, in prompt.Input) (AnalysisResult, error)
}

// Analysis is a stored result plus the values derived from it.
type Analysis struct {
	Result       *domain.AIResult
	Created      bool
	OverallScore int
	Badge        string
}

func newAnalysis(r *domain.AIResult, created bool) *Analysis {
	overall := scoring.Overall(r.HabitScore)
	return &Analysis{
		Result:       r,
		Created:      created,
		OverallScore: overall,
		Badge:        scoring.Badge(overall),
	}
}

// AnalysisService implements POST /analyze.
type AnalysisService struct {
	DB       *gorm.DB
	Analyzer CheckInAnalyzer
	Quota    *QuotaService
	// Model is recorded on results that involved a completion call.
	Model string
}

// Analyze returns the analysis of checkInID for user, running the pipeline
// only when no result is stored yet.
func (s *AnalysisService) Analyze(ctx context.Context, user *domain.User, checkInID string) (*Analysis, error) {
	if user == nil {
		return nil, ErrUserRequired
	}
	tr := otel.Tracer("services/AnalysisService")
	ctx, span := tr.Start(ctx, "Analyze",
		trace.WithAttributes(
			attribute.String("user.id", user.ID),
			attribute.String("checkin.id", checkInID),
		),
	)
	defer span.End()

	ci, err := repo.GetCheckIn(ctx, s.DB, checkInID, user.ID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCheckInNotFound
		}
		return nil, err
	}
	if ci.AIResult != nil {
		span.SetAttributes(attribute.Bool("analysis.cached", true))
		return newAnalysis(ci.AIResult, false), nil
	}

	if s.Quota != nil {
		if _, err := s.Quota.Consume(ctx, user.ID, ActionAnalyze); err != nil {
			return nil, err
		}
	}

	recent, err := repo.RecentCheckIns(ctx, s.DB, user.ID, ci, prompt.MaxRecent)
	if err != nil {
		return nil, err
	}

	res, err := s.Analyzer.Analyze(ctx, prompt.Input{CheckIn: ci, User: user, Recent: recent})
	if err != nil {
		return nil, err
	}

	saved, err := repo.SaveResult(ctx, s.DB, res.ToDomain(ci.ID, s.Model))
	if errors.Is(err, repo.ErrDuplicate) && saved != nil {
		loggerFrom(ctx).Info().Str("checkin_id", ci.ID).Msg("concurrent analysis lost the write; returning stored result")
		return newAnalysis(saved, false), nil
	}
	if err != nil {
		return nil, err
	}
	return newAnalysis(saved, true), nil
}
