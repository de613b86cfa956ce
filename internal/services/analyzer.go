// Package services – Analyzer
//
// Analyzer is the analysis pipeline for one check-in:
//
//	safety check -> tier gate -> prompt -> completion -> validate
//	  -> (one corrective retry) -> map -> result
//
// It never fails because of the model: transport errors, malformed JSON,
// schema violations after the retry and panics all converge on a fixed
// fallback result. Only missing inputs are reported as errors.
//
// Analyzer holds no per-run state and is safe for concurrent use as long as
// its Client is.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-habit-backend/internal/completion"
	"github.com/tbourn/go-habit-backend/internal/domain"
	"github.com/tbourn/go-habit-backend/internal/prompt"
	"github.com/tbourn/go-habit-backend/internal/safety"
	"github.com/tbourn/go-habit-backend/internal/schema"
	"github.com/tbourn/go-habit-backend/internal/scoring"
)

// Outcome names the terminal state an analysis run reached.
type Outcome string

const (
	OutcomeBlocked        Outcome = "blocked"
	OutcomeTextOnly       Outcome = "text_only"
	OutcomeSuccess        Outcome = "success"
	OutcomeRetriedSuccess Outcome = "retried_success"
	OutcomeFallback       Outcome = "fallback"
)

// Fixed result texts.
const (
	FallbackFeedback = "Thanks for checking in! Keep building your habits."
	FallbackAction   = "Try to include more variety in your next meal."

	UpgradeFeedback = "Thanks for checking in! Upgrade to Pro to get photo-based feedback and personalized insights."
	UpgradeAction   = "Consider tracking more details about your meals for better insights."
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o"

// AnalysisResult is the value produced by one pipeline run.
type AnalysisResult struct {
	HabitScore    domain.HabitScore
	FeedbackShort string
	OneAction     string
	Confidence    domain.Confidence
	Flags         *domain.ResultFlags
	// Notice is the crisis-resources text for blocked runs and the medical
	// disclaimer when notes mention medical topics.
	Notice  string
	Outcome Outcome
	// Calls is the number of completion calls made (0, 1 or 2).
	Calls int
}

// ToDomain converts r into a storable AIResult for checkInID.
func (r AnalysisResult) ToDomain(checkInID, model string) *domain.AIResult {
	out := &domain.AIResult{
		CheckInID:     checkInID,
		HabitScore:    r.HabitScore,
		FeedbackShort: r.FeedbackShort,
		OneAction:     r.OneAction,
		Confidence:    r.Confidence,
		Notice:        r.Notice,
		Outcome:       string(r.Outcome),
	}
	out.SetFlags(r.Flags)
	if r.Calls > 0 {
		out.ModelVersion = model
	}
	return out
}

// Analyzer runs the analysis pipeline against a completion Client.
type Analyzer struct {
	Client      completion.Client
	Model       string
	Temperature float32
	MaxTokens   int
}

// NewAnalyzer returns an Analyzer with the provider defaults applied.
func NewAnalyzer(c completion.Client, model string, temperature float32, maxTokens int) *Analyzer {
	if c == nil {
		c = completion.Disabled{}
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = 800
	}
	return &Analyzer{Client: c, Model: model, Temperature: temperature, MaxTokens: maxTokens}
}

// Analyze runs the pipeline for in. It returns an error only when the user
// or check-in is missing; every model-side failure yields the fallback.
func (a *Analyzer) Analyze(ctx context.Context, in prompt.Input) (res AnalysisResult, err error) {
	if in.User == nil {
		return AnalysisResult{}, ErrUserRequired
	}
	if in.CheckIn == nil {
		return AnalysisResult{}, ErrCheckInRequired
	}

	tr := otel.Tracer("services/Analyzer")
	ctx, span := tr.Start(ctx, "Analyze",
		trace.WithAttributes(
			attribute.String("checkin.id", in.CheckIn.ID),
			attribute.String("user.id", in.User.ID),
			attribute.Int("checkin.photos", len(in.CheckIn.Photos)),
		),
	)
	defer span.End()

	lg := loggerFrom(ctx).With().Str("checkin_id", in.CheckIn.ID).Logger()

	// read by the recover below, so a panic keeps the medical notice
	var notice string
	defer func() {
		if rec := recover(); rec != nil {
			lg.Error().Interface("panic", rec).Msg("analysis panicked; using fallback")
			res = fallbackResult(notice, res.Calls)
			err = nil
		}
		span.SetAttributes(
			attribute.String("analysis.outcome", string(res.Outcome)),
			attribute.Int("analysis.calls", res.Calls),
		)
		analysisOutcomes.WithLabelValues(string(res.Outcome)).Inc()
		lg.Info().Str("outcome", string(res.Outcome)).Int("calls", res.Calls).Msg("analysis finished")
	}()

	// safety_check
	if in.CheckIn.Notes != nil {
		sc := safety.Check(*in.CheckIn.Notes)
		if sc.ShouldBlockResponse {
			return blockedResult(sc), nil
		}
		if sc.Category == safety.CategoryMedical {
			notice = sc.Message
		}
	}

	// tier_gate
	if len(in.CheckIn.Photos) > 0 && !in.User.IsPro() {
		r := textOnlyResult()
		r.Notice = notice
		return r, nil
	}

	// prompt_build -> first_attempt -> validate
	msgs := prompt.Messages(in)
	res.Calls = 1
	fb, verr, cerr := a.attempt(ctx, msgs, "first")
	if cerr != nil {
		lg.Error().Err(cerr).Msg("completion failed")
		return fallbackResult(notice, res.Calls), nil
	}
	if verr == nil {
		return successResult(fb, notice, OutcomeSuccess, res.Calls), nil
	}
	lg.Warn().Str("diagnostic", verr.Error()).Msg("response failed validation; retrying")

	// retry_attempt -> validate_retry
	retry := append(append(make([]completion.Message, 0, len(msgs)+1), msgs...), prompt.RetryInstruction())
	res.Calls = 2
	fb, verr, cerr = a.attempt(ctx, retry, "retry")
	if cerr != nil {
		lg.Error().Err(cerr).Msg("completion retry failed")
		return fallbackResult(notice, res.Calls), nil
	}
	if verr != nil {
		lg.Warn().Str("diagnostic", verr.Error()).Msg("retry failed validation; using fallback")
		return fallbackResult(notice, res.Calls), nil
	}
	return successResult(fb, notice, OutcomeRetriedSuccess, res.Calls), nil
}

// attempt performs one completion call and validates the reply. cerr is a
// transport failure; verr is a schema failure.
func (a *Analyzer) attempt(ctx context.Context, msgs []completion.Message, label string) (fb *schema.CheckinFeedback, verr, cerr error) {
	raw, err := completion.CompleteJSON(ctx, a.Client, completion.Request{
		Messages:    msgs,
		Model:       a.Model,
		Temperature: a.Temperature,
		MaxTokens:   a.MaxTokens,
	})
	if err != nil {
		completionCalls.WithLabelValues("error").Inc()
		return nil, nil, err
	}
	completionCalls.WithLabelValues("ok").Inc()

	fb, err = schema.ValidateCheckinFeedback(raw)
	if err != nil {
		validationFailures.WithLabelValues(string(schema.CheckinFeedbackName), label).Inc()
		var ve *schema.ValidationError
		if !errors.As(err, &ve) {
			err = fmt.Errorf("validate %s: %w", schema.CheckinFeedbackName, err)
		}
		return nil, err, nil
	}
	return fb, nil, nil
}

func blockedResult(sc safety.Result) AnalysisResult {
	return AnalysisResult{
		HabitScore:    domain.Uniform(0),
		FeedbackShort: safety.SafeResponse(sc.Category),
		OneAction:     safety.ReferralAction,
		Confidence:    domain.ConfidenceHigh,
		Flags: &domain.ResultFlags{
			PossibleED: sc.Category == safety.CategoryEatingDisorder,
			Medical:    sc.Category == safety.CategoryMedical,
			Unsafe:     true,
		},
		Notice:  sc.Message,
		Outcome: OutcomeBlocked,
	}
}

func textOnlyResult() AnalysisResult {
	return AnalysisResult{
		HabitScore:    domain.Uniform(5),
		FeedbackShort: UpgradeFeedback,
		OneAction:     UpgradeAction,
		Confidence:    domain.ConfidenceLow,
		Outcome:       OutcomeTextOnly,
	}
}

func fallbackResult(notice string, calls int) AnalysisResult {
	return AnalysisResult{
		HabitScore:    domain.Uniform(5),
		FeedbackShort: FallbackFeedback,
		OneAction:     FallbackAction,
		Confidence:    domain.ConfidenceLow,
		Notice:        notice,
		Outcome:       OutcomeFallback,
		Calls:         calls,
	}
}

// successResult maps a validated response. The single safety_escalation
// boolean fans out to all three legacy flags; flag_reasons rides along.
func successResult(fb *schema.CheckinFeedback, notice string, outcome Outcome, calls int) AnalysisResult {
	escalate := fb.Flags != nil && fb.Flags.SafetyEscalation != nil && *fb.Flags.SafetyEscalation
	flags := &domain.ResultFlags{PossibleED: escalate, Medical: escalate, Unsafe: escalate}
	if fb.Flags != nil && len(fb.Flags.FlagReasons) > 0 {
		flags.Reasons = append([]string(nil), fb.Flags.FlagReasons...)
	}
	return AnalysisResult{
		HabitScore:    scoring.Map(fb.HabitScore),
		FeedbackShort: schema.Value(fb.FeedbackShort),
		OneAction:     schema.Value(fb.OneAction),
		Confidence:    normalizeConfidence(schema.Value(fb.Confidence)),
		Flags:         flags,
		Notice:        notice,
		Outcome:       outcome,
		Calls:         calls,
	}
}

func normalizeConfidence(s string) domain.Confidence {
	switch s {
	case "medium":
		return domain.ConfidenceMed
	case "high":
		return domain.ConfidenceHigh
	default:
		return domain.ConfidenceLow
	}
}

// loggerFrom returns the request-scoped logger, or the global one.
func loggerFrom(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}
