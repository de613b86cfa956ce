// Package services – CheckInService
//
// CheckInService owns the meal check-in lifecycle: validated creation under
// the daily quota, ownership-checked reads, tier-windowed history, and the
// limited mutations (notes and answers) allowed after creation.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-habit-backend/internal/domain"
	"github.com/tbourn/go-habit-backend/internal/repo"
)

// MaxPhotos is the number of photos a check-in may carry.
const MaxPhotos = 5

// CheckInInput is the payload accepted by Create.
type CheckInInput struct {
	Date      string          `validate:"required,datetime=2006-01-02"`
	MealType  domain.MealType `validate:"required,oneof=breakfast lunch dinner snack full-day"`
	Notes     *string         `validate:"omitempty,max=2000"`
	PhotoURLs []string        `validate:"max=5,dive,required,max=2048"`
	Answers   *domain.CheckInAnswers
}

// CheckInUpdate carries the mutable fields; nil leaves a field unchanged and
// blank notes clear them.
type CheckInUpdate struct {
	Notes   *string `validate:"omitempty,max=2000"`
	Answers *domain.CheckInAnswers
}

var validate = validator.New()

// CheckInService implements the check-in use cases.
type CheckInService struct {
	DB    *gorm.DB
	Quota *QuotaService

	// HistoryDaysFree and HistoryDaysPro bound how far back List reaches.
	HistoryDaysFree int
	HistoryDaysPro  int

	Now func() time.Time
}

// Create validates in and stores a check-in for user, consuming one unit
// of the daily check-in quota.
func (s *CheckInService) Create(ctx context.Context, user *domain.User, in CheckInInput) (*domain.CheckIn, error) {
	if user == nil {
		return nil, ErrUserRequired
	}
	tr := otel.Tracer("services/CheckInService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(
			attribute.String("user.id", user.ID),
			attribute.Int("checkin.photos", len(in.PhotoURLs)),
		),
	)
	defer span.End()

	in.Notes = trimNotes(in.Notes)
	if err := validate.Struct(in); err != nil {
		return nil, invalidCheckIn(err)
	}

	if s.Quota != nil {
		if _, err := s.Quota.Consume(ctx, user.ID, ActionCheckIn); err != nil {
			return nil, err
		}
	}

	ci := &domain.CheckIn{
		UserID:   user.ID,
		Date:     in.Date,
		MealType: in.MealType,
		Notes:    in.Notes,
		Answers:  in.Answers,
	}
	for _, u := range in.PhotoURLs {
		ci.Photos = append(ci.Photos, domain.CheckInPhoto{URL: strings.TrimSpace(u)})
	}
	if err := repo.CreateCheckIn(ctx, s.DB, ci); err != nil {
		return nil, err
	}
	return ci, nil
}

// Get returns the check-in if it exists and belongs to userID.
func (s *CheckInService) Get(ctx context.Context, userID, id string) (*domain.CheckIn, error) {
	ci, err := repo.GetCheckIn(ctx, s.DB, id, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrCheckInNotFound
	}
	return ci, err
}

// List returns the user's check-ins newest first within the history window
// of their tier. limit is clamped to [1, 30].
func (s *CheckInService) List(ctx context.Context, user *domain.User, limit int) ([]domain.CheckIn, error) {
	if user == nil {
		return nil, ErrUserRequired
	}
	if limit <= 0 || limit > 30 {
		limit = 30
	}
	return repo.ListCheckIns(ctx, s.DB, user.ID, s.historySince(user), limit)
}

// Stats returns the count and latest update time of the check-ins List
// would consider. Handlers derive an ETag from it.
func (s *CheckInService) Stats(ctx context.Context, user *domain.User) (int64, *time.Time, error) {
	if user == nil {
		return 0, nil, ErrUserRequired
	}
	return repo.CheckInsStats(ctx, s.DB, user.ID, s.historySince(user))
}

// Update changes notes and/or answers and returns the reloaded check-in.
func (s *CheckInService) Update(ctx context.Context, userID, id string, upd CheckInUpdate) (*domain.CheckIn, error) {
	if upd.Notes != nil {
		t := strings.TrimSpace(*upd.Notes)
		upd.Notes = &t
	}
	if err := validate.Struct(upd); err != nil {
		return nil, invalidCheckIn(err)
	}
	if err := repo.UpdateCheckIn(ctx, s.DB, id, userID, upd.Notes, upd.Answers); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCheckInNotFound
		}
		return nil, err
	}
	return s.Get(ctx, userID, id)
}

// Delete removes the check-in together with its photos, answers and result.
func (s *CheckInService) Delete(ctx context.Context, userID, id string) error {
	err := repo.DeleteCheckIn(ctx, s.DB, id, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrCheckInNotFound
	}
	return err
}

// historySince returns the first date (YYYY-MM-DD) inside the user's window.
func (s *CheckInService) historySince(user *domain.User) string {
	days := s.HistoryDaysFree
	if user.IsPro() {
		days = s.HistoryDaysPro
	}
	if days <= 0 {
		days = 3
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return now().UTC().AddDate(0, 0, -days).Format(dayLayout)
}

// trimNotes trims whitespace; blank notes become nil.
func trimNotes(n *string) *string {
	if n == nil {
		return nil
	}
	t := strings.TrimSpace(*n)
	if t == "" {
		return nil
	}
	return &t
}

// invalidCheckIn wraps validator output into ErrInvalidCheckIn with a
// readable field list.
func invalidCheckIn(err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return fmt.Errorf("%w: %v", ErrInvalidCheckIn, err)
	}
	parts := make([]string, 0, len(ves))
	for _, fe := range ves {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", field, fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidCheckIn, strings.Join(parts, "; "))
}
