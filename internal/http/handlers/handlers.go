// Package handlers provides HTTP handler implementations for the public API.
//
// Handlers are transport-thin: they bind and check input, call an
// application service, and translate the result (or the service error) into
// an HTTP response. Every endpoint except the billing webhook runs behind
// middleware.Auth, which places the caller in the Gin context.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-habit-backend/internal/billing"
	"github.com/tbourn/go-habit-backend/internal/domain"
	"github.com/tbourn/go-habit-backend/internal/http/middleware"
	"github.com/tbourn/go-habit-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// UserService serves the caller's profile, the goal catalogue and onboarding.
type UserService interface {
	Get(ctx context.Context, id string) (*domain.User, error)
	ListGoals(ctx context.Context) ([]domain.Goal, error)
	Onboard(ctx context.Context, userID string, in services.OnboardingInput) (*domain.User, error)
}

// CheckInService implements check-in CRUD.
type CheckInService interface {
	Create(ctx context.Context, user *domain.User, in services.CheckInInput) (*domain.CheckIn, error)
	Get(ctx context.Context, userID, id string) (*domain.CheckIn, error)
	List(ctx context.Context, user *domain.User, limit int) ([]domain.CheckIn, error)
	Stats(ctx context.Context, user *domain.User) (int64, *time.Time, error)
	Update(ctx context.Context, userID, id string, upd services.CheckInUpdate) (*domain.CheckIn, error)
	Delete(ctx context.Context, userID, id string) error
}

// AnalysisService runs (or returns the stored) analysis of a check-in.
type AnalysisService interface {
	Analyze(ctx context.Context, user *domain.User, checkInID string) (*services.Analysis, error)
}

// WeeklySummaryService generates and lists weekly summaries.
type WeeklySummaryService interface {
	Generate(ctx context.Context, user *domain.User, weekKey string) (*domain.WeeklySummary, bool, error)
	List(ctx context.Context, userID string, limit int) ([]domain.WeeklySummary, error)
	Stats(ctx context.Context, userID string) (int64, *time.Time, error)
}

// UploadService grants presigned photo uploads.
type UploadService interface {
	CreateUploadURL(ctx context.Context, userID, fileType string) (*services.Upload, error)
}

// BillingService handles the payment provider.
type BillingService interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) (billing.Event, error)
	Checkout(ctx context.Context, user *domain.User) (string, error)
	Portal(ctx context.Context, user *domain.User) (string, error)
}

// IdempotencyRecorder records the resource produced under an Idempotency-Key.
type IdempotencyRecorder interface {
	Remember(ctx context.Context, userID, scope, key, resourceID string, status int) error
}

//
// Handler wiring
//

// Deps lists the services behind the handlers.
type Deps struct {
	Users       UserService
	CheckIns    CheckInService
	Analysis    AnalysisService
	Weekly      WeeklySummaryService
	Uploads     UploadService
	Billing     BillingService
	Idempotency IdempotencyRecorder
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	users    UserService
	checkIns CheckInService
	analysis AnalysisService
	weekly   WeeklySummaryService
	uploads  UploadService
	billing  BillingService
	idem     IdempotencyRecorder
}

// New constructs a Handlers bound to d.
func New(d Deps) *Handlers {
	return &Handlers{
		users:    d.Users,
		checkIns: d.CheckIns,
		analysis: d.Analysis,
		weekly:   d.Weekly,
		uploads:  d.Uploads,
		billing:  d.Billing,
		idem:     d.Idempotency,
	}
}

// currentUser returns the authenticated caller or writes a 401.
func currentUser(c *gin.Context) (*domain.User, bool) {
	u, found := middleware.CurrentUser(c)
	if !found {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return nil, false
	}
	return u, true
}
