package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-habit-backend/internal/completion"
	"github.com/tbourn/go-habit-backend/internal/config"
	"github.com/tbourn/go-habit-backend/internal/domain"
	"github.com/tbourn/go-habit-backend/internal/http/middleware"
	"github.com/tbourn/go-habit-backend/internal/repo"
	"github.com/tbourn/go-habit-backend/internal/services"
)

// ---------- test DB ----------

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique DSN per call to avoid cross-test contamination
	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := repo.SeedGoals(context.Background(), db); err != nil {
		t.Fatalf("seed goals: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// ---------- fakes at the external edges ----------

// scriptedCompletion returns reply (or err) for every call.
type scriptedCompletion struct {
	mu    sync.Mutex
	reply string
	err   error
	n     int
}

func (s *scriptedCompletion) Complete(context.Context, completion.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.reply, s.err
}

func (s *scriptedCompletion) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

type fakePresigner struct{}

func (fakePresigner) PresignPut(_ context.Context, key, _ string) (string, error) {
	return "https://bucket.test/" + key + "?sig=1", nil
}

func (fakePresigner) PublicURL(key string) string { return "https://cdn.test/" + key }

type fakeGateway struct{}

func (fakeGateway) CheckoutURL(_ context.Context, userID, _ string) (string, error) {
	return "https://checkout.test/" + userID, nil
}

func (fakeGateway) PortalURL(_ context.Context, customerID string) (string, error) {
	return "https://portal.test/" + customerID, nil
}

// ---------- router under test ----------

type testEnv struct {
	db  *gorm.DB
	llm *scriptedCompletion
	r   *gin.Engine
}

type envOption func(*services.UploadService, *services.BillingService)

func withoutStorage() envOption {
	return func(u *services.UploadService, _ *services.BillingService) { u.Storage = nil }
}

func withoutBilling() envOption {
	return func(_ *services.UploadService, b *services.BillingService) {
		b.Gateway = nil
		b.WebhookSecret = ""
	}
}

const testWebhookSecret = "whsec_handlers"

// newEnv wires real services over sqlite behind dev-header auth and the
// idempotency middleware, mounting routes the way the router does.
func newEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newHandlerDB(t)
	llm := &scriptedCompletion{reply: "{}"}
	quota := services.NewQuotaService(db, config.QuotaConfig{CheckInsPerDay: 3, AnalysesPerDay: 10, UploadsPerDay: 2})

	users := &services.UserService{DB: db}
	uploads := &services.UploadService{Storage: fakePresigner{}, Quota: quota}
	billing := &services.BillingService{DB: db, Gateway: fakeGateway{}, WebhookSecret: testWebhookSecret}
	for _, o := range opts {
		o(uploads, billing)
	}
	idem := &services.IdempotencyService{DB: db}

	h := New(Deps{
		Users:    users,
		CheckIns: &services.CheckInService{DB: db, Quota: quota, HistoryDaysFree: 3, HistoryDaysPro: 30},
		Analysis: &services.AnalysisService{
			DB:       db,
			Analyzer: services.NewAnalyzer(llm, "gpt-test", 0.7, 800),
			Quota:    quota,
			Model:    "gpt-test",
		},
		Weekly:      &services.WeeklySummaryService{DB: db, Client: llm, Model: "gpt-test"},
		Uploads:     uploads,
		Billing:     billing,
		Idempotency: idem,
	})

	r := gin.New()
	r.Use(middleware.RequestID())
	r.POST("/billing/webhook", h.BillingWebhook)

	api := r.Group("")
	api.Use(
		middleware.Auth(middleware.AuthOptions{AllowDevHeader: true}, users),
		middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, idem.Lookup),
	)
	api.GET("/me", h.Me)
	api.GET("/goals", h.ListGoals)
	api.POST("/onboarding", h.Onboard)
	api.POST("/checkins", h.CreateCheckIn)
	api.GET("/checkins", h.ListCheckIns)
	api.GET("/checkins/:id", h.GetCheckIn)
	api.PATCH("/checkins/:id", h.UpdateCheckIn)
	api.DELETE("/checkins/:id", h.DeleteCheckIn)
	api.POST("/analyze", h.Analyze)
	api.POST("/weekly-summaries", h.GenerateWeeklySummary)
	api.GET("/weekly-summaries", h.ListWeeklySummaries)
	api.POST("/uploads", h.CreateUpload)
	api.POST("/billing/checkout", h.BillingCheckout)
	api.POST("/billing/portal", h.BillingPortal)

	return &testEnv{db: db, llm: llm, r: r}
}

// user creates (or loads) the user behind subject with the given status.
func (e *testEnv) user(t *testing.T, subject string, status domain.SubscriptionStatus) *domain.User {
	t.Helper()
	u, _, err := repo.FindOrCreateUser(context.Background(), e.db, subject, "")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := e.db.Model(&domain.User{}).Where("id = ?", u.ID).Update("status", status).Error; err != nil {
		t.Fatalf("set status: %v", err)
	}
	u.Status = status
	return u
}

type reqOpt func(*http.Request)

func header(k, v string) reqOpt { return func(r *http.Request) { r.Header.Set(k, v) } }

// do sends a request as subject ("" for anonymous) with an optional JSON body.
func (e *testEnv) do(t *testing.T, method, path, subject string, body any, opts ...reqOpt) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if subject != "" {
		req.Header.Set(middleware.HeaderDevUser, subject)
	}
	for _, o := range opts {
		o(req)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, status, w.Body.String())
	}
	if got := decode[ErrorResponse](t, w); got.Code != code {
		t.Fatalf("code = %q, want %q", got.Code, code)
	}
}
