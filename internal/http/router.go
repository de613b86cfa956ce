// Package httpapi assembles the gin engine for the habit coaching API: the
// application services behind it (App), the global middleware chain, and the
// public and authenticated route groups.
package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/go-habit-backend/docs"
	"github.com/tbourn/go-habit-backend/internal/billing"
	"github.com/tbourn/go-habit-backend/internal/completion"
	"github.com/tbourn/go-habit-backend/internal/config"
	"github.com/tbourn/go-habit-backend/internal/http/handlers"
	"github.com/tbourn/go-habit-backend/internal/http/middleware"
	"github.com/tbourn/go-habit-backend/internal/services"
)

// Externals are the outside-world adapters behind the services. A nil
// member disables its feature: no LLM means every analysis falls back, no
// storage means uploads answer 503, no gateway means checkout and portal
// answer 503.
type Externals struct {
	LLM     completion.Client
	Storage services.Presigner
	Billing billing.Gateway
}

// App holds the application services. The router and the scheduler share
// one instance so both see the same quota and summary logic.
type App struct {
	Users       *services.UserService
	CheckIns    *services.CheckInService
	Analysis    *services.AnalysisService
	Weekly      *services.WeeklySummaryService
	Uploads     *services.UploadService
	Billing     *services.BillingService
	Idempotency *services.IdempotencyService
	Quota       *services.QuotaService
}

// NewApp builds the services over db.
func NewApp(db *gorm.DB, ext Externals, cfg config.Config) *App {
	quota := services.NewQuotaService(db, cfg.Quota)
	app := &App{
		Users: &services.UserService{DB: db},
		CheckIns: &services.CheckInService{
			DB:              db,
			Quota:           quota,
			HistoryDaysFree: cfg.HistoryDaysFree,
			HistoryDaysPro:  cfg.HistoryDaysPro,
		},
		Analysis: &services.AnalysisService{
			DB:       db,
			Analyzer: services.NewAnalyzer(ext.LLM, cfg.LLM.Model, float32(cfg.LLM.Temperature), cfg.LLM.MaxTokens),
			Quota:    quota,
			Model:    cfg.LLM.Model,
		},
		Weekly: &services.WeeklySummaryService{
			DB:          db,
			Client:      ext.LLM,
			Model:       cfg.LLM.Model,
			Temperature: float32(cfg.LLM.Temperature),
			MaxTokens:   cfg.LLM.SummaryMaxTokens,
		},
		Uploads: &services.UploadService{Quota: quota},
		Billing: &services.BillingService{
			DB:            db,
			WebhookSecret: cfg.Billing.WebhookSecret,
		},
		Idempotency: &services.IdempotencyService{DB: db, TTL: cfg.IdempotencyTTL},
		Quota:       quota,
	}
	// Interface fields stay nil (not typed-nil) when an adapter is absent.
	if ext.Storage != nil {
		app.Uploads.Storage = ext.Storage
	}
	if ext.Billing != nil {
		app.Billing.Gateway = ext.Billing
	}
	return app
}

// RegisterRoutes installs the middleware chain and every endpoint on r.
//
// Global order: tracing, request id, access log, panic recovery, body limit,
// metrics, CORS, security headers, gzip. Tracing wraps everything so
// recovered panics still end their span; the request id is set before the
// access log so every line carries it.
//
// Authenticated API routes then run Auth, Idempotency and the rate limiter,
// in that order, so keys and buckets are per user and replays skip the
// limiter. The billing webhook is signed by the provider and sits outside
// that chain.
func RegisterRoutes(r *gin.Engine, app *App, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(
		otelgin.Middleware(cfg.OTEL.ServiceName),
		middleware.RequestID(),
		middleware.RedactingLogger(middleware.RedactOptions{MaskHeaders: []string{middleware.HeaderDevUser}}),
		middleware.Recovery(),
		limitBody(maxBodyBytes),
		middleware.Metrics(),
	)
	r.Use(corsHandlers(cfg.CORS.AllowedOrigins)...)
	r.Use(
		middleware.SecurityHeaders(middleware.SecurityOptions{
			EnableHSTS:   cfg.Security.EnableHSTS,
			HSTSMaxAge:   cfg.Security.HSTSMaxAge,
			CacheControl: middleware.CachePrivateRevalidate, // lists revalidate via ETag
			EnablePolicy: true,
		}),
		// scrapers get plain text
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})),
	)

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	// API docs
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(handlers.Deps{
		Users:       app.Users,
		CheckIns:    app.CheckIns,
		Analysis:    app.Analysis,
		Weekly:      app.Weekly,
		Uploads:     app.Uploads,
		Billing:     app.Billing,
		Idempotency: app.Idempotency,
	})

	apiBase := cfg.APIBasePath
	api := groupWithPrefix(r, apiBase)

	// signature-verified, no user identity
	api.POST("/billing/webhook", h.BillingWebhook)

	// Model-backed routes draw more tokens than reads.
	rl := middleware.NewRateLimiter(middleware.RateLimitOptions{
		RPS:   cfg.RateRPS,
		Burst: cfg.RateBurst,
		Key:   middleware.KeyByUserOrIP(),
		Costs: map[string]int{
			http.MethodPost + " " + routePath(apiBase, "/analyze"):          llmRouteCost,
			http.MethodPost + " " + routePath(apiBase, "/weekly-summaries"): llmRouteCost,
		},
	})
	authed := api.Group("")
	authed.Use(
		middleware.Auth(middleware.AuthOptions{
			Secret:         cfg.Auth.JWTSecret,
			Issuer:         cfg.Auth.JWTIssuer,
			AllowDevHeader: cfg.Auth.AllowDevHeader,
		}, app.Users),
		middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}, app.Idempotency.Lookup),
		rl.Handler(),
	)
	{
		// Users
		authed.GET("/me", h.Me)
		authed.GET("/goals", h.ListGoals)
		authed.POST("/onboarding", h.Onboard)

		// Check-ins
		authed.POST("/checkins", h.CreateCheckIn)
		authed.GET("/checkins", h.ListCheckIns)
		authed.GET("/checkins/:id", h.GetCheckIn)
		authed.PATCH("/checkins/:id", h.UpdateCheckIn)
		authed.DELETE("/checkins/:id", h.DeleteCheckIn)

		// Analysis and summaries
		authed.POST("/analyze", h.Analyze)
		authed.POST("/weekly-summaries", h.GenerateWeeklySummary)
		authed.GET("/weekly-summaries", h.ListWeeklySummaries)

		// Uploads
		authed.POST("/uploads", h.CreateUpload)

		// Billing
		authed.POST("/billing/checkout", h.BillingCheckout)
		authed.POST("/billing/portal", h.BillingPortal)
	}
}

// llmRouteCost is the rate-limit charge for routes that may call the model.
const llmRouteCost = 3

// routePath joins the API base and a route the way gin reports FullPath.
func routePath(base, route string) string {
	if base == "" || base == "/" {
		return route
	}
	return strings.TrimRight(base, "/") + route
}

// maxBodyBytes caps request bodies; check-ins with notes and answers are
// a few kilobytes.
const maxBodyBytes = 1 << 20

// limitBody makes body reads past maxBytes fail, which binding reports as
// a 400.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

var (
	corsMethods       = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	corsAllowHeaders  = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderDevUser, middleware.HeaderIdempotencyKey}
	corsExposeHeaders = []string{"X-Request-ID", "ETag", "Content-Length", "Retry-After"}
)

// corsHandlers allows any origin when origins is empty (without
// credentials) and otherwise only the listed ones. The extra handler sets
// Access-Control-Allow-Origin on plain requests too, which gin-contrib/cors
// skips when no Origin header is sent (health checks, curl).
func corsHandlers(origins []string) []gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  corsMethods,
		AllowHeaders:  corsAllowHeaders,
		ExposeHeaders: corsExposeHeaders,
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return []gin.HandlerFunc{
			func(c *gin.Context) {
				c.Header("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(cfg),
		}
	}

	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	cfg.AllowOrigins = origins
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); allowed[origin] {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Writer.Header().Add("Vary", "Origin")
			}
			c.Next()
		},
		cors.New(cfg),
	}
}
