// Package config builds the service settings from environment variables.
// Unset values take defaults; Validate reports everything out of range.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-habit-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
	Environment string  // OTEL_DEPLOYMENT_ENVIRONMENT (e.g. "production")
}

// DBConfig selects the database driver and its connection settings.
type DBConfig struct {
	Driver string // DB_DRIVER: sqlite|postgres
	Path   string // DB_PATH (sqlite)
	URL    string // DATABASE_URL (postgres DSN)
}

// LLMConfig configures the completion provider.
type LLMConfig struct {
	APIKey           string        // OPENAI_API_KEY; empty disables the provider
	BaseURL          string        // OPENAI_BASE_URL; optional
	Model            string        // OPENAI_MODEL
	Temperature      float64       // LLM_TEMPERATURE in [0..2]
	MaxTokens        int           // LLM_MAX_TOKENS
	SummaryMaxTokens int           // LLM_SUMMARY_MAX_TOKENS
	Timeout          time.Duration // LLM_TIMEOUT per call
}

// AuthConfig configures bearer-token authentication.
type AuthConfig struct {
	JWTSecret      string // AUTH_JWT_SECRET (HS256)
	JWTIssuer      string // AUTH_JWT_ISSUER; optional
	AllowDevHeader bool   // AUTH_ALLOW_DEV_HEADER: accept X-User-ID when no token
}

// QuotaConfig holds per-user daily limits.
type QuotaConfig struct {
	CheckInsPerDay int // QUOTA_CHECKINS_PER_DAY
	AnalysesPerDay int // QUOTA_ANALYSES_PER_DAY
	UploadsPerDay  int // QUOTA_UPLOADS_PER_DAY
}

// StorageConfig configures S3-compatible object storage for photo uploads.
type StorageConfig struct {
	Bucket          string        // S3_BUCKET; empty disables uploads
	Region          string        // S3_REGION
	Endpoint        string        // S3_ENDPOINT; optional (MinIO, R2, ...)
	AccessKeyID     string        // S3_ACCESS_KEY_ID; optional, default chain otherwise
	SecretAccessKey string        // S3_SECRET_ACCESS_KEY
	PublicBaseURL   string        // S3_PUBLIC_BASE_URL; optional
	UploadURLTTL    time.Duration // S3_UPLOAD_URL_TTL
}

// BillingConfig configures the payment provider. Checkout and portal
// sessions need SecretKey and PriceID; the webhook needs WebhookSecret.
type BillingConfig struct {
	WebhookSecret string // STRIPE_WEBHOOK_SECRET
	SecretKey     string // STRIPE_SECRET_KEY
	PriceID       string // STRIPE_PRICE_ID (pro plan)
	AppURL        string // APP_URL, base for success/cancel/return URLs
}

// SchedulerConfig configures background cron jobs.
type SchedulerConfig struct {
	Enabled    bool   // SCHEDULER_ENABLED
	WeeklySpec string // SCHEDULER_WEEKLY_SPEC (cron, 5 fields)
	PurgeSpec  string // SCHEDULER_PURGE_SPEC (cron, 5 fields)
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// App
	DB              DBConfig
	LLM             LLMConfig
	Auth            AuthConfig
	Quota           QuotaConfig
	Storage         StorageConfig
	Billing         BillingConfig
	Scheduler       SchedulerConfig
	HistoryDaysFree int // HISTORY_DAYS_FREE: check-in list window for free users
	HistoryDaysPro  int // HISTORY_DAYS_PRO: check-in list window for pro users

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables, applies defaults and
// normalization, then validates the result. The returned Config is populated
// even when validation fails.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// App
		DB: DBConfig{
			Driver: strings.ToLower(getenv("DB_DRIVER", "sqlite")),
			Path:   getenv("DB_PATH", "app.db"),
			URL:    getenv("DATABASE_URL", ""),
		},
		LLM: LLMConfig{
			APIKey:           getenv("OPENAI_API_KEY", ""),
			BaseURL:          getenv("OPENAI_BASE_URL", ""),
			Model:            getenv("OPENAI_MODEL", "gpt-4o"),
			Temperature:      getfloat("LLM_TEMPERATURE", 0.7),
			MaxTokens:        getint("LLM_MAX_TOKENS", 800),
			SummaryMaxTokens: getint("LLM_SUMMARY_MAX_TOKENS", 500),
			Timeout:          getdur("LLM_TIMEOUT", 30*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret: getenv("AUTH_JWT_SECRET", ""),
			JWTIssuer: getenv("AUTH_JWT_ISSUER", ""),
		},
		Quota: QuotaConfig{
			CheckInsPerDay: getint("QUOTA_CHECKINS_PER_DAY", 10),
			AnalysesPerDay: getint("QUOTA_ANALYSES_PER_DAY", 10),
			UploadsPerDay:  getint("QUOTA_UPLOADS_PER_DAY", 30),
		},
		Storage: StorageConfig{
			Bucket:          getenv("S3_BUCKET", ""),
			Region:          getenv("S3_REGION", "us-east-1"),
			Endpoint:        getenv("S3_ENDPOINT", ""),
			AccessKeyID:     getenv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getenv("S3_SECRET_ACCESS_KEY", ""),
			PublicBaseURL:   getenv("S3_PUBLIC_BASE_URL", ""),
			UploadURLTTL:    getdur("S3_UPLOAD_URL_TTL", time.Hour),
		},
		Billing: BillingConfig{
			WebhookSecret: getenv("STRIPE_WEBHOOK_SECRET", ""),
			SecretKey:     getenv("STRIPE_SECRET_KEY", ""),
			PriceID:       getenv("STRIPE_PRICE_ID", ""),
			AppURL:        strings.TrimRight(getenv("APP_URL", "http://localhost:3000"), "/"),
		},
		Scheduler: SchedulerConfig{
			Enabled:    getbool("SCHEDULER_ENABLED", false),
			WeeklySpec: getenv("SCHEDULER_WEEKLY_SPEC", "0 7 * * 1"),
			PurgeSpec:  getenv("SCHEDULER_PURGE_SPEC", "0 3 * * *"),
		},
		HistoryDaysFree: getint("HISTORY_DAYS_FREE", 3),
		HistoryDaysPro:  getint("HISTORY_DAYS_PRO", 30),

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-habit-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
			Environment: getenv("OTEL_DEPLOYMENT_ENVIRONMENT", "development"),
		},
	}

	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.DB.Driver == "postgresql" || cfg.DB.Driver == "pg" {
		cfg.DB.Driver = "postgres"
	}
	cfg.Auth.AllowDevHeader = getbool("AUTH_ALLOW_DEV_HEADER", false)

	return cfg, cfg.Validate()
}

// Validate reports every invalid setting at once, joined into one error.
func (c Config) Validate() error {
	var errs []error
	check := func(bad bool, msg string) {
		if bad {
			errs = append(errs, errors.New(msg))
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q must be one of: debug, info, warn, error, fatal, panic", c.LogLevel))
	}
	check(strings.TrimSpace(c.Port) == "", "PORT must not be empty")
	check(c.ReadTimeout <= 0 || c.ReadHeaderTimeout <= 0 || c.WriteTimeout <= 0 || c.IdleTimeout <= 0,
		"timeouts must be positive durations")
	check(c.MaxHeaderBytes <= 0, "MAX_HEADER_BYTES must be > 0")
	// with neither, no request could authenticate
	check(strings.TrimSpace(c.Auth.JWTSecret) == "" && !c.Auth.AllowDevHeader,
		"AUTH_JWT_SECRET is required unless AUTH_ALLOW_DEV_HEADER is enabled")

	errs = append(errs, c.DB.validate(), c.LLM.validate())
	check(c.Quota.CheckInsPerDay < 1 || c.Quota.AnalysesPerDay < 1 || c.Quota.UploadsPerDay < 1,
		"QUOTA_* limits must be >= 1")
	check(c.Storage.UploadURLTTL <= 0 || c.Storage.UploadURLTTL > 7*24*time.Hour,
		"S3_UPLOAD_URL_TTL must be in (0, 168h]")
	check(c.HistoryDaysFree < 1 || c.HistoryDaysPro < c.HistoryDaysFree,
		"HISTORY_DAYS_FREE must be >= 1 and <= HISTORY_DAYS_PRO")
	check(c.Scheduler.Enabled && (strings.TrimSpace(c.Scheduler.WeeklySpec) == "" || strings.TrimSpace(c.Scheduler.PurgeSpec) == ""),
		"SCHEDULER_*_SPEC must not be empty when the scheduler is enabled")
	check(c.Billing.SecretKey != "" && strings.TrimSpace(c.Billing.PriceID) == "",
		"STRIPE_PRICE_ID is required when STRIPE_SECRET_KEY is set")

	check(c.RateRPS < 0, "RATE_RPS must be >= 0")
	check(c.RateBurst < 1, "RATE_BURST must be >= 1")
	check(c.Security.HSTSMaxAge < 0, "HSTS_MAX_AGE must be >= 0")
	check(c.IdempotencyTTL <= 0, "IDEMPOTENCY_TTL must be > 0")
	check(c.OTEL.SampleRatio < 0 || c.OTEL.SampleRatio > 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]")

	return errors.Join(errs...)
}

func (d DBConfig) validate() error {
	switch d.Driver {
	case "sqlite":
		if strings.TrimSpace(d.Path) == "" {
			return errors.New("DB_PATH must not be empty")
		}
	case "postgres":
		if strings.TrimSpace(d.URL) == "" {
			return errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("DB_DRIVER %q must be one of: sqlite, postgres", d.Driver)
	}
	return nil
}

func (l LLMConfig) validate() error {
	var errs []error
	if strings.TrimSpace(l.Model) == "" {
		errs = append(errs, errors.New("OPENAI_MODEL must not be empty"))
	}
	if l.Temperature < 0 || l.Temperature > 2 {
		errs = append(errs, errors.New("LLM_TEMPERATURE must be in [0,2]"))
	}
	if l.MaxTokens <= 0 || l.SummaryMaxTokens <= 0 {
		errs = append(errs, errors.New("LLM_MAX_TOKENS and LLM_SUMMARY_MAX_TOKENS must be > 0"))
	}
	if l.Timeout <= 0 {
		errs = append(errs, errors.New("LLM_TIMEOUT must be > 0"))
	}
	return errors.Join(errs...)
}

// getenv returns the variable's value, or def when it is unset or empty.
func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// parsed reads k through parse. Unset, empty and malformed values all fall
// back to def; Validate rejects what is out of range afterwards.
func parsed[T any](k string, def T, parse func(string) (T, error)) T {
	raw := os.Getenv(k)
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

func getfloat(k string, def float64) float64 {
	return parsed(k, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func getint(k string, def int) int { return parsed(k, def, strconv.Atoi) }

func getdur(k string, def time.Duration) time.Duration { return parsed(k, def, time.ParseDuration) }

var errNotBool = errors.New("not a boolean")

// getbool accepts the usual spellings: 1/0, true/false, yes/no, y/n, on/off.
func getbool(k string, def bool) bool {
	return parsed(k, def, func(s string) (bool, error) {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "1", "true", "yes", "y", "on":
			return true, nil
		case "0", "false", "no", "n", "off":
			return false, nil
		}
		return false, errNotBool
	})
}

// splitCSV splits a comma list, dropping blanks.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// normalizeBasePath yields "/" or a path with one leading and no trailing slash.
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	return "/" + p
}
