// Command server runs the habit coaching HTTP API and its background jobs.
//
//	@title						Habit Coach API
//	@version					1.0
//	@description				Meal check-ins, AI feedback with a validated JSON contract, weekly summaries, and Pro billing.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-habit-backend/internal/billing"
	"github.com/tbourn/go-habit-backend/internal/completion"
	"github.com/tbourn/go-habit-backend/internal/config"
	httpapi "github.com/tbourn/go-habit-backend/internal/http"
	"github.com/tbourn/go-habit-backend/internal/observability"
	"github.com/tbourn/go-habit-backend/internal/repo"
	"github.com/tbourn/go-habit-backend/internal/scheduler"
	"github.com/tbourn/go-habit-backend/internal/storage"
	"github.com/tbourn/go-habit-backend/internal/sysutil"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	envErr := godotenv.Load()

	cfg := config.MustLoad()
	sysutil.SetupLogging(cfg.LogLevel, cfg.LogPretty, os.Stderr)
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		log.Warn().Err(envErr).Msg("load .env")
	}
	version := sysutil.Version()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.Setup(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("tracing setup")
	}

	db, err := repo.Open(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}
	if err := repo.SeedGoals(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("seed goals")
	}

	ext := externals(ctx, cfg)
	app := httpapi.NewApp(db, ext, cfg)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, app, cfg)

	var jobs *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		jobs, err = scheduler.New(cfg.Scheduler, app.Weekly, app.Quota)
		if err != nil {
			log.Fatal().Err(err).Msg("scheduler")
		}
		jobs.Start()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		log.Error().Err(err).Msg("server failed")
	}

	sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if jobs != nil {
		if err := jobs.Stop(sctx); err != nil {
			log.Error().Err(err).Msg("scheduler shutdown")
		}
	}
	if err := shutdownTracing(sctx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("bye")
}

// externals builds the outside-world adapters. Missing credentials leave the
// corresponding feature disabled rather than failing startup.
func externals(ctx context.Context, cfg config.Config) httpapi.Externals {
	ext := httpapi.Externals{
		LLM: completion.NewOpenAI(completion.OpenAIOptions{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Timeout: cfg.LLM.Timeout,
		}),
	}
	if cfg.LLM.APIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY not set: analyses will use fallback feedback")
	}

	if cfg.Storage.Bucket != "" {
		s3, err := storage.NewS3(ctx, cfg.Storage)
		if err != nil {
			log.Fatal().Err(err).Str("bucket", cfg.Storage.Bucket).Msg("object storage")
		}
		ext.Storage = s3
	} else {
		log.Warn().Msg("S3_BUCKET not set: uploads disabled")
	}

	if cfg.Billing.SecretKey != "" {
		ext.Billing = billing.NewStripeGateway(cfg.Billing.SecretKey, cfg.Billing.PriceID, cfg.Billing.AppURL, nil)
	} else {
		log.Warn().Msg("STRIPE_SECRET_KEY not set: checkout and portal disabled")
	}
	return ext
}
