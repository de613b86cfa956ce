// Package repo is the GORM persistence layer: connection bootstrap for
// SQLite (pure Go) or PostgreSQL, migrations, the goal seed, and one file of
// query functions per entity.
package repo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-habit-backend/internal/config"
	"github.com/tbourn/go-habit-backend/internal/domain"
)

// Open connects to the configured driver and installs the OpenTelemetry
// tracing plugin so every query becomes a child span of the request.
func Open(cfg config.DBConfig) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "postgres":
		db, err = OpenPostgres(cfg.URL)
	case "sqlite", "":
		db, err = OpenSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, fmt.Errorf("db tracing: %w", err)
	}
	return db, nil
}

// sqlitePragmas run on every SQLite connection pool. WAL plus a busy
// timeout lets the scheduler and request handlers write concurrently.
var sqlitePragmas = []struct{ name, value string }{
	{"journal_mode", "WAL"},
	{"synchronous", "NORMAL"},
	{"foreign_keys", "ON"},
	{"busy_timeout", "5000"},
}

// OpenSQLite opens (or creates) a SQLite database file, applies
// sqlitePragmas and sizes the pool. The parent directory must exist.
func OpenSQLite(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("sqlite dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	for _, p := range sqlitePragmas {
		if err := db.Exec("PRAGMA " + p.name + "=" + p.value + ";").Error; err != nil {
			return nil, fmt.Errorf("pragma %s: %w", p.name, err)
		}
	}

	return sizePool(db, 10)
}

// OpenPostgres opens a PostgreSQL connection from a DSN or URL.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return sizePool(db, 25)
}

// sizePool caps open connections and recycles idle ones.
func sizePool(db *gorm.DB, maxOpen int) (*gorm.DB, error) {
	pool, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db pool: %w", err)
	}
	pool.SetMaxOpenConns(maxOpen)
	pool.SetMaxIdleConns(10)
	pool.SetConnMaxIdleTime(5 * time.Minute)
	pool.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// AutoMigrate creates or updates every table the service owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Goal{},
		&domain.User{},
		&domain.CheckIn{},
		&domain.CheckInPhoto{},
		&domain.CheckInAnswers{},
		&domain.AIResult{},
		&domain.WeeklySummary{},
		&domain.UsageCounter{},
		&domain.Idempotency{},
	)
}

type goalSeed struct {
	name        string
	description string
	constraints string
}

var defaultGoals = []goalSeed{
	{
		name:        "Reduce Snacking",
		description: "Cut back on unplanned snacks between meals and build satisfying main meals.",
		constraints: `{"focus":["snack frequency","meal satiety"],"avoid":["grazing","sugary snacks"],"encourage":["protein at meals","planned snacks"],"track":["snacks per day"]}`,
	},
	{
		name:        "Eat More Plants",
		description: "Add vegetables, fruit, legumes and whole grains to most meals.",
		constraints: `{"focus":["vegetables","fruit","legumes"],"avoid":["meals without plants"],"encourage":["half plate vegetables","whole grains"],"track":["plant servings"]}`,
	},
	{
		name:        "Build Meal Consistency",
		description: "Eat regular meals at similar times each day.",
		constraints: `{"focus":["meal timing","regularity"],"avoid":["skipped meals","late-night eating"],"encourage":["three meals a day","consistent times"],"track":["meals logged per day"]}`,
	},
	{
		name:        "Increase Protein Intake",
		description: "Include a good protein source in every meal.",
		constraints: `{"focus":["protein sources"],"avoid":["carb-only meals"],"encourage":["eggs","legumes","fish","dairy","lean meat"],"track":["protein per meal"]}`,
	},
	{
		name:        "Improve Hydration",
		description: "Drink more water and fewer calorie-containing drinks.",
		constraints: `{"focus":["water intake","liquid calories"],"avoid":["sugary drinks","excess alcohol"],"encourage":["water with meals","unsweetened drinks"],"track":["glasses of water"]}`,
	},
	{
		name:        "Practice Mindful Eating",
		description: "Slow down, notice hunger and fullness, and eat without distractions.",
		constraints: `{"focus":["hunger cues","eating pace"],"avoid":["eating while distracted","eating when stressed"],"encourage":["pausing mid-meal","rating hunger"],"track":["hunger level","stress level"]}`,
	},
}

// SeedGoals inserts the default goals. Existing names are left untouched so
// the seed is safe to run on every start.
func SeedGoals(ctx context.Context, db *gorm.DB) error {
	now := time.Now().UTC()
	goals := make([]domain.Goal, 0, len(defaultGoals))
	for _, g := range defaultGoals {
		goals = append(goals, domain.Goal{
			ID:          uuid.NewString(),
			Name:        g.name,
			Description: g.description,
			Constraints: datatypes.JSON(g.constraints),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&goals).Error
}
