package domain

import (
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:domain_models_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Enforce FKs so cascades actually execute.
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := db.AutoMigrate(&Goal{}, &User{}, &CheckIn{}, &CheckInPhoto{}, &CheckInAnswers{}, &AIResult{}, &WeeklySummary{}, &UsageCounter{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func strp(s string) *string { return &s }

func TestTableNames(t *testing.T) {
	cases := map[string]string{
		(Goal{}).TableName():           "goals",
		(User{}).TableName():           "users",
		(CheckIn{}).TableName():        "check_ins",
		(CheckInPhoto{}).TableName():   "check_in_photos",
		(CheckInAnswers{}).TableName(): "check_in_answers",
		(AIResult{}).TableName():       "ai_results",
		(WeeklySummary{}).TableName():  "weekly_summaries",
		(UsageCounter{}).TableName():   "usage_counters",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("TableName() = %q; want %q", got, want)
		}
	}
}

func TestMealTypeValid(t *testing.T) {
	for _, m := range []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack, MealFullDay} {
		if !m.Valid() {
			t.Fatalf("%q should be valid", m)
		}
	}
	for _, m := range []MealType{"", "brunch", "Lunch"} {
		if m.Valid() {
			t.Fatalf("%q should be invalid", m)
		}
	}
}

func TestMigrations_Indexes_AndCascades(t *testing.T) {
	db := newDomainDB(t)
	m := db.Migrator()

	for _, idx := range []struct {
		model any
		name  string
	}{
		{&CheckIn{}, "idx_checkins_user_date"},
		{&AIResult{}, "ux_ai_results_checkin"},
		{&WeeklySummary{}, "ux_weekly_user_week"},
		{&User{}, "ux_users_subject"},
		{&Goal{}, "ux_goals_name"},
	} {
		if !m.HasIndex(idx.model, idx.name) {
			t.Fatalf("expected index %s on %T", idx.name, idx.model)
		}
	}

	now := time.Now().UTC()
	u := &User{ID: "u1", Subject: "sub-1", Timezone: "UTC", Status: StatusFree,
		Preferences: datatypes.NewJSONType(DefaultPreferences())}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("insert user: %v", err)
	}

	ci := &CheckIn{
		ID: "c1", UserID: "u1", Date: "2024-05-01", MealType: MealLunch, Notes: strp("salad"),
		Photos:  []CheckInPhoto{{ID: "p1", URL: "https://cdn/x.jpg", CreatedAt: now}},
		Answers: &CheckInAnswers{ID: "a1", Snacks: strp("no")},
	}
	if err := db.Create(ci).Error; err != nil {
		t.Fatalf("insert check-in: %v", err)
	}
	res := &AIResult{ID: "r1", CheckInID: "c1", HabitScore: Uniform(5), FeedbackShort: "ok",
		OneAction: "tip", Confidence: ConfidenceLow, Outcome: "fallback"}
	if err := db.Create(res).Error; err != nil {
		t.Fatalf("insert result: %v", err)
	}

	// at most one result per check-in
	dup := &AIResult{ID: "r2", CheckInID: "c1", HabitScore: Uniform(5), FeedbackShort: "x",
		OneAction: "y", Confidence: ConfidenceLow, Outcome: "fallback"}
	if err := db.Create(dup).Error; err == nil {
		t.Fatalf("expected unique violation on second result for same check-in")
	}

	var loaded CheckIn
	if err := db.Preload("Photos").Preload("Answers").Preload("AIResult").First(&loaded, "id = ?", "c1").Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Photos) != 1 || loaded.Answers == nil || loaded.AIResult == nil {
		t.Fatalf("associations not loaded: %+v", loaded)
	}
	if loaded.AIResult.HabitScore != Uniform(5) {
		t.Fatalf("embedded score mismatch: %+v", loaded.AIResult.HabitScore)
	}

	// CASCADE: deleting the check-in removes its children
	if err := db.Delete(&CheckIn{}, "id = ?", "c1").Error; err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, model := range []any{&CheckInPhoto{}, &CheckInAnswers{}, &AIResult{}} {
		var cnt int64
		if err := db.Model(model).Where("check_in_id = ?", "c1").Count(&cnt).Error; err != nil {
			t.Fatalf("count %T: %v", model, err)
		}
		if cnt != 0 {
			t.Fatalf("expected %T to cascade-delete, got %d", model, cnt)
		}
	}
}

func TestUserPreferences_RoundTrip(t *testing.T) {
	db := newDomainDB(t)
	prefs := Preferences{Tone: ToneDirect, Vegan: true, Allergies: []string{"peanuts"}}.Normalize()
	u := &User{ID: "u2", Subject: "sub-2", Timezone: "Europe/London", Status: StatusActive,
		Preferences: datatypes.NewJSONType(prefs)}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	var got User
	if err := db.First(&got, "id = ?", "u2").Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	p := got.Preferences.Data()
	if p.Tone != ToneDirect || !p.Vegan || !p.Vegetarian || len(p.Allergies) != 1 || p.Version != PreferencesVersion {
		t.Fatalf("unexpected prefs: %+v", p)
	}
	if !got.IsPro() {
		t.Fatalf("active user should be pro")
	}
}

func TestAIResultFlags(t *testing.T) {
	var r AIResult
	if r.ParsedFlags() != nil {
		t.Fatalf("expected nil flags on zero value")
	}
	r.SetFlags(&ResultFlags{Unsafe: true, Reasons: []string{"self harm"}})
	f := r.ParsedFlags()
	if f == nil || !f.Unsafe || f.PossibleED || len(f.Reasons) != 1 {
		t.Fatalf("unexpected flags: %+v", f)
	}
	r.SetFlags(nil)
	if r.ParsedFlags() != nil {
		t.Fatalf("expected flags cleared")
	}
}
