// Package domain defines the persistence models for users, goals, meal
// check-ins, AI analysis results, and weekly summaries. These types are
// mapped with GORM and form the core data layer of the habit coach.
package domain

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// MealType enumerates the meal slots a check-in can be logged against.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
	MealFullDay   MealType = "full-day"
)

// Valid reports whether m is one of the known meal types.
func (m MealType) Valid() bool {
	switch m {
	case MealBreakfast, MealLunch, MealDinner, MealSnack, MealFullDay:
		return true
	}
	return false
}

// Confidence is the normalized confidence level of an AI result.
type Confidence string

const (
	ConfidenceLow  Confidence = "low"
	ConfidenceMed  Confidence = "med"
	ConfidenceHigh Confidence = "high"
)

// Goal is a named objective selected during onboarding. Constraints is an
// opaque bag (focus areas, things to avoid/encourage/track) that is only
// ever rendered into prompts.
type Goal struct {
	ID          string         `json:"id"          gorm:"type:char(36);primaryKey"`
	Name        string         `json:"name"        gorm:"type:varchar(128);not null;uniqueIndex:ux_goals_name"`
	Description string         `json:"description" gorm:"type:text;not null"`
	Constraints datatypes.JSON `json:"constraints,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// TableName returns the database table name for Goal.
func (Goal) TableName() string { return "goals" }

// User is an account resolved from the auth provider subject. The
// subscription status is written by the billing webhook and read by the
// analysis pipeline for feature gating.
//
// Fields:
//   - Subject: external auth identity (JWT "sub"); unique.
//   - Preferences: explicit, versioned coaching preferences.
//   - Status: free | trial | active | canceled.
//   - StripeCustomerID / StripeSubscriptionID: billing linkage, nullable.
type User struct {
	ID                   string                          `json:"id"                 gorm:"type:char(36);primaryKey"`
	Subject              string                          `json:"-"                  gorm:"type:varchar(128);not null;uniqueIndex:ux_users_subject"`
	Email                string                          `json:"email,omitempty"    gorm:"type:varchar(255)"`
	GoalID               *string                         `json:"goalId,omitempty"   gorm:"type:char(36);index"`
	Goal                 *Goal                           `json:"goal,omitempty"     gorm:"foreignKey:GoalID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Timezone             string                          `json:"timezone"           gorm:"type:varchar(64);not null;default:'UTC'"`
	Preferences          datatypes.JSONType[Preferences] `json:"preferences"`
	Status               SubscriptionStatus              `json:"subscriptionStatus" gorm:"type:varchar(16);not null;default:'free'"`
	StripeCustomerID     *string                         `json:"-"                  gorm:"type:varchar(64);uniqueIndex:ux_users_stripe_customer"`
	StripeSubscriptionID *string                         `json:"-"                  gorm:"type:varchar(64)"`
	OnboardedAt          *time.Time                      `json:"onboardedAt,omitempty"`
	CreatedAt            time.Time                       `json:"createdAt"`
	UpdatedAt            time.Time                       `json:"updatedAt"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// IsPro reports whether the user's subscription unlocks pro features.
func (u *User) IsPro() bool {
	if u == nil {
		return false
	}
	return u.Status.IsPro()
}

// CheckIn is one meal-logging event. Only Notes and Answers are mutable
// after creation.
type CheckIn struct {
	ID        string          `json:"id"                 gorm:"type:char(36);primaryKey"`
	UserID    string          `json:"userId"             gorm:"type:char(36);not null;index:idx_checkins_user_date,priority:1"`
	Date      string          `json:"date"               gorm:"type:varchar(10);not null;index:idx_checkins_user_date,priority:2"`
	MealType  MealType        `json:"mealType"           gorm:"type:varchar(16);not null;check:meal_type IN ('breakfast','lunch','dinner','snack','full-day')"`
	Notes     *string         `json:"notes,omitempty"    gorm:"type:text"`
	Photos    []CheckInPhoto  `json:"photos"             gorm:"foreignKey:CheckInID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Answers   *CheckInAnswers `json:"answers,omitempty"  gorm:"foreignKey:CheckInID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	AIResult  *AIResult       `json:"aiResult,omitempty" gorm:"foreignKey:CheckInID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	CreatedAt time.Time       `json:"createdAt"          gorm:"index"`
	UpdatedAt time.Time       `json:"updatedAt"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for CheckIn.
func (CheckIn) TableName() string { return "check_ins" }

// CheckInPhoto is an opaque reference to an uploaded meal photo.
type CheckInPhoto struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	CheckInID string    `json:"-"         gorm:"type:char(36);not null;index"`
	URL       string    `json:"url"       gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName returns the database table name for CheckInPhoto.
func (CheckInPhoto) TableName() string { return "check_in_photos" }

// CheckInAnswers holds the optional structured questionnaire attached to a
// check-in. DrinksCalories is yes|no|unsure, the other text answers are
// yes|no, and HungerLevel/StressLevel are 1..5.
type CheckInAnswers struct {
	ID             string  `json:"-"                        gorm:"type:char(36);primaryKey"`
	CheckInID      string  `json:"-"                        gorm:"type:char(36);not null;uniqueIndex:ux_answers_checkin"`
	DrinksCalories *string `json:"drinksCalories,omitempty" gorm:"type:varchar(8)" validate:"omitempty,oneof=yes no unsure"`
	Alcohol        *string `json:"alcohol,omitempty"        gorm:"type:varchar(8)" validate:"omitempty,oneof=yes no"`
	Snacks         *string `json:"snacks,omitempty"         gorm:"type:varchar(8)" validate:"omitempty,oneof=yes no"`
	CookingTastes  *string `json:"cookingTastes,omitempty"  gorm:"type:varchar(8)" validate:"omitempty,oneof=yes no"`
	Supplements    *string `json:"supplements,omitempty"    gorm:"type:varchar(8)" validate:"omitempty,oneof=yes no"`
	MissedMeals    *string `json:"missedMeals,omitempty"    gorm:"type:varchar(8)" validate:"omitempty,oneof=yes no"`
	HungerLevel    *int    `json:"hungerLevel,omitempty"    validate:"omitempty,min=1,max=5"`
	StressLevel    *int    `json:"stressLevel,omitempty"    validate:"omitempty,min=1,max=5"`
}

// TableName returns the database table name for CheckInAnswers.
func (CheckInAnswers) TableName() string { return "check_in_answers" }

// HabitScore is the five-dimension 0..10 rating embedded in AIResult.
// Snacks and Liquids are already inverted: higher is always better.
type HabitScore struct {
	Protein  int `json:"protein"  gorm:"not null;default:0"`
	Plants   int `json:"plants"   gorm:"not null;default:0"`
	Liquids  int `json:"liquids"  gorm:"not null;default:0"`
	Snacks   int `json:"snacks"   gorm:"not null;default:0"`
	Training int `json:"training" gorm:"not null;default:0"`
}

// Uniform returns a score with every dimension set to v.
func Uniform(v int) HabitScore {
	return HabitScore{Protein: v, Plants: v, Liquids: v, Snacks: v, Training: v}
}

// ResultFlags are the legacy safety flags surfaced to clients. Reasons
// carries the model's flag_reasons when present.
type ResultFlags struct {
	PossibleED bool     `json:"possibleED"`
	Medical    bool     `json:"medical"`
	Unsafe     bool     `json:"unsafe"`
	Reasons    []string `json:"flagReasons,omitempty"`
}

// AIResult is the persisted outcome of one analysis run. There is at most
// one per check-in (unique check_in_id).
type AIResult struct {
	ID            string         `json:"id"                     gorm:"type:char(36);primaryKey"`
	CheckInID     string         `json:"checkInId"              gorm:"type:char(36);not null;uniqueIndex:ux_ai_results_checkin"`
	HabitScore    HabitScore     `json:"habitScore"             gorm:"embedded;embeddedPrefix:score_"`
	FeedbackShort string         `json:"feedbackShort"          gorm:"type:text;not null"`
	OneAction     string         `json:"oneAction"              gorm:"type:varchar(255);not null"`
	Confidence    Confidence     `json:"confidence"             gorm:"type:varchar(8);not null"`
	Flags         datatypes.JSON `json:"flags,omitempty"`
	Notice        string         `json:"notice,omitempty"       gorm:"type:text"`
	Outcome       string         `json:"outcome"                gorm:"type:varchar(32);not null"`
	ModelVersion  string         `json:"modelVersion,omitempty" gorm:"type:varchar(64)"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// TableName returns the database table name for AIResult.
func (AIResult) TableName() string { return "ai_results" }

// SetFlags stores f as JSON; nil clears the column.
func (r *AIResult) SetFlags(f *ResultFlags) {
	if f == nil {
		r.Flags = nil
		return
	}
	b, err := json.Marshal(f)
	if err != nil {
		r.Flags = nil
		return
	}
	r.Flags = datatypes.JSON(b)
}

// ParsedFlags decodes the stored flags, or returns nil when none are set.
func (r *AIResult) ParsedFlags() *ResultFlags {
	if len(r.Flags) == 0 || string(r.Flags) == "null" {
		return nil
	}
	var f ResultFlags
	if err := json.Unmarshal(r.Flags, &f); err != nil {
		return nil
	}
	return &f
}

// WeeklySummary is a pro-only narrative over one ISO week of check-ins.
type WeeklySummary struct {
	ID            string    `json:"id"            gorm:"type:char(36);primaryKey"`
	UserID        string    `json:"userId"        gorm:"type:char(36);not null;uniqueIndex:ux_weekly_user_week,priority:1"`
	WeekKey       string    `json:"weekKey"       gorm:"type:varchar(8);not null;uniqueIndex:ux_weekly_user_week,priority:2"`
	Summary       string    `json:"summary"       gorm:"type:text;not null"`
	Pattern       string    `json:"pattern"       gorm:"type:text;not null"`
	NextWeekFocus string    `json:"nextWeekFocus" gorm:"type:text;not null"`
	CreatedAt     time.Time `json:"createdAt"     gorm:"index"`
}

// TableName returns the database table name for WeeklySummary.
func (WeeklySummary) TableName() string { return "weekly_summaries" }

// UsageCounter is a fixed-window counter keyed by (user, action, window).
// It is shared by every process so quotas hold across instances.
type UsageCounter struct {
	UserID    string    `gorm:"type:char(36);primaryKey"`
	Action    string    `gorm:"type:varchar(32);primaryKey"`
	Window    string    `gorm:"column:period;type:varchar(16);primaryKey"`
	Count     int       `gorm:"not null;default:0"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

// TableName returns the database table name for UsageCounter.
func (UsageCounter) TableName() string { return "usage_counters" }
