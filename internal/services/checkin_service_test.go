package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tbourn/go-habit-backend/internal/config"
	"github.com/tbourn/go-habit-backend/internal/domain"
)

func newCheckInService(t *testing.T) (*CheckInService, *domain.User) {
	t.Helper()
	db := newTestDB(t)
	q := NewQuotaService(db, config.QuotaConfig{CheckInsPerDay: 2, AnalysesPerDay: 10, UploadsPerDay: 30})
	q.Now = fixedNow("2024-05-10T12:00:00Z")
	svc := &CheckInService{
		DB:              db,
		Quota:           q,
		HistoryDaysFree: 3,
		HistoryDaysPro:  30,
		Now:             fixedNow("2024-05-10T12:00:00Z"),
	}
	return svc, seedUser(t, db, "sub-1", domain.StatusFree)
}

func TestCheckInService_CreateAndGet(t *testing.T) {
	svc, u := newCheckInService(t)
	ctx := context.Background()

	ci, err := svc.Create(ctx, u, CheckInInput{
		Date:      "2024-05-10",
		MealType:  domain.MealDinner,
		Notes:     sp("  pasta with veggies  "),
		PhotoURLs: []string{"https://cdn/x.jpg"},
		Answers:   &domain.CheckInAnswers{DrinksCalories: sp("unsure"), HungerLevel: func() *int { v := 4; return &v }()},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ci.Notes == nil || *ci.Notes != "pasta with veggies" {
		t.Fatalf("notes not trimmed: %v", ci.Notes)
	}

	got, err := svc.Get(ctx, u.ID, ci.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Photos) != 1 || got.Answers == nil || *got.Answers.DrinksCalories != "unsure" {
		t.Fatalf("children not loaded: %+v", got)
	}
	if _, err := svc.Get(ctx, "someone-else", ci.ID); !errors.Is(err, ErrCheckInNotFound) {
		t.Fatalf("foreign read: %v", err)
	}
}

func TestCheckInService_CreateValidation(t *testing.T) {
	svc, u := newCheckInService(t)
	six := []string{"a", "b", "c", "d", "e", "f"}
	cases := []struct {
		name string
		in   CheckInInput
		want string
	}{
		{"bad date", CheckInInput{Date: "10/05/2024", MealType: domain.MealLunch}, "Date"},
		{"bad meal", CheckInInput{Date: "2024-05-10", MealType: "brunch"}, "MealType"},
		{"too many photos", CheckInInput{Date: "2024-05-10", MealType: domain.MealLunch, PhotoURLs: six}, "PhotoURLs"},
		{"bad drinks answer", CheckInInput{Date: "2024-05-10", MealType: domain.MealLunch, Answers: &domain.CheckInAnswers{DrinksCalories: sp("maybe")}}, "DrinksCalories"},
		{"alcohol unsure", CheckInInput{Date: "2024-05-10", MealType: domain.MealLunch, Answers: &domain.CheckInAnswers{Alcohol: sp("unsure")}}, "Alcohol"},
		{"hunger out of range", CheckInInput{Date: "2024-05-10", MealType: domain.MealLunch, Answers: &domain.CheckInAnswers{HungerLevel: func() *int { v := 9; return &v }()}}, "HungerLevel"},
		{"notes too long", CheckInInput{Date: "2024-05-10", MealType: domain.MealLunch, Notes: sp(strings.Repeat("x", 2001))}, "Notes"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), u, tc.in)
			if !errors.Is(err, ErrInvalidCheckIn) {
				t.Fatalf("expected ErrInvalidCheckIn, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q should name %s", err, tc.want)
			}
		})
	}

	// invalid payloads do not consume quota
	if left, _ := svc.Quota.Remaining(context.Background(), u.ID, ActionCheckIn); left != 2 {
		t.Fatalf("remaining = %d, want 2", left)
	}
}

func TestCheckInService_CreateQuota(t *testing.T) {
	svc, u := newCheckInService(t)
	in := CheckInInput{Date: "2024-05-10", MealType: domain.MealSnack}
	for i := 0; i < 2; i++ {
		if _, err := svc.Create(context.Background(), u, in); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	if _, err := svc.Create(context.Background(), u, in); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
}

func TestCheckInService_ListHistoryWindow(t *testing.T) {
	svc, u := newCheckInService(t)
	for _, d := range []string{"2024-05-10", "2024-05-08", "2024-05-06", "2024-04-20"} {
		seedCheckIn(t, svc.DB, u.ID, d, nil)
	}
	ctx := context.Background()

	free, err := svc.List(ctx, u, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(free) != 2 || free[0].Date != "2024-05-10" {
		t.Fatalf("free window returned %d items", len(free))
	}

	u.Status = domain.StatusTrial
	pro, _ := svc.List(ctx, u, 0)
	if len(pro) != 4 {
		t.Fatalf("pro window returned %d items", len(pro))
	}
	limited, _ := svc.List(ctx, u, 1)
	if len(limited) != 1 {
		t.Fatalf("limit ignored: %d", len(limited))
	}

	n, last, err := svc.Stats(ctx, u)
	if err != nil || n != 4 || last == nil {
		t.Fatalf("Stats = %d, %v, %v", n, last, err)
	}
}

func TestCheckInService_UpdateAndDelete(t *testing.T) {
	svc, u := newCheckInService(t)
	ctx := context.Background()
	ci := seedCheckIn(t, svc.DB, u.ID, "2024-05-10", sp("first"))

	got, err := svc.Update(ctx, u.ID, ci.ID, CheckInUpdate{
		Notes:   sp(" second "),
		Answers: &domain.CheckInAnswers{Snacks: sp("no")},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if *got.Notes != "second" || got.Answers == nil || *got.Answers.Snacks != "no" {
		t.Fatalf("update not applied: %+v", got)
	}
	if _, err := svc.Update(ctx, u.ID, ci.ID, CheckInUpdate{Answers: &domain.CheckInAnswers{Snacks: sp("lots")}}); !errors.Is(err, ErrInvalidCheckIn) {
		t.Fatalf("expected ErrInvalidCheckIn, got %v", err)
	}
	if _, err := svc.Update(ctx, "other", ci.ID, CheckInUpdate{Notes: sp("x")}); !errors.Is(err, ErrCheckInNotFound) {
		t.Fatalf("foreign update: %v", err)
	}

	if err := svc.Delete(ctx, "other", ci.ID); !errors.Is(err, ErrCheckInNotFound) {
		t.Fatalf("foreign delete: %v", err)
	}
	if err := svc.Delete(ctx, u.ID, ci.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, u.ID, ci.ID); !errors.Is(err, ErrCheckInNotFound) {
		t.Fatalf("deleted check-in still readable: %v", err)
	}
}
