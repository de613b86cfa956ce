package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-habit-backend/internal/config"
	"github.com/tbourn/go-habit-backend/internal/domain"
	"github.com/tbourn/go-habit-backend/internal/repo"
)

func TestQuota_ConsumeUntilExhausted(t *testing.T) {
	db := newTestDB(t)
	q := NewQuotaService(db, config.QuotaConfig{CheckInsPerDay: 2, AnalysesPerDay: 1, UploadsPerDay: 3})
	q.Now = fixedNow("2024-05-02T23:30:00Z")
	ctx := context.Background()

	if left, err := q.Consume(ctx, "u1", ActionCheckIn); err != nil || left != 1 {
		t.Fatalf("first consume = %d, %v", left, err)
	}
	if left, err := q.Consume(ctx, "u1", ActionCheckIn); err != nil || left != 0 {
		t.Fatalf("second consume = %d, %v", left, err)
	}
	if _, err := q.Consume(ctx, "u1", ActionCheckIn); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}

	// other users and actions are independent
	if _, err := q.Consume(ctx, "u2", ActionCheckIn); err != nil {
		t.Fatalf("other user: %v", err)
	}
	if left, _ := q.Remaining(ctx, "u1", ActionUpload); left != 3 {
		t.Fatalf("upload remaining = %d", left)
	}

	// next UTC day starts a new window
	q.Now = fixedNow("2024-05-03T00:00:01Z")
	if left, err := q.Consume(ctx, "u1", ActionCheckIn); err != nil || left != 1 {
		t.Fatalf("new day consume = %d, %v", left, err)
	}
}

func TestQuota_UnknownActionIsUnlimited(t *testing.T) {
	q := NewQuotaService(newTestDB(t), config.QuotaConfig{CheckInsPerDay: 1, AnalysesPerDay: 1, UploadsPerDay: 1})
	for i := 0; i < 3; i++ {
		if _, err := q.Consume(context.Background(), "u1", "export"); err != nil {
			t.Fatalf("unlimited action: %v", err)
		}
	}
}

func TestQuota_PurgeExpired(t *testing.T) {
	db := newTestDB(t)
	q := NewQuotaService(db, config.QuotaConfig{CheckInsPerDay: 5, AnalysesPerDay: 5, UploadsPerDay: 5})
	ctx := context.Background()

	q.Now = fixedNow("2024-05-01T10:00:00Z")
	if _, err := q.Consume(ctx, "u1", ActionAnalyze); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if err := db.Create(&domain.Idempotency{
		ID: "i1", UserID: "u1", Scope: "POST /checkins", Key: "k", ResourceID: "c1", Status: 201,
		ExpiresAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}).Error; err != nil {
		t.Fatalf("seed idempotency: %v", err)
	}

	q.Now = fixedNow("2024-05-03T03:00:00Z")
	usage, idem, err := q.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if usage != 1 || idem != 1 {
		t.Fatalf("purged usage=%d idem=%d", usage, idem)
	}
	if n, _ := repo.UsageCount(ctx, db, "u1", ActionAnalyze, "2024-05-01"); n != 0 {
		t.Fatalf("counter survived purge: %d", n)
	}
}
