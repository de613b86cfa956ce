package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestHelpers_GetIdempotencyKey_IsReplay_ReplayResource(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	if k, ok := GetIdempotencyKey(c); k != "" || ok {
		t.Fatalf("expected empty key when not set")
	}
	if IsReplay(c) {
		t.Fatalf("expected IsReplay=false by default")
	}

	c.Set(ctxKeyIdemKey, 123)
	if _, ok := GetIdempotencyKey(c); ok {
		t.Fatalf("expected GetIdempotencyKey to be absent for non-string value")
	}

	c.Set(ctxKeyIdemResource, "r1")
	if _, ok := ReplayResource(c); ok {
		t.Fatalf("resource must not be reported without the replay flag")
	}
	c.Set(ctxKeyIdemReplay, true)
	if id, ok := ReplayResource(c); !ok || id != "r1" {
		t.Fatalf("ReplayResource = %q, %v", id, ok)
	}
	c.Set(ctxKeyIdemReplay, "yes")
	if IsReplay(c) {
		t.Fatalf("expected IsReplay=false for non-bool")
	}
}

func TestIdempotencyScope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var got string
	r.POST("/api/v1/checkins/:id", func(c *gin.Context) {
		got = IdempotencyScope(c)
		c.Status(http.StatusOK)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/checkins/abc", nil))
	if got != "POST /api/v1/checkins/:id" {
		t.Fatalf("scope = %q", got)
	}
}

func TestIdempotencyValidator_HeaderChecks(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name     string
		opts     IdempotencyOptions
		key      string
		wantCode int
		lookedUp bool
	}{
		{"no header", IdempotencyOptions{}, "", http.StatusNoContent, false},
		{"uuid", IdempotencyOptions{}, "0b6e2f3a-2d47-4b8e-9a43-1f0f5c1e2d3a", http.StatusNoContent, true},
		{"too long", IdempotencyOptions{MaxLen: 5}, "abcdef", http.StatusBadRequest, false},
		{"default cap", IdempotencyOptions{}, strings.Repeat("k", 201), http.StatusBadRequest, false},
		{"space", IdempotencyOptions{}, "two words", http.StatusBadRequest, false},
		{"custom pattern", IdempotencyOptions{Pattern: regexp.MustCompile(`^[0-9]+$`)}, "abc123", http.StatusBadRequest, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lookedUp := false
			r := gin.New()
			r.Use(func(c *gin.Context) { c.Set("userID", "u1"); c.Next() })
			r.Use(IdempotencyValidator(tc.opts, func(context.Context, string, string, string, time.Time) (string, bool, error) {
				lookedUp = true
				return "", false, nil
			}))
			r.POST("/checkins", func(c *gin.Context) { c.Status(http.StatusNoContent) })

			req := httptest.NewRequest(http.MethodPost, "/checkins", nil)
			if tc.key != "" {
				req.Header.Set(HeaderIdempotencyKey, tc.key)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.wantCode || lookedUp != tc.lookedUp {
				t.Fatalf("code=%d lookedUp=%v; want %d %v", w.Code, lookedUp, tc.wantCode, tc.lookedUp)
			}
			if tc.wantCode == http.StatusBadRequest {
				var body map[string]any
				if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["code"] != "bad_idempotency_key" {
					t.Fatalf("body %s (%v)", w.Body.String(), err)
				}
			}
		})
	}
}

func TestIdempotencyValidator_AnonymousSkipsLookup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	called := false
	r.Use(IdempotencyValidator(IdempotencyOptions{}, func(context.Context, string, string, string, time.Time) (string, bool, error) {
		called = true
		return "x", true, nil
	}))
	r.POST("/z", func(c *gin.Context) {
		if key, ok := GetIdempotencyKey(c); !ok || key != "abc-123" {
			t.Fatalf("expected stashed key abc-123, got %q ok=%v", key, ok)
		}
		if IsReplay(c) || IsRateBypass(c) {
			t.Fatalf("anonymous request must not replay")
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/z", nil)
	req.Header.Set(HeaderIdempotencyKey, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || called {
		t.Fatalf("code=%d called=%v", w.Code, called)
	}
}

func TestIdempotencyValidator_WithLookup(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		id         string
		exists     bool
		err        error
		wantReplay bool
	}{
		{"miss", "", false, nil, false},
		{"hit", "ci-1", true, nil, true},
		{"error is a miss", "ci-1", true, errors.New("db down"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(func(c *gin.Context) { c.Set("userID", "u9"); c.Next() })
			r.Use(IdempotencyValidator(IdempotencyOptions{}, func(_ context.Context, userID, scope, key string, now time.Time) (string, bool, error) {
				if userID != "u9" || scope != "POST /checkins" || key != "k-9" || now.IsZero() {
					t.Fatalf("lookup args: %q %q %q %v", userID, scope, key, now)
				}
				return tc.id, tc.exists, tc.err
			}))
			r.POST("/checkins", func(c *gin.Context) {
				if IsReplay(c) != tc.wantReplay || IsRateBypass(c) != tc.wantReplay {
					t.Fatalf("replay=%v bypass=%v want %v", IsReplay(c), IsRateBypass(c), tc.wantReplay)
				}
				if tc.wantReplay {
					if id, _ := ReplayResource(c); id != tc.id {
						t.Fatalf("resource = %q", id)
					}
				}
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/checkins", nil)
			req.Header.Set(HeaderIdempotencyKey, "k-9")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
		})
	}
}
