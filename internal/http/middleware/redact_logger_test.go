package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-habit-backend/internal/domain"
)

func TestRedactingLogger_MasksHeadersAndQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Header(requestIDHeader, "rid-resp"); c.Next() })
	r.Use(RedactingLogger(RedactOptions{MaskHeaders: []string{HeaderDevUser}}))
	r.GET("/checkins/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodGet,
		"/checkins/42?email=a.b+tag@example.com&phone=+1-555-123-4567&ref=123e4567-e89b-12d3-a456-426614174000", nil)
	for k, v := range map[string]string{
		"Authorization":    "Bearer secret",
		"Cookie":           "sid=topsecret",
		"Stripe-Signature": "t=1,v1=abc",
		HeaderDevUser:      "dev-user",
		"X-Client-Note":    "email a@b.com id=123e4567-e89b-12d3-a456-426614174000 phone 555-123-4567",
	} {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(httptest.NewRecorder(), req)

	logs := buf.String()
	for _, want := range []string{
		`"level":"info"`,
		`"path":"/checkins/:id"`,
		`"request_id":"rid-resp"`,
		`[REDACTED:email]`, `[REDACTED:phone]`, `[REDACTED:id]`,
		`"Authorization":"[REDACTED]"`,
		`"Cookie":"[REDACTED]"`,
		`"Stripe-Signature":"[REDACTED]"`,
		`"` + http.CanonicalHeaderKey(HeaderDevUser) + `":"[REDACTED]"`,
		`"X-Client-Note":"email [REDACTED:email] id=[REDACTED:id] phone [REDACTED:phone]"`,
	} {
		if !strings.Contains(logs, want) {
			t.Fatalf("missing %s in logs: %s", want, logs)
		}
	}
	for _, leak := range []string{"secret", "topsecret", "dev-user", "a.b+tag@example.com"} {
		if strings.Contains(logs, leak) {
			t.Fatalf("leaked %q: %s", leak, logs)
		}
	}
}

func TestRedactingLogger_LevelsTierAndUnmatched(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	buf := captureLogger(t)

	r.Use(RequestID())
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/warn", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/error", withUser(&domain.User{ID: "u-9", Status: domain.StatusActive}), func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	for path, rid := range map[string]string{
		"/warn":  "rid-warn",
		"/error": "rid-err",
		"/checkins/123e4567-e89b-12d3-a456-426614174000/leak": "rid-miss",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(requestIDHeader, rid)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	logs := buf.String()
	for _, want := range []string{
		`"level":"warn"`, `"request_id":"rid-warn"`,
		`"level":"error"`, `"request_id":"rid-err"`, `"tier":"pro"`, `"user_id":"u-9"`,
		`"tier":"anonymous"`, `"path":"/checkins/[REDACTED:id]/leak"`,
	} {
		if !strings.Contains(logs, want) {
			t.Fatalf("missing %s in logs: %s", want, logs)
		}
	}
}

func TestRedactingLogger_AttachesScopedLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	buf := captureLogger(t)

	r.Use(RequestID())
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/x", func(c *gin.Context) {
		zerolog.Ctx(c.Request.Context()).Info().Msg("from service")
		LoggerFrom(c).Info().Msg("from handler")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "rid-ctx")
	r.ServeHTTP(httptest.NewRecorder(), req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 log lines, got %d: %s", len(lines), buf.String())
	}
	for _, l := range lines[:2] {
		if !strings.Contains(l, `"request_id":"rid-ctx"`) {
			t.Fatalf("scoped log line missing request id: %s", l)
		}
	}
}
