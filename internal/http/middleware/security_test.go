package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func serveSecurity(t *testing.T, opt SecurityOptions, pre gin.HandlerFunc, handler gin.HandlerFunc, req *http.Request) http.Header {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if pre != nil {
		r.Use(pre)
	}
	r.Use(SecurityHeaders(opt))
	r.GET("/ok", handler)
	if req == nil {
		req = httptest.NewRequest(http.MethodGet, "/ok", nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Header()
}

func okHandler(c *gin.Context) { c.String(http.StatusOK, "ok") }

func TestSecurityHeaders_Baseline(t *testing.T) {
	h := serveSecurity(t, SecurityOptions{}, func(c *gin.Context) {
		c.Header(requestIDHeader, "rid-123")
		c.Next()
	}, okHandler, nil)

	if h.Get("X-Content-Type-Options") != "nosniff" || h.Get("X-Frame-Options") != "DENY" || h.Get("Referrer-Policy") != "no-referrer" {
		t.Fatalf("baseline headers missing: %#v", h)
	}
	for _, k := range []string{"Permissions-Policy", "Cache-Control", "Pragma", "Strict-Transport-Security"} {
		if h.Get(k) != "" {
			t.Fatalf("unexpected %s: %q", k, h.Get(k))
		}
	}
	if h.Get("Access-Control-Expose-Headers") != requestIDHeader {
		t.Fatalf("expose header = %q", h.Get("Access-Control-Expose-Headers"))
	}
}

func TestSecurityHeaders_ExposeHeaderMerging(t *testing.T) {
	cases := map[string]string{
		"ETag":                 "ETag, X-Request-ID",
		"x-request-id, ETag":   "x-request-id, ETag",
		"ETag, Content-Length": "ETag, Content-Length, X-Request-ID",
		"X-Request-ID":         "X-Request-ID",
	}
	for existing, want := range cases {
		h := serveSecurity(t, SecurityOptions{}, func(c *gin.Context) {
			c.Header(requestIDHeader, "rid")
			c.Header("Access-Control-Expose-Headers", existing)
			c.Next()
		}, okHandler, nil)
		if got := h.Get("Access-Control-Expose-Headers"); got != want {
			t.Fatalf("existing %q: got %q want %q", existing, got, want)
		}
	}
}

func TestSecurityHeaders_CachePolicy(t *testing.T) {
	h := serveSecurity(t, SecurityOptions{CacheControl: CachePrivateRevalidate}, nil, okHandler, nil)
	if h.Get("Cache-Control") != CachePrivateRevalidate || h.Get("Pragma") != "" {
		t.Fatalf("private policy: %#v", h)
	}

	// handlers that set their own policy keep it
	h = serveSecurity(t, SecurityOptions{CacheControl: CachePrivateRevalidate}, func(c *gin.Context) {
		c.Header("Cache-Control", "public, max-age=60")
		c.Next()
	}, okHandler, nil)
	if h.Get("Cache-Control") != "public, max-age=60" {
		t.Fatalf("override lost: %q", h.Get("Cache-Control"))
	}

	// NoStore wins over CacheControl
	h = serveSecurity(t, SecurityOptions{NoStore: true, CacheControl: CachePrivateRevalidate}, nil, okHandler, nil)
	if h.Get("Cache-Control") != CacheNoStore || h.Get("Pragma") != "no-cache" || h.Get("Expires") != "0" {
		t.Fatalf("no-store headers: %#v", h)
	}
}

func TestSecurityHeaders_PolicyAndHSTS(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.TLS = &tls.ConnectionState{}
	h := serveSecurity(t, SecurityOptions{EnableHSTS: true, HSTSMaxAge: 24 * time.Hour, EnablePolicy: true}, nil, okHandler, req)

	if h.Get("Permissions-Policy") == "" || h.Get("X-Permitted-Cross-Domain-Policies") != "none" {
		t.Fatalf("missing policy headers: %#v", h)
	}
	if got := h.Get("Strict-Transport-Security"); got != "max-age=86400; includeSubDomains; preload" {
		t.Fatalf("HSTS = %q", got)
	}

	// default max-age, HTTPS via proxy header
	req = httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Forwarded-Proto", "HTTPS")
	h = serveSecurity(t, SecurityOptions{EnableHSTS: true}, nil, okHandler, req)
	if got := h.Get("Strict-Transport-Security"); got != "max-age=15552000; includeSubDomains; preload" {
		t.Fatalf("default HSTS = %q", got)
	}

	// never over plain HTTP
	h = serveSecurity(t, SecurityOptions{EnableHSTS: true}, nil, okHandler, nil)
	if h.Get("Strict-Transport-Security") != "" {
		t.Fatalf("HSTS over http")
	}
}
