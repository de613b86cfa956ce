package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Cache policies for SecurityOptions.CacheControl.
const (
	// CachePrivateRevalidate lets the client keep a copy but forces an
	// If-None-Match round trip; shared caches must not store it.
	CachePrivateRevalidate = "private, no-cache"
	// CacheNoStore forbids caching entirely.
	CacheNoStore = "no-store"
)

// SecurityOptions configures SecurityHeaders.
type SecurityOptions struct {
	EnableHSTS   bool          // only when TLS terminates in front of the app for every hop
	HSTSMaxAge   time.Duration // <= 0 means 180 days
	NoStore      bool          // shorthand for CacheControl = CacheNoStore
	CacheControl string        // applied to every response that did not set its own
	EnablePolicy bool          // Permissions-Policy and X-Permitted-Cross-Domain-Policies
}

// SecurityHeaders sets the baseline hardening headers for a JSON API.
// Check-ins and feedback are personal health data, so the cache policy is
// applied to every response; handlers may override Cache-Control.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := opt.HSTSMaxAge
	if maxAge <= 0 {
		maxAge = 180 * 24 * time.Hour
	}
	hsts := "max-age=" + strconv.FormatInt(int64(maxAge/time.Second), 10) + "; includeSubDomains; preload"

	cacheControl := opt.CacheControl
	if opt.NoStore {
		cacheControl = CacheNoStore
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			// photos are captured by the client app, never on an API origin
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}

		if cacheControl != "" && h.Get("Cache-Control") == "" {
			h.Set("Cache-Control", cacheControl)
			if cacheControl == CacheNoStore {
				h.Set("Pragma", "no-cache")
				h.Set("Expires", "0")
			}
		}

		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}

		if h.Get(requestIDHeader) != "" {
			exposeHeader(h, requestIDHeader)
		}

		c.Next()
	}
}

// exposeHeader appends name to Access-Control-Expose-Headers once.
func exposeHeader(h http.Header, name string) {
	const key = "Access-Control-Expose-Headers"
	cur := h.Get(key)
	switch {
	case cur == "":
		h.Set(key, name)
	case !strings.Contains(strings.ToLower(cur), strings.ToLower(name)):
		h.Set(key, cur+", "+name)
	}
}

// isHTTPS reports whether r arrived over TLS, directly or through a proxy
// that set X-Forwarded-Proto.
func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
