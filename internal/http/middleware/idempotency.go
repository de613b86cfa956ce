// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements Idempotency-Key support for unsafe methods. The
// validator checks the header, stashes the normalized key, and asks a lookup
// whether (user, scope, key) already produced a resource. On a hit the
// request is marked as a replay carrying the stored resource id, and rate
// limiting is bypassed. Handlers decide how to serve the replay; the
// middleware never writes a cached payload itself.
//
// Scope is the route template prefixed with the method
// ("POST /api/v1/checkins"), so one key may be reused across endpoints.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header carrying the idempotency key.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdemKey      = "idem.key"
	ctxKeyIdemReplay   = "idem.replay"   // bool
	ctxKeyIdemResource = "idem.resource" // string: resource id of the replay
	ctxKeyRateBypass   = "rate.bypass"   // bool: skip rate limiting
)

// GetIdempotencyKey returns the validated key stored by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether the request repeats a completed operation.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// ReplayResource returns the resource id recorded for a replayed request.
func ReplayResource(c *gin.Context) (string, bool) {
	if !IsReplay(c) {
		return "", false
	}
	s := c.GetString(ctxKeyIdemResource)
	return s, s != ""
}

// IdempotencyScope returns the scope under which the current request's key
// is recorded. It is empty for unmatched routes.
func IdempotencyScope(c *gin.Context) string {
	p := c.FullPath()
	if p == "" {
		return ""
	}
	return c.Request.Method + " " + p
}

// IdempotencyOptions configures header validation. TTL enforcement belongs
// to the lookup.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. Defaults to ^[A-Za-z0-9._~\-:]+$
	Pattern *regexp.Regexp
}

// IdempotencyLookup returns the resource id recorded for (userID, scope, key)
// when a still-valid record exists. Errors are treated as a miss.
type IdempotencyLookup func(ctx context.Context, userID, scope, key string, now time.Time) (resourceID string, exists bool, err error)

// IdempotencyValidator validates the Idempotency-Key header when present.
//
//   - No header: no-op.
//   - Invalid header: 400 {"code":"bad_idempotency_key"}.
//   - Authenticated request with a recorded result: replay + rate bypass.
//
// Anonymous requests are never matched against stored keys.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			abortJSON(c, http.StatusBadRequest, "bad_idempotency_key", "invalid Idempotency-Key")
			return
		}

		c.Set(ctxKeyIdemKey, key)

		uid := c.GetString("userID")
		scope := IdempotencyScope(c)
		if lookup != nil && uid != "" && scope != "" {
			id, exists, err := lookup(c.Request.Context(), uid, scope, key, time.Now().UTC())
			if err == nil && exists {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyIdemResource, id)
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}
