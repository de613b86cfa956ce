// Package handlers implements the public HTTP API on top of the services
// package. Every failure is written as an ErrorResponse with a stable code
// (see errors.go); 5xx failures are also logged with the request-scoped
// logger.
package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-habit-backend/internal/http/middleware"
)

// ErrorResponse is the error envelope of every endpoint.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"resource not found"`
}

// fail aborts with an ErrorResponse. Server errors are logged.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: middleware.RequestIDFrom(c),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is fail for callers outside the package (router fallbacks).
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// okOrCreated writes 201 when the resource was created by this request and
// 200 when an existing one is returned.
func okOrCreated(c *gin.Context, created bool, body any) {
	if created {
		ok(c, http.StatusCreated, body)
		return
	}
	ok(c, http.StatusOK, body)
}

// noContent writes 204.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// listETag sets a weak ETag for a per-user list and reports whether the
// client already holds it, in which case 304 has been written. The tag
// changes whenever the row count, the newest row, or the page size does.
func listETag(c *gin.Context, kind, userID string, count int64, last *time.Time, limit int) bool {
	var ts int64
	if last != nil {
		ts = last.UnixMilli()
	}
	etag := fmt.Sprintf(`W/"%s:%s:%d:%d:%d"`, kind, userID, count, ts, limit)
	c.Header("ETag", etag)
	if etagMatches(c.GetHeader("If-None-Match"), etag) {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}

// etagMatches applies If-None-Match weak comparison: a list of tags or "*".
func etagMatches(header, etag string) bool {
	want := strings.TrimPrefix(etag, "W/")
	for _, cand := range strings.Split(header, ",") {
		cand = strings.TrimSpace(cand)
		if cand == "*" || (cand != "" && strings.TrimPrefix(cand, "W/") == want) {
			return true
		}
	}
	return false
}
