package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RedactOptions lists extra headers (case-insensitive) whose values are
// replaced with "[REDACTED]" in request logs.
type RedactOptions struct {
	MaskHeaders []string
}

// scrubbers run in order; the phone pattern is the loosest so it goes last,
// after UUIDs have already been replaced.
var scrubbers = []struct {
	re          *regexp.Regexp
	placeholder string
}{
	{regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}\b`), "[REDACTED:id]"},
	{regexp.MustCompile(`(?i)\b[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}\b`), "[REDACTED:email]"},
	// digits only, so hex runs are not mistaken for numbers
	{regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`), "[REDACTED:phone]"},
}

// credentialHeaders are always masked, in lower case.
var credentialHeaders = []string{"authorization", "cookie", "set-cookie", "stripe-signature"}

func scrub(s string) string {
	for _, sc := range scrubbers {
		if s == "" {
			break
		}
		s = sc.re.ReplaceAllString(s, sc.placeholder)
	}
	return s
}

// levelFor picks the access-log level from the response status.
func levelFor(status int) *zerolog.Event {
	if status >= 500 {
		return log.Error()
	}
	if status >= 400 {
		return log.Warn()
	}
	return log.Info()
}

// RedactingLogger logs one line per request: route, scrubbed query and
// headers, status, size, latency, user and tier. Bodies are never logged
// since check-in notes can carry health details. Emails, phone numbers and
// UUIDs are scrubbed; credential headers are masked entirely.
//
// It also installs the request-scoped logger (request_id field) under the
// "logger" key and on the request context, so services using
// zerolog.Ctx(ctx) inherit it.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	masked := make(map[string]bool, len(credentialHeaders)+len(opts.MaskHeaders))
	for _, h := range append(append([]string(nil), credentialHeaders...), opts.MaskHeaders...) {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			masked[h] = true
		}
	}

	return func(c *gin.Context) {
		began := time.Now()
		rid := RequestIDFrom(c)

		scoped := log.With().Str("request_id", rid).Logger()
		c.Set("logger", &scoped)
		c.Request = c.Request.WithContext(scoped.WithContext(c.Request.Context()))

		hdrs := make(map[string]string, len(c.Request.Header))
		for name, values := range c.Request.Header {
			if masked[strings.ToLower(name)] {
				hdrs[name] = "[REDACTED]"
			} else {
				hdrs[name] = scrub(strings.Join(values, ", "))
			}
		}

		c.Next()

		route := c.FullPath()
		if route == "" {
			// unmatched: the raw path may carry identifiers
			route = scrub(c.Request.URL.Path)
		}
		status := c.Writer.Status()

		levelFor(status).
			Str("request_id", rid).
			Str("method", c.Request.Method).
			Str("path", route).
			Str("query", scrub(c.Request.URL.RawQuery)).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(began)).
			Str("user_id", c.GetString("userID")).
			Str("tier", tierLabel(c)).
			Bool("replay", IsReplay(c)).
			Interface("headers", hdrs).
			Msg("http_request")
	}
}
