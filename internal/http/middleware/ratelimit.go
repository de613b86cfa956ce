package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// KeyFunc selects the bucket a request draws from.
type KeyFunc func(*gin.Context) string

// KeyByUserOrIP keys authenticated requests by user ("user:<id>") and
// everything else by client IP ("ip:<addr>").
func KeyByUserOrIP() KeyFunc {
	return func(c *gin.Context) string {
		if s := c.GetString("userID"); s != "" {
			return "user:" + s
		}
		return "ip:" + c.ClientIP()
	}
}

// RateLimitOptions configures NewRateLimiter.
type RateLimitOptions struct {
	RPS   float64 // refill rate in tokens per second
	Burst int     // bucket size; <= 0 means 1
	Key   KeyFunc // nil means KeyByUserOrIP

	// Costs charges some routes more than one token. Keys are
	// "METHOD /full/route/path" as registered with gin; a cost larger than
	// Burst is clamped to Burst.
	Costs map[string]int

	IdleTTL time.Duration // idle buckets are dropped after this; <= 0 means 10m
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a process-local token-bucket limiter with one bucket per
// key. LLM-backed routes can be given a higher cost so a user cannot burn
// through provider spend at the same pace as cheap reads.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	key     KeyFunc
	costs   map[string]int
	idleTTL time.Duration
	now     func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

// NewRateLimiter builds a limiter from opts.
func NewRateLimiter(opts RateLimitOptions) *RateLimiter {
	rl := &RateLimiter{
		limit:   rate.Limit(opts.RPS),
		burst:   max(opts.Burst, 1),
		key:     opts.Key,
		costs:   make(map[string]int, len(opts.Costs)),
		idleTTL: opts.IdleTTL,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
	if rl.key == nil {
		rl.key = KeyByUserOrIP()
	}
	if rl.idleTTL <= 0 {
		rl.idleTTL = 10 * time.Minute
	}
	for route, n := range opts.Costs {
		rl.costs[route] = min(max(n, 1), rl.burst)
	}
	return rl
}

// cost returns the tokens charged for the matched route.
func (rl *RateLimiter) cost(c *gin.Context) int {
	if n, ok := rl.costs[c.Request.Method+" "+c.FullPath()]; ok {
		return n
	}
	return 1
}

// bucketFor returns the limiter for key, creating it when absent. Idle
// buckets are swept at most once per IdleTTL, before the lookup, so a stale
// bucket for key itself starts over full.
func (rl *RateLimiter) bucketFor(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) >= rl.idleTTL {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) >= rl.idleTTL {
				delete(rl.buckets, k)
			}
		}
		rl.lastSweep = now
	}

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	return b.lim
}

// IsRateBypass reports whether IdempotencyValidator marked the request as
// a replay. Replays are not charged.
func IsRateBypass(c *gin.Context) bool {
	v, _ := c.Get(ctxKeyRateBypass)
	b, _ := v.(bool)
	return b
}

// Handler enforces the limits. Rejected requests get 429 with a
// Retry-After header (whole seconds, at least 1) and the standard error body
// with code "rate_limited".
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}

		now := rl.now()
		n := rl.cost(c)
		r := rl.bucketFor(rl.key(c), now).ReserveN(now, n)
		delay := r.DelayFrom(now)
		if r.OK() && delay == 0 {
			c.Next()
			return
		}
		r.CancelAt(now)

		retry := 1
		if r.OK() {
			retry = max(int(math.Ceil(delay.Seconds())), 1)
		}
		rateLimited.WithLabelValues(routeLabel(c)).Inc()
		c.Header("Retry-After", strconv.Itoa(retry))
		abortJSON(c, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
	}
}
