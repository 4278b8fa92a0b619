package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/hadealahmad/anonymous-messages/config"
	"github.com/hadealahmad/anonymous-messages/utils"
)

const visitorTTL = 5 * time.Minute

// visitor tracks one client's token bucket. Entries idle for visitorTTL are
// dropped so the map does not grow with every IP that ever hit the API.
type visitor struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

type visitorTable struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
}

func newVisitorTable(perMinute int) *visitorTable {
	perMinute = max(perMinute, 1)
	return &visitorTable{
		visitors: map[string]*visitor{},
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    max(perMinute/2, 1),
	}
}

func (t *visitorTable) allow(key string) bool {
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.visitors[key]
	if !ok {
		t.sweepLocked(now)
		v = &visitor{bucket: rate.NewLimiter(t.limit, t.burst)}
		t.visitors[key] = v
	}
	v.lastSeen = now
	return v.bucket.Allow()
}

func (t *visitorTable) sweepLocked(now time.Time) {
	for key, v := range t.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(t.visitors, key)
		}
	}
}

// RateLimitMiddleware throttles requests per client IP with a token bucket.
// The sustained rate comes from RATE_LIMIT_PER_MINUTE; bursts of up to half a
// minute's budget are absorbed.
func RateLimitMiddleware() gin.HandlerFunc {
	table := newVisitorTable(config.Get().RateLimitPerMinute)

	return func(ctx *gin.Context) {
		if !table.allow(ctx.ClientIP()) {
			ctx.Header("Retry-After", "60")
			utils.Error(ctx, http.StatusTooManyRequests, 42901, "rate limit exceeded")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
