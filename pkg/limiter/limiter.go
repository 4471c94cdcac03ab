package limiter

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Options configures a per-client-IP limiter for one route group. Every is
// the interval at which a client earns one request back; Burst is the bucket
// size; TTL is how long an idle client entry is kept before eviction. A
// non-positive TTL disables eviction.
type Options struct {
	Every   time.Duration
	Burst   int
	TTL     time.Duration
	Code    string
	Message string
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipLimiter struct {
	mu        sync.Mutex
	clients   map[string]*client
	opts      Options
	lastSweep time.Time
}

// Limit returns a gin middleware enforcing rps requests per second per
// client IP with the given burst.
func Limit(rps int, burst int, ttl time.Duration) gin.HandlerFunc {
	return LimitWith(Options{
		Every: time.Second / time.Duration(rps),
		Burst: burst,
		TTL:   ttl,
	})
}

// PerMinute returns a gin middleware allowing n requests per minute per
// client IP.
func PerMinute(n int, ttl time.Duration) gin.HandlerFunc {
	return LimitWith(Options{
		Every: time.Minute / time.Duration(n),
		Burst: n,
		TTL:   ttl,
	})
}

func LimitWith(opts Options) gin.HandlerFunc {
	if opts.Code == "" {
		opts.Code = "RATE_LIMIT_EXCEEDED"
	}
	if opts.Message == "" {
		opts.Message = "Too many requests from this IP, please try again later"
	}

	l := &ipLimiter{
		clients:   make(map[string]*client),
		opts:      opts,
		lastSweep: time.Now(),
	}

	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   opts.Message,
				"code":    opts.Code,
			})
			return
		}

		c.Next()
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.sweep(now)

	entry, ok := l.clients[ip]
	if !ok {
		entry = &client{limiter: rate.NewLimiter(rate.Every(l.opts.Every), l.opts.Burst)}
		l.clients[ip] = entry
	}
	entry.lastSeen = now

	return entry.limiter.Allow()
}

// sweep evicts idle entries at most once per TTL. Piggybacking on allow
// keeps the limiter goroutine-free; the map only grows while traffic flows,
// so that is also when it gets pruned. Callers must hold mu.
func (l *ipLimiter) sweep(now time.Time) {
	if l.opts.TTL <= 0 || now.Sub(l.lastSweep) < l.opts.TTL {
		return
	}
	l.lastSweep = now

	for ip, entry := range l.clients {
		if now.Sub(entry.lastSeen) > l.opts.TTL {
			delete(l.clients, ip)
		}
	}
}
