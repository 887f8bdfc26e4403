package middleware

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"clinic-scheduling-api/pkg/response"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Limiter decides whether one more request for key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type limiterEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

// MemoryLimiter is a token bucket per key, for single-instance deployments.
type MemoryLimiter struct {
	mu      sync.Mutex
	clients map[string]*limiterEntry
	r       rate.Limit
	burst   int
	idleTTL time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewMemoryLimiter(rps float64, burst int) *MemoryLimiter {
	if burst <= 0 {
		burst = 1
	}
	l := &MemoryLimiter{
		clients: make(map[string]*limiterEntry),
		r:       rate.Limit(rps),
		burst:   burst,
		idleTTL: 3 * time.Minute,
		stopCh:  make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.clients[key]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(l.r, l.burst)}
		l.clients[key] = e
	}
	e.seen = time.Now()
	return e.lim.Allow(), nil
}

func (l *MemoryLimiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-l.stopCh:
			return
		case now := <-ticker.C:
			l.evictIdle(now)
		}
	}
}

func (l *MemoryLimiter) evictIdle(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for key, e := range l.clients {
		if now.Sub(e.seen) > l.idleTTL {
			delete(l.clients, key)
			removed++
		}
	}
	return removed
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (l *MemoryLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RedisLimiter is a fixed-window counter shared by every API instance.
type RedisLimiter struct {
	rdb    *redis.Client
	limit  int64
	window time.Duration
	prefix string
}

// NewRedisLimiter allows burst requests per window, where the window is the
// time the configured rate needs to refill the burst.
func NewRedisLimiter(rdb *redis.Client, rps float64, burst int) *RedisLimiter {
	if burst <= 0 {
		burst = 1
	}
	window := time.Minute
	if rps > 0 {
		window = time.Duration(math.Ceil(float64(burst)/rps*1000)) * time.Millisecond
	}
	return &RedisLimiter{rdb: rdb, limit: int64(burst), window: window, prefix: "ratelimit:bookings"}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	res, err := fixedWindowScript.Run(ctx, l.rdb, []string{l.prefix + ":" + key}, l.window.Milliseconds()).Result()
	if err != nil {
		return false, err
	}
	var count int64
	switch v := res.(type) {
	case int64:
		count = v
	case string:
		count, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return false, err
		}
	default:
		return false, fmt.Errorf("unexpected rate limit script result %T", res)
	}
	return count <= l.limit, nil
}

// RateLimit throttles per authenticated caller, falling back to the client
// address. Limiter errors let the request through.
func RateLimit(limiter Limiter, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), rateLimitKey(r))
			if err != nil {
				log.Warnf("Failed to check rate limit: %+v", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				response.TooManyRequests(w, "Too many requests, slow down")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rateLimitKey(r *http.Request) string {
	if caller, ok := GetCallerFromContext(r.Context()); ok {
		return "user:" + caller.ID.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
