package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"cobranzas/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ── API rate limiter ──────────────────────────────────────────────────────────
// Fixed window per client IP. With Redis the window is shared by every
// instance (INCR + PEXPIRE); without it, or while Redis errors, each process
// counts in memory; expired windows are dropped at most once per window.

type RateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	entries   map[string]*rateEntry
	nextPurge time.Time
}

type rateEntry struct {
	count     int
	windowEnd time.Time
}

func NewRateLimiter(rdb *redis.Client, limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 600
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		rdb:     rdb,
		limit:   limit,
		window:  window,
		now:     time.Now,
		entries: make(map[string]*rateEntry),
	}
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, reset := l.allow(c.Request.Context(), c.ClientIP())
		if !ok {
			secs := int(math.Ceil(reset.Sub(l.now()).Seconds()))
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.NewCode("demasiadas_solicitudes", "Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}

func (l *RateLimiter) allow(ctx context.Context, ip string) (bool, time.Time) {
	if l.rdb != nil {
		ok, reset, err := l.allowRedis(ctx, ip)
		if err == nil {
			return ok, reset
		}
		log.Warn().Err(err).Msg("rate limiter: redis no disponible, contando en memoria")
	}
	return l.allowMemory(ip)
}

func (l *RateLimiter) allowRedis(ctx context.Context, ip string) (bool, time.Time, error) {
	now := l.now()
	slot := now.UnixNano() / int64(l.window)
	key := fmt.Sprintf("ratelimit:%s:%d", ip, slot)
	reset := time.Unix(0, (slot+1)*int64(l.window))

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.PExpire(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, reset, err
	}
	return incr.Val() <= int64(l.limit), reset, nil
}

func (l *RateLimiter) allowMemory(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.After(l.nextPurge) {
		l.purgeExpiredLocked(now)
		l.nextPurge = now.Add(l.window)
	}
	e, ok := l.entries[ip]
	if !ok || now.After(e.windowEnd) {
		e = &rateEntry{windowEnd: now.Add(l.window)}
		l.entries[ip] = e
	}
	e.count++
	return e.count <= l.limit, e.windowEnd
}

func (l *RateLimiter) purgeExpiredLocked(now time.Time) int {
	purged := 0
	for ip, e := range l.entries {
		if now.After(e.windowEnd) {
			delete(l.entries, ip)
			purged++
		}
	}
	if purged > 0 {
		log.Debug().Int("purged", purged).Int("remaining", len(l.entries)).Msg("rate limiter entries purged")
	}
	return purged
}
