package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// clientLimiter stores the fallback rate limiter for a specific client.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterMiddleware limits signup-type endpoints per client IP. The
// primary store is a Redis fixed window so limits survive process restarts
// and apply across horizontally scaled instances; when Redis is unreachable
// it degrades to an in-process token bucket per client.
type RateLimiterMiddleware struct {
	rdb     *redis.Client
	limit   int
	window  time.Duration
	clients map[string]*clientLimiter
	mu      sync.Mutex
}

// NewRateLimiterMiddleware creates a new RateLimiterMiddleware.
func NewRateLimiterMiddleware(rdb *redis.Client, limit int, window time.Duration) *RateLimiterMiddleware {
	rm := &RateLimiterMiddleware{
		rdb:     rdb,
		limit:   limit,
		window:  window,
		clients: make(map[string]*clientLimiter),
	}
	// Clean up old fallback entries in the background
	go rm.cleanupClients()
	return rm
}

// allowRedis runs the fixed-window check in Redis. The second return value
// reports whether Redis answered at all.
func (rm *RateLimiterMiddleware) allowRedis(ctx context.Context, key string) (bool, bool) {
	count, err := rm.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, false
	}
	if count == 1 {
		// First hit opens the window.
		if err := rm.rdb.Expire(ctx, key, rm.window).Err(); err != nil {
			log.Printf("Rate limiter: failed to set expiry on %s: %v", key, err)
		}
	}
	return count <= int64(rm.limit), true
}

// allowLocal is the in-process fallback when Redis is down.
func (rm *RateLimiterMiddleware) allowLocal(identifier string) bool {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	cl, exists := rm.clients[identifier]
	if !exists {
		perSecond := rate.Limit(float64(rm.limit) / rm.window.Seconds())
		cl = &clientLimiter{limiter: rate.NewLimiter(perSecond, rm.limit)}
		rm.clients[identifier] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter.Allow()
}

// cleanupClients periodically removes old fallback entries from the map.
func (rm *RateLimiterMiddleware) cleanupClients() {
	for {
		time.Sleep(10 * time.Minute)
		rm.mu.Lock()
		for id, client := range rm.clients {
			if time.Since(client.lastSeen) > 30*time.Minute {
				delete(rm.clients, id)
			}
		}
		rm.mu.Unlock()
	}
}

// Limit creates the Gin middleware handler.
func (rm *RateLimiterMiddleware) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		identifier := fmt.Sprintf("%s|%s", c.ClientIP(), c.FullPath())

		allowed := false
		if rm.rdb != nil {
			windowStart := time.Now().Unix() / int64(rm.window.Seconds())
			key := fmt.Sprintf("ratelimit:%s:%d", identifier, windowStart)
			ok, answered := rm.allowRedis(c.Request.Context(), key)
			if answered {
				allowed = ok
			} else {
				allowed = rm.allowLocal(identifier)
			}
		} else {
			allowed = rm.allowLocal(identifier)
		}

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		c.Next()
	}
}
