package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// client is the token bucket of one IP.
type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter returns a middleware that enforces per-IP rate limiting.
// maxRequests is the maximum number of requests allowed per minute per IP;
// the bucket refills evenly over the minute.
// Idle clients are swept every five minutes until ctx is done.
func RateLimiter(ctx context.Context, maxRequests int) gin.HandlerFunc {
	maxRequests = max(maxRequests, 1)
	every := rate.Every(time.Minute / time.Duration(maxRequests))

	var mu sync.Mutex
	clients := make(map[string]*client)

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			mu.Lock()
			now := time.Now()
			for ip, cl := range clients {
				if now.Sub(cl.lastSeen) > 2*time.Minute {
					delete(clients, ip)
				}
			}
			mu.Unlock()
		}
	}()

	exceeded := "Rate limit exceeded. Maximum " + strconv.Itoa(maxRequests) + " requests per minute."

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		mu.Lock()
		cl, ok := clients[ip]
		if !ok {
			cl = &client{limiter: rate.NewLimiter(every, maxRequests)}
			clients[ip] = cl
		}
		cl.lastSeen = now
		mu.Unlock()

		res := cl.limiter.ReserveN(now, 1)
		if delay := res.DelayFrom(now); delay > 0 {
			res.CancelAt(now)
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": exceeded})
			return
		}
		c.Next()
	}
}
