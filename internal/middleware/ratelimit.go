package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/liver-risk-server/internal/domain"
)

// ClientLimiter hands out one token bucket per client IP.
// Idle clients expire so the table stays bounded.
type ClientLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters *expirable.LRU[string, *rate.Limiter]
}

// NewClientLimiter creates a limiter table from configuration
func NewClientLimiter(cfg domain.RateLimitConfig) *ClientLimiter {
	return &ClientLimiter{
		limit:    rate.Limit(cfg.RequestsPerSecond),
		burst:    cfg.Burst,
		limiters: expirable.NewLRU[string, *rate.Limiter](cfg.MaxClients, nil, cfg.ClientTTL),
	}
}

// Allow reports whether client may make a request now
func (l *ClientLimiter) Allow(client string) bool {
	return l.limiter(client).Allow()
}

// RetryAfter estimates how long client must wait for the next token
func (l *ClientLimiter) RetryAfter(client string) time.Duration {
	r := l.limiter(client).Reserve()
	if !r.OK() {
		return time.Second
	}
	defer r.Cancel()
	return r.Delay()
}

func (l *ClientLimiter) limiter(client string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lim, ok := l.limiters.Get(client); ok {
		return lim
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	l.limiters.Add(client, lim)
	return lim
}

// RateLimit rejects requests from clients that have spent their token bucket.
func RateLimit(limiter *ClientLimiter, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		client := c.ClientIP()
		if limiter.Allow(client) {
			c.Next()
			return
		}

		retry := int(math.Ceil(limiter.RetryAfter(client).Seconds()))
		if retry < 1 {
			retry = 1
		}
		logger.WithFields(logrus.Fields{
			"correlation_id": c.GetString(CorrelationIDKey),
			"client_ip":      client,
		}).Warn("Rate limit exceeded")

		appErr := domain.NewAppError(domain.ErrRateLimit, "Too many requests. Please wait and try again.", "")
		appErr.RequestID = c.GetString(CorrelationIDKey)
		c.Header("Retry-After", strconv.Itoa(retry))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, appErr)
	}
}
