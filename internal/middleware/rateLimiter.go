package middleware

import (
	"sync"
	"time"

	"github.com/akolanti/newschat/internal/config"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

var limiterInstance = NewIPRateLimiter(rate.Limit(config.RATE_LIMIT_PER_SECOND), config.BURST_RATE_LIMIT, config.RateLimiterIdleExpiry)

// IPRateLimiter hands out one token bucket per client ip. Buckets unused for
// the idle expiry are evicted.
type IPRateLimiter struct {
	ips       *cache.Cache
	mu        sync.Mutex
	rateLimit rate.Limit
	burstRate int
}

func NewIPRateLimiter(r rate.Limit, b int, idleExpiry time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		ips:       cache.New(idleExpiry, idleExpiry),
		rateLimit: r,
		burstRate: b,
	}
}

func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	var limiter *rate.Limiter
	if v, ok := i.ips.Get(ip); ok {
		limiter = v.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(i.rateLimit, i.burstRate)
	}
	// re-set on every hit so the expiry slides
	i.ips.SetDefault(ip, limiter)
	return limiter
}

func (i *IPRateLimiter) Len() int {
	return i.ips.ItemCount()
}
