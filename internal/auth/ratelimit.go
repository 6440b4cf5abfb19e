package auth

import (
	"github.com/ariefcatur/erp-lite/internal/apperr"
	"golang.org/x/time/rate"
	"net"
	"net/http"
	"sync"
	"time"
)

var ErrTooManyAttempts = apperr.New(apperr.KindRateLimited, "TOO_MANY_ATTEMPTS", "too many attempts, try again later")

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     rate.Limit
	burst    int
	Fail     ErrorWriter
}

func NewRateLimiter(perSecond, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate.Limit(perSecond),
		burst:    burst,
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", "1")
			if rl.Fail != nil {
				rl.Fail(w, r, ErrTooManyAttempts)
			} else {
				http.Error(w, ErrTooManyAttempts.Message, http.StatusTooManyRequests)
			}
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Prune drops buckets idle for longer than idle.
func (rl *RateLimiter) Prune(idle time.Duration) {
	cutoff := time.Now().Add(-idle)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for k, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, k)
		}
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
