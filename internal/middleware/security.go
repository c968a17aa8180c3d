package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/AnshRaj112/vidtube-backend/internal/response"
	"github.com/AnshRaj112/vidtube-backend/pkg/clientip"
	"golang.org/x/time/rate"
)

const (
	headerXContentTypeOptions     = "X-Content-Type-Options"
	headerXFrameOptions           = "X-Frame-Options"
	headerReferrerPolicy          = "Referrer-Policy"
	headerContentSecurityPolicy   = "Content-Security-Policy"
	headerStrictTransportSecurity = "Strict-Transport-Security"
)

// SecurityHeaders sets security-related response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(headerXContentTypeOptions, "nosniff")
		w.Header().Set(headerXFrameOptions, "DENY")
		w.Header().Set(headerReferrerPolicy, "no-referrer")
		w.Header().Set(headerContentSecurityPolicy, "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set(headerStrictTransportSecurity, "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterTTL             = 30 * time.Minute
)

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// ipLimiters hands out one token bucket per client IP and forgets idle ones.
type ipLimiters struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	once    sync.Once
}

func newIPLimiters(limit rate.Limit, burst int) *ipLimiters {
	return &ipLimiters{entries: make(map[string]*limiterEntry), limit: limit, burst: burst}
}

func (l *ipLimiters) get(ip string) *rate.Limiter {
	l.once.Do(func() { go l.cleanup() })

	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[ip] = e
	}
	e.lastUse = time.Now()
	return e.limiter
}

func (l *ipLimiters) cleanup() {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()
	for range ticker.C {
		l.mu.Lock()
		now := time.Now()
		for ip, e := range l.entries {
			if now.Sub(e.lastUse) > limiterTTL {
				delete(l.entries, ip)
			}
		}
		l.mu.Unlock()
	}
}

func tooManyRequests(w http.ResponseWriter, msg string) {
	response.JSON(w, http.StatusTooManyRequests, response.Failure{Message: msg, Success: false})
}

// GlobalRateLimit limits each IP to rps requests per second with the given
// burst. Used when no Redis is configured.
func GlobalRateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	limiters := newIPLimiters(rate.Limit(rps), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiters.get(clientip.RealClientIP(r)).Allow() {
				tooManyRequests(w, "Too many requests. Please slow down.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

const (
	loginRateLimitEvery = 5 * time.Second
	loginRateLimitBurst = 3
)

// LoginRateLimit throttles credential endpoints per IP: one attempt every
// five seconds after a small burst. Other paths pass through.
func LoginRateLimit(paths ...string) func(http.Handler) http.Handler {
	limited := make(map[string]bool, len(paths))
	for _, p := range paths {
		limited[p] = true
	}
	limiters := newIPLimiters(rate.Every(loginRateLimitEvery), loginRateLimitBurst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limited[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			if !limiters.get(clientip.RealClientIP(r)).Allow() {
				tooManyRequests(w, "Too many login attempts. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
