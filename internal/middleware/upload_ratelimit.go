package middleware

import (
	"net/http"
	"strconv"

	"github.com/AnshRaj112/vidtube-backend/pkg/clientip"
	"golang.org/x/time/rate"
)

// Uploads are limited per signed-in user: 10 per minute after a burst of 5.
// Requests that somehow reach it without a user are keyed by client IP.
const (
	uploadRPS   = 10.0 / 60
	uploadBurst = 5
)

// UploadRateLimit throttles media uploads. It runs behind Authenticate so a
// user switching networks shares one bucket.
func UploadRateLimit() func(http.Handler) http.Handler {
	limiters := newIPLimiters(rate.Limit(uploadRPS), uploadBurst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ip:" + clientip.RealClientIP(r)
			if u, ok := CurrentUser(r.Context()); ok {
				key = "user:" + u.ID.Hex()
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(uploadBurst))
			if !limiters.get(key).Allow() {
				w.Header().Set("X-RateLimit-Remaining", "0")
				tooManyRequests(w, "Too many uploads. Please slow down.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
