package api

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// rateLimitEntry tracks request counts for a single IP address.
type rateLimitEntry struct {
	count   int
	resetAt time.Time
}

// rateLimiter provides per-IP rate limiting. It limits to maxRequests per
// window per IP to prevent scripted abuse of the public read endpoints.
type rateLimiter struct {
	mu          sync.Mutex
	entries     map[string]*rateLimitEntry
	maxRequests int
	window      time.Duration
}

// newRateLimiter creates a rate limiter with the given limits.
func newRateLimiter(maxRequests int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		entries:     make(map[string]*rateLimitEntry),
		maxRequests: maxRequests,
		window:      window,
	}
}

// allow checks if the given IP may make another request.
// Returns (allowed, secondsUntilReset).
func (rl *rateLimiter) allow(ip string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	// Lazy cleanup: remove expired entries.
	for k, e := range rl.entries {
		if now.After(e.resetAt) {
			delete(rl.entries, k)
		}
	}

	entry, ok := rl.entries[ip]
	if !ok {
		rl.entries[ip] = &rateLimitEntry{count: 1, resetAt: now.Add(rl.window)}
		return true, 0
	}

	if now.After(entry.resetAt) {
		entry.count = 1
		entry.resetAt = now.Add(rl.window)
		return true, 0
	}

	if entry.count >= rl.maxRequests {
		retryAfter := int(entry.resetAt.Sub(now).Seconds()) + 1
		if retryAfter < 1 {
			retryAfter = 1
		}
		return false, retryAfter
	}

	entry.count++
	return true, 0
}

// isLocalhost checks if the request originates from a loopback address.
// X-Forwarded-For is intentionally NOT trusted (an attacker could spoof it).
func isLocalhost(r *http.Request) bool {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return host == "127.0.0.1" || host == "::1" || host == "localhost"
}

// rateLimitMiddleware wraps an http.Handler with per-IP rate limiting.
// Localhost requests are exempt. When the limit is exceeded, responds with
// 429 Too Many Requests and a Retry-After header.
func rateLimitMiddleware(maxRequests int, window time.Duration, next http.Handler) http.Handler {
	limiter := newRateLimiter(maxRequests, window)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isLocalhost(r) {
			next.ServeHTTP(w, r)
			return
		}

		clientIP, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			clientIP = r.RemoteAddr
		}

		allowed, retryAfter := limiter.allow(clientIP)
		if !allowed {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = fmt.Fprintf(w, `{"kind":%q,"error":"rate limit exceeded"}`, kindRateLimited)
			return
		}

		next.ServeHTTP(w, r)
	})
}
