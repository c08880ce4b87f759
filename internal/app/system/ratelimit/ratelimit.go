// Package ratelimit throttles requests per key using token buckets.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/ejchub/internal/app/system/respond"
	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per key. Idle buckets are pruned after maxIdle.
type Limiter struct {
	limit   rate.Limit
	burst   int
	maxIdle time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// New creates a Limiter allowing perMinute events per minute per key,
// with bursts of up to burst.
func New(perMinute, burst int) *Limiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   burst,
		maxIdle: 10 * time.Minute,
		buckets: make(map[string]*bucket),
	}
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if b, ok := l.buckets[key]; ok {
		b.seen = now
		return b.lim
	}

	for k, b := range l.buckets {
		if now.Sub(b.seen) > l.maxIdle {
			delete(l.buckets, k)
		}
	}

	lim := rate.NewLimiter(l.limit, l.burst)
	l.buckets[key] = &bucket{lim: lim, seen: now}
	return lim
}

// Allow reports whether an event for key may happen now, consuming a token if so.
func (l *Limiter) Allow(key string) bool {
	return l.get(key).Allow()
}

// Reset forgets key, giving it a full bucket on the next call.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

// Middleware applies the limiter by client IP and answers 429 when exhausted.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(ClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			respond.Error(w, http.StatusTooManyRequests, "rate_limited", "Limite de requisições excedido")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP extracts the client IP from an HTTP request.
// It checks X-Forwarded-For and X-Real-IP headers first (for proxied requests),
// then falls back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter throttles login attempts both per IP and per username:
// distributed guessing against one account and one client spraying many
// accounts are both slowed down.
type LoginLimiter struct {
	ip       *Limiter
	username *Limiter
}

// NewLoginLimiter creates a login limiter. The per-username bucket is half
// the per-IP rate (at least one per minute).
func NewLoginLimiter(perMinute, burst int) *LoginLimiter {
	userRate := perMinute / 2
	if userRate < 1 {
		userRate = 1
	}
	userBurst := burst / 2
	if userBurst < 1 {
		userBurst = 1
	}
	return &LoginLimiter{
		ip:       New(perMinute, burst),
		username: New(userRate, userBurst),
	}
}

// Check verifies if a login attempt should be allowed.
// Returns (allowed, reason) where reason is shown to the user when blocked.
func (ll *LoginLimiter) Check(r *http.Request, username string) (bool, string) {
	if !ll.ip.Allow(ClientIP(r)) {
		return false, "Muitas tentativas de login. Aguarde um minuto e tente novamente."
	}
	if key := strings.ToLower(strings.TrimSpace(username)); key != "" {
		if !ll.username.Allow(key) {
			return false, "Muitas tentativas para este usuário. Aguarde alguns minutos."
		}
	}
	return true, ""
}

// ResetUsername clears the per-username bucket after a successful login.
func (ll *LoginLimiter) ResetUsername(username string) {
	if key := strings.ToLower(strings.TrimSpace(username)); key != "" {
		ll.username.Reset(key)
	}
}
