package ratelimit

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"image-bridge/internal/auth"
)

// Limiter decides whether a caller may proceed.
type Limiter interface {
	// Allow checks if a request is allowed for a given identifier (credential or client IP).
	Allow(identifier string) bool
}

// NewInMemoryRateLimiter creates one token bucket per identifier with the
// given rate and burst.
func NewInMemoryRateLimiter(r rate.Limit, b int) Limiter {
	return &inMemoryRateLimiter{
		rate:    r,
		burst:   b,
		clients: make(map[string]*rate.Limiter),
	}
}

type inMemoryRateLimiter struct {
	rate    rate.Limit
	burst   int
	clients map[string]*rate.Limiter
	mu      sync.Mutex
}

func (l *inMemoryRateLimiter) Allow(identifier string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.clients[identifier]
	if !exists {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.clients[identifier] = limiter
	}

	return limiter.Allow()
}

// Middleware rejects callers over their budget with the rejected handler.
// Callers are keyed by bearer credential, falling back to the remote address.
// It must run after auth.Middleware.
func Middleware(l Limiter, rejected http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(identify(r)) {
				rejected(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func identify(r *http.Request) string {
	if credential, ok := auth.GetCredential(r.Context()); ok {
		return "key:" + credential
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
