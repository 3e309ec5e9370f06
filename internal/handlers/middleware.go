package handlers

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"expense-service/internal/auth"
)

// TokenAuth verifies an optional "Authorization: Bearer <token>" header and
// stores the claims in the request context. Requests without the header
// pass through unless required is set.
func TokenAuth(issuer auth.Issuer, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				if required {
					writeMessage(w, http.StatusUnauthorized, "Authorization required")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				writeMessage(w, http.StatusUnauthorized, "Invalid authorization header")
				return
			}
			claims, err := issuer.Verify(strings.TrimSpace(token))
			if err != nil {
				writeMessage(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimiter keeps one token bucket per client address.
type RateLimiter struct {
	limit     rate.Limit
	burst     int
	expiresIn time.Duration
	now       func() time.Time

	mu       sync.Mutex
	clients  map[string]*client
	lastScan time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows rps requests per second per client with the given
// burst. Clients idle for longer than expiresIn are forgotten.
func NewRateLimiter(rps float64, burst int, expiresIn time.Duration) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	if expiresIn <= 0 {
		expiresIn = 3 * time.Minute
	}
	return &RateLimiter{
		limit:     rate.Limit(rps),
		burst:     burst,
		expiresIn: expiresIn,
		now:       time.Now,
		clients:   make(map[string]*client),
	}
}

// Allow reports whether a request from key may proceed.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastScan) > l.expiresIn {
		for k, c := range l.clients {
			if now.Sub(c.lastSeen) > l.expiresIn {
				delete(l.clients, k)
			}
		}
		l.lastScan = now
	}

	c, ok := l.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// Middleware rejects requests over the limit with 429.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientAddr(r)) {
			writeMessage(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
