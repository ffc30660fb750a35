package api

import (
	"context"
	"net/http"
	"strings"

	domainerrors "github.com/carbontrack/carbontrack-server/internal/errors"
	"github.com/carbontrack/carbontrack-server/internal/ratelimit"
)

// loginRateLimiter limits authentication attempts per client IP.
type loginRateLimiter struct {
	limiter *ratelimit.KeyedRateLimiter
}

func newLoginRateLimiter(perMinute int) *loginRateLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &loginRateLimiter{limiter: ratelimit.PerMinute(perMinute)}
}

// check returns a RATE_LIMITED error once ip has used up its budget.
// A nil limiter allows everything.
func (l *loginRateLimiter) check(ip string) error {
	if l == nil || l.limiter.Allow(ip) {
		return nil
	}
	return domainerrors.RateLimited("Too many attempts. Please try again later.")
}

func (l *loginRateLimiter) stop() {
	if l != nil {
		l.limiter.Stop()
	}
}

// extractIP picks the client address from proxy headers, falling back to
// the connection's remote address.
func extractIP(xForwardedFor, xRealIP, remoteAddr string) string {
	if xForwardedFor != "" {
		first, _, _ := strings.Cut(xForwardedFor, ",")
		return strings.TrimSpace(first)
	}
	if xRealIP != "" {
		return xRealIP
	}
	if i := strings.LastIndexByte(remoteAddr, ':'); i >= 0 {
		return remoteAddr[:i]
	}
	return remoteAddr
}

// clientIP extracts the client IP from the request.
func clientIP(r *http.Request) string {
	return extractIP(r.Header.Get("X-Forwarded-For"), r.Header.Get("X-Real-IP"), r.RemoteAddr)
}

const clientIPKey ctxKey = "clientIP"

// clientIPMiddleware records the client IP so huma handlers, which never
// see the *http.Request, can key rate limits and sessions on it.
func clientIPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), clientIPKey, clientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}
