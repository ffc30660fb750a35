package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carbontrack/carbontrack-server/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

const (
	companyIDKey ctxKey = "companyID"
	sessionIDKey ctxKey = "sessionID"
)

// GetCompanyID returns the authenticated company ID from context.
// Returns 401 error if the request is not authenticated.
func GetCompanyID(ctx context.Context) (string, error) {
	companyID, ok := ctx.Value(companyIDKey).(string)
	if !ok || companyID == "" {
		return "", huma.Error401Unauthorized("Authentication required")
	}
	return companyID, nil
}

// getSessionID returns the session the access token was issued for.
func getSessionID(ctx context.Context) string {
	sid, _ := ctx.Value(sessionIDKey).(string)
	return sid
}

// companyFromRequest resolves the authenticated company for plain
// http.Handlers such as the SSE stream.
func companyFromRequest(r *http.Request) (string, bool) {
	companyID, err := GetCompanyID(r.Context())
	return companyID, err == nil
}

// authMiddleware returns a middleware that validates Bearer tokens and stores
// the company and session IDs in context. If no token is present or it is
// invalid, the request continues unauthenticated; handlers use GetCompanyID
// to reject it.
func authMiddleware(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.VerifyAccessToken(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), companyIDKey, claims.CompanyID)
			ctx = context.WithValue(ctx, sessionIDKey, claims.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
