package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/securebank/secure-bank-be/internal/auth"
	"github.com/securebank/secure-bank-be/internal/http/respond"
)

type contextKey string

const userIDKey contextKey = "userID"

// Auth guards protected routes. It extracts the bearer token from the
// Authorization header, verifies it, and stores the authenticated user id in
// the request context. Missing and invalid credentials both produce the same
// 401 response; the distinction only appears in logs.
func Auth(tokens *auth.TokenManager, logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			respond.Error(w, http.StatusUnauthorized, "No token provided")
			return
		}

		identity, err := tokens.Verify(token)
		if err != nil {
			logger.Debug("rejected bearer token", "path", r.URL.Path, "error", err)
			respond.Error(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, identity.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated user id attached by Auth.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// bearerToken takes the second whitespace-separated field of the header, so
// "Bearer <token>" yields <token> and a bare token without a scheme is
// rejected.
func bearerToken(header string) string {
	fields := strings.Fields(header)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}
