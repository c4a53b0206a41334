package auth

import (
	"net/http"
	"strings"

	"github.com/teknoblog/teknoblog/internal/middleware"
)

// Middleware returns HTTP middleware that validates a Bearer access token
// and injects the user ID into the request context. Requests without a
// valid access token are rejected with 401.
//
// The identity provider itself lives elsewhere; this layer only verifies
// tokens it is handed.
func Middleware(svc *JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w, r, "Missing access token")
				return
			}

			claims, err := svc.ValidateToken(token)
			if err != nil || claims.Type != TokenTypeAccess || claims.Subject == "" {
				unauthorized(w, r, "Invalid access token")
				return
			}

			ctx := middleware.SetUserID(r.Context(), claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from an Authorization: Bearer header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	ctx := middleware.SetErrorCode(r.Context(), "auth_failed")
	middleware.UpdateResponseContext(w, ctx)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"auth_failed","message":"` + message + `"}}`))
}
