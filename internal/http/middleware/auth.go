package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/janavani/api/internal/auth"
)

type contextKey string

const contextKeyIdentity contextKey = "identity"

// Auth validates the access credential from the Authorization header or the
// access_token cookie and injects the structured identity into the context.
func Auth(tokens *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.BearerFromRequest(r, auth.CookieAccessToken)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "not authenticated")
				return
			}

			identity, err := tokens.Verify(token, auth.KindAccess)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "invalid credential")
				return
			}

			ctx := context.WithValue(r.Context(), contextKeyIdentity, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity recovers the identity from the context.
func GetIdentity(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(contextKeyIdentity).(auth.Identity)
	return identity, ok
}

// WithIdentity injects an identity into the context (used by tests).
func WithIdentity(ctx context.Context, identity auth.Identity) context.Context {
	return context.WithValue(ctx, contextKeyIdentity, identity)
}

// RequireAdmin restricts a subtree to admin identities.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := GetIdentity(r.Context())
		if !ok || !identity.IsAdmin() {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
