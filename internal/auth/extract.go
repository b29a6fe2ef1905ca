package auth

import (
	"net/http"
	"strings"

	"github.com/janavani/api/internal/apperr"
)

// Cookie names shared with the session HTTP surface.
const (
	CookieAccessToken  = "access_token"
	CookieRefreshToken = "refresh_token"
)

// BearerFromRequest extracts a credential from the Authorization header or,
// failing that, from the named cookie. The header wins when both are present.
func BearerFromRequest(r *http.Request, cookieName string) (string, error) {
	header := r.Header.Get("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] != "" {
			return parts[1], nil
		}
		return "", apperr.Unauthenticated("malformed authorization header")
	}

	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	return "", apperr.Unauthenticated("not authenticated")
}
