package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/janavani/api/internal/apperr"
	"github.com/janavani/api/internal/auth"
	"github.com/janavani/api/internal/http/middleware"
	"github.com/janavani/api/internal/identity"
	"github.com/janavani/api/internal/user"
)

// UserStore is the account surface the session handler depends on.
type UserStore interface {
	UpsertByEmail(ctx context.Context, email, providerSubject string) (user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (user.Profile, error)
}

// SessionHandler owns login, refresh, logout and the current-user endpoint.
type SessionHandler struct {
	broker identity.Broker
	users  UserStore
	tokens *auth.Manager
}

// NewSessionHandler wires the session surface.
func NewSessionHandler(broker identity.Broker, users UserStore, tokens *auth.Manager) *SessionHandler {
	return &SessionHandler{broker: broker, users: users, tokens: tokens}
}

// RegisterPublic mounts the endpoints that run before authentication.
func (h *SessionHandler) RegisterPublic(r chi.Router) {
	r.Get("/auth/callback", h.callback)
	r.Post("/auth/refresh-token", h.refresh)
	r.Post("/auth/logout", h.logout)
}

// RegisterPrivate mounts the endpoints behind the auth middleware.
func (h *SessionHandler) RegisterPrivate(r chi.Router) {
	r.Get("/me", h.getMe)
}

// callback finishes the login flow: the authorization code is exchanged for
// an identity assertion, the account row is upserted, and both credentials
// are issued as cookies and in the body.
func (h *SessionHandler) callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		WriteAppError(w, apperr.Validation("code query parameter is required"))
		return
	}

	assertion, err := h.broker.Exchange(r.Context(), code)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	account, err := h.users.UpsertByEmail(r.Context(), assertion.Email, assertion.Subject)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	subject := auth.Identity{Subject: account.ID, Email: account.Email}
	if profile, err := h.users.GetProfile(r.Context(), account.ID); err == nil {
		subject.Role = profile.Role
	} else if !apperr.Is(err, apperr.KindNotFound) {
		WriteAppError(w, err)
		return
	}

	accessToken, err := h.tokens.Issue(subject, auth.KindAccess)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	refreshToken, err := h.tokens.Issue(subject, auth.KindRefresh)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	setAuthCookie(w, auth.CookieAccessToken, accessToken, int(h.tokens.TTL(auth.KindAccess).Seconds()))
	setAuthCookie(w, auth.CookieRefreshToken, refreshToken, int(h.tokens.TTL(auth.KindRefresh).Seconds()))

	WriteJSON(w, http.StatusOK, map[string]any{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"token_type":    "bearer",
	})
}

// refresh issues a new access credential from a valid refresh credential
// taken from the cookie or the body. The refresh credential stays valid.
func (h *SessionHandler) refresh(w http.ResponseWriter, r *http.Request) {
	token := ""
	if cookie, err := r.Cookie(auth.CookieRefreshToken); err == nil {
		token = cookie.Value
	}
	if token == "" {
		var payload struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err == nil {
			token = payload.RefreshToken
		}
	}
	if token == "" {
		WriteAppError(w, apperr.Unauthenticated("refresh token missing"))
		return
	}

	accessToken, err := h.tokens.Refresh(token)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	setAuthCookie(w, auth.CookieAccessToken, accessToken, int(h.tokens.TTL(auth.KindAccess).Seconds()))

	WriteJSON(w, http.StatusOK, map[string]any{
		"access_token": accessToken,
		"token_type":   "bearer",
	})
}

// logout clears the credential cookies. Issued credentials are not revoked
// server-side; they lapse at their own expiry.
func (h *SessionHandler) logout(w http.ResponseWriter, r *http.Request) {
	clearAuthCookie(w, auth.CookieAccessToken)
	clearAuthCookie(w, auth.CookieRefreshToken)

	WriteJSON(w, http.StatusOK, map[string]any{"message": "logged out"})
}

func (h *SessionHandler) getMe(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.GetIdentity(r.Context())
	if !ok {
		WriteAppError(w, apperr.Unauthenticated("not authenticated"))
		return
	}

	account, err := h.users.GetByID(r.Context(), subject.Subject)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	response := map[string]any{
		"id":         account.ID,
		"email":      account.Email,
		"created_at": account.CreatedAt,
	}

	profile, err := h.users.GetProfile(r.Context(), subject.Subject)
	switch {
	case err == nil:
		response["fullname"] = profile.FullName
		response["role"] = profile.Role
	case !apperr.Is(err, apperr.KindNotFound):
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, response)
}

func setAuthCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearAuthCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}
