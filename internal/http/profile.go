package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/janavani/api/internal/apperr"
	"github.com/janavani/api/internal/http/middleware"
	"github.com/janavani/api/internal/user"
)

// ProfileStore is the profile surface the handler depends on.
type ProfileStore interface {
	CreateProfile(ctx context.Context, p user.Profile) error
	GetProfile(ctx context.Context, userID uuid.UUID) (user.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, fullName, role string) error
	GetFollowing(ctx context.Context, userID uuid.UUID) (user.Following, error)
	AddFollowing(ctx context.Context, userID uuid.UUID, kind user.FollowKind, value string) error
	RemoveFollowing(ctx context.Context, userID uuid.UUID, kind user.FollowKind, value string) error
}

// ProfileHandler owns onboarding, profile edits and following lists.
type ProfileHandler struct {
	profiles ProfileStore
}

// NewProfileHandler wires the profile surface.
func NewProfileHandler(profiles ProfileStore) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// RegisterRoutes mounts the authenticated profile endpoints.
func (h *ProfileHandler) RegisterRoutes(r chi.Router) {
	r.Post("/me/onboard", h.onboard)
	r.Get("/me/profile", h.getProfile)
	r.Put("/me/profile", h.updateProfile)
	r.Get("/me/following", h.getFollowing)
	r.Post("/me/following/{kind}", h.addFollowing)
	r.Delete("/me/following/{kind}", h.removeFollowing)
}

// onboard creates the profile exactly once; a repeat is a conflict.
func (h *ProfileHandler) onboard(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.GetIdentity(r.Context())
	if !ok {
		WriteAppError(w, apperr.Unauthenticated("not authenticated"))
		return
	}

	var payload struct {
		FullName string `json:"fullname"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAppError(w, apperr.Validation("invalid payload"))
		return
	}
	if strings.TrimSpace(payload.FullName) == "" {
		WriteAppError(w, apperr.Validation("fullname is required"))
		return
	}

	role := payload.Role
	if role == "" {
		role = "citizen"
	}

	profile := user.Profile{
		UserID:   subject.Subject,
		FullName: payload.FullName,
		Role:     role,
	}
	if err := h.profiles.CreateProfile(r.Context(), profile); err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, profile)
}

func (h *ProfileHandler) getProfile(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.GetIdentity(r.Context())
	if !ok {
		WriteAppError(w, apperr.Unauthenticated("not authenticated"))
		return
	}

	profile, err := h.profiles.GetProfile(r.Context(), subject.Subject)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.GetIdentity(r.Context())
	if !ok {
		WriteAppError(w, apperr.Unauthenticated("not authenticated"))
		return
	}

	var payload struct {
		FullName string `json:"fullname"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAppError(w, apperr.Validation("invalid payload"))
		return
	}
	if strings.TrimSpace(payload.FullName) == "" {
		WriteAppError(w, apperr.Validation("fullname is required"))
		return
	}

	if err := h.profiles.UpdateProfile(r.Context(), subject.Subject, payload.FullName, payload.Role); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"message": "profile updated"})
}

func (h *ProfileHandler) getFollowing(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.GetIdentity(r.Context())
	if !ok {
		WriteAppError(w, apperr.Unauthenticated("not authenticated"))
		return
	}

	following, err := h.profiles.GetFollowing(r.Context(), subject.Subject)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, following)
}

func (h *ProfileHandler) addFollowing(w http.ResponseWriter, r *http.Request) {
	h.mutateFollowing(w, r, h.profiles.AddFollowing, "following added")
}

func (h *ProfileHandler) removeFollowing(w http.ResponseWriter, r *http.Request) {
	h.mutateFollowing(w, r, h.profiles.RemoveFollowing, "following removed")
}

func (h *ProfileHandler) mutateFollowing(
	w http.ResponseWriter,
	r *http.Request,
	mutate func(ctx context.Context, userID uuid.UUID, kind user.FollowKind, value string) error,
	message string,
) {
	subject, ok := middleware.GetIdentity(r.Context())
	if !ok {
		WriteAppError(w, apperr.Unauthenticated("not authenticated"))
		return
	}

	kind, err := followKindFromPath(chi.URLParam(r, "kind"))
	if err != nil {
		WriteAppError(w, err)
		return
	}

	var payload struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || strings.TrimSpace(payload.Value) == "" {
		WriteAppError(w, apperr.Validation("value is required"))
		return
	}

	if err := mutate(r.Context(), subject.Subject, kind, payload.Value); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"message": message})
}

func followKindFromPath(raw string) (user.FollowKind, error) {
	switch user.FollowKind(raw) {
	case user.FollowUser, user.FollowIssue, user.FollowDept, user.FollowLocation:
		return user.FollowKind(raw), nil
	}
	return "", apperr.Validation("unknown follow kind")
}
