package engage

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/janavani/api/internal/apperr"
	httpapi "github.com/janavani/api/internal/http"
	httpmiddleware "github.com/janavani/api/internal/http/middleware"
)

// Handler exposes the engagement REST surface.
type Handler struct {
	counters Counter
}

// NewHandler wires the engagement handler.
func NewHandler(counters Counter) *Handler {
	return &Handler{counters: counters}
}

// RegisterRoutes mounts the authenticated engagement endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/issues/{issueID}/like", h.toggle(IssueLike, "issueID"))
	r.Post("/issues/{issueID}/support", h.toggle(IssueSupport, "issueID"))
	r.Post("/issues/{issueID}/share", h.recordShare)
	r.Post("/issues/{issueID}/view", h.incrementView)
	r.Get("/issues/{issueID}/engagement", h.summary)
	r.Post("/comments/{commentID}/like", h.toggle(CommentLike, "commentID"))
	r.Get("/comments/{commentID}/likes", h.count(CommentLike, "commentID"))
	r.Post("/threads/{threadID}/support", h.toggle(ThreadSupport, "threadID"))
	r.Get("/threads/{threadID}/supports", h.count(ThreadSupport, "threadID"))
}

// toggle flips membership for the (entity, subject) pair of a kind and
// reports the resulting state with the fresh count.
func (h *Handler) toggle(kind EventKind, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject, ok := httpmiddleware.GetIdentity(r.Context())
		if !ok {
			httpapi.WriteAppError(w, apperr.Unauthenticated("not authenticated"))
			return
		}

		entityID := chi.URLParam(r, param)
		if entityID == "" {
			httpapi.WriteAppError(w, apperr.Validation("entity id is required"))
			return
		}

		active, err := h.counters.Toggle(r.Context(), kind, entityID, subject.Subject.String())
		if err != nil {
			httpapi.WriteAppError(w, err)
			return
		}

		count, err := h.counters.Count(r.Context(), kind, entityID)
		if err != nil {
			httpapi.WriteAppError(w, err)
			return
		}

		httpapi.WriteJSON(w, http.StatusOK, map[string]any{
			"active": active,
			"count":  count,
		})
	}
}

// count reads the volume of a kind for the entity plus the viewer's own
// membership, without mutating anything.
func (h *Handler) count(kind EventKind, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject, ok := httpmiddleware.GetIdentity(r.Context())
		if !ok {
			httpapi.WriteAppError(w, apperr.Unauthenticated("not authenticated"))
			return
		}

		entityID := chi.URLParam(r, param)
		if entityID == "" {
			httpapi.WriteAppError(w, apperr.Validation("entity id is required"))
			return
		}

		n, err := h.counters.Count(r.Context(), kind, entityID)
		if err != nil {
			httpapi.WriteAppError(w, err)
			return
		}
		active, err := h.counters.IsSet(r.Context(), kind, entityID, subject.Subject.String())
		if err != nil {
			httpapi.WriteAppError(w, err)
			return
		}

		httpapi.WriteJSON(w, http.StatusOK, map[string]any{
			"count":  n,
			"active": active,
		})
	}
}

// recordShare appends a share event; a repeat on the same platform conflicts.
func (h *Handler) recordShare(w http.ResponseWriter, r *http.Request) {
	subject, ok := httpmiddleware.GetIdentity(r.Context())
	if !ok {
		httpapi.WriteAppError(w, apperr.Unauthenticated("not authenticated"))
		return
	}

	entityID := chi.URLParam(r, "issueID")
	if entityID == "" {
		httpapi.WriteAppError(w, apperr.Validation("entity id is required"))
		return
	}

	var payload struct {
		Platform string `json:"platform"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httpapi.WriteAppError(w, apperr.Validation("invalid payload"))
		return
	}

	if err := h.counters.RecordShare(r.Context(), entityID, subject.Subject.String(), payload.Platform); err != nil {
		httpapi.WriteAppError(w, err)
		return
	}

	count, err := h.counters.Count(r.Context(), IssueShare, entityID)
	if err != nil {
		httpapi.WriteAppError(w, err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"count": count})
}

func (h *Handler) incrementView(w http.ResponseWriter, r *http.Request) {
	entityID := chi.URLParam(r, "issueID")
	if entityID == "" {
		httpapi.WriteAppError(w, apperr.Validation("entity id is required"))
		return
	}

	if err := h.counters.IncrementView(r.Context(), entityID); err != nil {
		httpapi.WriteAppError(w, err)
		return
	}

	views, err := h.counters.ViewCount(r.Context(), entityID)
	if err != nil {
		httpapi.WriteAppError(w, err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"views": views})
}

// summary returns every counter for the entity plus the viewer's own flags.
func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	subject, ok := httpmiddleware.GetIdentity(r.Context())
	if !ok {
		httpapi.WriteAppError(w, apperr.Unauthenticated("not authenticated"))
		return
	}

	entityID := chi.URLParam(r, "issueID")
	if entityID == "" {
		httpapi.WriteAppError(w, apperr.Validation("entity id is required"))
		return
	}

	ctx := r.Context()
	userID := subject.Subject.String()

	likes, err := h.counters.Count(ctx, IssueLike, entityID)
	if err != nil {
		httpapi.WriteAppError(w, err)
		return
	}
	supports, err := h.counters.Count(ctx, IssueSupport, entityID)
	if err != nil {
		httpapi.WriteAppError(w, err)
		return
	}
	shares, err := h.counters.Count(ctx, IssueShare, entityID)
	if err != nil {
		httpapi.WriteAppError(w, err)
		return
	}
	views, err := h.counters.ViewCount(ctx, entityID)
	if err != nil {
		httpapi.WriteAppError(w, err)
		return
	}
	liked, err := h.counters.IsSet(ctx, IssueLike, entityID, userID)
	if err != nil {
		httpapi.WriteAppError(w, err)
		return
	}
	supported, err := h.counters.IsSet(ctx, IssueSupport, entityID, userID)
	if err != nil {
		httpapi.WriteAppError(w, err)
		return
	}
	platforms, err := h.counters.DistinctPlatforms(ctx, entityID)
	if err != nil {
		httpapi.WriteAppError(w, err)
		return
	}
	if platforms == nil {
		platforms = []string{}
	}

	httpapi.WriteJSON(w, http.StatusOK, map[string]any{
		"likes":        likes,
		"supports":     supports,
		"shares":       shares,
		"views":        views,
		"is_liked":     liked,
		"is_supported": supported,
		"platforms":    platforms,
	})
}
