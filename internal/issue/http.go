package issue

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/janavani/api/internal/apperr"
	"github.com/janavani/api/internal/auth"
	"github.com/janavani/api/internal/engage"
	httpapi "github.com/janavani/api/internal/http"
	httpmiddleware "github.com/janavani/api/internal/http/middleware"
	"github.com/janavani/api/internal/user"
)

// FeedProvider is the feed surface the handler depends on.
type FeedProvider interface {
	List(ctx context.Context, filters ListFilters, p Page, viewerID uuid.UUID) ([]Enriched, *time.Time, error)
	ListAdmin(ctx context.Context, p Page) ([]AdminRow, error)
}

// LifecycleProvider is the issue mutation surface.
type LifecycleProvider interface {
	Create(ctx context.Context, identity auth.Identity, in Input) (Issue, error)
	Update(ctx context.Context, identity auth.Identity, id uuid.UUID, in Input) (Issue, error)
	Delete(ctx context.Context, identity auth.Identity, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (Issue, error)
}

// FilterProvider answers batch criteria requests.
type FilterProvider interface {
	Filter(ctx context.Context, c Criteria) ([]Match, error)
}

// FollowingSource reads the viewer's following lists.
type FollowingSource interface {
	GetFollowing(ctx context.Context, userID uuid.UUID) (user.Following, error)
}

// SaveToggler flips save membership and lists the viewer's saved issues.
type SaveToggler interface {
	Toggle(ctx context.Context, issueID, userID uuid.UUID) (bool, error)
	ListSaved(ctx context.Context, userID uuid.UUID) ([]Issue, error)
}

// Handler exposes the issue REST surface.
type Handler struct {
	service   LifecycleProvider
	feed      FeedProvider
	batch     FilterProvider
	following FollowingSource
	saves     SaveToggler
	counters  engage.Counter
}

// NewHandler wires the issue handler.
func NewHandler(
	service LifecycleProvider,
	feed FeedProvider,
	batch FilterProvider,
	following FollowingSource,
	saves SaveToggler,
	counters engage.Counter,
) *Handler {
	return &Handler{
		service:   service,
		feed:      feed,
		batch:     batch,
		following: following,
		saves:     saves,
		counters:  counters,
	}
}

// RegisterRoutes mounts the authenticated issue endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/feed", h.getFeed)
	r.Get("/feed/following", h.getFollowingFeed)
	r.Post("/issues/filter", h.filter)
	r.Post("/issues", h.create)
	r.Get("/issues/{issueID}", h.get)
	r.Put("/issues/{issueID}", h.update)
	r.Delete("/issues/{issueID}", h.remove)
	r.Post("/issues/{issueID}/save", h.toggleSave)
	r.Get("/me/saves", h.listSaves)
}

// RegisterAdmin mounts the backoffice listing.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/issues", h.adminList)
}

// getFeed serves the enriched public feed. The cursor is the canonical
// pagination strategy; page/limit remain accepted for older clients.
func (h *Handler) getFeed(w http.ResponseWriter, r *http.Request) {
	subject, ok := httpmiddleware.GetIdentity(r.Context())
	if !ok {
		httpapi.WriteAppError(w, apperr.Unauthenticated("not authenticated"))
		return
	}

	page, err := pageFromQuery(r)
	if err != nil {
		httpapi.WriteAppError(w, err)
		return
	}

	// dept survives as a legacy alias for department.
	department := r.URL.Query().Get("department")
	if department == "" {
		department = r.URL.Query().Get("dept")
	}

	filters := ListFilters{
		State:      r.URL.Query().Get("state"),
		District:   r.URL.Query().Get("district"),
		Taluk:      r.URL.Query().Get("taluk"),
		Village:    r.URL.Query().Get("area"),
		IssueType:  r.URL.Query().Get("issue_type"),
		Department: department,
	}

	rows, next, err := h.feed.List(r.Context(), filters, page, subject.Subject)
	if err != nil {
		httpapi.WriteAppError(w, err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, feedResponse(rows, next))
}

// getFollowingFeed builds batch criteria from the viewer's following lists
// and serves the matches. An empty profile yields an empty feed, never the
// full corpus.
func (h *Handler) getFollowingFeed(w http.ResponseWriter, r *http.Request) {
	subject, ok := httpmiddleware.GetIdentity(r.Context())
	if !ok {
		httpapi.WriteAppError(w, apperr.Unauthenticated("not authenticated"))
		return
	}

	following, err := h.following.GetFollowing(r.Context(), subject.Subject)
	if err != nil {
		httpapi.WriteAppError(w, err)
		return
	}

	criteria := criteriaFromFollowing(following)
	if criteria.Empty() {
		httpapi.WriteJSON(w, http.StatusOK, map[string]any{"issues": []Match{}})
		return
	}

	matches, err := h.batch.Filter(r.Context(), criteria)
	if err != nil {
		httpapi.WriteAppError(w, err)
		return
	}
	if matches == nil {
		matches = []Match{}
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"issues": matches})
}

func (h *Handler) filter(w http.ResponseWriter, r *http.Request) {
	var criteria Criteria
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		httpapi.WriteAppError(w, apperr.Validation("invalid payload"))
		return
	}

	matches, err := h.batch.Filter(r.Context(), criteria)
	if err != nil {
		httpapi.WriteAppError(w, err)
		return
	}
	if matches == nil {
		matches = []Match{}
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"issues": matches})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	subject, ok := httpmiddleware.GetIdentity(r.Context())
	if !ok {
		httpapi.WriteAppError(w, apperr.Unauthenticated("not authenticated"))
		return
	}

	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpapi.WriteAppError(w, apperr.Validation("invalid payload"))
		return
	}

	created, err := h.service.Create(r.Context(), subject, in)
	if err != nil {
		httpapi.WriteAppError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, created)
}

// get fetches a single issue and bumps its view counter. The counter write
// happens after the read succeeds and is never allowed to fail the request.
func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := issueIDFromPath(r)
	if err != nil {
		httpapi.WriteAppError(w, err)
		return
	}

	it, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpapi.WriteAppError(w, err)
		return
	}

	if err := h.counters.IncrementView(r.Context(), it.ID.String()); err != nil {
		logCounterDrift("view_increment", it.ID.String(), err)
	}

	httpapi.WriteJSON(w, http.StatusOK, it)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	subject, ok := httpmiddleware.GetIdentity(r.Context())
	if !ok {
		httpapi.WriteAppError(w, apperr.Unauthenticated("not authenticated"))
		return
	}

	id, err := issueIDFromPath(r)
	if err != nil {
		httpapi.WriteAppError(w, err)
		return
	}

	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpapi.WriteAppError(w, apperr.Validation("invalid payload"))
		return
	}

	updated, err := h.service.Update(r.Context(), subject, id, in)
	if err != nil {
		httpapi.WriteAppError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	subject, ok := httpmiddleware.GetIdentity(r.Context())
	if !ok {
		httpapi.WriteAppError(w, apperr.Unauthenticated("not authenticated"))
		return
	}

	id, err := issueIDFromPath(r)
	if err != nil {
		httpapi.WriteAppError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), subject, id); err != nil {
		httpapi.WriteAppError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"message": "issue deleted"})
}

func (h *Handler) toggleSave(w http.ResponseWriter, r *http.Request) {
	subject, ok := httpmiddleware.GetIdentity(r.Context())
	if !ok {
		httpapi.WriteAppError(w, apperr.Unauthenticated("not authenticated"))
		return
	}

	id, err := issueIDFromPath(r)
	if err != nil {
		httpapi.WriteAppError(w, err)
		return
	}

	// The issue must exist and be visible before a save row is created.
	if _, err := h.service.Get(r.Context(), id); err != nil {
		httpapi.WriteAppError(w, err)
		return
	}

	saved, err := h.saves.Toggle(r.Context(), id, subject.Subject)
	if err != nil {
		httpapi.WriteAppError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"is_saved": saved})
}

func (h *Handler) listSaves(w http.ResponseWriter, r *http.Request) {
	subject, ok := httpmiddleware.GetIdentity(r.Context())
	if !ok {
		httpapi.WriteAppError(w, apperr.Unauthenticated("not authenticated"))
		return
	}

	saved, err := h.saves.ListSaved(r.Context(), subject.Subject)
	if err != nil {
		httpapi.WriteAppError(w, err)
		return
	}
	if saved == nil {
		saved = []Issue{}
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"issues": saved})
}

func (h *Handler) adminList(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		httpapi.WriteAppError(w, err)
		return
	}

	rows, err := h.feed.ListAdmin(r.Context(), page)
	if err != nil {
		httpapi.WriteAppError(w, err)
		return
	}
	if rows == nil {
		rows = []AdminRow{}
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"issues": rows})
}

func feedResponse(rows []Enriched, next *time.Time) map[string]any {
	if rows == nil {
		rows = []Enriched{}
	}
	response := map[string]any{"issues": rows}
	if next != nil {
		response["next_cursor"] = next.UTC().Format(time.RFC3339Nano)
	}
	return response
}

func pageFromQuery(r *http.Request) (Page, error) {
	var page Page

	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Page{}, apperr.Validation("invalid limit")
		}
		page.Limit = n
	}
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Page{}, apperr.Validation("invalid page")
		}
		page.Page = n
	}
	if raw := r.URL.Query().Get("cursor"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return Page{}, apperr.Validation("cursor must be RFC3339")
		}
		page.Cursor = &t
	}

	return page.Normalize(), nil
}

func issueIDFromPath(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "issueID"))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid issue id")
	}
	return id, nil
}

func criteriaFromFollowing(f user.Following) Criteria {
	return Criteria{
		UserIDs:  parseUUIDs(f.Users),
		IssueIDs: parseUUIDs(f.Issues),
		DeptIDs:  parseUUIDs(f.Depts),
		Villages: f.Locations,
	}
}

func parseUUIDs(values []string) []uuid.UUID {
	var ids []uuid.UUID
	for _, raw := range values {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
