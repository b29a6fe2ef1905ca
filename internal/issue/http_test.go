package issue

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/janavani/api/internal/auth"
	httpmiddleware "github.com/janavani/api/internal/http/middleware"
	"github.com/janavani/api/internal/user"
)

type stubFollowing struct {
	following user.Following
}

func (s *stubFollowing) GetFollowing(ctx context.Context, userID uuid.UUID) (user.Following, error) {
	return s.following, nil
}

type stubSaveToggler struct {
	saved map[uuid.UUID]bool
}

func (s *stubSaveToggler) Toggle(ctx context.Context, issueID, userID uuid.UUID) (bool, error) {
	s.saved[issueID] = !s.saved[issueID]
	return s.saved[issueID], nil
}

func (s *stubSaveToggler) ListSaved(ctx context.Context, userID uuid.UUID) ([]Issue, error) {
	return nil, nil
}

type handlerFixture struct {
	server   http.Handler
	repo     *stubListSource
	store    *stubLifecycleStore
	counters *stubCounter
	subject  uuid.UUID
}

func newHandlerFixture(issues ...Issue) *handlerFixture {
	repo := &stubListSource{issues: issues}
	store := newStubLifecycleStore(issues...)
	counters := newStubCounter()
	saves := &stubSaves{savedBy: map[uuid.UUID]uuid.UUID{}}

	handler := NewHandler(
		NewService(store),
		NewFeed(repo, counters, saves),
		NewBatch(&stubBatchSource{issues: issues}, &stubNames{}, counters, saves),
		&stubFollowing{},
		&stubSaveToggler{saved: map[uuid.UUID]bool{}},
		counters,
	)

	subject := uuid.New()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := httpmiddleware.WithIdentity(req.Context(), auth.Identity{Subject: subject})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	handler.RegisterRoutes(r)

	return &handlerFixture{server: r, repo: repo, store: store, counters: counters, subject: subject}
}

func TestGetFeedParsesQuery(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	fx := newHandlerFixture(testIssue(now))

	cursor := now.Format(time.RFC3339)
	rec := httptest.NewRecorder()
	fx.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/feed?limit=5&page=2&cursor="+cursor+"&state=Karnataka&area=Jayanagar&department=Roads", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	if fx.repo.lastPage.Limit != 5 || fx.repo.lastPage.Page != 2 {
		t.Errorf("page = %+v", fx.repo.lastPage)
	}
	if fx.repo.lastPage.Cursor == nil || !fx.repo.lastPage.Cursor.Equal(now) {
		t.Errorf("cursor = %v, want %s", fx.repo.lastPage.Cursor, now)
	}
	if fx.repo.lastFilters.State != "Karnataka" {
		t.Errorf("state filter = %q", fx.repo.lastFilters.State)
	}
	if fx.repo.lastFilters.Village != "Jayanagar" {
		t.Errorf("area should map to the village filter, got %q", fx.repo.lastFilters.Village)
	}
	if fx.repo.lastFilters.Department != "Roads" {
		t.Errorf("department filter = %q, want Roads", fx.repo.lastFilters.Department)
	}

	var envelope struct {
		Data struct {
			Issues     []Enriched `json:"issues"`
			NextCursor string     `json:"next_cursor"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatal(err)
	}
	if len(envelope.Data.Issues) != 1 {
		t.Errorf("issues = %d", len(envelope.Data.Issues))
	}
	if envelope.Data.NextCursor == "" {
		t.Error("next_cursor missing")
	}
}

func TestGetFeedDepartmentAlias(t *testing.T) {
	fx := newHandlerFixture()

	rec := httptest.NewRecorder()
	fx.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/feed?dept=Sanitation", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if fx.repo.lastFilters.Department != "Sanitation" {
		t.Errorf("legacy dept param not forwarded, got %q", fx.repo.lastFilters.Department)
	}

	// The canonical name wins when both are supplied.
	rec = httptest.NewRecorder()
	fx.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/feed?department=Roads&dept=Sanitation", nil))
	if fx.repo.lastFilters.Department != "Roads" {
		t.Errorf("department filter = %q, want Roads", fx.repo.lastFilters.Department)
	}
}

func TestGetFeedRejectsBadCursor(t *testing.T) {
	fx := newHandlerFixture()

	rec := httptest.NewRecorder()
	fx.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/feed?cursor=yesterday", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	fx.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/feed?limit=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetIssueBumpsViewCounter(t *testing.T) {
	now := time.Now().UTC()
	it := testIssue(now)
	fx := newHandlerFixture(it)

	rec := httptest.NewRecorder()
	fx.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/issues/"+it.ID.String(), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	if fx.counters.views[it.ID.String()] != 1 {
		t.Errorf("view counter = %d, want 1", fx.counters.views[it.ID.String()])
	}
}

func TestGetIssueInvalidID(t *testing.T) {
	fx := newHandlerFixture()

	rec := httptest.NewRecorder()
	fx.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/issues/not-a-uuid", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetIssueNotFound(t *testing.T) {
	fx := newHandlerFixture()

	rec := httptest.NewRecorder()
	fx.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/issues/"+uuid.NewString(), nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCreateIssue(t *testing.T) {
	fx := newHandlerFixture()

	payload := `{"issue_headline":"pothole","issue_desc":"deep pothole","state":"Karnataka"}`
	rec := httptest.NewRecorder()
	fx.server.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/issues", strings.NewReader(payload)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	if fx.store.created == nil {
		t.Fatal("issue not created")
	}
	if fx.store.created.UserID != fx.subject {
		t.Errorf("owner = %s, want the authenticated subject", fx.store.created.UserID)
	}
}

func TestDeleteIssueForbiddenForStranger(t *testing.T) {
	now := time.Now().UTC()
	it := testIssue(now)
	fx := newHandlerFixture(it)

	// The fixture subject is not the owner of it.
	rec := httptest.NewRecorder()
	fx.server.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/issues/"+it.ID.String(), nil))
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestFollowingFeedEmptyProfile(t *testing.T) {
	fx := newHandlerFixture()

	rec := httptest.NewRecorder()
	fx.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/feed/following", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var envelope struct {
		Data struct {
			Issues []Match `json:"issues"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatal(err)
	}
	if len(envelope.Data.Issues) != 0 {
		t.Errorf("empty profile returned %d issues", len(envelope.Data.Issues))
	}
}

func TestCriteriaFromFollowing(t *testing.T) {
	u := uuid.New()
	d := uuid.New()

	got := criteriaFromFollowing(user.Following{
		Users:     []string{u.String(), "not-a-uuid"},
		Depts:     []string{d.String()},
		Locations: []string{"Jayanagar"},
	})

	if len(got.UserIDs) != 1 || got.UserIDs[0] != u {
		t.Errorf("user ids = %v", got.UserIDs)
	}
	if len(got.DeptIDs) != 1 || got.DeptIDs[0] != d {
		t.Errorf("dept ids = %v", got.DeptIDs)
	}
	if len(got.Villages) != 1 || got.Villages[0] != "Jayanagar" {
		t.Errorf("villages = %v", got.Villages)
	}
}
